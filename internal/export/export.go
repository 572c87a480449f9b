// Package export renders executed results in the output formats the CLI
// and workbench offer.
//
// Renderers consume a runner.Result: values are formatted under the
// canvas directives, and the styled formats (table, html) apply the
// resolved cell and row declarations. The plain formats (csv, tsv, json)
// carry formatted text only.
package export

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/okuyamashin/querycanvas/internal/runner"
	"github.com/okuyamashin/querycanvas/pkg/directive"
	"github.com/okuyamashin/querycanvas/pkg/render"
)

// Renderer writes one result to w.
type Renderer interface {
	Render(w io.Writer, res *runner.Result) error
}

// UnknownFormatError reports a format name that matched no renderer.
type UnknownFormatError struct {
	Format    string
	Available []string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown output format %q\nAvailable formats: %v", e.Format, e.Available)
}

// For returns the renderer for a format name with default settings.
func For(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "table", "":
		return NewTableRenderer(), nil
	case "csv":
		return &DelimitedRenderer{Comma: ','}, nil
	case "tsv":
		return &DelimitedRenderer{Comma: '\t'}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "md", "markdown":
		return &MarkdownRenderer{}, nil
	case "html":
		return &HTMLRenderer{}, nil
	case "chartjson":
		return &ChartJSONRenderer{}, nil
	default:
		return nil, &UnknownFormatError{Format: format, Available: Formats()}
	}
}

// Formats lists the canonical format names.
func Formats() []string {
	names := []string{"table", "csv", "tsv", "json", "markdown", "html", "chartjson"}
	sort.Strings(names)
	return names
}

// columnFor returns the display directive of a column; absent columns get
// the zero directive, which formats values pass-through.
func columnFor(res *runner.Result, name string) directive.Column {
	if res.Options == nil {
		return directive.Column{}
	}
	return res.Options.Columns[name]
}

// formatCell is the one place cell text comes from: the column's
// directive applied by the formatter, NULL as empty string.
func formatCell(res *runner.Result, row map[string]any, name string) string {
	return render.FormatValue(row[name], columnFor(res, name))
}

// rowRules returns the row styling rules, nil-safe.
func rowRules(res *runner.Result) []directive.RowRule {
	if res.Options == nil {
		return nil
	}
	return res.Options.RowRules
}

// numeric coerces a driver value to float64 for chart series. Strings
// parse strictly on their trimmed form.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
