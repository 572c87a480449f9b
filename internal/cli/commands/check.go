package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okuyamashin/querycanvas/internal/canvas"
	"github.com/okuyamashin/querycanvas/internal/cli/output"
	"github.com/okuyamashin/querycanvas/pkg/directive"
	"github.com/okuyamashin/querycanvas/pkg/sqlguard"
	"github.com/spf13/cobra"
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <canvas>",
		Short: "Validate a canvas without running it",
		Long: `Parse a canvas's display directives and run the read-only guard over
its SQL, without opening any database connection.

Reports the parsed column options, row styling rules, and chart spec.
A guard violation makes the command exit non-zero, so check works as a
CI gate for canvas repositories.`,
		Example: `  # Check a canvas by name
  querycanvas check sales/monthly

  # Check a file directly, e.g. in a pre-commit hook
  querycanvas check ./canvases/sales/monthly.sql

  # Machine-readable findings
  QUERYCANVAS_OUTPUT=json querycanvas check sales/monthly`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCanvasNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0])
		},
	}
}

type checkOutput struct {
	Canvas   string        `json:"canvas"`
	Title    string        `json:"title"`
	Path     string        `json:"path"`
	Columns  []checkColumn `json:"columns"`
	RowRules int           `json:"row_rules"`
	Chart    *checkChart   `json:"chart,omitempty"`
	Guard    checkGuard    `json:"guard"`
}

type checkColumn struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

type checkChart struct {
	Type  string   `json:"type"`
	XAxis string   `json:"x_axis"`
	YAxis []string `json:"y_axis"`
}

type checkGuard struct {
	ReadOnly bool   `json:"read_only"`
	Error    string `json:"error,omitempty"`
}

func runCheck(cmd *cobra.Command, ref string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	c, err := canvas.Resolve(cmdCtx.Cfg.CanvasesDir, ref)
	if err != nil {
		return err
	}

	guardErr := sqlguard.Check(c.SQL)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(buildCheckOutput(c, guardErr)); err != nil {
			return err
		}
	case output.ModeMarkdown:
		checkMarkdown(r, c, guardErr)
	default:
		checkText(r, c, guardErr)
	}

	return guardErr
}

func buildCheckOutput(c *canvas.Canvas, guardErr error) checkOutput {
	out := checkOutput{
		Canvas:   c.Name,
		Title:    c.Title,
		Path:     c.Path,
		Columns:  []checkColumn{},
		RowRules: len(c.Options.RowRules),
		Guard:    checkGuard{ReadOnly: guardErr == nil},
	}
	for _, name := range sortedColumnNames(c.Options) {
		out.Columns = append(out.Columns, checkColumn{
			Name:    name,
			Summary: columnSummary(c.Options.Columns[name]),
		})
	}
	if ch := c.Options.Chart; ch != nil {
		out.Chart = &checkChart{Type: ch.Type, XAxis: ch.XAxis, YAxis: ch.YAxis}
	}
	if guardErr != nil {
		out.Guard.Error = guardErr.Error()
	}
	return out
}

func checkText(r *output.Renderer, c *canvas.Canvas, guardErr error) {
	styles := r.Styles()

	r.Header(1, c.Title)
	r.Muted(c.Path)
	r.Println("")

	names := sortedColumnNames(c.Options)
	if len(names) == 0 && len(c.Options.RowRules) == 0 && c.Options.Chart == nil {
		r.Muted("No display directives")
	}
	for _, name := range names {
		r.Println("  " + styles.Bold.Render(name) + "  " + styles.Muted.Render(columnSummary(c.Options.Columns[name])))
	}
	if n := len(c.Options.RowRules); n > 0 {
		r.Printf("  %d row styling rule(s)\n", n)
	}
	if ch := c.Options.Chart; ch != nil {
		r.Printf("  chart: %s of %s by %s\n", ch.Type, strings.Join(ch.YAxis, ", "), ch.XAxis)
	}

	r.Println("")
	if guardErr == nil {
		r.Success("Read-only guard passed")
	} else {
		r.Error(guardErr.Error())
	}
}

func checkMarkdown(r *output.Renderer, c *canvas.Canvas, guardErr error) {
	r.Println(output.FormatHeader(1, "Canvas: "+c.Title))
	r.Println("")
	r.Println(output.FormatKeyValue("Name", c.Name))
	r.Println(output.FormatKeyValue("Path", c.Path))
	r.Println(output.FormatKeyValue("Row rules", fmt.Sprintf("%d", len(c.Options.RowRules))))

	names := sortedColumnNames(c.Options)
	if len(names) > 0 {
		r.Println("")
		r.Println(output.FormatHeader(2, "Columns"))
		for _, name := range names {
			r.Printf("- `%s`: %s\n", name, columnSummary(c.Options.Columns[name]))
		}
	}
	if ch := c.Options.Chart; ch != nil {
		r.Println("")
		r.Println(output.FormatHeader(2, "Chart"))
		r.Println(output.FormatKeyValue("Type", ch.Type))
		r.Println(output.FormatKeyValue("X axis", ch.XAxis))
		r.Println(output.FormatKeyValue("Y axis", strings.Join(ch.YAxis, ", ")))
	}

	r.Println("")
	if guardErr == nil {
		r.Println("Read-only guard passed")
	} else {
		r.Println("Read-only guard failed: " + guardErr.Error())
	}
}

func sortedColumnNames(opts *directive.Options) []string {
	names := make([]string, 0, len(opts.Columns))
	for name := range opts.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// columnSummary renders one column's directive record as a short
// human-readable list.
func columnSummary(col directive.Column) string {
	var parts []string
	if col.Type != "" {
		parts = append(parts, "type="+col.Type)
	}
	if col.Format != "" {
		parts = append(parts, "format="+col.Format)
	}
	if col.Align != "" {
		parts = append(parts, "align="+col.Align)
	}
	if col.Comma {
		parts = append(parts, "comma")
	}
	if col.Decimal != nil {
		parts = append(parts, fmt.Sprintf("decimal=%d", *col.Decimal))
	}
	if col.Pattern != "" {
		parts = append(parts, "pattern="+col.Pattern)
	}
	if col.Width != "" {
		parts = append(parts, "width="+col.Width)
	}
	if n := len(col.Conditionals); n > 0 {
		parts = append(parts, fmt.Sprintf("%d conditional style(s)", n))
	} else if col.Static != (directive.Style{}) {
		parts = append(parts, "static style")
	}
	if len(parts) == 0 {
		return "no display options"
	}
	return strings.Join(parts, ", ")
}
