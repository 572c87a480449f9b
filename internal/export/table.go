package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/muesli/termenv"

	"github.com/okuyamashin/querycanvas/internal/runner"
	"github.com/okuyamashin/querycanvas/pkg/render"
)

// TableRenderer draws the result as a terminal table.
type TableRenderer struct {
	// Color applies the canvas styling directives with lipgloss. Off
	// when the environment reports no color support.
	Color bool
}

// NewTableRenderer detects color support from the environment.
// termenv's profile detection honors NO_COLOR.
func NewTableRenderer() *TableRenderer {
	return &TableRenderer{Color: termenv.EnvColorProfile() != termenv.Ascii}
}

func (r *TableRenderer) Render(w io.Writer, res *runner.Result) error {
	if len(res.Rows) == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	var configs []table.ColumnConfig
	for _, name := range res.Columns {
		if col := columnFor(res, name); col.Align != "" {
			configs = append(configs, table.ColumnConfig{
				Name:  name,
				Align: alignFor(col.Align),
			})
		}
	}
	if len(configs) > 0 {
		t.SetColumnConfigs(configs)
	}

	headerRow := make(table.Row, len(res.Columns))
	for i, name := range res.Columns {
		headerRow[i] = name
	}
	t.AppendHeader(headerRow)

	rules := rowRules(res)
	for _, row := range res.Rows {
		rowDecls := render.RowStyle(row, rules)
		out := make(table.Row, len(res.Columns))
		for i, name := range res.Columns {
			cellText := formatCell(res, row, name)
			if r.Color {
				cellText = r.styled(cellText, rowDecls, render.CellStyle(row[name], columnFor(res, name)))
			}
			out[i] = cellText
		}
		t.AppendRow(out)
	}

	t.Render()

	if res.Truncated {
		_, err := fmt.Fprintf(w, "(%d rows, truncated)\n", len(res.Rows))
		return err
	}
	_, err := fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
	return err
}

// styled applies row then cell declarations so cell styling wins the
// cascade, matching how a browser would layer them.
func (r *TableRenderer) styled(s string, rowDecls, cellDecls render.Declarations) string {
	combined := make(render.Declarations, 0, len(rowDecls)+len(cellDecls))
	combined = append(combined, rowDecls...)
	combined = append(combined, cellDecls...)

	st, any := styleFor(combined)
	if !any {
		return s
	}
	return st.Render(s)
}

func alignFor(align string) text.Align {
	switch align {
	case "right":
		return text.AlignRight
	case "center":
		return text.AlignCenter
	case "left":
		return text.AlignLeft
	default:
		return text.AlignDefault
	}
}

// ansiColors maps the CSS color names canvases commonly use to ANSI
// codes. Hex values and raw ANSI numbers pass through untouched.
var ansiColors = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
	"gray":    "8",
	"grey":    "8",
	"orange":  "214",
	"purple":  "93",
	"pink":    "213",
}

func termColor(s string) lipgloss.Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if code, ok := ansiColors[s]; ok {
		return lipgloss.Color(code)
	}
	return lipgloss.Color(s)
}

// styleFor converts CSS declarations into a lipgloss style. The second
// return is false when nothing visual was set.
func styleFor(decls render.Declarations) (lipgloss.Style, bool) {
	st := lipgloss.NewStyle()
	applied := false

	if c, ok := decls.Get("color"); ok {
		st = st.Foreground(termColor(c))
		applied = true
	}
	if bg, ok := decls.Get("background-color"); ok {
		st = st.Background(termColor(bg))
		applied = true
	}
	if w, ok := decls.Get("font-weight"); ok && w == "bold" {
		st = st.Bold(true)
		applied = true
	}
	return st, applied
}
