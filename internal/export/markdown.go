package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/okuyamashin/querycanvas/internal/runner"
)

// MarkdownRenderer writes a pipe table. Column alignment directives
// become alignment markers in the separator row.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, res *runner.Result) error {
	if len(res.Rows) == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}

	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(res.Columns, " | ")); err != nil {
		return err
	}

	seps := make([]string, len(res.Columns))
	for i, name := range res.Columns {
		switch columnFor(res, name).Align {
		case "right":
			seps[i] = "---:"
		case "center":
			seps[i] = ":---:"
		case "left":
			seps[i] = ":---"
		default:
			seps[i] = "---"
		}
	}
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | ")); err != nil {
		return err
	}

	for _, row := range res.Rows {
		values := make([]string, len(res.Columns))
		for i, name := range res.Columns {
			values[i] = escapeMarkdownCell(formatCell(res, row, name))
		}
		if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | ")); err != nil {
			return err
		}
	}
	return nil
}

func escapeMarkdownCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
