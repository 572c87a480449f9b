package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/okuyamashin/querycanvas/internal/runner"
)

// DelimitedRenderer writes csv or tsv depending on Comma.
type DelimitedRenderer struct {
	Comma rune
}

func (r *DelimitedRenderer) Render(w io.Writer, res *runner.Result) error {
	sep := string(r.Comma)

	headers := make([]string, len(res.Columns))
	for i, name := range res.Columns {
		headers[i] = r.escape(name)
	}
	if _, err := fmt.Fprintln(w, strings.Join(headers, sep)); err != nil {
		return err
	}

	for _, row := range res.Rows {
		values := make([]string, len(res.Columns))
		for i, name := range res.Columns {
			values[i] = r.escape(formatCell(res, row, name))
		}
		if _, err := fmt.Fprintln(w, strings.Join(values, sep)); err != nil {
			return err
		}
	}
	return nil
}

// escape quotes a field when it contains the separator, a quote or a
// newline. The rule is shared between csv and tsv, only the separator
// differs.
func (r *DelimitedRenderer) escape(s string) string {
	if strings.ContainsAny(s, string(r.Comma)+"\"\n\r") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
