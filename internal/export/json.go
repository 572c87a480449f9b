package export

import (
	"encoding/json"
	"io"

	"github.com/okuyamashin/querycanvas/internal/runner"
)

// JSONRenderer writes the rows as a JSON array of objects.
type JSONRenderer struct {
	// Raw emits driver values as scanned instead of directive-formatted
	// strings.
	Raw bool
}

func (r *JSONRenderer) Render(w io.Writer, res *runner.Result) error {
	rows := make([]map[string]any, len(res.Rows))

	if r.Raw {
		copy(rows, res.Rows)
	} else {
		for i, row := range res.Rows {
			out := make(map[string]any, len(res.Columns))
			for _, name := range res.Columns {
				out[name] = formatCell(res, row, name)
			}
			rows[i] = out
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
