package export

import (
	"encoding/json"
	"html/template"
	"io"

	"github.com/okuyamashin/querycanvas/internal/runner"
	"github.com/okuyamashin/querycanvas/pkg/render"
)

// htmlTemplate is a standalone result page. Styling happens through the
// inline declarations the resolver produced; the chart block carries the
// payload only, drawing is the embedding page's job.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem; color: #1a1a2e; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d0d0d8; padding: 0.35rem 0.7rem; }
th { background: #f4f4f8; text-align: left; }
caption { caption-side: bottom; text-align: left; padding-top: 0.5rem; color: #666; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<table>
<caption>{{.RowCount}} rows{{if .Truncated}} (truncated){{end}}</caption>
{{- if .HasWidths}}
<colgroup>
{{- range .Widths}}
<col{{if .}} style="{{.}}"{{end}}>
{{- end}}
</colgroup>
{{- end}}
<thead>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr{{if .Style}} style="{{.Style}}"{{end}}>{{range .Cells}}<td{{if .Style}} style="{{.Style}}"{{end}}>{{.Text}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
{{- if .ChartJSON}}
<div id="chart" data-kind="chart-placeholder"></div>
<script type="application/json" id="chart-data">{{.ChartJSON}}</script>
{{- end}}
</body>
</html>
`

var resultTemplate = template.Must(template.New("result").Parse(htmlTemplate))

type htmlData struct {
	Title     string
	Columns   []string
	HasWidths bool
	Widths    []template.CSS
	Rows      []htmlRow
	RowCount  int
	Truncated bool
	ChartJSON template.JS
}

type htmlRow struct {
	Style template.CSS
	Cells []htmlCell
}

type htmlCell struct {
	Style template.CSS
	Text  string
}

// HTMLRenderer writes a standalone HTML document.
type HTMLRenderer struct{}

func (r *HTMLRenderer) Render(w io.Writer, res *runner.Result) error {
	data := htmlData{
		Title:     htmlTitle(res),
		Columns:   res.Columns,
		RowCount:  len(res.Rows),
		Truncated: res.Truncated,
	}

	for _, name := range res.Columns {
		width := render.WidthStyle(columnFor(res, name)).String()
		if width != "" {
			data.HasWidths = true
		}
		data.Widths = append(data.Widths, template.CSS(width)) //nolint:gosec // G203: declarations come from the canvas author's own file
	}

	rules := rowRules(res)
	for _, row := range res.Rows {
		hr := htmlRow{
			Style: template.CSS(render.RowStyle(row, rules).String()), //nolint:gosec // G203: see above
		}
		for _, name := range res.Columns {
			col := columnFor(res, name)
			hr.Cells = append(hr.Cells, htmlCell{
				Style: template.CSS(render.CellStyle(row[name], col).String()), //nolint:gosec // G203: see above
				Text:  render.FormatValue(row[name], col),
			})
		}
		data.Rows = append(data.Rows, hr)
	}

	if payload := BuildChartPayload(res); payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			data.ChartJSON = template.JS(b) //nolint:gosec // G203: payload is produced by this package
		}
	}

	return resultTemplate.Execute(w, data)
}

func htmlTitle(res *runner.Result) string {
	if res.Title != "" {
		return res.Title
	}
	if res.Canvas != "" {
		return res.Canvas
	}
	return "Query Result"
}
