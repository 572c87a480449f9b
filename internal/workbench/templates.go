package workbench

import (
	"encoding/json"
	"html/template"
	"net/http"
	"path"
	"time"

	"github.com/okuyamashin/querycanvas/internal/canvas"
	"github.com/okuyamashin/querycanvas/internal/export"
	"github.com/okuyamashin/querycanvas/internal/runner"
	"github.com/okuyamashin/querycanvas/pkg/render"
)

// pageData carries what every page shares: the title and the profile
// selector state.
type pageData struct {
	Title    string
	Profile  string
	Profiles []string
	// Path is where the profile form redirects back to.
	Path string
}

type indexData struct {
	pageData
	Dir      string
	Canvases []canvasItem
	Errors   []canvas.LoadError
}

type canvasItem struct {
	Name string
	// Title is empty when it just repeats the file name.
	Title string
}

type canvasData struct {
	pageData
	Name string
	SQL  string
	View resultView
}

// resultView is what the result fragment renders: a result or the error
// that prevented one.
type resultView struct {
	Result *resultData
	Error  string
}

type resultData struct {
	Columns   []string
	HasWidths bool
	Widths    []template.CSS
	Rows      []resultRow
	RowCount  int
	Truncated bool
	Duration  string
	Profile   string
	ChartJSON template.JS
}

type resultRow struct {
	Style template.CSS
	Cells []resultCell
}

type resultCell struct {
	Style template.CSS
	Text  string
}

func (s *Server) pageDataFor(r *http.Request, title, backPath string) pageData {
	return pageData{
		Title:    title,
		Profile:  s.profileFor(r).Name,
		Profiles: s.profileNames(),
		Path:     backPath,
	}
}

func canvasItemFor(c *canvas.Canvas) canvasItem {
	item := canvasItem{Name: c.Name, Title: c.Title}
	if item.Title == path.Base(c.Name) {
		item.Title = ""
	}
	return item
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// buildResultData turns one run into the fragment's view model: formatted
// cells plus the inline declarations the directives resolved to.
func buildResultData(res *runner.Result) *resultData {
	data := &resultData{
		Columns:   res.Columns,
		RowCount:  len(res.Rows),
		Truncated: res.Truncated,
		Duration:  res.Duration.Round(time.Millisecond).String(),
		Profile:   res.Profile,
	}

	for _, name := range res.Columns {
		decls := render.WidthStyle(res.Options.Columns[name])
		if len(decls) > 0 {
			data.HasWidths = true
		}
		data.Widths = append(data.Widths, template.CSS(decls.String())) //nolint:gosec // G203: declarations come from the canvas author's own file
	}

	for _, row := range res.Rows {
		rowDecls := render.RowStyle(row, res.Options.RowRules)
		rr := resultRow{Style: template.CSS(rowDecls.String())} //nolint:gosec // G203: declarations come from the canvas author's own file
		for _, name := range res.Columns {
			col := res.Options.Columns[name]
			rr.Cells = append(rr.Cells, resultCell{
				Style: template.CSS(render.CellStyle(row[name], col).String()), //nolint:gosec // G203: declarations come from the canvas author's own file
				Text:  render.FormatValue(row[name], col),
			})
		}
		data.Rows = append(data.Rows, rr)
	}

	if payload := export.BuildChartPayload(res); payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			data.ChartJSON = template.JS(raw) //nolint:gosec // G203: payload is our own marshaled JSON
		}
	}

	return data
}

var pageTemplates = template.Must(template.New("workbench").Parse(headerHTML + indexHTML + canvasHTML + resultHTML))

const headerHTML = `{{define "header"}}<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} - QueryCanvas</title>
<link rel="stylesheet" href="/static/workbench.css">
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<script src="/static/workbench.js" defer></script>
</head>
<body>
<header class="topbar">
<a class="brand" href="/">QueryCanvas</a>
<form class="profile-form" method="post" action="/profile">
<input type="hidden" name="back" value="{{.Path}}">
<label for="profile-select">Profile</label>
<select id="profile-select" name="profile" onchange="this.form.submit()">
{{range .Profiles}}<option value="{{.}}"{{if eq . $.Profile}} selected{{end}}>{{.}}</option>
{{end}}</select>
</form>
</header>
{{end}}
{{define "footer"}}</body>
</html>
{{end}}`

const indexHTML = `{{define "index"}}{{template "header" .}}
<main>
<h1>Canvases</h1>
{{if .Canvases}}<ul class="canvas-list">
{{range .Canvases}}<li><a href="/canvas/{{.Name}}">{{.Name}}</a>{{if .Title}} <span class="muted">{{.Title}}</span>{{end}}</li>
{{end}}</ul>
{{else}}<p class="muted">No .sql files under {{.Dir}}.</p>
{{end}}{{if .Errors}}<section class="load-errors">
<h2>Load errors</h2>
<ul>
{{range .Errors}}<li><code>{{.Path}}</code>: {{.Err}}</li>
{{end}}</ul>
</section>
{{end}}</main>
{{template "footer" .}}{{end}}`

const canvasHTML = `{{define "canvas"}}{{template "header" .}}
<main>
<h1>{{.Title}}</h1>
<p class="meta"><code>{{.Name}}</code></p>
<details class="sql">
<summary>SQL</summary>
<pre><code>{{.SQL}}</code></pre>
</details>
<div class="live" data-init="@get('/canvas/{{.Name}}/events')">
{{template "result" .View}}</div>
</main>
{{template "footer" .}}{{end}}`

const resultHTML = `{{define "result"}}<div id="result">
{{if .Error}}<div class="error">
<strong>Query failed</strong>
<pre>{{.Error}}</pre>
</div>
{{else}}{{with .Result}}<p class="meta">{{.RowCount}} rows{{if .Truncated}} (truncated){{end}} in {{.Duration}} on {{.Profile}}</p>
<table>
{{if .HasWidths}}<colgroup>{{range .Widths}}<col{{if .}} style="{{.}}"{{end}}>{{end}}</colgroup>
{{end}}<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr{{if .Style}} style="{{.Style}}"{{end}}>{{range .Cells}}<td{{if .Style}} style="{{.Style}}"{{end}}>{{.Text}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
{{if .ChartJSON}}<div class="chart">
<canvas id="chart" width="640" height="280"></canvas>
<script type="application/json" id="chart-data">{{.ChartJSON}}</script>
</div>
{{end}}{{end}}{{end}}</div>{{end}}`
