package workbench

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/okuyamashin/querycanvas/internal/canvas"
	"github.com/okuyamashin/querycanvas/internal/config"
	"github.com/okuyamashin/querycanvas/internal/export"
	"github.com/okuyamashin/querycanvas/pkg/sqlguard"
)

const sessionName = "querycanvas"

// profileFor returns the profile selected in the browser session, falling
// back to the server's initial profile.
func (s *Server) profileFor(r *http.Request) *config.Profile {
	session, _ := s.sessionStore.Get(r, sessionName)
	if name, ok := session.Values["profile"].(string); ok {
		if p, ok := s.profiles[name]; ok {
			return p
		}
	}
	return s.profile
}

func (s *Server) profileNames() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// handleIndex renders the canvas list.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	result, err := canvas.Discover(s.canvasDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := indexData{
		pageData: s.pageDataFor(r, "Canvases", "/"),
		Dir:      s.canvasDir,
		Errors:   result.Errors,
	}
	for _, c := range result.Canvases {
		data.Canvases = append(data.Canvases, canvasItemFor(c))
	}

	s.renderPage(w, "index", data)
}

// handleSelectProfile stores the chosen profile in the session cookie and
// redirects back to the page the form was on.
func (s *Server) handleSelectProfile(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("profile")
	if _, ok := s.profiles[name]; !ok {
		http.Error(w, "unknown profile "+name, http.StatusBadRequest)
		return
	}

	session, _ := s.sessionStore.Get(r, sessionName)
	session.Values["profile"] = name
	if err := session.Save(r, w); err != nil {
		s.logger.Error("failed to save session", "error", err)
	}

	// Only same-site paths; "//host" would leave the workbench.
	back := r.FormValue("back")
	if !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") {
		back = "/"
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// handleCanvas serves both the result page and its SSE stream. Canvas
// names may contain slashes, so both share one wildcard route and the
// /events suffix picks the stream.
func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "*")
	if name, ok := strings.CutSuffix(ref, "/events"); ok {
		s.handleCanvasEvents(w, r, name)
		return
	}
	s.handleCanvasPage(w, r, ref)
}

// handleCanvasPage runs the canvas once and renders the full result page.
// Run failures render into the result area; only an unknown canvas is a
// hard error.
func (s *Server) handleCanvasPage(w http.ResponseWriter, r *http.Request, ref string) {
	c, err := canvas.Resolve(s.canvasDir, ref)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	profile := s.profileFor(r)
	data := canvasData{
		pageData: s.pageDataFor(r, c.Title, "/canvas/"+c.Name),
		Name:     c.Name,
		SQL:      c.SQL,
	}

	res, err := s.run.Run(r.Context(), profile, c)
	if err != nil {
		data.View = resultView{Error: err.Error()}
	} else {
		data.View = resultView{Result: buildResultData(res)}
	}

	s.renderPage(w, "canvas", data)
}

// handleCanvasEvents is the long-lived SSE stream for one result page.
// It sends nothing until a canvas file changes, then re-runs the canvas
// and patches the result fragment.
func (s *Server) handleCanvasEvents(w http.ResponseWriter, r *http.Request, name string) {
	sse := datastar.NewSSE(w, r)

	updates := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := s.patchResult(sse, r, name); err != nil {
				_ = sse.ConsoleError(err)
				// Keep the stream alive for the next change
			}
		}
	}
}

// patchResult re-runs the canvas and morphs the rendered fragment into
// the page. Run failures patch in as an error panel, not a dead stream.
func (s *Server) patchResult(sse *datastar.ServerSentEventGenerator, r *http.Request, name string) error {
	view := s.runCanvas(r, name)

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "result", view); err != nil {
		return err
	}
	return sse.PatchElements(buf.String())
}

func (s *Server) runCanvas(r *http.Request, name string) resultView {
	c, err := canvas.Resolve(s.canvasDir, name)
	if err != nil {
		return resultView{Error: err.Error()}
	}
	res, err := s.run.Run(r.Context(), s.profileFor(r), c)
	if err != nil {
		return resultView{Error: err.Error()}
	}
	return resultView{Result: buildResultData(res)}
}

// handleCanvasJSON serves one run as JSON for scripting against the
// workbench. The trailing .json is part of the route.
func (s *Server) handleCanvasJSON(w http.ResponseWriter, r *http.Request) {
	ref, ok := strings.CutSuffix(chi.URLParam(r, "*"), ".json")
	if !ok {
		http.NotFound(w, r)
		return
	}

	c, err := canvas.Resolve(s.canvasDir, ref)
	if err != nil {
		s.writeJSONError(w, http.StatusNotFound, err)
		return
	}

	res, err := s.run.Run(r.Context(), s.profileFor(r), c)
	if err != nil {
		status := http.StatusInternalServerError
		var violation *sqlguard.ViolationError
		if errors.As(err, &violation) {
			status = http.StatusBadRequest
		}
		s.writeJSONError(w, status, err)
		return
	}

	payload := apiResult{
		Canvas:     res.Canvas,
		Title:      res.Title,
		Profile:    res.Profile,
		Columns:    res.Columns,
		Rows:       res.Rows,
		RowCount:   len(res.Rows),
		Truncated:  res.Truncated,
		DurationMS: res.Duration.Milliseconds(),
		Chart:      export.BuildChartPayload(res),
	}
	s.writeJSON(w, http.StatusOK, payload)
}

// apiResult is the JSON shape served by /api/canvas/{name}.json.
type apiResult struct {
	Canvas     string               `json:"canvas"`
	Title      string               `json:"title"`
	Profile    string               `json:"profile"`
	Columns    []string             `json:"columns"`
	Rows       []map[string]any     `json:"rows"`
	RowCount   int                  `json:"row_count"`
	Truncated  bool                 `json:"truncated"`
	DurationMS int64                `json:"duration_ms"`
	Chart      *export.ChartPayload `json:"chart,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
