// Package testutil provides helpers for CLI command tests.
package testutil

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/okuyamashin/querycanvas/internal/cli/output"
)

// SetupTestProject creates a project directory with a config file, a few
// canvases and a seeded SQLite database, and returns its path. The config
// names a single profile "local" pointing at the database.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "sales.db")
	seedSalesDB(t, dbPath)

	configYAML := `canvases_dir: canvases
default_profile: local

profiles:
  local:
    driver: sqlite
    database: "` + dbPath + `"
`
	if err := os.WriteFile(filepath.Join(tmpDir, "querycanvas.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if err := os.MkdirAll(filepath.Join(tmpDir, "canvases", "reports"), 0755); err != nil {
		t.Fatalf("failed to create canvases dir: %v", err)
	}

	salesCanvas := `/**
 * @column amount type=int format=number align=right comma=true
 * @row region=="west":bg=#eef6ff
 * @chart type=bar x=day y=amount
 */
SELECT day, region, amount FROM sales ORDER BY day`
	if err := os.WriteFile(filepath.Join(tmpDir, "canvases", "sales.sql"), []byte(salesCanvas), 0644); err != nil {
		t.Fatalf("failed to write sales.sql: %v", err)
	}

	countCanvas := `-- name: Row Count
SELECT COUNT(*) AS n FROM sales`
	if err := os.WriteFile(filepath.Join(tmpDir, "canvases", "reports", "count.sql"), []byte(countCanvas), 0644); err != nil {
		t.Fatalf("failed to write count.sql: %v", err)
	}

	return tmpDir
}

// seedSalesDB creates and fills the sales table the test canvases query.
func seedSalesDB(t *testing.T, path string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`
		CREATE TABLE sales (day TEXT, region TEXT, amount INTEGER);
		INSERT INTO sales VALUES
			('2025-06-01', 'east', 1200),
			('2025-06-02', 'west', 980),
			('2025-06-03', 'east', 1430);
	`)
	if err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a test renderer with the given mode and TTY
// state. Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the captured stdout as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the captured stderr as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
