package canvas

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLoad_WithDirectives tests that a canvas keeps its SQL and parses
// the directive comment.
func TestLoad_WithDirectives(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sales.sql")
	content := `/**
@column amount decimal=0 align=right
@chart type=bar x=region y=amount
*/
SELECT region, amount FROM sales`
	os.WriteFile(path, []byte(content), 0644)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if c.SQL != content {
		t.Error("Expected SQL to keep the directive comment")
	}
	if c.Title != "sales" {
		t.Errorf("Expected title 'sales', got %q", c.Title)
	}
	if c.Options == nil {
		t.Fatal("Expected non-nil options")
	}
	col, ok := c.Options.Columns["amount"]
	if !ok {
		t.Fatal("Expected column options for 'amount'")
	}
	if col.Align != "right" {
		t.Errorf("Expected align 'right', got %q", col.Align)
	}
	if c.Options.Chart == nil {
		t.Error("Expected chart options")
	}
	if c.Hash == "" {
		t.Error("Expected non-empty hash")
	}
	if c.ModTime.IsZero() {
		t.Error("Expected mod time to be set")
	}
}

// TestLoad_TitleComment tests the -- name: override.
func TestLoad_TitleComment(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "q1.sql")
	os.WriteFile(path, []byte("-- name: Monthly Revenue\nSELECT 1"), 0644)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if c.Title != "Monthly Revenue" {
		t.Errorf("Expected title 'Monthly Revenue', got %q", c.Title)
	}
}

// TestLoad_PlainSQL tests that a file without directives still loads.
func TestLoad_PlainSQL(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "plain.sql")
	os.WriteFile(path, []byte("SELECT 1"), 0644)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if c.Options == nil {
		t.Fatal("Expected non-nil options even without directives")
	}
	if len(c.Options.Columns) != 0 {
		t.Errorf("Expected no column options, got %d", len(c.Options.Columns))
	}
}

// TestLoad_MissingFile tests the error for a nonexistent path.
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/missing.sql")
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read canvas") {
		t.Errorf("Unexpected error: %v", err)
	}
}

// TestLoad_HashChangesWithContent tests content revision tracking.
func TestLoad_HashChangesWithContent(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "q.sql")
	os.WriteFile(path, []byte("SELECT 1"), 0644)

	c1, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	os.WriteFile(path, []byte("SELECT 2"), 0644)
	c2, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if c1.Hash == c2.Hash {
		t.Error("Expected different hash for changed content")
	}
}

// TestDiscover tests walking a directory tree for canvases.
func TestDiscover(t *testing.T) {
	tmpDir := t.TempDir()
	os.MkdirAll(filepath.Join(tmpDir, "reports"), 0755)
	os.WriteFile(filepath.Join(tmpDir, "users.sql"), []byte("SELECT * FROM users"), 0644)
	os.WriteFile(filepath.Join(tmpDir, "reports", "sales.sql"), []byte("SELECT * FROM sales"), 0644)
	os.WriteFile(filepath.Join(tmpDir, "notes.md"), []byte("not a canvas"), 0644)

	result, err := Discover(tmpDir)
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	if len(result.Canvases) != 2 {
		t.Fatalf("Expected 2 canvases, got %d", len(result.Canvases))
	}
	if len(result.Errors) != 0 {
		t.Errorf("Expected no load errors, got %v", result.Errors)
	}

	// Sorted by name, nested paths slash-separated.
	if result.Canvases[0].Name != "reports/sales" {
		t.Errorf("Expected first canvas 'reports/sales', got %q", result.Canvases[0].Name)
	}
	if result.Canvases[1].Name != "users" {
		t.Errorf("Expected second canvas 'users', got %q", result.Canvases[1].Name)
	}
}

// TestDiscover_SkipsDirectories tests that a directory with a .sql name
// does not break the walk.
func TestDiscover_SkipsDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	os.MkdirAll(filepath.Join(tmpDir, "trap.sql"), 0755)
	os.WriteFile(filepath.Join(tmpDir, "real.sql"), []byte("SELECT 1"), 0644)

	result, err := Discover(tmpDir)
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if len(result.Canvases) != 1 {
		t.Fatalf("Expected 1 canvas, got %d", len(result.Canvases))
	}
	if result.Canvases[0].Name != "real" {
		t.Errorf("Expected canvas 'real', got %q", result.Canvases[0].Name)
	}
}

// TestDiscover_SkipsDotfiles tests that hidden files and directories
// stay out of the listing.
func TestDiscover_SkipsDotfiles(t *testing.T) {
	tmpDir := t.TempDir()
	os.MkdirAll(filepath.Join(tmpDir, ".backup"), 0755)
	os.WriteFile(filepath.Join(tmpDir, ".backup", "old.sql"), []byte("SELECT 1"), 0644)
	os.WriteFile(filepath.Join(tmpDir, ".draft.sql"), []byte("SELECT 1"), 0644)
	os.WriteFile(filepath.Join(tmpDir, "live.sql"), []byte("SELECT 1"), 0644)

	result, err := Discover(tmpDir)
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if len(result.Canvases) != 1 {
		t.Fatalf("Expected 1 canvas, got %d", len(result.Canvases))
	}
	if result.Canvases[0].Name != "live" {
		t.Errorf("Expected canvas 'live', got %q", result.Canvases[0].Name)
	}
}

// TestDiscover_MissingDir tests the error for a nonexistent directory.
func TestDiscover_MissingDir(t *testing.T) {
	_, err := Discover("/nonexistent/canvases")
	if err == nil {
		t.Fatal("Expected error for missing directory")
	}
	if !strings.Contains(err.Error(), "canvases directory not accessible") {
		t.Errorf("Unexpected error: %v", err)
	}
}

// TestResolve_ByName tests name lookup under the canvases dir.
func TestResolve_ByName(t *testing.T) {
	tmpDir := t.TempDir()
	os.MkdirAll(filepath.Join(tmpDir, "reports"), 0755)
	os.WriteFile(filepath.Join(tmpDir, "reports", "sales.sql"), []byte("SELECT 1"), 0644)

	c, err := Resolve(tmpDir, "reports/sales")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if c.Name != "reports/sales" {
		t.Errorf("Expected name 'reports/sales', got %q", c.Name)
	}

	// With extension works too.
	c, err = Resolve(tmpDir, "reports/sales.sql")
	if err != nil {
		t.Fatalf("Resolve() with extension failed: %v", err)
	}
	if c.Name != "reports/sales" {
		t.Errorf("Expected name 'reports/sales', got %q", c.Name)
	}
}

// TestResolve_DirectPath tests that a file path outside the canvases
// dir resolves as-is.
func TestResolve_DirectPath(t *testing.T) {
	tmpDir := t.TempDir()
	otherDir := t.TempDir()
	path := filepath.Join(otherDir, "adhoc.sql")
	os.WriteFile(path, []byte("SELECT 1"), 0644)

	c, err := Resolve(tmpDir, path)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if c.Name != "adhoc" {
		t.Errorf("Expected name 'adhoc', got %q", c.Name)
	}
}

// TestResolve_Unknown tests the not-found error and its listing.
func TestResolve_Unknown(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, "users.sql"), []byte("SELECT 1"), 0644)

	_, err := Resolve(tmpDir, "missing")
	if err == nil {
		t.Fatal("Expected error for unknown canvas")
	}

	var unknownErr *UnknownCanvasError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("Expected UnknownCanvasError, got %T", err)
	}
	if len(unknownErr.Available) != 1 || unknownErr.Available[0] != "users" {
		t.Errorf("Expected available [users], got %v", unknownErr.Available)
	}
	if !strings.Contains(err.Error(), "Available canvases") {
		t.Errorf("Expected listing in error, got: %v", err)
	}
}

// TestResolve_UnknownEmptyDir tests the hint when no canvases exist.
func TestResolve_UnknownEmptyDir(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Resolve(tmpDir, "anything")
	if err == nil {
		t.Fatal("Expected error for unknown canvas")
	}
	if !strings.Contains(err.Error(), "Hint:") {
		t.Errorf("Expected hint in error, got: %v", err)
	}
}
