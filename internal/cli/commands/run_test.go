package commands

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okuyamashin/querycanvas/internal/cli/testutil"
	"github.com/okuyamashin/querycanvas/internal/history"
)

func TestRunCommand_CSV(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProjectConfig(t, dir)

	out, _, err := executeCommand(NewRunCommand(), "sales", "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, "header plus three data rows")
	assert.Equal(t, "day,region,amount", lines[0])
	// comma-formatted values must be quoted so the CSV stays parseable
	assert.Equal(t, `2025-06-01,east,"1,200"`, lines[1])
	assert.Equal(t, "2025-06-02,west,980", lines[2])
	assert.Equal(t, `2025-06-03,east,"1,430"`, lines[3])
}

func TestRunCommand_JSON(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProjectConfig(t, dir)

	out, _, err := executeCommand(NewRunCommand(), "sales", "--format", "json")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "1,200", rows[0]["amount"])
	assert.Equal(t, "east", rows[0]["region"])
	assert.Equal(t, "2025-06-02", rows[1]["day"])
}

func TestRunCommand_OutputFile(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProjectConfig(t, dir)

	target := filepath.Join(dir, "monthly.csv")
	out, _, err := executeCommand(NewRunCommand(), "sales", "--format", "csv", "--output", target)
	require.NoError(t, err)

	assert.Contains(t, out, "Wrote 3 rows to "+target)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"1,430"`)
}

func TestRunCommand_MaxRows(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProjectConfig(t, dir)

	out, _, err := executeCommand(NewRunCommand(), "sales", "--format", "csv", "--max-rows", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3, "header plus two data rows")
}

func TestRunCommand_RecordsHistory(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	cfg := loadProjectConfig(t, dir)

	_, _, err := executeCommand(NewRunCommand(), "sales", "--format", "csv")
	require.NoError(t, err)

	store, err := history.Open(cfg.HistoryPath, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	entries, err := store.List(history.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "local", entries[0].Profile)
	assert.Equal(t, "sales", entries[0].Canvas)
	assert.Equal(t, 3, entries[0].RowCount)
	assert.Empty(t, entries[0].Error)
}

// Guard-rejected statements never reach a connection, so they must not
// show up in the run log either.
func TestRunCommand_GuardViolation(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	cfg := loadProjectConfig(t, dir)

	bad := "UPDATE sales SET amount = 0"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "canvases", "bump.sql"), []byte(bad), 0644))

	_, _, err := executeCommand(NewRunCommand(), "bump")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only violation")

	store, err := history.Open(cfg.HistoryPath, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	count, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRunCommand_UnknownCanvas(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProjectConfig(t, dir)

	_, _, err := executeCommand(NewRunCommand(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `canvas "nope" not found`)
}

func TestRunCommand_UnknownFormat(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProjectConfig(t, dir)

	_, _, err := executeCommand(NewRunCommand(), "sales", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown output format "yaml"`)
}

func TestRunCommand_InteractiveNeedsTTY(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProjectConfig(t, dir)

	_, _, err := executeCommand(NewRunCommand(), "sales", "--interactive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--interactive requires a terminal")
}
