package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okuyamashin/querycanvas/internal/cli/testutil"
	"github.com/okuyamashin/querycanvas/internal/config"

	_ "github.com/okuyamashin/querycanvas/pkg/adapters/postgres"
)

func TestProfilesListCommand(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProjectConfig(t, dir)

	out, _, err := executeCommand(NewProfilesCommand(), "list")
	require.NoError(t, err)

	assert.Contains(t, out, "# Profiles")
	assert.Contains(t, out, "- **local**: sqlite,")
	assert.Contains(t, out, "(default)")
}

func TestProfilesListCommand_JSON(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	t.Setenv("QUERYCANVAS_OUTPUT", "json")
	loadProjectConfig(t, dir)

	out, _, err := executeCommand(NewProfilesCommand(), "list")
	require.NoError(t, err)

	var infos []struct {
		Name    string `json:"name"`
		Driver  string `json:"driver"`
		Target  string `json:"target"`
		Default bool   `json:"default"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "local", infos[0].Name)
	assert.Equal(t, "sqlite", infos[0].Driver)
	assert.True(t, infos[0].Default)

	// listing must stay safe to share
	assert.NotContains(t, out, "password")
}

func TestProfilesAddCommand(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProjectConfig(t, dir)

	out, errOut, err := executeCommand(NewProfilesCommand(),
		"add", "prod",
		"--driver", "postgres",
		"--host", "db.example.com",
		"--user", "reporter",
		"--password", "${PROD_DB_PASSWORD}",
		"--database", "sales",
	)
	require.NoError(t, err)
	assert.Contains(t, out, `Added profile "prod"`)
	assert.NotContains(t, errOut, "plain text", "placeholder passwords should not warn")

	fileCfg, err := config.LoadFile(filepath.Join(dir, "querycanvas.yaml"))
	require.NoError(t, err)
	require.Contains(t, fileCfg.Profiles, "prod")
	p := fileCfg.Profiles["prod"]
	assert.Equal(t, "postgres", p.Driver)
	assert.Equal(t, "db.example.com", p.Host)
	// the placeholder is stored literally and expanded at connect time
	assert.Equal(t, "${PROD_DB_PASSWORD}", p.Password)
	// an existing default is left alone
	assert.Equal(t, "local", fileCfg.DefaultProfile)
	require.Contains(t, fileCfg.Profiles, "local", "existing profiles survive the save")
}

func TestProfilesAddCommand_PlainPasswordWarns(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProjectConfig(t, dir)

	_, errOut, err := executeCommand(NewProfilesCommand(),
		"add", "staging",
		"--driver", "postgres",
		"--host", "staging.internal",
		"--password", "hunter2",
	)
	require.NoError(t, err)
	assert.Contains(t, errOut, "plain text")
}

func TestProfilesAddCommand_FirstBecomesDefault(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "querycanvas.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("canvases_dir: canvases\n"), 0644))
	loadProjectConfig(t, dir)

	out, _, err := executeCommand(NewProfilesCommand(),
		"add", "local", "--driver", "sqlite", "--database", "./dev.db")
	require.NoError(t, err)
	assert.Contains(t, out, "Set as default profile")

	fileCfg, err := config.LoadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "local", fileCfg.DefaultProfile)
}

func TestProfilesAddCommand_Duplicate(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProjectConfig(t, dir)

	_, _, err := executeCommand(NewProfilesCommand(),
		"add", "local", "--driver", "sqlite")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `profile "local" already exists`)
}

func TestProfilesAddCommand_UnknownDriver(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProjectConfig(t, dir)

	_, _, err := executeCommand(NewProfilesCommand(),
		"add", "warehouse", "--driver", "oracle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown driver "oracle"`)
}

func TestProfilesRemoveCommand(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProjectConfig(t, dir)

	out, _, err := executeCommand(NewProfilesCommand(), "remove", "local")
	require.NoError(t, err)
	assert.Contains(t, out, `Removed profile "local"`)

	fileCfg, err := config.LoadFile(filepath.Join(dir, "querycanvas.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, fileCfg.Profiles, "local")
	// the default pointed at the removed profile, so it is cleared
	assert.Empty(t, fileCfg.DefaultProfile)
}

func TestProfilesRemoveCommand_Unknown(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProjectConfig(t, dir)

	_, _, err := executeCommand(NewProfilesCommand(), "remove", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown profile "nope"`)
	assert.Contains(t, err.Error(), "Available profiles")
}

func TestProfilesTestCommand(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProjectConfig(t, dir)

	out, _, err := executeCommand(NewProfilesCommand(), "test")
	require.NoError(t, err)
	assert.Contains(t, out, "- local: ok")
	assert.Contains(t, out, "read-only session")
}

func TestProfilesTestCommand_UnknownProfile(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadProjectConfig(t, dir)

	_, _, err := executeCommand(NewProfilesCommand(), "test", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown profile "nope"`)
}
