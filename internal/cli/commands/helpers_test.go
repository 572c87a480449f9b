package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/okuyamashin/querycanvas/internal/config"

	// Commands resolve profiles against the adapter registry, which only
	// driver imports populate. One import covers the whole test binary.
	_ "github.com/okuyamashin/querycanvas/pkg/adapters/sqlite"
)

// loadProjectConfig points the package-level config at dir's
// querycanvas.yaml, the way the root command does before dispatch, so
// subcommands under test resolve canvases, profiles and the history
// store from that project.
func loadProjectConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig(filepath.Join(dir, "querycanvas.yaml"), nil)
	require.NoError(t, err)
	t.Cleanup(config.ResetConfig)
	return cfg
}

// executeCommand runs cmd with args and returns the captured stdout and
// stderr. Output buffers are not terminals, so renderers pick markdown
// unless QUERYCANVAS_OUTPUT says otherwise.
func executeCommand(cmd *cobra.Command, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
