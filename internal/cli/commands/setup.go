package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/okuyamashin/querycanvas/internal/cli/output"
	"github.com/okuyamashin/querycanvas/internal/config"
	"github.com/okuyamashin/querycanvas/internal/history"
	"github.com/okuyamashin/querycanvas/internal/runner"
	"github.com/okuyamashin/querycanvas/pkg/adapter"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the command's
// environment: the loaded config (or an env-var fallback), the context
// logger, and a renderer on the command's writers.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Profile resolves the connection profile selected by --profile or the
// configured default.
func (c *CommandContext) Profile(cmd *cobra.Command) (*config.Profile, error) {
	name, _ := cmd.Flags().GetString("profile")
	return c.Cfg.ResolveProfile(name)
}

// OpenHistory opens the run log store, creating its directory first.
func (c *CommandContext) OpenHistory() (*history.Store, error) {
	dir := filepath.Dir(c.Cfg.HistoryPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	return history.Open(c.Cfg.HistoryPath, c.Logger)
}

// OpenAdapter connects to the profile's database with the read-only
// session setting applied. The returned cleanup closes the connection.
func (c *CommandContext) OpenAdapter(ctx context.Context, profile *config.Profile) (adapter.Adapter, func(), error) {
	adp, err := adapter.New(profile.AdapterConfig(), c.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := adp.Connect(ctx, profile.AdapterConfig()); err != nil {
		return nil, nil, fmt.Errorf("failed to connect with profile %q: %w", profile.Name, err)
	}
	cleanup := func() { _ = adp.Close() }
	if err := adp.EnforceReadOnly(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to enforce read-only session: %w", err)
	}
	return adp, cleanup, nil
}

// NewRunner builds a runner wired to the run log. A zero timeout means
// the configured query_timeout. An unopenable history store downgrades
// to a warning; queries still run, just unrecorded.
// The returned cleanup must be called (typically via defer).
func (c *CommandContext) NewRunner(timeout time.Duration) (*runner.Runner, func()) {
	if timeout <= 0 {
		timeout = time.Duration(c.Cfg.QueryTimeout) * time.Second
	}

	var rec runner.Recorder
	cleanup := func() {}
	store, err := c.OpenHistory()
	if err != nil {
		c.Logger.Warn("History recording disabled", "error", err)
	} else {
		rec = store
		cleanup = func() { _ = store.Close() }
	}

	run := runner.New(runner.Config{
		Timeout:  timeout,
		Recorder: rec,
		Logger:   c.Logger,
	})
	return run, cleanup
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back
// to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	canvasesDir := getEnvOrDefault("QUERYCANVAS_CANVASES_DIR", config.DefaultCanvasesDir)
	historyPath := getEnvOrDefault("QUERYCANVAS_HISTORY_PATH", config.DefaultHistoryPath)
	verbose := os.Getenv("QUERYCANVAS_VERBOSE") == "true"
	outputFormat := getEnvOrDefault("QUERYCANVAS_OUTPUT", config.DefaultOutput)

	return &config.Config{
		CanvasesDir:  canvasesDir,
		HistoryPath:  historyPath,
		QueryTimeout: config.DefaultQueryTimeout,
		MaxRows:      config.DefaultMaxRows,
		Verbose:      verbose,
		OutputFormat: outputFormat,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
