// Package runner executes canvases against a profile's database.
//
// Run is the one path query text takes to a connection: the read-only
// guard, adapter connect, session read-only enforcement, the timed query
// itself, and the history record all happen here, in that order.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/okuyamashin/querycanvas/internal/canvas"
	"github.com/okuyamashin/querycanvas/internal/config"
	"github.com/okuyamashin/querycanvas/internal/history"
	"github.com/okuyamashin/querycanvas/pkg/adapter"
	"github.com/okuyamashin/querycanvas/pkg/directive"
	"github.com/okuyamashin/querycanvas/pkg/sqlguard"
)

// DefaultTimeout caps a single run when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Recorder receives one history entry per executed run. Recording is
// best-effort; a recorder error never fails the run.
type Recorder interface {
	Record(e history.Entry) error
}

var _ Recorder = (*history.Store)(nil)

// Config holds runner settings.
type Config struct {
	// Timeout caps each run; zero means DefaultTimeout.
	Timeout time.Duration
	// Recorder receives history entries; nil disables recording.
	Recorder Recorder
	Logger   *slog.Logger
}

// Runner executes canvases.
type Runner struct {
	timeout  time.Duration
	recorder Recorder
	logger   *slog.Logger
}

// New creates a runner from the config.
func New(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{timeout: timeout, recorder: cfg.Recorder, logger: logger}
}

// Result is one executed run with everything a renderer needs.
type Result struct {
	adapter.ResultSet

	// Options are the canvas display directives (never nil).
	Options *directive.Options

	Profile   string
	Canvas    string
	Title     string
	SQL       string
	StartedAt time.Time
	Duration  time.Duration
}

// Run executes one canvas against the profile's database.
//
// Statements rejected by the guard never reach a connection and are not
// recorded; executed statements are recorded whether they succeed or not.
func (r *Runner) Run(ctx context.Context, profile *config.Profile, c *canvas.Canvas) (*Result, error) {
	if err := sqlguard.Check(c.SQL); err != nil {
		return nil, err
	}

	adp, err := adapter.New(profile.AdapterConfig(), r.logger)
	if err != nil {
		return nil, err
	}
	if err := adp.Connect(ctx, profile.AdapterConfig()); err != nil {
		return nil, fmt.Errorf("failed to connect to profile %q: %w", profile.Name, err)
	}
	defer func() { _ = adp.Close() }()

	if err := adp.EnforceReadOnly(ctx); err != nil {
		return nil, fmt.Errorf("failed to enforce read-only session: %w", err)
	}

	r.logger.Debug("Executing canvas", "canvas", c.Name, "profile", profile.Name)

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	started := time.Now()
	rs, runErr := adp.Query(runCtx, c.SQL)
	elapsed := time.Since(started)

	r.record(profile.Name, c, rs, started, elapsed, runErr)

	if runErr != nil {
		return nil, fmt.Errorf("query failed: %w", runErr)
	}

	r.logger.Debug("Query completed",
		"rows", len(rs.Rows), "duration", elapsed, "truncated", rs.Truncated)

	opts := c.Options
	if opts == nil {
		opts = directive.Parse(c.SQL)
	}

	return &Result{
		ResultSet: *rs,
		Options:   opts,
		Profile:   profile.Name,
		Canvas:    c.Name,
		Title:     c.Title,
		SQL:       c.SQL,
		StartedAt: started,
		Duration:  elapsed,
	}, nil
}

// RunSQL executes an ad-hoc statement through the same pipeline. Used by
// the REPL and the workbench API; directives in the statement's comment
// apply as they would in a canvas file.
func (r *Runner) RunSQL(ctx context.Context, profile *config.Profile, sql string) (*Result, error) {
	return r.Run(ctx, profile, &canvas.Canvas{SQL: sql, Options: directive.Parse(sql)})
}

func (r *Runner) record(profileName string, c *canvas.Canvas, rs *adapter.ResultSet, started time.Time, elapsed time.Duration, runErr error) {
	if r.recorder == nil {
		return
	}

	e := history.Entry{
		StartedAt:  started.UTC(),
		Profile:    profileName,
		Canvas:     c.Name,
		SQL:        c.SQL,
		DurationMS: elapsed.Milliseconds(),
	}
	if rs != nil {
		e.RowCount = len(rs.Rows)
	}
	if runErr != nil {
		e.Error = runErr.Error()
	}

	if err := r.recorder.Record(e); err != nil {
		r.logger.Warn("Failed to record history entry", "error", err)
	}
}
