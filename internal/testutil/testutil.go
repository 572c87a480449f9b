// Package testutil holds the shared slog plumbing for tests.
package testutil

import (
	"log/slog"
	"testing"
)

// tbWriter adapts testing.TB to io.Writer so slog output lands in the
// test log instead of stderr.
type tbWriter struct{ tb testing.TB }

func (w tbWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Log(string(p))
	return len(p), nil
}

// NewTestLogger returns a debug-level logger bound to the test's log,
// so workbench and runner diagnostics show up only on failure or -v.
func NewTestLogger(tb testing.TB) *slog.Logger {
	tb.Helper()
	return slog.New(slog.NewTextHandler(tbWriter{tb}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
