package workbench

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchFiles_BroadcastsOnCanvasWrite(t *testing.T) {
	s := setupTestServer(t, map[string]string{"sales.sql": salesCanvas})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.watchFiles(ctx) }()

	// Give the watcher a moment to register the directory
	time.Sleep(100 * time.Millisecond)

	updates := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(updates)

	path := filepath.Join(s.canvasDir, "sales.sql")
	require.NoError(t, os.WriteFile(path, []byte(salesCanvas+"-- touched\n"), 0o600))

	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatal("no broadcast after canvas write")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatchFiles_IgnoresOtherExtensions(t *testing.T) {
	s := setupTestServer(t, map[string]string{"sales.sql": salesCanvas})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.watchFiles(ctx) }()

	time.Sleep(100 * time.Millisecond)

	updates := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(updates)

	path := filepath.Join(s.canvasDir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# scratch\n"), 0o600))

	select {
	case <-updates:
		t.Fatal("non-sql write should not broadcast")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}
