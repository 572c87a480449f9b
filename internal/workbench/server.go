// Package workbench provides a local web server for browsing and live-running
// canvases. Result pages re-render over SSE whenever a canvas file changes.
package workbench

import (
	"context"
	"crypto/rand"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/okuyamashin/querycanvas/internal/config"
	"github.com/okuyamashin/querycanvas/internal/runner"
)

// Config holds settings for the workbench server.
type Config struct {
	// CanvasDir is the directory watched and served.
	CanvasDir string
	// Profiles are all configured profiles, shown in the selector.
	Profiles map[string]*config.Profile
	// Profile is the initial selection for browsers without a session.
	Profile *config.Profile
	// Runner executes the canvases.
	Runner *runner.Runner
	Port   int
	Watch  bool
	// SessionSecret signs the session cookie. When empty a random
	// per-process secret is used and sessions reset on restart.
	SessionSecret string
	Logger        *slog.Logger
}

// Server is the workbench HTTP server.
type Server struct {
	canvasDir    string
	profiles     map[string]*config.Profile
	profile      *config.Profile
	run          *runner.Runner
	port         int
	watch        bool
	sessionStore *sessions.CookieStore
	notifier     *Notifier
	logger       *slog.Logger
}

// NewServer creates a workbench server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
	}
	sessionStore := sessions.NewCookieStore(secret)
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		canvasDir:    cfg.CanvasDir,
		profiles:     cfg.Profiles,
		profile:      cfg.Profile,
		run:          cfg.Runner,
		port:         cfg.Port,
		watch:        cfg.Watch,
		sessionStore: sessionStore,
		notifier:     NewNotifier(),
		logger:       logger,
	}
}

// Serve starts the workbench server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting workbench", "addr", fmt.Sprintf("http://localhost:%d", s.port), "canvases", s.canvasDir)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down workbench...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *Notifier {
	return s.notifier
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Handle("/static/*", staticHandler())
	r.Get("/", s.handleIndex)
	r.Post("/profile", s.handleSelectProfile)
	r.Get("/canvas/*", s.handleCanvas)
	r.Get("/api/canvas/*", s.handleCanvasJSON)

	return r
}

// watchFiles watches the canvas directory and pings subscribers when a
// .sql file is written or created.
func (s *Server) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, s.canvasDir); err != nil {
		s.logger.Error("failed to watch canvas directory", "error", err)
		// Don't fail - continue without watching
	}

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if filepath.Ext(event.Name) != ".sql" {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("canvas changed", "file", event.Name)
				s.notifier.Broadcast()
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
