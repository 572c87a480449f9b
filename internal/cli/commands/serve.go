package commands

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okuyamashin/querycanvas/internal/workbench"
)

// ServeOptions holds the flag values for serve.
type ServeOptions struct {
	Dir       string
	Port      int
	NoBrowser bool
	Watch     bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local workbench",
		Long: `Start a local web server for browsing and running canvases.

The workbench provides:
- Canvas list with live reload on file changes
- Styled results honoring the display directives
- Chart rendering from @chart directives
- Profile switching per browser session`,
		Example: `  # Start on the configured port (default 8099)
  querycanvas serve

  # Custom port, no browser launch
  querycanvas serve --port 3000 --no-browser

  # Serve a different canvas directory
  querycanvas serve --dir ./reports`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "", "canvas directory to serve (default: configured canvases_dir)")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "port to serve on (default: 8099)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "don't auto-open the browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "reload browsers when canvas files change")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	wbCfg := cfg.GetWorkbenchConfig()

	// CLI flags override config file
	port := wbCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	autoOpen := wbCfg.AutoOpen
	if opts.NoBrowser {
		autoOpen = false
	}

	watch := wbCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	canvasDir := cfg.CanvasesDir
	if opts.Dir != "" {
		canvasDir = opts.Dir
	}
	if _, err := os.Stat(canvasDir); os.IsNotExist(err) {
		return fmt.Errorf("canvases directory does not exist: %s", canvasDir)
	}

	profile, err := cmdCtx.Profile(cmd)
	if err != nil {
		return err
	}

	run, cleanup := cmdCtx.NewRunner(0)
	defer cleanup()

	server := workbench.NewServer(workbench.Config{
		CanvasDir:     canvasDir,
		Profiles:      cfg.Profiles,
		Profile:       profile,
		Runner:        run,
		Port:          port,
		Watch:         watch,
		SessionSecret: os.Getenv("QUERYCANVAS_SESSION_SECRET"),
		Logger:        cmdCtx.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d", port)
	if autoOpen {
		go openBrowser(url)
	}

	r.Println(fmt.Sprintf("Serving canvases from %s on %s", canvasDir, url))
	r.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return
	}

	_ = cmd.Start()
}
