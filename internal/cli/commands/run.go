package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/okuyamashin/querycanvas/internal/canvas"
	"github.com/okuyamashin/querycanvas/internal/cli/browse"
	"github.com/okuyamashin/querycanvas/internal/export"
	"github.com/spf13/cobra"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Format      string
	Output      string
	MaxRows     int
	Timeout     time.Duration
	Interactive bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <canvas>",
		Short: "Run a canvas and render its result",
		Long: `Execute a canvas against a connection profile and render the result.

The canvas may be referenced by name (relative to the canvases directory,
with or without .sql) or by direct file path. Display directives in the
canvas control number formatting, conditional styling, and the chart
payload.

Every statement passes the read-only guard before a connection is opened,
and every executed run is recorded in the history database.`,
		Example: `  # Run a canvas by name with the default profile
  querycanvas run sales/monthly

  # Run against a specific profile
  querycanvas run sales/monthly --profile prod_replica

  # Export as CSV to a file
  querycanvas run sales/monthly --format csv --output monthly.csv

  # Browse the result interactively
  querycanvas run sales/monthly --interactive`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCanvasNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, csv, tsv, json, markdown, html, chartjson")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write the rendered result to a file")
	cmd.Flags().IntVar(&opts.MaxRows, "max-rows", 0, "Row cap for the result (default from config)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Per-run timeout (default from config)")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Browse the result in a TUI")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return export.Formats(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runRun(cmd *cobra.Command, ref string, opts *RunOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	profile, err := cmdCtx.Profile(cmd)
	if err != nil {
		return err
	}

	c, err := canvas.Resolve(cfg.CanvasesDir, ref)
	if err != nil {
		return err
	}

	if opts.MaxRows > 0 {
		// Copy so the override stays local to this invocation.
		p := *profile
		p.MaxRows = opts.MaxRows
		profile = &p
	}

	run, cleanup := cmdCtx.NewRunner(opts.Timeout)
	defer cleanup()

	res, err := run.Run(cmd.Context(), profile, c)
	if err != nil {
		return err
	}

	if opts.Interactive {
		if !cmdCtx.Renderer.IsTTY() {
			return fmt.Errorf("--interactive requires a terminal")
		}
		return browse.Run(res)
	}

	format := opts.Format
	if format == "" {
		format = cfg.OutputFormat
	}
	renderer, err := export.For(format)
	if err != nil {
		return err
	}

	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		if err := renderer.Render(f, res); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		cmdCtx.Renderer.Success(fmt.Sprintf("Wrote %d rows to %s", len(res.Rows), opts.Output))
		return nil
	}

	return renderer.Render(cmd.OutOrStdout(), res)
}

// completeCanvasNames completes canvas name arguments from the
// configured canvases directory.
func completeCanvasNames(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	result, err := canvas.Discover(getConfig().CanvasesDir)
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}
	names := make([]string, 0, len(result.Canvases))
	for _, c := range result.Canvases {
		names = append(names, c.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
