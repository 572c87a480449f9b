package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/okuyamashin/querycanvas/internal/cli/output"
	"github.com/okuyamashin/querycanvas/internal/history"
)

// NewHistoryCommand creates the history command group.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the local run log",
		Long: `Inspect the run log kept in the project's .querycanvas directory.

Every canvas run is recorded with its SQL, row count, duration and outcome.
The log is local to the project and never leaves the machine.`,
	}

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistorySearchCommand())
	cmd.AddCommand(newHistoryPruneCommand())

	return cmd
}

// HistoryListOptions holds the flag values for history list. The profile
// filter rides on the persistent --profile flag.
type HistoryListOptions struct {
	Canvas string
	Limit  uint64
}

func newHistoryListCommand() *cobra.Command {
	opts := &HistoryListOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recorded runs, newest first",
		Example: `  # Last 50 runs
  querycanvas history list

  # Runs of one canvas against production
  querycanvas history list --canvas sales/monthly --profile prod --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Canvas, "canvas", "", "only runs of this canvas")
	cmd.Flags().Uint64Var(&opts.Limit, "limit", 0, fmt.Sprintf("maximum entries to show (default %d)", history.DefaultListLimit))

	return cmd
}

func runHistoryList(cmd *cobra.Command, opts *HistoryListOptions) error {
	cmdCtx := NewCommandContext(cmd)

	store, err := cmdCtx.OpenHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	profileFilter, _ := cmd.Flags().GetString("profile")
	entries, err := store.List(history.Filter{
		Profile: profileFilter,
		Canvas:  opts.Canvas,
		Limit:   opts.Limit,
	})
	if err != nil {
		return err
	}

	total, err := store.Count()
	if err != nil {
		return err
	}

	return renderHistory(cmdCtx.Renderer, entries, total)
}

func newHistorySearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search runs by SQL text or canvas name",
		Example: `  # Find every run that touched the orders table
  querycanvas history search orders`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistorySearch(cmd, args[0])
		},
	}
	return cmd
}

func runHistorySearch(cmd *cobra.Command, term string) error {
	cmdCtx := NewCommandContext(cmd)

	store, err := cmdCtx.OpenHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	entries, err := store.Search(term)
	if err != nil {
		return err
	}

	if len(entries) == 0 && cmdCtx.Renderer.EffectiveMode() != output.ModeJSON {
		cmdCtx.Renderer.Muted(fmt.Sprintf("No runs matching %q", term))
		return nil
	}
	return renderHistory(cmdCtx.Renderer, entries, len(entries))
}

// HistoryPruneOptions holds the flag values for history prune.
type HistoryPruneOptions struct {
	Keep int
}

func newHistoryPruneCommand() *cobra.Command {
	opts := &HistoryPruneOptions{}

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old runs, keeping the newest",
		Example: `  # Keep the newest 100 runs
  querycanvas history prune --keep 100

  # Wipe the log
  querycanvas history prune --keep 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryPrune(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Keep, "keep", 100, "number of newest runs to keep")

	return cmd
}

func runHistoryPrune(cmd *cobra.Command, opts *HistoryPruneOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	store, err := cmdCtx.OpenHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	removed, err := store.Prune(opts.Keep)
	if err != nil {
		return err
	}

	if removed == 0 {
		r.Muted("Nothing to prune")
		return nil
	}
	r.Success(fmt.Sprintf("Removed %d runs, kept the newest %d", removed, opts.Keep))
	return nil
}

// historyInfo is the serializable view of one run log entry.
type historyInfo struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Profile   string    `json:"profile"`
	Canvas    string    `json:"canvas"`
	SQL       string    `json:"sql"`
	Rows      int       `json:"rows"`
	Duration  string    `json:"duration"`
	Error     string    `json:"error,omitempty"`
}

func renderHistory(r *output.Renderer, entries []history.Entry, total int) error {
	infos := make([]historyInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, historyInfo{
			ID:        e.ID,
			StartedAt: e.StartedAt,
			Profile:   e.Profile,
			Canvas:    e.Canvas,
			SQL:       e.SQL,
			Rows:      e.RowCount,
			Duration:  (time.Duration(e.DurationMS) * time.Millisecond).String(),
			Error:     e.Error,
		})
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(infos)
	case output.ModeMarkdown:
		r.Println("| Started | Profile | Canvas | Rows | Duration | Status |")
		r.Println("|---|---|---|---:|---:|---|")
		for _, info := range infos {
			r.Println(fmt.Sprintf("| %s | %s | %s | %d | %s | %s |",
				info.StartedAt.Local().Format("2006-01-02 15:04:05"),
				info.Profile, info.Canvas, info.Rows, info.Duration, entryStatus(info.Error)))
		}
	default:
		if len(infos) == 0 {
			r.Muted("No runs recorded yet")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Started", "Profile", "Canvas", "Rows", "Duration", "Status"})
		for _, info := range infos {
			status := entryStatus(info.Error)
			if info.Error != "" {
				status = oneline(info.Error, 40)
			}
			t.AppendRow(table.Row{
				info.StartedAt.Local().Format("2006-01-02 15:04:05"),
				info.Profile,
				info.Canvas,
				info.Rows,
				info.Duration,
				status,
			})
		}
		t.Render()
		r.Muted(fmt.Sprintf("%d of %d recorded runs", len(infos), total))
	}
	return nil
}

func entryStatus(errText string) string {
	if errText != "" {
		return "error"
	}
	return "ok"
}

// oneline collapses whitespace and truncates for table cells.
func oneline(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if max > 0 && len(s) > max {
		return s[:max-1] + "…"
	}
	return s
}
