package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/okuyamashin/querycanvas/internal/canvas"
	"github.com/okuyamashin/querycanvas/internal/config"
	"github.com/okuyamashin/querycanvas/internal/export"
	"github.com/okuyamashin/querycanvas/internal/runner"
)

const (
	replPrompt             = "querycanvas> "
	replContinuationPrompt = "        ...> "
)

// REPLOptions holds the flag values for repl.
type REPLOptions struct {
	Format string
}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	opts := &REPLOptions{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive SQL shell",
		Long: `Start an interactive shell against a connection profile.

Statements end with a semicolon and run through the same read-only pipeline
as canvases: write statements are rejected before a connection opens, and
every executed statement lands in the run log. A statement may open with a
/** ... */ directive comment, which styles the result just as it would in
a canvas file.`,
		Example: `  # Shell against the default profile
  querycanvas repl

  # Against production, rendering results as markdown
  querycanvas repl --profile prod --format markdown`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Initial output format (default from config)")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return export.Formats(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// replSession carries the state the dot-commands mutate.
type replSession struct {
	cmdCtx  *CommandContext
	run     *runner.Runner
	profile *config.Profile
	format  string
	out     io.Writer
	errOut  io.Writer
}

func runRepl(cmd *cobra.Command, opts *REPLOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	profile, err := cmdCtx.Profile(cmd)
	if err != nil {
		return err
	}

	format := opts.Format
	if format == "" {
		format = cfg.OutputFormat
	}
	if _, err := export.For(format); err != nil {
		return err
	}

	run, cleanup := cmdCtx.NewRunner(0)
	defer cleanup()

	session := &replSession{
		cmdCtx:  cmdCtx,
		run:     run,
		profile: profile,
		format:  format,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}

	// REPL line history lives next to the run log, not in it.
	historyFile := filepath.Join(filepath.Dir(cfg.HistoryPath), "repl_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    session.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(session.out, "QueryCanvas REPL (profile: %s)\n", profile.Name)
	_, _ = fmt.Fprintln(session.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(session.out)

	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Dot-commands only start a statement, never continue one.
		if strings.HasPrefix(line, ".") && multiLineBuffer.Len() == 0 {
			if quit := session.dispatch(cmd.Context(), line); quit {
				break
			}
			continue
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt(replContinuationPrompt)
			continue
		}
		rl.SetPrompt(replPrompt)

		statement := strings.TrimSuffix(multiLineBuffer.String(), ";")
		multiLineBuffer.Reset()

		if res, err := session.run.RunSQL(cmd.Context(), session.profile, statement); err != nil {
			_, _ = fmt.Fprintf(session.errOut, "Error: %v\n", err)
		} else {
			session.render(res)
		}
	}

	return nil
}

func (s *replSession) render(res *runner.Result) {
	renderer, err := export.For(s.format)
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}
	if err := renderer.Render(s.out, res); err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}
	_, _ = fmt.Fprintln(s.out)
}

// dispatch handles one dot-command line. It returns true when the REPL
// should exit.
func (s *replSession) dispatch(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		s.printHelp()

	case ".tables":
		if err := s.listTables(ctx); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".profile":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(s.errOut, "Usage: .profile <name>\nAvailable: %s\n", strings.Join(s.cmdCtx.Cfg.ProfileNames(), ", "))
			return false
		}
		profile, err := s.cmdCtx.Cfg.ResolveProfile(parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		s.profile = profile
		_, _ = fmt.Fprintf(s.out, "Switched to profile %q (%s)\n", profile.Name, profile.Driver)

	case ".format":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(s.errOut, "Usage: .format <%s>\n", strings.Join(export.Formats(), "|"))
			return false
		}
		if _, err := export.For(parts[1]); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		s.format = parts[1]
		_, _ = fmt.Fprintf(s.out, "Output format set to %s\n", s.format)

	case ".run":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .run <canvas>")
			return false
		}
		if err := s.runCanvas(ctx, parts[1]); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".clear":
		_, _ = fmt.Fprint(s.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func (s *replSession) listTables(ctx context.Context) error {
	adp, cleanup, err := s.cmdCtx.OpenAdapter(ctx, s.profile)
	if err != nil {
		return err
	}
	defer cleanup()

	tables, err := adp.Tables(ctx)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		_, _ = fmt.Fprintln(s.out, "(no tables)")
		return nil
	}
	for _, t := range tables {
		name := t.Name
		if t.Schema != "" {
			name = t.Schema + "." + t.Name
		}
		if t.Type == "view" {
			_, _ = fmt.Fprintf(s.out, "%s (view)\n", name)
		} else {
			_, _ = fmt.Fprintln(s.out, name)
		}
	}
	return nil
}

func (s *replSession) runCanvas(ctx context.Context, ref string) error {
	c, err := canvas.Resolve(s.cmdCtx.Cfg.CanvasesDir, ref)
	if err != nil {
		return err
	}
	res, err := s.run.Run(ctx, s.profile, c)
	if err != nil {
		return err
	}
	s.render(res)
	return nil
}

func (s *replSession) printHelp() {
	help := `
Commands:
  .help             Show this help message
  .tables           List tables and views in the current profile
  .profile <name>   Switch the connection profile
  .format <fmt>     Switch the output format (` + strings.Join(export.Formats(), ", ") + `)
  .run <canvas>     Run a canvas from the canvases directory
  .clear            Clear the screen
  .quit / .exit     Exit

Tips:
  - SQL statements must end with a semicolon (;)
  - Statements may open with a /** @column ... */ directive comment
  - Only read statements run; writes are rejected before connecting
`
	_, _ = fmt.Fprintln(s.out, help)
}

// sqlKeywords seeds the completer. Completion is a convenience, not a
// parser; common clause openers are enough.
var sqlKeywords = []string{
	"SELECT", "FROM", "WHERE", "GROUP", "ORDER", "BY", "LIMIT", "OFFSET",
	"JOIN", "LEFT", "RIGHT", "INNER", "OUTER", "ON", "AS", "AND", "OR",
	"NOT", "IN", "LIKE", "BETWEEN", "DISTINCT", "HAVING", "UNION", "WITH",
	"CASE", "WHEN", "THEN", "ELSE", "END",
}

func (s *replSession) completer() *readline.PrefixCompleter {
	profileItems := make([]readline.PrefixCompleterInterface, 0)
	for _, name := range s.cmdCtx.Cfg.ProfileNames() {
		profileItems = append(profileItems, readline.PcItem(name))
	}

	formatItems := make([]readline.PrefixCompleterInterface, 0)
	for _, f := range export.Formats() {
		formatItems = append(formatItems, readline.PcItem(f))
	}

	// Canvas names come from the directory listing; no connection needed.
	canvasItems := make([]readline.PrefixCompleterInterface, 0)
	if result, err := canvas.Discover(s.cmdCtx.Cfg.CanvasesDir); err == nil {
		for _, c := range result.Canvases {
			canvasItems = append(canvasItems, readline.PcItem(c.Name))
		}
	}

	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".profile", profileItems...),
		readline.PcItem(".format", formatItems...),
		readline.PcItem(".run", canvasItems...),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	}
	for _, kw := range sqlKeywords {
		items = append(items, readline.PcItem(kw))
	}
	return readline.NewPrefixCompleter(items...)
}
