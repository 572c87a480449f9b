package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okuyamashin/querycanvas/internal/cli/output"
	"github.com/okuyamashin/querycanvas/internal/config"
	"github.com/okuyamashin/querycanvas/pkg/adapter"
)

// NewProfilesCommand creates the profiles command group.
func NewProfilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage connection profiles",
		Long: `Manage the connection profiles defined in querycanvas.yaml.

Profiles name a database connection (driver, host, credentials) so canvases
can run against different environments without editing SQL. Passwords may be
written as ${VAR} placeholders that are expanded from the environment at
connect time, keeping secrets out of the config file.`,
	}

	cmd.AddCommand(newProfilesListCommand())
	cmd.AddCommand(newProfilesAddCommand())
	cmd.AddCommand(newProfilesRemoveCommand())
	cmd.AddCommand(newProfilesTestCommand())

	return cmd
}

// profileInfo is the serializable view of one profile. Credentials are
// deliberately absent: list output must be safe to paste into a ticket.
type profileInfo struct {
	Name    string `json:"name"`
	Driver  string `json:"driver"`
	Target  string `json:"target"`
	Default bool   `json:"default"`
}

func newProfilesListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured profiles",
		Example: `  # List profiles from the nearest querycanvas.yaml
  querycanvas profiles list

  # Machine-readable listing
  QUERYCANVAS_OUTPUT=json querycanvas profiles list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfilesList(cmd)
		},
	}
	return cmd
}

func runProfilesList(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	infos := make([]profileInfo, 0, len(cfg.Profiles))
	for _, name := range cfg.ProfileNames() {
		p := cfg.Profiles[name]
		infos = append(infos, profileInfo{
			Name:    name,
			Driver:  p.Driver,
			Target:  profileTarget(p),
			Default: name == cfg.DefaultProfile,
		})
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(infos)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Profiles"))
		r.Println("")
		if len(infos) == 0 {
			r.Println("No profiles configured.")
			return nil
		}
		for _, info := range infos {
			label := info.Target
			if info.Default {
				label += " (default)"
			}
			r.Println(output.FormatKeyValue(info.Name, fmt.Sprintf("%s, %s", info.Driver, label)))
		}
	default:
		if len(infos) == 0 {
			r.Warning("No profiles configured")
			r.Muted(fmt.Sprintf("Add one with: querycanvas profiles add <name> --driver <%s>", strings.Join(adapter.List(), "|")))
			return nil
		}
		r.Header(1, "Profiles")
		styles := r.Styles()
		for _, info := range infos {
			marker := "  "
			if info.Default {
				marker = styles.Success.Render("* ")
			}
			r.Println(fmt.Sprintf("%s%s  %s", marker, styles.Bold.Render(info.Name), styles.Muted.Render(fmt.Sprintf("%s  %s", info.Driver, info.Target))))
		}
		if cfg.DefaultProfile != "" {
			r.Println("")
			r.Muted("* default profile")
		}
	}
	return nil
}

// profileTarget renders where a profile points without leaking credentials.
func profileTarget(p *config.Profile) string {
	switch p.Driver {
	case "sqlite", "duckdb":
		if p.Database == "" {
			return ":memory:"
		}
		return p.Database
	default:
		host := p.Host
		if host == "" {
			host = "localhost"
		}
		if p.Port > 0 {
			host = fmt.Sprintf("%s:%d", host, p.Port)
		}
		if p.Database != "" {
			return host + "/" + p.Database
		}
		return host
	}
}

// ProfileAddOptions holds the flag values for profiles add.
type ProfileAddOptions struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Schema   string
	MaxRows  int
	Options  map[string]string
	Default  bool
}

func newProfilesAddCommand() *cobra.Command {
	opts := &ProfileAddOptions{}

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a connection profile",
		Long: `Add a connection profile to querycanvas.yaml.

The profile is appended to the config file as written: ${VAR} placeholders in
the password are stored literally and expanded from the environment each time
a connection opens. The first profile added becomes the default.`,
		Example: `  # Local SQLite file
  querycanvas profiles add local --driver sqlite --database ./dev.db

  # Production PostgreSQL with the password read from the environment
  querycanvas profiles add prod --driver postgres --host db.example.com \
    --user reporter --password '${PROD_DB_PASSWORD}' --database sales

  # MySQL with a DSN option
  querycanvas profiles add staging --driver mysql --host staging.internal \
    --user qc --database analytics --option tls=preferred`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfilesAdd(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Driver, "driver", "", fmt.Sprintf("database driver (%s)", strings.Join(adapter.List(), ", ")))
	cmd.Flags().StringVar(&opts.Host, "host", "", "database host")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "database port (0 uses the driver default)")
	cmd.Flags().StringVar(&opts.User, "user", "", "database user")
	cmd.Flags().StringVar(&opts.Password, "password", "", "database password, or a ${VAR} placeholder")
	cmd.Flags().StringVar(&opts.Database, "database", "", "database name, or file path for sqlite/duckdb")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "schema to scope metadata queries to")
	cmd.Flags().IntVar(&opts.MaxRows, "max-rows", 0, "per-profile row cap (0 inherits the global setting)")
	cmd.Flags().StringToStringVar(&opts.Options, "option", nil, "DSN option as key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.Default, "default", false, "set as the default profile")
	_ = cmd.MarkFlagRequired("driver")

	_ = cmd.RegisterFlagCompletionFunc("driver", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return adapter.List(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runProfilesAdd(cmd *cobra.Command, name string, opts *ProfileAddOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	path := profilesConfigPath(cmdCtx.Cfg)
	fileCfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	if _, exists := fileCfg.Profiles[name]; exists {
		return fmt.Errorf("profile %q already exists in %s", name, path)
	}

	p := &config.Profile{
		Name:     name,
		Driver:   strings.ToLower(opts.Driver),
		Host:     opts.Host,
		Port:     opts.Port,
		User:     opts.User,
		Password: opts.Password,
		Database: opts.Database,
		Schema:   opts.Schema,
		MaxRows:  opts.MaxRows,
		Options:  opts.Options,
	}
	if err := p.Validate(); err != nil {
		return err
	}

	if fileCfg.Profiles == nil {
		fileCfg.Profiles = make(map[string]*config.Profile)
	}
	fileCfg.Profiles[name] = p
	if opts.Default || (fileCfg.DefaultProfile == "" && len(fileCfg.Profiles) == 1) {
		fileCfg.DefaultProfile = name
	}

	if err := fileCfg.Save(path); err != nil {
		return err
	}

	r.Success(fmt.Sprintf("Added profile %q to %s", name, path))
	if fileCfg.DefaultProfile == name {
		r.Muted("Set as default profile")
	}
	if opts.Password != "" && !strings.Contains(opts.Password, "${") {
		r.Warning("Password stored as plain text; consider a ${VAR} placeholder expanded at connect time")
	}
	return nil
}

func newProfilesRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a connection profile",
		Args:    cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) != 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return completeProfileNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfilesRemove(cmd, args[0])
		},
	}
	return cmd
}

func runProfilesRemove(cmd *cobra.Command, name string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	path := profilesConfigPath(cmdCtx.Cfg)
	fileCfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	if _, ok := fileCfg.Profiles[name]; !ok {
		return &config.UnknownProfileError{
			Name:      name,
			Available: fileCfg.ProfileNames(),
		}
	}

	delete(fileCfg.Profiles, name)
	if fileCfg.DefaultProfile == name {
		fileCfg.DefaultProfile = ""
	}

	if err := fileCfg.Save(path); err != nil {
		return err
	}

	r.Success(fmt.Sprintf("Removed profile %q from %s", name, path))
	if fileCfg.DefaultProfile == "" && len(fileCfg.Profiles) > 0 {
		r.Muted("No default profile set; use --default with profiles add, or set default_profile in the file")
	}
	return nil
}

func newProfilesTestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test [name]",
		Short: "Test a profile's connection",
		Long: `Open a connection with the named profile (or the default profile), verify
the server answers a ping, and confirm the session accepts the read-only
setting. No canvas SQL runs.`,
		Example: `  # Test the default profile
  querycanvas profiles test

  # Test a specific profile
  querycanvas profiles test prod`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) != 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return completeProfileNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return runProfilesTest(cmd, name)
		},
	}
	return cmd
}

func runProfilesTest(cmd *cobra.Command, name string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	profile, err := cmdCtx.Cfg.ResolveProfile(name)
	if err != nil {
		return err
	}

	adp, err := adapter.New(profile.AdapterConfig(), cmdCtx.Logger)
	if err != nil {
		return err
	}

	var spin *output.Spinner
	if r.EffectiveMode() == output.ModeText {
		spin = r.NewSpinner(fmt.Sprintf("Connecting to %s (%s)...", profile.Name, profileTarget(profile)))
		spin.Start()
	}

	start := time.Now()
	err = testConnection(cmd, adp, profile)
	elapsed := time.Since(start)

	if err != nil {
		if spin != nil {
			spin.Fail(fmt.Sprintf("Connection to %s failed", profile.Name))
		}
		r.StatusLine(profile.Name, "failed", err.Error())
		return fmt.Errorf("profile %q: %w", profile.Name, err)
	}

	if spin != nil {
		spin.Success(fmt.Sprintf("Connected to %s in %s", profile.Name, elapsed.Round(time.Millisecond)))
	}
	r.StatusLine(profile.Name, "ok", fmt.Sprintf("%s, read-only session, %s", profile.Driver, elapsed.Round(time.Millisecond)))
	return nil
}

func testConnection(cmd *cobra.Command, adp adapter.Adapter, profile *config.Profile) error {
	ctx := cmd.Context()

	if err := adp.Connect(ctx, profile.AdapterConfig()); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = adp.Close() }()

	if err := adp.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if err := adp.EnforceReadOnly(ctx); err != nil {
		return fmt.Errorf("read-only session: %w", err)
	}
	return nil
}

// profilesConfigPath picks the file edit-and-save subcommands write to: the
// file the current config was loaded from, or the conventional path under
// the project root when no file exists yet.
func profilesConfigPath(cfg *config.Config) string {
	if path := config.GetConfigFileUsed(); path != "" {
		return path
	}
	root := cfg.ProjectRoot
	if root == "" {
		root = "."
	}
	return filepath.Join(root, config.ConfigFileName)
}

func completeProfileNames() []string {
	cfg, err := config.LoadConfig("", nil)
	if err != nil {
		return nil
	}
	return cfg.ProfileNames()
}
