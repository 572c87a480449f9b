package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/okuyamashin/querycanvas/internal/cli/output"
	"github.com/okuyamashin/querycanvas/internal/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new QueryCanvas project",
		Long: `Initialize a new QueryCanvas project with default directory structure and
configuration.

This creates:
  - canvases/ directory with a starter canvas
  - querycanvas.yaml with an in-memory SQLite profile

The starter canvas selects literal rows, so it runs immediately against the
in-memory profile with no database setup. Use --example for more canvases
demonstrating number formats, datetime patterns, row rules and charts.`,
		Example: `  # Initialize in current directory
  querycanvas init

  # Initialize with example canvases
  querycanvas init --example

  # Initialize in a new directory
  querycanvas init my-reports --example

  # Force overwrite existing config
  querycanvas init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			return runInit(r, dir, force, example)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Create example canvases alongside the starter")

	return cmd
}

// scaffoldFile is one file written by init, path relative to the project
// directory.
type scaffoldFile struct {
	path    string
	content string
}

func runInit(r *output.Renderer, dir string, force, example bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.ConfigFileName)
	}

	files := scaffoldFiles(example)
	for _, f := range files {
		target := filepath.Join(dir, f.path)
		if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
		}
		if _, err := os.Stat(target); err == nil && !force {
			r.StatusLine(f.path, "skipped", "already exists")
			continue
		}
		if err := os.WriteFile(target, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
		r.StatusLine(f.path, "success", "")
	}

	r.Println("")
	r.Success("QueryCanvas project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Run 'querycanvas run welcome' to try the starter canvas")
	r.Println("  2. Point profiles in querycanvas.yaml at your databases")
	r.Println("  3. Run 'querycanvas serve' to open the workbench")

	return nil
}

func scaffoldFiles(example bool) []scaffoldFile {
	files := []scaffoldFile{
		{path: config.ConfigFileName, content: scaffoldConfig},
		{path: "canvases/welcome.sql", content: scaffoldWelcome},
	}
	if example {
		files = append(files,
			scaffoldFile{path: "canvases/examples/quarterly.sql", content: scaffoldQuarterly},
			scaffoldFile{path: "canvases/examples/signups.sql", content: scaffoldSignups},
		)
	}
	return files
}

const scaffoldConfig = `# QueryCanvas project configuration
canvases_dir: canvases
default_profile: local

profiles:
  # The starter profile needs no database: the example canvases select
  # literal rows. Point additional profiles at real databases; passwords
  # may be ${VAR} placeholders expanded from the environment.
  local:
    driver: sqlite
    database: ":memory:"

  # prod:
  #   driver: postgres
  #   host: db.example.com
  #   port: 5432
  #   user: reporter
  #   password: ${PROD_DB_PASSWORD}
  #   database: sales

# workbench:
#   port: 8099
#   auto_open: true
#   watch: true
`

const scaffoldWelcome = `-- name: Welcome
/**
 * @column day width=110px
 * @column region width=90px
 * @column amount type=int format=number align=right comma=true if>=1300:color=green,bold=true
 * @row region=="west":bg=#eef6ff
 * @chart type=bar x=day y=amount title="Daily sales"
 */
SELECT '2025-06-01' AS day, 'east' AS region, 1200 AS amount
UNION ALL SELECT '2025-06-02', 'west', 980
UNION ALL SELECT '2025-06-03', 'east', 1430
UNION ALL SELECT '2025-06-04', 'west', 1680
`

const scaffoldQuarterly = `-- name: Quarterly Margins
/**
 * @column quarter width=80px
 * @column revenue type=float format=number align=right comma=true decimal=1
 * @column costs type=float format=number align=right comma=true decimal=1
 * @column margin type=float format=number align=right decimal=1 if<20:color=red if>=30:color=green
 * @chart type=line x=quarter y=revenue,costs title="Revenue vs costs" curve=straight
 */
SELECT 'Q1' AS quarter, 4412.5 AS revenue, 3201.2 AS costs, 27.4 AS margin
UNION ALL SELECT 'Q2', 3989.0, 3322.7, 16.7
UNION ALL SELECT 'Q3', 4655.1, 3110.9, 33.2
UNION ALL SELECT 'Q4', 5011.3, 3445.4, 31.2
`

const scaffoldSignups = `-- name: Signups by Day
/**
 * @column day format=datetime pattern="MM/dd"
 * @column weekday width=70px
 * @column signups type=int format=number align=right
 * @row weekday=="Sat":bg=#eeeeff
 * @row weekday=="Sun":bg=#ffeeee, color=#990000
 */
SELECT '2025-06-06' AS day, 'Fri' AS weekday, 34 AS signups
UNION ALL SELECT '2025-06-07', 'Sat', 11
UNION ALL SELECT '2025-06-08', 'Sun', 9
UNION ALL SELECT '2025-06-09', 'Mon', 41
`
