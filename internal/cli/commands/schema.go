package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/okuyamashin/querycanvas/internal/cli/output"
	"github.com/okuyamashin/querycanvas/internal/schemadoc"
)

// NewSchemaCommand creates the schema command group.
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect and document the database schema",
	}

	cmd.AddCommand(newSchemaDocsCommand())
	cmd.AddCommand(newSchemaTablesCommand())

	return cmd
}

// SchemaDocsOptions holds the flag values for schema docs.
type SchemaDocsOptions struct {
	Title     string
	TitleCase bool
	RowCounts bool
	Output    string
}

func newSchemaDocsCommand() *cobra.Command {
	opts := &SchemaDocsOptions{}

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Generate Markdown documentation for the schema",
		Long: `Generate a Markdown document describing every table and view the profile
can see: one section per table with its columns, types, defaults and
comments. HTML in comments is converted to Markdown.`,
		Example: `  # Document the default profile's schema to stdout
  querycanvas schema docs

  # Write the production schema with row counts to a file
  querycanvas schema docs --profile prod --row-counts -o docs/schema.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemaDocs(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "document title (default \"Database Schema\")")
	cmd.Flags().BoolVar(&opts.TitleCase, "title-case", false, "render table headings as title-cased words")
	cmd.Flags().BoolVar(&opts.RowCounts, "row-counts", false, "include a row count per table (one extra query each)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to file instead of stdout")

	return cmd
}

func runSchemaDocs(cmd *cobra.Command, opts *SchemaDocsOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	profile, err := cmdCtx.Profile(cmd)
	if err != nil {
		return err
	}

	adp, cleanup, err := cmdCtx.OpenAdapter(cmd.Context(), profile)
	if err != nil {
		return err
	}
	defer cleanup()

	doc, err := schemadoc.Generate(cmd.Context(), adp, schemadoc.Options{
		Title:     opts.Title,
		TitleCase: opts.TitleCase,
		RowCounts: opts.RowCounts,
		Logger:    cmdCtx.Logger,
	})
	if err != nil {
		return err
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("failed to write schema docs: %w", err)
		}
		r.Success(fmt.Sprintf("Wrote schema docs to %s", opts.Output))
		return nil
	}

	r.Println(doc)
	return nil
}

// tableInfo is the serializable view of one table.
type tableInfo struct {
	Schema  string `json:"schema,omitempty"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Comment string `json:"comment,omitempty"`
}

func newSchemaTablesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List tables and views visible to the profile",
		Example: `  # Tables of the default profile
  querycanvas schema tables

  # Machine-readable listing for scripts
  QUERYCANVAS_OUTPUT=json querycanvas schema tables --profile prod`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemaTables(cmd)
		},
	}
	return cmd
}

func runSchemaTables(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	profile, err := cmdCtx.Profile(cmd)
	if err != nil {
		return err
	}

	adp, cleanup, err := cmdCtx.OpenAdapter(cmd.Context(), profile)
	if err != nil {
		return err
	}
	defer cleanup()

	tables, err := adp.Tables(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	infos := make([]tableInfo, 0, len(tables))
	for _, t := range tables {
		infos = append(infos, tableInfo{
			Schema:  t.Schema,
			Name:    t.Name,
			Type:    t.Type,
			Comment: t.Comment,
		})
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(infos)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Tables (%s)", profile.Name)))
		r.Println("")
		for _, info := range infos {
			detail := info.Type
			if info.Comment != "" {
				detail += ", " + oneline(info.Comment, 0)
			}
			r.Println(output.FormatKeyValue(info.Name, detail))
		}
	default:
		if len(infos) == 0 {
			r.Muted("No tables visible")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Name", "Type", "Comment"})
		for _, info := range infos {
			name := info.Name
			if info.Schema != "" {
				name = info.Schema + "." + name
			}
			t.AppendRow(table.Row{name, info.Type, oneline(info.Comment, 60)})
		}
		t.Render()
		r.Muted(fmt.Sprintf("%d tables in profile %q", len(infos), profile.Name))
	}
	return nil
}
