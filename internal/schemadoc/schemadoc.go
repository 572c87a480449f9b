// Package schemadoc renders a database schema as a Markdown document.
//
// The document is built from the adapter's Tables and Columns metadata:
// one section per table with a column table, plus optional row counts.
// Column comments written in HTML (common in MySQL shops) are converted
// to Markdown. A table whose column listing fails gets a note instead of
// failing the whole document.
package schemadoc

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/okuyamashin/querycanvas/pkg/adapter"
)

// Options controls document generation.
type Options struct {
	// Title is the document heading; empty means "Database Schema".
	Title string
	// TitleCase renders table headings as title-cased words
	// (daily_sales becomes Daily Sales).
	TitleCase bool
	// RowCounts adds a COUNT(*) line per table. Each count is one extra
	// query, so large schemas get slower with this on.
	RowCounts bool
	Logger    *slog.Logger
}

// htmlTagPattern decides whether a comment needs HTML conversion.
var htmlTagPattern = regexp.MustCompile(`<[a-zA-Z][^>]*>`)

// Generate builds the Markdown document for the adapter's schema.
func Generate(ctx context.Context, adp adapter.Adapter, opts Options) (string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tables, err := adp.Tables(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list tables: %w", err)
	}

	title := opts.Title
	if title == "" {
		title = "Database Schema"
	}

	var b strings.Builder
	b.WriteString("# " + title + "\n")

	titleCaser := cases.Title(language.English)

	for _, t := range tables {
		b.WriteString("\n## " + headingFor(t, opts.TitleCase, titleCaser) + "\n\n")

		b.WriteString("- Type: " + t.Type + "\n")
		if t.Schema != "" {
			b.WriteString("- Schema: " + t.Schema + "\n")
		}
		if opts.RowCounts {
			if n, countErr := countRows(ctx, adp, t); countErr != nil {
				logger.Warn("Failed to count rows", "table", t.Name, "error", countErr)
			} else {
				b.WriteString(fmt.Sprintf("- Rows: %d\n", n))
			}
		}

		if comment := convertComment(t.Comment); comment != "" {
			b.WriteString("\n" + comment + "\n")
		}

		cols, colErr := adp.Columns(ctx, t.Name)
		if colErr != nil {
			logger.Warn("Failed to describe table", "table", t.Name, "error", colErr)
			b.WriteString("\n_Column details unavailable._\n")
			continue
		}

		b.WriteString("\n| Column | Type | Nullable | Default | Comment |\n")
		b.WriteString("|--------|------|----------|---------|--------|\n")
		for _, c := range cols {
			nullable := "no"
			if c.Nullable {
				nullable = "yes"
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
				cell(c.Name), cell(c.Type), nullable, cell(c.Default), cell(convertComment(c.Comment))))
		}
	}

	return b.String(), nil
}

func headingFor(t adapter.Table, titleCase bool, caser cases.Caser) string {
	name := t.Name
	if titleCase {
		name = caser.String(strings.ReplaceAll(name, "_", " "))
	}
	return name
}

// countRows runs SELECT COUNT(*) with engine-appropriate identifier quoting.
func countRows(ctx context.Context, adp adapter.Adapter, t adapter.Table) (int64, error) {
	rs, err := adp.Query(ctx, "SELECT COUNT(*) AS n FROM "+quoteIdent(adp.DriverName(), t))
	if err != nil {
		return 0, err
	}
	if len(rs.Rows) == 0 {
		return 0, fmt.Errorf("count returned no rows")
	}
	switch v := rs.Rows[0]["n"].(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		var n int64
		_, err := fmt.Sscanf(v, "%d", &n)
		return n, err
	default:
		return 0, fmt.Errorf("unexpected count type %T", v)
	}
}

func quoteIdent(driver string, t adapter.Table) string {
	quote := func(s string) string {
		if driver == "mysql" {
			return "`" + strings.ReplaceAll(s, "`", "``") + "`"
		}
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	if t.Schema != "" {
		return quote(t.Schema) + "." + quote(t.Name)
	}
	return quote(t.Name)
}

// convertComment turns an HTML comment into Markdown. Plain text passes
// through untouched; a conversion failure keeps the original.
func convertComment(comment string) string {
	comment = strings.TrimSpace(comment)
	if comment == "" || !htmlTagPattern.MatchString(comment) {
		return comment
	}
	md, err := htmltomarkdown.ConvertString(comment)
	if err != nil {
		return comment
	}
	return strings.TrimSpace(md)
}

// cell escapes a value for a Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
