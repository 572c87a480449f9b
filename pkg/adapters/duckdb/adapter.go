// Package duckdb provides a DuckDB database adapter for QueryCanvas.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/okuyamashin/querycanvas/pkg/adapter"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.Base
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		Base: adapter.Base{Logger: logger},
	}
}

// DriverName returns the registry name of the adapter.
func (a *Adapter) DriverName() string {
	return "duckdb"
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the database for an in-memory instance; file databases
// open with access_mode=read_only.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildDuckDBDSN(cfg)

	a.Logger.Debug("opening duckdb database", slog.String("path", cfg.Database))

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	params, err := parseParams(cfg.Params)
	if err != nil {
		_ = db.Close()
		return err
	}
	if err := applyParams(ctx, db, params); err != nil {
		_ = db.Close()
		return err
	}

	a.DB = db
	a.Cfg = cfg
	a.MaxRows = cfg.MaxRows
	return nil
}

// buildDuckDBDSN returns the DSN for the configured database.
// In-memory databases stay writable so tests can seed fixtures.
func buildDuckDBDSN(cfg adapter.Config) string {
	path := cfg.Database
	if path == "" || path == ":memory:" {
		return ""
	}
	if strings.Contains(path, "?") {
		if strings.Contains(path, "access_mode=") {
			return path
		}
		return path + "&access_mode=read_only"
	}
	return path + "?access_mode=read_only"
}

// applyParams installs and loads extensions, then applies settings.
func applyParams(ctx context.Context, db *sql.DB, params *Params) error {
	for _, ext := range params.Extensions {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("INSTALL %s", ext)); err != nil {
			return fmt.Errorf("failed to install extension %s: %w", ext, err)
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf("LOAD %s", ext)); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}

	if len(params.Settings) > 0 {
		keys := make([]string, 0, len(params.Settings))
		for k := range params.Settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			stmt := fmt.Sprintf("SET %s = '%s'", k, params.Settings[k])
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply setting %s: %w", k, err)
			}
		}
	}
	return nil
}

// EnforceReadOnly is satisfied at open time: file databases use
// access_mode=read_only and DuckDB has no session-level read-only switch.
func (a *Adapter) EnforceReadOnly(_ context.Context) error {
	if a.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	return nil
}

// schema returns the configured schema, defaulting to main.
func (a *Adapter) schema() string {
	if a.Cfg.Schema != "" {
		return a.Cfg.Schema
	}
	return "main"
}

// Tables lists tables and views in the configured schema.
func (a *Adapter) Tables(ctx context.Context) ([]adapter.Table, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	qb := sq.Select(
		"table_schema",
		"table_name",
		"table_type",
	).
		From("information_schema.tables").
		Where(sq.Eq{"table_schema": a.schema()}).
		OrderBy("table_name")

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build table query: %w", err)
	}

	rows, err := a.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []adapter.Table
	for rows.Next() {
		var t adapter.Table
		var tableType string
		if err := rows.Scan(&t.Schema, &t.Name, &tableType); err != nil {
			return nil, fmt.Errorf("failed to scan table row: %w", err)
		}
		t.Type = normalizeTableType(tableType)
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return tables, nil
}

// Columns describes the columns of one table. Accepts schema.table form;
// otherwise the configured schema applies.
func (a *Adapter) Columns(ctx context.Context, table string) ([]adapter.Column, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	schema := a.schema()
	tableName := table
	if parts := strings.Split(table, "."); len(parts) == 2 {
		schema = parts[0]
		tableName = parts[1]
	}

	qb := sq.Select(
		"column_name",
		"data_type",
		"is_nullable",
		"COALESCE(column_default, '')",
		"ordinal_position",
	).
		From("information_schema.columns").
		Where(sq.Eq{"table_schema": schema, "table_name": tableName}).
		OrderBy("ordinal_position")

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build column query: %w", err)
	}

	rows, err := a.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []adapter.Column
	for rows.Next() {
		var col adapter.Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Default, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column row: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return columns, nil
}

// normalizeTableType maps information_schema table types to table/view.
func normalizeTableType(t string) string {
	if strings.Contains(strings.ToUpper(t), "VIEW") {
		return "view"
	}
	return "table"
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
