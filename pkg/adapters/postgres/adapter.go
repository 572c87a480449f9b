// Package postgres provides a PostgreSQL database adapter for QueryCanvas.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/okuyamashin/querycanvas/pkg/adapter"
)

// psq is the PostgreSQL statement builder with dollar placeholders.
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.Base
}

// New creates a new PostgreSQL adapter instance.
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
	return "postgres"
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildPostgresDSN(cfg)

	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	a.MaxRows = cfg.MaxRows
	return nil
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg adapter.Config) string {
	// Build key=value format: host=localhost port=5432 user=postgres ...
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
}

// EnforceReadOnly marks every transaction in this session read-only.
func (a *Adapter) EnforceReadOnly(ctx context.Context) error {
	return a.ExecSession(ctx, "SET SESSION CHARACTERISTICS AS TRANSACTION READ ONLY")
}

// schema returns the configured schema, defaulting to public.
func (a *Adapter) schema() string {
	if a.Cfg.Schema != "" {
		return a.Cfg.Schema
	}
	return "public"
}

// Tables lists tables and views in the configured schema with their comments.
func (a *Adapter) Tables(ctx context.Context) ([]adapter.Table, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	qb := psq.Select(
		"t.table_schema",
		"t.table_name",
		"t.table_type",
		"COALESCE(obj_description((quote_ident(t.table_schema) || '.' || quote_ident(t.table_name))::regclass), '')",
	).
		From("information_schema.tables t").
		Where(sq.Eq{"t.table_schema": a.schema()}).
		OrderBy("t.table_name")

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
		if err := rows.Scan(&t.Schema, &t.Name, &tableType, &t.Comment); err != nil {
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

	qb := psq.Select(
		"column_name",
		"data_type",
		"is_nullable",
		"COALESCE(column_default, '')",
		"ordinal_position",
		"COALESCE(col_description((quote_ident(table_schema) || '.' || quote_ident(table_name))::regclass, ordinal_position), '')",
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
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Default, &col.Position, &col.Comment); err != nil {
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
