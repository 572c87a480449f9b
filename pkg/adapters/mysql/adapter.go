// Package mysql provides a MySQL database adapter for QueryCanvas.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql" // mysql database/sql driver
	"github.com/okuyamashin/querycanvas/pkg/adapter"
)

// msq is the MySQL statement builder with question-mark placeholders.
var msq = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Adapter implements the adapter.Adapter interface for MySQL.
type Adapter struct {
	adapter.Base
}

// New creates a new MySQL adapter instance.
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
	return "mysql"
}

// Connect establishes a connection to MySQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildMySQLDSN(cfg)

	a.Logger.Debug("connecting to mysql", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open mysql connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping mysql: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	a.MaxRows = cfg.MaxRows
	return nil
}

// buildMySQLDSN constructs a go-sql-driver DSN.
// parseTime is always on so DATETIME columns scan as time.Time.
func buildMySQLDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	// user:password@tcp(host:port)/dbname?parseTime=true
	auth := cfg.User
	if cfg.Password != "" {
		auth += ":" + cfg.Password
	}

	dsn := fmt.Sprintf("%s@tcp(%s:%d)/%s?parseTime=true", auth, host, port, cfg.Database)

	if len(cfg.Options) > 0 {
		keys := make([]string, 0, len(cfg.Options))
		for k := range cfg.Options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			dsn += fmt.Sprintf("&%s=%s", k, cfg.Options[k])
		}
	}

	return dsn
}

// EnforceReadOnly marks every transaction in this session read-only.
func (a *Adapter) EnforceReadOnly(ctx context.Context) error {
	return a.ExecSession(ctx, "SET SESSION TRANSACTION READ ONLY")
}

// Tables lists tables and views in the configured database with their comments.
func (a *Adapter) Tables(ctx context.Context) ([]adapter.Table, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	qb := msq.Select(
		"table_schema",
		"table_name",
		"table_type",
		"COALESCE(table_comment, '')",
	).
		From("information_schema.tables").
		Where(sq.Eq{"table_schema": a.Cfg.Database}).
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

// Columns describes the columns of one table.
func (a *Adapter) Columns(ctx context.Context, table string) ([]adapter.Column, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	database := a.Cfg.Database
	tableName := table
	if parts := strings.Split(table, "."); len(parts) == 2 {
		database = parts[0]
		tableName = parts[1]
	}

	qb := msq.Select(
		"column_name",
		"column_type",
		"is_nullable",
		"COALESCE(column_default, '')",
		"ordinal_position",
		"COALESCE(column_comment, '')",
	).
		From("information_schema.columns").
		Where(sq.Eq{"table_schema": database, "table_name": tableName}).
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
