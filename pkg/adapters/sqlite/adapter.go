// Package sqlite provides a SQLite database adapter for QueryCanvas.
//
// It uses the pure-Go modernc.org/sqlite driver, so no cgo toolchain is
// needed to query local database files.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/okuyamashin/querycanvas/pkg/adapter"
	_ "modernc.org/sqlite" // sqlite database/sql driver
)

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.Base
}

// New creates a new SQLite adapter instance.
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
	return "sqlite"
}

// Connect opens the database file named by cfg.Database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildSQLiteDSN(cfg)

	a.Logger.Debug("opening sqlite database", slog.String("path", cfg.Database))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	a.MaxRows = cfg.MaxRows
	return nil
}

// buildSQLiteDSN returns the DSN for the configured database file.
// File-backed databases open with mode=ro; :memory: stays writable so
// tests can seed fixtures before querying.
func buildSQLiteDSN(cfg adapter.Config) string {
	path := cfg.Database
	if path == "" || path == ":memory:" {
		return ":memory:"
	}
	if strings.Contains(path, "?") {
		if strings.Contains(path, "mode=") {
			return path
		}
		return path + "&mode=ro"
	}
	return path + "?mode=ro"
}

// EnforceReadOnly sets the query_only pragma. File-backed databases are
// already opened mode=ro; the pragma is the second layer.
func (a *Adapter) EnforceReadOnly(ctx context.Context) error {
	return a.ExecSession(ctx, "PRAGMA query_only = ON")
}

// Tables lists tables and views from sqlite_master. Internal sqlite_
// tables are excluded. SQLite stores no comments.
func (a *Adapter) Tables(ctx context.Context) ([]adapter.Table, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	query := `SELECT name, type FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name`

	rows, err := a.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []adapter.Table
	for rows.Next() {
		var t adapter.Table
		if err := rows.Scan(&t.Name, &t.Type); err != nil {
			return nil, fmt.Errorf("failed to scan table row: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return tables, nil
}

// Columns describes the columns of one table via PRAGMA table_info.
func (a *Adapter) Columns(ctx context.Context, table string) ([]adapter.Column, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	// PRAGMA table_info cannot use ? placeholders, so the table name is
	// embedded with doubled quotes.
	query := fmt.Sprintf("PRAGMA table_info('%s')", strings.ReplaceAll(table, "'", "''"))

	rows, err := a.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []adapter.Column
	for rows.Next() {
		// PRAGMA table_info returns: cid, name, type, notnull, dflt_value, pk
		var cid, notNull, pk int
		var dfltValue sql.NullString
		var col adapter.Column
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column row: %w", err)
		}
		col.Nullable = notNull == 0
		col.Default = dfltValue.String
		col.Position = cid + 1
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

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
