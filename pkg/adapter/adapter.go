// Package adapter provides the database adapter contract for QueryCanvas.
//
// Concrete adapter implementations live in pkg/adapters/ subdirectories and
// register themselves with the registry in their init() functions. Every
// adapter is read-only by contract: it must apply the strongest session-level
// read-only setting its engine offers in EnforceReadOnly, and it never
// exposes an Exec path.
package adapter

import "context"

// Adapter is the interface all database adapters implement.
type Adapter interface {
	// DriverName returns the registry name of the adapter (mysql, postgres, ...).
	DriverName() string

	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// EnforceReadOnly applies the engine's session-level read-only setting.
	// Called once after Connect, before any statement runs.
	EnforceReadOnly(ctx context.Context) error

	// Query executes a statement and materializes the result.
	Query(ctx context.Context, sql string) (*ResultSet, error)

	// Tables lists tables and views visible in the configured database.
	Tables(ctx context.Context) ([]Table, error)

	// Columns describes the columns of one table.
	Columns(ctx context.Context, table string) ([]Column, error)
}

// Config holds connection settings for an adapter. File-backed engines use
// Database as the file path; ":memory:" is honored where the engine
// supports it.
type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Schema   string
	// MaxRows caps materialized results; zero means DefaultMaxRows.
	MaxRows int
	// Options are DSN-level settings (sslmode, parseTime, ...).
	Options map[string]string
	// Params are driver-specific extras, decoded by the adapter itself.
	Params map[string]any
}

// Table describes a table or view.
type Table struct {
	Schema  string
	Name    string
	Type    string // table or view
	Comment string
}

// Column describes one column of a table.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Default  string
	Comment  string
	Position int
}

// ResultSet is a fully materialized query result. Rows are keyed by column
// name with driver values normalized: []byte becomes string, everything
// else is passed through as scanned.
type ResultSet struct {
	Columns []string
	Rows    []map[string]any
	// Truncated is set when the row cap cut the result short.
	Truncated bool
}
