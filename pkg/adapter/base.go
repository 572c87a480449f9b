package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// DefaultMaxRows caps materialized results when the caller sets no limit.
const DefaultMaxRows = 1000

// Base provides common database/sql functionality for adapters. Embed it in
// concrete implementations to get standard Close, Ping and Query behavior;
// the concrete adapter supplies Connect, metadata queries and the read-only
// session statement.
type Base struct {
	DB      *sql.DB
	Cfg     Config
	Logger  *slog.Logger
	MaxRows int
}

// Close closes the database connection.
func (b *Base) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// Ping verifies the connection is alive.
func (b *Base) Ping(ctx context.Context) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if err := b.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *Base) IsConnected() bool {
	return b.DB != nil
}

// Query executes a statement and materializes the rows up to the row cap.
// []byte values are converted to string so text columns from drivers that
// scan into raw bytes stay readable.
func (b *Base) Query(ctx context.Context, sqlStr string) (*ResultSet, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	maxRows := b.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	rs := &ResultSet{Columns: cols}
	for rows.Next() {
		if len(rs.Rows) >= maxRows {
			rs.Truncated = true
			break
		}

		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			val := values[i]
			if bs, ok := val.([]byte); ok {
				val = string(bs)
			}
			row[col] = val
		}
		rs.Rows = append(rs.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return rs, nil
}

// exec runs a session statement (read-only enforcement, pragmas). Kept
// unexported so adapters cannot grow a public write path.
func (b *Base) exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if _, err := b.DB.ExecContext(ctx, sqlStr); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	return nil
}

// ExecSession runs a single session-scoped statement such as SET SESSION
// TRANSACTION READ ONLY. It exists for adapters in other packages; it is
// not part of the Adapter interface and never reaches canvas SQL.
func (b *Base) ExecSession(ctx context.Context, sqlStr string) error {
	return b.exec(ctx, sqlStr)
}
