package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/okuyamashin/querycanvas/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSQLiteDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   adapter.Config
		expected string
	}{
		{
			name:     "empty path means memory",
			config:   adapter.Config{},
			expected: ":memory:",
		},
		{
			name:     "memory stays writable",
			config:   adapter.Config{Database: ":memory:"},
			expected: ":memory:",
		},
		{
			name:     "file path gets mode=ro",
			config:   adapter.Config{Database: "/data/app.db"},
			expected: "/data/app.db?mode=ro",
		},
		{
			name:     "existing params keep mode=ro appended",
			config:   adapter.Config{Database: "/data/app.db?cache=shared"},
			expected: "/data/app.db?cache=shared&mode=ro",
		},
		{
			name:     "explicit mode is preserved",
			config:   adapter.Config{Database: "/data/app.db?mode=rwc"},
			expected: "/data/app.db?mode=rwc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildSQLiteDSN(tt.config))
		})
	}
}

// seedFileDB creates a database file with a small fixture schema.
func seedFileDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`CREATE TABLE sales (
		id INTEGER PRIMARY KEY,
		day TEXT NOT NULL,
		amount REAL DEFAULT 0
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE VIEW daily_totals AS SELECT day, SUM(amount) AS total FROM sales GROUP BY day`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO sales (day, amount) VALUES ('2025-06-01', 1200.5), ('2025-06-02', 830)`)
	require.NoError(t, err)

	return path
}

func TestAdapter_Connect(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
	}{
		{
			name: "in-memory",
			setupPath: func(_ *testing.T) string {
				return ":memory:"
			},
		},
		{
			name:      "file-based read-only",
			setupPath: seedFileDB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			require.NoError(t, adp.Connect(ctx, adapter.Config{Database: tt.setupPath(t)}))
			defer func() { _ = adp.Close() }()

			assert.True(t, adp.IsConnected())
		})
	}
}

func TestAdapter_QueryExecution(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	require.NoError(t, adp.Connect(ctx, adapter.Config{Database: seedFileDB(t)}))
	defer func() { _ = adp.Close() }()
	require.NoError(t, adp.EnforceReadOnly(ctx))

	rs, err := adp.Query(ctx, `SELECT day, amount FROM sales ORDER BY day`)
	require.NoError(t, err)

	assert.Equal(t, []string{"day", "amount"}, rs.Columns)
	require.Len(t, rs.Rows, 2)
	assert.Equal(t, "2025-06-01", rs.Rows[0]["day"])
	assert.InEpsilon(t, 1200.5, rs.Rows[0]["amount"], 0.001)
	assert.False(t, rs.Truncated)
}

func TestAdapter_ReadOnlyBlocksWrites(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	require.NoError(t, adp.Connect(ctx, adapter.Config{Database: ":memory:"}))
	defer func() { _ = adp.Close() }()

	// Seed before the session turns read-only.
	_, err := adp.DB.ExecContext(ctx, `CREATE TABLE notes (body TEXT)`)
	require.NoError(t, err)

	require.NoError(t, adp.EnforceReadOnly(ctx))

	_, err = adp.DB.ExecContext(ctx, `INSERT INTO notes (body) VALUES ('nope')`)
	assert.Error(t, err, "writes should fail once query_only is set")

	// Reads still work.
	rs, err := adp.Query(ctx, `SELECT COUNT(*) AS n FROM notes`)
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
}

func TestAdapter_Tables(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	require.NoError(t, adp.Connect(ctx, adapter.Config{Database: seedFileDB(t)}))
	defer func() { _ = adp.Close() }()

	tables, err := adp.Tables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	assert.Equal(t, "daily_totals", tables[0].Name)
	assert.Equal(t, "view", tables[0].Type)
	assert.Equal(t, "sales", tables[1].Name)
	assert.Equal(t, "table", tables[1].Type)
}

func TestAdapter_Columns(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	require.NoError(t, adp.Connect(ctx, adapter.Config{Database: seedFileDB(t)}))
	defer func() { _ = adp.Close() }()

	cols, err := adp.Columns(ctx, "sales")
	require.NoError(t, err)
	require.Len(t, cols, 3)

	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, 1, cols[0].Position)

	assert.Equal(t, "day", cols[1].Name)
	assert.False(t, cols[1].Nullable)

	assert.Equal(t, "amount", cols[2].Name)
	assert.True(t, cols[2].Nullable)
	assert.Equal(t, "0", cols[2].Default)

	_, err = adp.Columns(ctx, "nonexistent")
	assert.Error(t, err)
}

func TestAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	_, err := adp.Query(ctx, "SELECT 1")
	assert.Error(t, err)

	_, err = adp.Tables(ctx)
	assert.Error(t, err)

	_, err = adp.Columns(ctx, "sales")
	assert.Error(t, err)

	assert.Error(t, adp.EnforceReadOnly(ctx))
}

func TestAdapter_Registry(t *testing.T) {
	assert.True(t, adapter.IsRegistered("sqlite"), "sqlite adapter should be registered")

	factory, ok := adapter.Get("sqlite")
	require.True(t, ok)

	adp := factory(nil)
	require.NotNil(t, adp)
	assert.Equal(t, "sqlite", adp.DriverName())
}
