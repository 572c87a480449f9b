// Package history keeps a local run log in SQLite.
//
// Every canvas run is recorded best-effort: a failed write to the log never
// fails the run. The store lives under the project's .querycanvas directory
// and is managed through embedded migrations.
package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one recorded run.
type Entry struct {
	ID         string
	StartedAt  time.Time
	Profile    string
	Canvas     string
	SQL        string
	RowCount   int
	DurationMS int64
	// Error is the run's error text, empty on success.
	Error string
}

// Filter narrows List output. Zero values mean no restriction.
type Filter struct {
	Profile string
	Canvas  string
	// Limit caps the number of entries; zero means DefaultListLimit.
	Limit uint64
}

// DefaultListLimit caps List and Search output when no limit is given.
const DefaultListLimit = 50

// Store is a SQLite-backed run log.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (and if needed creates) the history database at path and
// brings its schema up to date. Use ":memory:" for tests.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		dsn = fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	s := &Store{db: db, path: path, logger: logger}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts one entry. A missing ID or StartedAt is filled in.
func (s *Store) Record(e Entry) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO history (id, started_at, profile, canvas, sql_text, row_count, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.StartedAt, e.Profile, e.Canvas, e.SQL, e.RowCount, e.DurationMS, e.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	s.logger.Debug("Recorded run", "id", e.ID, "canvas", e.Canvas, "rows", e.RowCount)
	return nil
}

// List returns entries newest first, narrowed by the filter.
func (s *Store) List(f Filter) ([]Entry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	q := sq.Select("id", "started_at", "profile", "canvas", "sql_text", "row_count", "duration_ms", "error").
		From("history").
		OrderBy("started_at DESC, id")
	if f.Profile != "" {
		q = q.Where(sq.Eq{"profile": f.Profile})
	}
	if f.Canvas != "" {
		q = q.Where(sq.Eq{"canvas": f.Canvas})
	}
	limit := f.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}
	q = q.Limit(limit)

	return s.query(q)
}

// Search returns entries whose SQL or canvas name contains term, newest
// first, capped at DefaultListLimit.
func (s *Store) Search(term string) ([]Entry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	pattern := "%" + term + "%"
	q := sq.Select("id", "started_at", "profile", "canvas", "sql_text", "row_count", "duration_ms", "error").
		From("history").
		Where(sq.Or{sq.Like{"sql_text": pattern}, sq.Like{"canvas": pattern}}).
		OrderBy("started_at DESC, id").
		Limit(DefaultListLimit)

	return s.query(q)
}

// Prune deletes everything but the newest keep entries and reports how
// many were removed.
func (s *Store) Prune(keep int) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	if keep < 0 {
		keep = 0
	}

	res, err := s.db.Exec(
		`DELETE FROM history WHERE id NOT IN
		 (SELECT id FROM history ORDER BY started_at DESC, id LIMIT ?)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}

	removed, _ := res.RowsAffected()
	if removed > 0 {
		s.logger.Debug("Pruned history", "removed", removed, "kept", keep)
	}
	return removed, nil
}

// Count returns the number of recorded entries.
func (s *Store) Count() (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

func (s *Store) query(q sq.SelectBuilder) ([]Entry, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build history query: %w", err)
	}

	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.StartedAt, &e.Profile, &e.Canvas, &e.SQL, &e.RowCount, &e.DurationMS, &e.Error); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
