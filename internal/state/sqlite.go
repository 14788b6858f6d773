package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite state store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// NewSQLiteStoreWithDB wraps an existing connection. The schema is not
// touched.
func NewSQLiteStoreWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Open opens a connection to the SQLite database, creating parent
// directories as needed. Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := ":memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create state directory: %w", err)
			}
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Path returns the database path given to Open.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveView upserts the snapshot for a session.
func (s *SQLiteStore) SaveView(ctx context.Context, sessionID string, snapshot []byte) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO view_states (session_id, snapshot, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		sessionID, string(snapshot), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save view state: %w", err)
	}
	return nil
}

// LoadView returns the snapshot for a session, or ErrNotFound.
func (s *SQLiteStore) LoadView(ctx context.Context, sessionID string) ([]byte, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var snapshot string
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM view_states WHERE session_id = ?`, sessionID,
	).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load view state: %w", err)
	}
	return []byte(snapshot), nil
}

// DeleteView removes a session's snapshot. Missing sessions are not an error.
func (s *SQLiteStore) DeleteView(ctx context.Context, sessionID string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM view_states WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete view state: %w", err)
	}
	return nil
}

// ListViews returns stored snapshots, most recently updated first.
func (s *SQLiteStore) ListViews(ctx context.Context) ([]ViewRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, updated_at, length(snapshot) FROM view_states ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list view states: %w", err)
	}
	defer rows.Close()

	var out []ViewRecord
	for rows.Next() {
		var r ViewRecord
		if err := rows.Scan(&r.SessionID, &r.UpdatedAt, &r.Size); err != nil {
			return nil, fmt.Errorf("failed to scan view state: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PruneViews deletes snapshots not updated since before.
func (s *SQLiteStore) PruneViews(ctx context.Context, before time.Time) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM view_states WHERE updated_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune view states: %w", err)
	}
	return res.RowsAffected()
}
