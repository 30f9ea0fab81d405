package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/lexsum/pkg/lexsum/cache"
)

// sqliteStore implements cache.Store using SQLite
type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens a SQLite summary cache with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (cache.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Section workers share this handle; one connection serializes their writes.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS summaries (
	key TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	created_at TEXT NOT NULL,
	hits INTEGER NOT NULL DEFAULT 0
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Get returns the text stored under key and bumps its hit counter.
func (s *sqliteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT text FROM summaries WHERE key = ?`, key).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE summaries SET hits = hits + 1 WHERE key = ?`, key); err != nil {
		return "", false, err
	}
	return text, true, nil
}

// Put upserts text under key.
func (s *sqliteStore) Put(ctx context.Context, key, text string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO summaries (key, text, created_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	text=excluded.text,
	created_at=excluded.created_at;
`, key, text, s.now().UTC().Format(time.RFC3339))
	return err
}
