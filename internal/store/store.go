package store

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

var (
	// ErrPhotoLimitExceeded is returned when appending a photo past the
	// per-item cap. The item is left unchanged.
	ErrPhotoLimitExceeded = errors.New("photo limit exceeded")

	// ErrNotFound is returned when a keyed lookup misses.
	ErrNotFound = errors.New("item not found")
)

// maxHistoryEntries bounds the history log; the oldest entries are
// evicted first.
const maxHistoryEntries = 200

// Store is the on-device durable store backing the client: the
// snap stack of pending items, the Dewey catalog, the shipping mirror,
// the bounded history log, and key-value settings. One Store per
// device; writes are last-writer-wins by id.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Open opens (or creates) the sqlite database at path and ensures the
// schema exists.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping local store: %w", err)
	}

	// modernc sqlite allows a single writer; serialize through one conn.
	db.SetMaxOpenConns(1)

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS snap_stack(
  id         TEXT PRIMARY KEY,
  label      TEXT NOT NULL DEFAULT '',
  data       TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS dewey(
  id         TEXT PRIMARY KEY,
  label      TEXT NOT NULL DEFAULT '',
  data       TEXT NOT NULL,
  updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_dewey_label ON dewey(LOWER(label));

CREATE TABLE IF NOT EXISTS shipping(
  id   TEXT PRIMARY KEY,
  data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS history(
  seq              INTEGER PRIMARY KEY AUTOINCREMENT,
  id               TEXT NOT NULL,
  label            TEXT NOT NULL DEFAULT '',
  classification   TEXT NOT NULL,
  estimated_profit REAL NOT NULL DEFAULT 0,
  created_at       TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings(
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("ensure local schema: %w", err)
	}
	return nil
}
