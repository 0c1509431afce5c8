// Package storage persists sessions and their message history in a
// SQLite database under the data directory. Message rows carry the plain
// text projection plus JSON side channels for charts, cards, tool call
// summaries and grounding; raw attachments and images are never stored.
package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	provider      TEXT NOT NULL DEFAULT '',
	model         TEXT NOT NULL DEFAULT '',
	system_prompt TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	role        TEXT NOT NULL,
	content     TEXT NOT NULL,
	tool_calls  TEXT NOT NULL DEFAULT '',
	charts      TEXT NOT NULL DEFAULT '',
	cards       TEXT NOT NULL DEFAULT '',
	grounding   TEXT NOT NULL DEFAULT '',
	timestamp   TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);

CREATE TABLE IF NOT EXISTS app_state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Store is the session database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) sessions.db in the data directory.
func Open(dataDir string) (*Store, error) {
	path := filepath.Join(dataDir, "sessions.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	// The store is accessed from a single TUI process.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCurrentSessionID records the active session so the next launch
// can resume it.
func (s *Store) SaveCurrentSessionID(id string) error {
	_, err := s.db.Exec(
		`INSERT INTO app_state (key, value) VALUES ('current_session', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, id)
	return err
}

// LoadCurrentSessionID returns the last active session ID, or "" when
// none was recorded.
func (s *Store) LoadCurrentSessionID() (string, error) {
	var id string
	err := s.db.QueryRow(
		`SELECT value FROM app_state WHERE key = 'current_session'`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
