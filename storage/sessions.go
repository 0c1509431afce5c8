package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session is one persisted conversation.
type Session struct {
	ID           string
	Name         string
	Provider     string
	Model        string
	SystemPrompt string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SessionMetadata is a Session plus its message count, for listing.
type SessionMetadata struct {
	Session
	MessageCount int
}

// CreateSession inserts a new session and returns it with a fresh ID.
func (s *Store) CreateSession(name, provider, modelName string) (*Session, error) {
	now := time.Now()
	session := &Session{
		ID:        uuid.New().String(),
		Name:      name,
		Provider:  provider,
		Model:     modelName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, name, provider, model, system_prompt, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.Name, session.Provider, session.Model,
		session.SystemPrompt, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// GetSession loads one session by ID.
func (s *Store) GetSession(id string) (*Session, error) {
	var session Session
	err := s.db.QueryRow(
		`SELECT id, name, provider, model, system_prompt, created_at, updated_at
		 FROM sessions WHERE id = ?`, id).Scan(
		&session.ID, &session.Name, &session.Provider, &session.Model,
		&session.SystemPrompt, &session.CreatedAt, &session.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &session, nil
}

// ListSessions returns all sessions, newest update first.
func (s *Store) ListSessions() ([]SessionMetadata, error) {
	rows, err := s.db.Query(
		`SELECT s.id, s.name, s.provider, s.model, s.system_prompt,
		        s.created_at, s.updated_at, COUNT(m.id)
		 FROM sessions s
		 LEFT JOIN messages m ON m.session_id = s.id
		 GROUP BY s.id
		 ORDER BY s.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionMetadata
	for rows.Next() {
		var meta SessionMetadata
		if err := rows.Scan(
			&meta.ID, &meta.Name, &meta.Provider, &meta.Model,
			&meta.SystemPrompt, &meta.CreatedAt, &meta.UpdatedAt,
			&meta.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, meta)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session and, via cascade, its messages.
func (s *Store) DeleteSession(id string) error {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s not found", id)
	}
	return nil
}

// RenameSession updates a session's display name.
func (s *Store) RenameSession(id string, newName string) error {
	res, err := s.db.Exec(
		`UPDATE sessions SET name = ?, updated_at = ? WHERE id = ?`,
		newName, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to rename session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s not found", id)
	}
	return nil
}

// SetSessionModel records the provider and model a session runs on.
func (s *Store) SetSessionModel(id, provider, modelName string) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET provider = ?, model = ?, updated_at = ? WHERE id = ?`,
		provider, modelName, time.Now(), id)
	return err
}

// GenerateSessionName derives a session name from the first user message.
func GenerateSessionName(firstMessage string) string {
	if firstMessage == "" {
		return fmt.Sprintf("Session %s", time.Now().Format("Jan 2, 3:04 PM"))
	}

	name := firstMessage
	if len(name) > 30 {
		name = name[:30] + "..."
	}

	name = strings.ReplaceAll(name, "\n", " ")
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Sprintf("Session %s", time.Now().Format("Jan 2, 3:04 PM"))
	}
	return name
}
