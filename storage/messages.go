package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"datui/model"
)

// toolCallSummary is the persisted projection of an executed tool call:
// name and arguments only, never the full result payload.
type toolCallSummary struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// AppendMessage stores one message at the end of a session's history.
// The message is flattened to its plain text projection; charts, cards,
// tool call summaries and grounding are stored as JSON side channels.
// Images are deliberately not persisted.
func (s *Store) AppendMessage(sessionID string, msg model.Message) error {
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var toolCalls, charts, cards, grounding string

	if len(msg.ToolCalls) > 0 {
		summaries := make([]toolCallSummary, len(msg.ToolCalls))
		for i, c := range msg.ToolCalls {
			summaries[i] = toolCallSummary{Name: c.Name, Arguments: c.Arguments}
		}
		toolCalls = marshalJSON(summaries)
	}
	if len(msg.Charts) > 0 {
		charts = marshalJSON(msg.Charts)
	}
	if len(msg.Cards) > 0 {
		cards = marshalJSON(msg.Cards)
	}
	if msg.Grounding != nil {
		grounding = marshalJSON(msg.Grounding)
	}

	_, err := s.db.Exec(
		`INSERT INTO messages (session_id, role, content, tool_calls, charts, cards, grounding, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, msg.Role, msg.PlainText(), toolCalls, charts, cards, grounding, ts)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE sessions SET updated_at = ? WHERE id = ?`, ts, sessionID)
	return err
}

// LoadMessages returns a session's history in insertion order.
func (s *Store) LoadMessages(sessionID string) ([]model.Message, error) {
	rows, err := s.db.Query(
		`SELECT role, content, tool_calls, charts, cards, grounding, timestamp
		 FROM messages WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var msg model.Message
		var toolCalls, charts, cards, grounding string
		if err := rows.Scan(&msg.Role, &msg.Content, &toolCalls, &charts,
			&cards, &grounding, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}

		if toolCalls != "" {
			var summaries []toolCallSummary
			if err := json.Unmarshal([]byte(toolCalls), &summaries); err == nil {
				for _, sum := range summaries {
					msg.ToolCalls = append(msg.ToolCalls, model.ToolCall{
						Name:      sum.Name,
						Arguments: sum.Arguments,
					})
				}
			}
		}
		if charts != "" {
			_ = json.Unmarshal([]byte(charts), &msg.Charts)
		}
		if cards != "" {
			_ = json.Unmarshal([]byte(cards), &msg.Cards)
		}
		if grounding != "" {
			var g model.Grounding
			if err := json.Unmarshal([]byte(grounding), &g); err == nil {
				msg.Grounding = &g
			}
		}

		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MessageMatch is one content search hit.
type MessageMatch struct {
	SessionID   string
	SessionName string
	Role        string
	Preview     string
	Timestamp   time.Time
}

// SearchMessages finds messages containing the query substring across
// all sessions, newest first. System messages are excluded.
func (s *Store) SearchMessages(query string) ([]MessageMatch, error) {
	if query == "" {
		return nil, nil
	}

	rows, err := s.db.Query(
		`SELECT m.session_id, s.name, m.role, m.content, m.timestamp
		 FROM messages m
		 JOIN sessions s ON s.id = m.session_id
		 WHERE m.role != 'system' AND m.content LIKE ? ESCAPE '\'
		 ORDER BY m.timestamp DESC`,
		"%"+escapeLike(query)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	defer rows.Close()

	var matches []MessageMatch
	for rows.Next() {
		var m MessageMatch
		var content string
		if err := rows.Scan(&m.SessionID, &m.SessionName, &m.Role, &content, &m.Timestamp); err != nil {
			return nil, err
		}
		m.Preview = content
		if len(m.Preview) > 100 {
			m.Preview = m.Preview[:100] + "..."
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func escapeLike(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

func marshalJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}
