package storage

import (
	"github.com/sahilm/fuzzy"
)

// FilterSessions narrows a session list by fuzzy-matching the query
// against session names. An empty query returns the input unchanged.
func FilterSessions(sessions []SessionMetadata, query string) []SessionMetadata {
	if query == "" {
		return sessions
	}

	targets := make([]string, len(sessions))
	for i, s := range sessions {
		targets[i] = s.Name
	}

	matches := fuzzy.Find(query, targets)
	filtered := make([]SessionMetadata, 0, len(matches))
	for _, m := range matches {
		filtered = append(filtered, sessions[m.Index])
	}
	return filtered
}
