package storage

import (
	"os"
	"strings"
	"testing"
	"time"

	"datui/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSessionLifecycle(t *testing.T) {
	store := openTestStore(t)

	session, err := store.CreateSession("views analysis", "ollama", "llama3.1:latest")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.ID == "" {
		t.Fatal("session ID is empty")
	}

	got, err := store.GetSession(session.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Name != "views analysis" || got.Provider != "ollama" {
		t.Errorf("GetSession = %+v", got)
	}

	if err := store.RenameSession(session.ID, "channel stats"); err != nil {
		t.Fatalf("RenameSession failed: %v", err)
	}
	got, err = store.GetSession(session.ID)
	if err != nil {
		t.Fatalf("GetSession after rename failed: %v", err)
	}
	if got.Name != "channel stats" {
		t.Errorf("Name after rename = %q", got.Name)
	}

	if err := store.DeleteSession(session.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := store.GetSession(session.ID); err == nil {
		t.Error("GetSession should fail after delete")
	}
	if err := store.DeleteSession(session.ID); err == nil {
		t.Error("DeleteSession of missing session should fail")
	}
}

func TestListSessionsOrder(t *testing.T) {
	store := openTestStore(t)

	first, _ := store.CreateSession("first", "ollama", "m")
	time.Sleep(5 * time.Millisecond)
	second, _ := store.CreateSession("second", "ollama", "m")

	sessions, err := store.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("ListSessions = %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != second.ID {
		t.Errorf("newest session should list first")
	}

	// Appending to the older session bumps it to the top.
	time.Sleep(5 * time.Millisecond)
	if err := store.AppendMessage(first.ID, model.Message{Role: "user", Content: "hi"}); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	sessions, _ = store.ListSessions()
	if sessions[0].ID != first.ID {
		t.Errorf("recently updated session should list first")
	}
	if sessions[0].MessageCount != 1 {
		t.Errorf("MessageCount = %d, want 1", sessions[0].MessageCount)
	}
}

func TestMessageRoundTrip(t *testing.T) {
	store := openTestStore(t)
	session, _ := store.CreateSession("s", "ollama", "m")

	msgs := []model.Message{
		{Role: "user", Content: "what's the mean of views?"},
		{
			Role:    "assistant",
			Content: "The mean is 2100 views.",
			ToolCalls: []model.ToolCall{{
				Name:      "aggregate_column",
				Arguments: map[string]any{"column": "views", "op": "mean"},
				Result:    model.ValueResult(map[string]any{"mean": 2100.0}),
			}},
			Charts: []model.ChartPayload{{Kind: "bar", Title: "views"}},
			Grounding: &model.Grounding{
				Citations: []model.Citation{{Title: "t", URL: "https://example.com"}},
			},
		},
	}
	for _, m := range msgs {
		if err := store.AppendMessage(session.ID, m); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	loaded, err := store.LoadMessages(session.ID)
	if err != nil {
		t.Fatalf("LoadMessages failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("LoadMessages = %d messages, want 2", len(loaded))
	}
	if loaded[0].Role != "user" || loaded[1].Role != "assistant" {
		t.Errorf("roles out of order: %q, %q", loaded[0].Role, loaded[1].Role)
	}

	assistant := loaded[1]
	if len(assistant.ToolCalls) != 1 || assistant.ToolCalls[0].Name != "aggregate_column" {
		t.Errorf("ToolCalls = %+v", assistant.ToolCalls)
	}
	// Results are summarized away; only name and arguments survive.
	if assistant.ToolCalls[0].Result.Kind != model.ResultValue || assistant.ToolCalls[0].Result.Value != nil {
		t.Errorf("tool result payload should not be persisted: %+v", assistant.ToolCalls[0].Result)
	}
	if len(assistant.Charts) != 1 || assistant.Charts[0].Kind != "bar" {
		t.Errorf("Charts = %+v", assistant.Charts)
	}
	if assistant.Grounding == nil || len(assistant.Grounding.Citations) != 1 {
		t.Errorf("Grounding = %+v", assistant.Grounding)
	}
}

func TestSearchMessages(t *testing.T) {
	store := openTestStore(t)
	session, _ := store.CreateSession("stats", "ollama", "m")

	store.AppendMessage(session.ID, model.Message{Role: "system", Content: "regression context"})
	store.AppendMessage(session.ID, model.Message{Role: "user", Content: "run a regression of views on duration"})
	store.AppendMessage(session.ID, model.Message{Role: "assistant", Content: "Here are the histogram buckets."})

	matches, err := store.SearchMessages("regression")
	if err != nil {
		t.Fatalf("SearchMessages failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1 (system excluded)", len(matches))
	}
	if matches[0].Role != "user" || !strings.Contains(matches[0].Preview, "regression") {
		t.Errorf("match = %+v", matches[0])
	}

	// LIKE metacharacters are literal.
	if m, _ := store.SearchMessages("100%"); len(m) != 0 {
		t.Errorf("wildcard query should match nothing, got %d", len(m))
	}

	if m, _ := store.SearchMessages(""); m != nil {
		t.Errorf("empty query should return nil")
	}
}

func TestCurrentSessionID(t *testing.T) {
	store := openTestStore(t)

	id, err := store.LoadCurrentSessionID()
	if err != nil {
		t.Fatalf("LoadCurrentSessionID failed: %v", err)
	}
	if id != "" {
		t.Errorf("initial current session = %q, want empty", id)
	}

	if err := store.SaveCurrentSessionID("abc-123"); err != nil {
		t.Fatalf("SaveCurrentSessionID failed: %v", err)
	}
	if err := store.SaveCurrentSessionID("def-456"); err != nil {
		t.Fatalf("SaveCurrentSessionID overwrite failed: %v", err)
	}
	id, _ = store.LoadCurrentSessionID()
	if id != "def-456" {
		t.Errorf("current session = %q, want def-456", id)
	}
}

func TestFilterSessions(t *testing.T) {
	sessions := []SessionMetadata{
		{Session: Session{Name: "channel stats"}},
		{Session: Session{Name: "video duration analysis"}},
		{Session: Session{Name: "misc notes"}},
	}

	got := FilterSessions(sessions, "")
	if len(got) != 3 {
		t.Errorf("empty query should pass through, got %d", len(got))
	}

	got = FilterSessions(sessions, "chst")
	if len(got) == 0 || got[0].Name != "channel stats" {
		t.Errorf("fuzzy match = %+v", got)
	}

	got = FilterSessions(sessions, "zzzz")
	if len(got) != 0 {
		t.Errorf("no-match query = %+v", got)
	}
}

func TestInstanceLock(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireInstanceLock(dir)
	if err != nil {
		t.Fatalf("AcquireInstanceLock failed: %v", err)
	}

	// Same live PID holds the lock.
	if _, err := AcquireInstanceLock(dir); err == nil {
		t.Error("second acquire should fail while lock is held")
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("double Release should be nil, got %v", err)
	}

	// Stale lock with an invalid PID is reclaimed.
	relock, err := AcquireInstanceLock(dir)
	if err != nil {
		t.Fatalf("re-acquire after release failed: %v", err)
	}
	relock.Release()

	if err := os.WriteFile(dir+"/datui.lock", []byte("garbage"), 0600); err != nil {
		t.Fatal(err)
	}
	relock, err = AcquireInstanceLock(dir)
	if err != nil {
		t.Fatalf("acquire over corrupt lock failed: %v", err)
	}
	relock.Release()
}

func TestGenerateSessionName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "mean of views?", "mean of views?"},
		{"truncated", strings.Repeat("a", 40), strings.Repeat("a", 30) + "..."},
		{"newlines", "line one\nline two", "line one line two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateSessionName(tt.in); got != tt.want {
				t.Errorf("GenerateSessionName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if got := GenerateSessionName(""); !strings.HasPrefix(got, "Session ") {
		t.Errorf("empty message name = %q", got)
	}
}
