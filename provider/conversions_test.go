package provider

import (
	"testing"

	"github.com/ollama/ollama/api"

	"datui/model"
)

func TestConvertToOllamaMessages(t *testing.T) {
	messages := []model.Message{
		{Role: "system", Content: "You are a data analyst."},
		{Role: "user", Content: "What's the mean of views?"},
		{Role: "tool", Content: `{"tool":"aggregate_column","result":"ok"}`},
	}

	result := ConvertToOllamaMessages(messages)

	if len(result) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(result))
	}
	for i, msg := range messages {
		if result[i].Role != msg.Role {
			t.Errorf("message %d role = %q, want %q", i, result[i].Role, msg.Role)
		}
		if result[i].Content != msg.Content {
			t.Errorf("message %d content mismatch", i)
		}
	}
}

func TestConvertToOllamaMessagesUsesPlainText(t *testing.T) {
	messages := []model.Message{
		{
			Role:    "assistant",
			Content: "raw fallback",
			Parts: []model.Part{
				{Kind: model.PartText, Text: "Here is the analysis."},
				{Kind: model.PartCode, Text: "df.describe()"},
			},
		},
	}

	result := ConvertToOllamaMessages(messages)
	if result[0].Content == "raw fallback" {
		t.Error("expected plain-text projection of parts, got raw content")
	}
}

func TestParseToolArguments(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKeys int
	}{
		{"valid json", `{"column":"views","op":"mean"}`, 2},
		{"empty object", `{}`, 0},
		{"invalid json", `not json`, 0},
		{"empty string", ``, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := ParseToolArguments(tt.input)
			if args == nil {
				t.Fatal("expected non-nil map")
			}
			if len(args) != tt.wantKeys {
				t.Errorf("got %d keys, want %d", len(args), tt.wantKeys)
			}
		})
	}
}

func TestConvertToProviderToolCalls(t *testing.T) {
	ollamaCalls := []api.ToolCall{
		{Function: api.ToolCallFunction{
			Name:      "top_n",
			Arguments: map[string]any{"column": "views", "n": float64(5)},
		}},
	}

	calls := ConvertToProviderToolCalls(ollamaCalls)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Name != "top_n" {
		t.Errorf("name = %q, want top_n", calls[0].Name)
	}
	if calls[0].Arguments["column"] != "views" {
		t.Errorf("arguments not carried over: %v", calls[0].Arguments)
	}

	if got := ConvertToProviderToolCalls(nil); got != nil {
		t.Error("nil input should return nil")
	}
}

func TestConvertFromProviderToolCalls(t *testing.T) {
	calls := []model.ToolCall{
		{Name: "correlate", Arguments: map[string]any{"column_a": "views", "column_b": "likes"}},
	}

	ollamaCalls := ConvertFromProviderToolCalls(calls)
	if len(ollamaCalls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(ollamaCalls))
	}
	if ollamaCalls[0].Function.Name != "correlate" {
		t.Errorf("name = %q, want correlate", ollamaCalls[0].Function.Name)
	}
}

func TestParseLeakedJSONToolCalls(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantCalls int
		wantName  string
	}{
		{
			name:      "bare json object",
			content:   `{"name":"aggregate_column","arguments":{"column":"views","op":"mean"}}`,
			wantCalls: 1,
			wantName:  "aggregate_column",
		},
		{
			name: "fenced json block",
			content: "Let me compute that.\n```json\n{\"name\":\"top_n\",\"arguments\":{\"column\":\"views\"}}\n```",
			wantCalls: 1,
			wantName:  "top_n",
		},
		{
			name:      "parameters key variant",
			content:   `{"name":"select_record","parameters":{"selector":"most viewed"}}`,
			wantCalls: 1,
			wantName:  "select_record",
		},
		{
			name:      "plain prose",
			content:   "The average view count is 1250.",
			wantCalls: 0,
		},
		{
			name:      "json without a name field",
			content:   `{"column":"views"}`,
			wantCalls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := ParseLeakedJSONToolCalls(tt.content)
			if len(calls) != tt.wantCalls {
				t.Fatalf("got %d calls, want %d", len(calls), tt.wantCalls)
			}
			if tt.wantCalls > 0 {
				if calls[0].Name != tt.wantName {
					t.Errorf("name = %q, want %q", calls[0].Name, tt.wantName)
				}
				if calls[0].Arguments == nil {
					t.Error("arguments should never be nil")
				}
			}
		})
	}
}
