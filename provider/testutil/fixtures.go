package testutil

import (
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"datui/model"
)

// TestMessages returns a sample conversation for testing.
func TestMessages() []model.Message {
	return []model.Message{
		{
			Role:      "user",
			Content:   "I've attached my channel stats export.",
			Timestamp: time.Now(),
		},
		{
			Role:      "assistant",
			Content:   "Loaded. Ask me anything about it.",
			Timestamp: time.Now(),
		},
		{
			Role:      "user",
			Content:   "Which video did best?",
			Timestamp: time.Now(),
		},
	}
}

// SingleUserMessage returns a single user message for simple tests.
func SingleUserMessage(content string) []model.Message {
	return []model.Message{
		{
			Role:      "user",
			Content:   content,
			Timestamp: time.Now(),
		},
	}
}

// TestCatalog returns a small tool catalog in the shape the engines
// declare.
func TestCatalog() []mcptypes.Tool {
	return []mcptypes.Tool{
		{
			Name:        "aggregate_column",
			Description: "Aggregate values of a numeric column",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"column": map[string]any{
						"type":        "string",
						"description": "Column to aggregate",
					},
					"op": map[string]any{
						"type": "string",
						"enum": []any{"sum", "mean", "min", "max", "count"},
					},
				},
				Required: []string{"column", "op"},
			},
		},
		{
			Name:        "top_n",
			Description: "Return the top rows by a column",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"column": map[string]any{"type": "string"},
					"n":      map[string]any{"type": "number"},
				},
				Required: []string{"column"},
			},
		},
	}
}
