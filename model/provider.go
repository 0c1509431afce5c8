package model

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Provider abstracts LLM provider implementations (OpenAI, Anthropic, Ollama)
// using provider-agnostic types from datui's model layer.
//
// The interface lives in the model package rather than the provider package to
// avoid import cycles: provider implementations import model, and everything
// else depends only on this contract. Call sites never branch on which backend
// is active beyond the single factory call that constructs one.
type Provider interface {
	// Chat sends messages and streams the response back via callback.
	Chat(ctx context.Context, messages []Message, callback StreamCallback) error

	// ChatWithTools sends messages plus a tool catalog and streams
	// responses. Tool-call requests surface through the callback.
	ChatWithTools(ctx context.Context, messages []Message, tools []mcptypes.Tool, callback StreamCallback) error

	// ChatWithSearch sends messages with the provider's web search
	// capability enabled and returns citation metadata gathered during the
	// turn. Backends without search (see Caps) fall back to plain Chat and
	// return nil grounding.
	ChatWithSearch(ctx context.Context, messages []Message, callback StreamCallback) (*Grounding, error)

	// ListModels returns the models available on this provider.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// GetModel returns the currently selected model name.
	GetModel() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks whether the provider is reachable.
	Ping(ctx context.Context) error

	// Caps describes optional capabilities of this backend.
	Caps() Caps
}

// StreamCallback is called for each fragment of a streamed response. Either
// chunk is non-empty, toolCalls is non-empty, or both, depending on what the
// provider produced. Returning an error stops the stream.
type StreamCallback func(chunk string, toolCalls []ToolCall) error

// Caps describes what a provider backend can do beyond plain chat.
type Caps struct {
	// Search reports whether ChatWithSearch actually reaches a web search
	// capability rather than degrading to Chat.
	Search bool
}

// ModelInfo describes one selectable model on a provider.
type ModelInfo struct {
	Name     string
	Size     int64
	Provider string
}
