package provider

import (
	"context"
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"

	"datui/model"
	"datui/ollama"
	"datui/tools"
)

// OllamaProvider wraps ollama.Client to implement model.Provider. It
// converts model.Message to api.Message, the internal tool catalog to
// api.Tool, and api.ToolCall back to model.ToolCall.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates an Ollama provider instance. baseURL
// defaults to "http://localhost:11434" and model to "llama3.1:latest".
func NewOllamaProvider(baseURL, modelName string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{client: client}, nil
}

// Chat implements model.Provider.Chat by delegating to ChatWithTools
// with no tools.
func (p *OllamaProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	return p.ChatWithTools(ctx, messages, nil, callback)
}

// ChatWithTools implements model.Provider.ChatWithTools. The catalog is
// only forwarded when the selected model family is known to support
// tool calling; otherwise the request degrades to plain chat rather
// than erroring on the server.
func (p *OllamaProvider) ChatWithTools(ctx context.Context, messages []model.Message, catalog []mcptypes.Tool, callback model.StreamCallback) error {
	ollamaMessages := ConvertToOllamaMessages(messages)

	var ollamaTools []api.Tool
	if len(catalog) > 0 && p.client.SupportsToolCalling() {
		ollamaTools = tools.ToOllamaTools(catalog)
	}

	ollamaCallback := func(chunk string, ollamaCalls []api.ToolCall) error {
		if callback == nil {
			return nil
		}
		return callback(chunk, ConvertToProviderToolCalls(ollamaCalls))
	}

	return p.client.ChatWithTools(ctx, ollamaMessages, ollamaTools, ollamaCallback)
}

// ChatWithSearch degrades to plain Chat: local models have no web
// search capability.
func (p *OllamaProvider) ChatWithSearch(ctx context.Context, messages []model.Message, callback model.StreamCallback) (*model.Grounding, error) {
	return nil, p.Chat(ctx, messages, callback)
}

// ListModels implements model.Provider.ListModels (direct passthrough).
func (p *OllamaProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return p.client.ListModels(ctx)
}

// GetModel implements model.Provider.GetModel (direct passthrough).
func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// SetModel implements model.Provider.SetModel (direct passthrough).
func (p *OllamaProvider) SetModel(modelName string) {
	p.client.SetModel(modelName)
}

// Ping implements model.Provider.Ping (direct passthrough).
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Caps implements model.Provider.Caps.
func (p *OllamaProvider) Caps() model.Caps {
	return model.Caps{Search: false}
}
