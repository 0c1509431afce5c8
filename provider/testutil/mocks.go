// Package testutil provides mocks and fixtures shared by provider and
// turn tests.
package testutil

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"datui/model"
)

// MockProvider implements model.Provider for testing. Each method
// delegates to a configurable func field so a test can script exactly
// the stream of chunks and tool calls it needs.
type MockProvider struct {
	ChatFunc           func(ctx context.Context, messages []model.Message, callback model.StreamCallback) error
	ChatWithToolsFunc  func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error
	ChatWithSearchFunc func(ctx context.Context, messages []model.Message, callback model.StreamCallback) (*model.Grounding, error)
	ListModelsFunc     func(ctx context.Context) ([]model.ModelInfo, error)
	PingFunc           func(ctx context.Context) error

	// CapsValue is returned by Caps.
	CapsValue model.Caps

	currentModel string
}

// NewMockProvider creates a mock provider with default implementations.
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{
		currentModel: modelName,
	}
	mock.ChatFunc = mock.defaultChat
	mock.ChatWithToolsFunc = mock.defaultChatWithTools
	mock.ChatWithSearchFunc = mock.defaultChatWithSearch
	mock.ListModelsFunc = mock.defaultListModels
	mock.PingFunc = mock.defaultPing
	return mock
}

func (m *MockProvider) defaultChat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	if len(messages) > 0 && callback != nil {
		return callback("Mock response", nil)
	}
	return nil
}

func (m *MockProvider) defaultChatWithTools(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	if callback != nil {
		return callback("Mock response with tools", nil)
	}
	return nil
}

func (m *MockProvider) defaultChatWithSearch(ctx context.Context, messages []model.Message, callback model.StreamCallback) (*model.Grounding, error) {
	return nil, m.defaultChat(ctx, messages, callback)
}

func (m *MockProvider) defaultListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return []model.ModelInfo{
		{Name: "mock-model-1", Size: 1000},
		{Name: "mock-model-2", Size: 2000},
	}, nil
}

func (m *MockProvider) defaultPing(ctx context.Context) error {
	return nil
}

func (m *MockProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	return m.ChatFunc(ctx, messages, callback)
}

func (m *MockProvider) ChatWithTools(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	return m.ChatWithToolsFunc(ctx, messages, tools, callback)
}

func (m *MockProvider) ChatWithSearch(ctx context.Context, messages []model.Message, callback model.StreamCallback) (*model.Grounding, error) {
	return m.ChatWithSearchFunc(ctx, messages, callback)
}

func (m *MockProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return m.ListModelsFunc(ctx)
}

func (m *MockProvider) GetModel() string {
	return m.currentModel
}

func (m *MockProvider) SetModel(model string) {
	m.currentModel = model
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}

func (m *MockProvider) Caps() model.Caps {
	return m.CapsValue
}
