package provider

import (
	"context"
	"fmt"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"datui/model"
	"datui/tools"
)

// OpenAIProvider implements model.Provider using the official OpenAI Go
// SDK. It also serves any OpenAI-compatible endpoint (OpenRouter) via a
// different base URL; see the factory.
type OpenAIProvider struct {
	client     openai.Client
	model      string
	baseURL    string
	apiKey     string
	providerID string
}

// NewOpenAIProvider creates an OpenAI provider instance.
//
// baseURL defaults to "https://api.openai.com/v1"; apiKey is required;
// model defaults to "gpt-4o-mini".
func NewOpenAIProvider(baseURL, apiKey, modelName string) (*OpenAIProvider, error) {
	return newOpenAICompatible(baseURL, apiKey, modelName, "openai")
}

func newOpenAICompatible(baseURL, apiKey, modelName, providerID string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", providerID)
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &OpenAIProvider{
		client:     client,
		model:      modelName,
		baseURL:    baseURL,
		apiKey:     apiKey,
		providerID: providerID,
	}, nil
}

// Chat implements model.Provider.Chat by delegating to ChatWithTools
// with no tools.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	return p.ChatWithTools(ctx, messages, nil, callback)
}

// ChatWithTools implements model.Provider.ChatWithTools with streaming.
func (p *OpenAIProvider) ChatWithTools(ctx context.Context, messages []model.Message, catalog []mcptypes.Tool, callback model.StreamCallback) error {
	params := p.buildParams(messages, catalog)
	return p.stream(ctx, params, callback, nil)
}

// ChatWithSearch implements model.Provider.ChatWithSearch by enabling
// the web_search option and collecting URL-citation annotations from the
// accumulated response.
func (p *OpenAIProvider) ChatWithSearch(ctx context.Context, messages []model.Message, callback model.StreamCallback) (*model.Grounding, error) {
	params := p.buildParams(messages, nil)
	params.WebSearchOptions = openai.ChatCompletionNewParamsWebSearchOptions{}

	grounding := &model.Grounding{}
	if err := p.stream(ctx, params, callback, grounding); err != nil {
		return nil, err
	}
	if len(grounding.Citations) == 0 {
		return nil, nil
	}
	return grounding, nil
}

func (p *OpenAIProvider) buildParams(messages []model.Message, catalog []mcptypes.Tool) openai.ChatCompletionNewParams {
	withInstructions := messages
	if len(catalog) > 0 {
		instruction := model.Message{
			Role:    "system",
			Content: buildOpenAIToolInstructions(catalog),
		}
		withInstructions = append([]model.Message{instruction}, messages...)
	}

	params := openai.ChatCompletionNewParams{
		Messages: convertToOpenAIMessages(withInstructions),
		Model:    openai.ChatModel(p.model),
	}
	if len(catalog) > 0 {
		params.Tools = tools.ToOpenAITools(catalog)
	}
	return params
}

// stream runs one streaming completion. Tool calls surface through the
// callback as they finish; when grounding is non-nil, URL citations are
// collected from the accumulated message after the stream ends.
func (p *OpenAIProvider) stream(ctx context.Context, params openai.ChatCompletionNewParams, callback model.StreamCallback, grounding *model.Grounding) error {
	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	acc := openai.ChatCompletionAccumulator{}

	var apiToolCallsDetected bool
	var contentBuilder strings.Builder

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)

		if tool, ok := acc.JustFinishedToolCall(); ok {
			apiToolCallsDetected = true
			if callback != nil {
				call := model.ToolCall{
					Name:      tool.Name,
					Arguments: ParseToolArguments(tool.Arguments),
				}
				if err := callback("", []model.ToolCall{call}); err != nil {
					return err
				}
			}
		}

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			content := chunk.Choices[0].Delta.Content
			contentBuilder.WriteString(content)
			if callback != nil {
				if err := callback(content, nil); err != nil {
					return err
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("%s streaming error: %w", p.providerID, err)
	}

	// Some models write tool calls into the text stream instead of the
	// native channel.
	if !apiToolCallsDetected && callback != nil {
		if leaked := ParseLeakedJSONToolCalls(contentBuilder.String()); len(leaked) > 0 {
			if err := callback("", leaked); err != nil {
				return err
			}
		}
	}

	if grounding != nil && len(acc.Choices) > 0 {
		for _, ann := range acc.Choices[0].Message.Annotations {
			if ann.Type != "url_citation" {
				continue
			}
			grounding.Citations = append(grounding.Citations, model.Citation{
				Title: ann.URLCitation.Title,
				URL:   ann.URLCitation.URL,
			})
		}
	}

	return nil
}

// ListModels implements model.Provider.ListModels.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	modelsPage, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s models: %w", p.providerID, err)
	}

	result := make([]model.ModelInfo, 0, len(modelsPage.Data))
	for _, m := range modelsPage.Data {
		result = append(result, model.ModelInfo{
			Name:     m.ID,
			Size:     0, // not reported by the API
			Provider: p.providerID,
		})
	}

	return result, nil
}

// GetModel implements model.Provider.GetModel.
func (p *OpenAIProvider) GetModel() string {
	return p.model
}

// SetModel implements model.Provider.SetModel.
func (p *OpenAIProvider) SetModel(modelName string) {
	p.model = modelName
}

// Ping implements model.Provider.Ping by attempting to list models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", p.providerID, err)
	}
	return nil
}

// Caps reports web search support. Only the real OpenAI endpoint
// honors web_search options; OpenRouter routes vary by model.
func (p *OpenAIProvider) Caps() model.Caps {
	return model.Caps{Search: p.providerID == "openai"}
}

// convertToOpenAIMessages converts datui messages to the OpenAI chat
// format. Tool results are folded into user messages: the turn engine
// already serializes results to text, and the chat-completions tool
// protocol requires call IDs datui does not track.
func convertToOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		text := msg.PlainText()
		switch msg.Role {
		case "system":
			result = append(result, openai.SystemMessage(text))
		case "assistant":
			result = append(result, openai.AssistantMessage(text))
		default: // "user", "tool" and anything unknown
			result = append(result, openai.UserMessage(text))
		}
	}
	return result
}
