package provider

import (
	"encoding/json"
	"strings"

	"github.com/ollama/ollama/api"

	"datui/model"
)

// ConvertToOllamaMessages converts datui model.Message to Ollama api.Message.
//
// Uses the plain-text projection of each message so structured parts and
// tool results serialize into something the local model can read. Tool
// results keep the "tool" role, which the Ollama chat API understands.
//
// Timestamps, charts and grounding metadata are not preserved; those are
// datui-layer concerns the Ollama API has no fields for.
func ConvertToOllamaMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		result[i] = api.Message{
			Role:    msg.Role,
			Content: msg.PlainText(),
		}
	}
	return result
}

// ParseToolArguments parses a JSON arguments string into a map.
// Used by the OpenAI-compatible providers when decoding tool calls.
func ParseToolArguments(argsJSON string) map[string]any {
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return make(map[string]any)
	}
	return args
}

// ConvertToProviderToolCalls converts Ollama api.ToolCall to the
// provider-agnostic model.ToolCall. Returns nil for empty input,
// matching the Ollama API's nil semantics.
func ConvertToProviderToolCalls(ollamaCalls []api.ToolCall) []model.ToolCall {
	if len(ollamaCalls) == 0 {
		return nil
	}

	result := make([]model.ToolCall, len(ollamaCalls))
	for i, call := range ollamaCalls {
		result[i] = model.ToolCall{
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		}
	}
	return result
}

// ConvertFromProviderToolCalls converts model.ToolCall back to Ollama
// api.ToolCall. Primarily used by tests.
func ConvertFromProviderToolCalls(providerCalls []model.ToolCall) []api.ToolCall {
	if len(providerCalls) == 0 {
		return nil
	}

	result := make([]api.ToolCall, len(providerCalls))
	for i, call := range providerCalls {
		result[i] = api.ToolCall{
			Function: api.ToolCallFunction{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		}
	}
	return result
}

// leakedCall is the shape models emit when they write a tool call into
// the text stream instead of the native tool-call channel. Some models
// use "arguments", others "parameters".
type leakedCall struct {
	Name       string         `json:"name"`
	Arguments  map[string]any `json:"arguments"`
	Parameters map[string]any `json:"parameters"`
}

// ParseLeakedJSONToolCalls scans assistant text for tool calls the model
// leaked as JSON instead of using the native tool-call mechanism. It
// checks fenced ```json blocks first, then the whole trimmed content.
// Returns nil when nothing parseable is found.
func ParseLeakedJSONToolCalls(content string) []model.ToolCall {
	var calls []model.ToolCall

	for _, candidate := range leakedCandidates(content) {
		var lc leakedCall
		if err := json.Unmarshal([]byte(candidate), &lc); err != nil || lc.Name == "" {
			continue
		}
		args := lc.Arguments
		if args == nil {
			args = lc.Parameters
		}
		if args == nil {
			args = make(map[string]any)
		}
		calls = append(calls, model.ToolCall{Name: lc.Name, Arguments: args})
	}

	return calls
}

// leakedCandidates extracts JSON-object candidates from content: the
// bodies of fenced code blocks plus the content itself when it is a
// bare object.
func leakedCandidates(content string) []string {
	var out []string

	rest := content
	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			break
		}
		rest = rest[start+3:]
		// Skip the language tag line.
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		end := strings.Index(rest, "```")
		if end < 0 {
			break
		}
		body := strings.TrimSpace(rest[:end])
		if strings.HasPrefix(body, "{") {
			out = append(out, body)
		}
		rest = rest[end+3:]
	}

	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		out = append(out, trimmed)
	}

	return out
}
