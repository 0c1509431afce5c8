// Package tools adapts the internal tool declarations (mcp.Tool values)
// to the native function-schema shape each provider expects. The mapping
// is stateless and lossless for the schema subset the engines actually
// declare: string, number, boolean, array and object. Type tokens are
// normalized to lowercase on the way in; anything unrecognized passes
// through unchanged.
package tools

import (
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
)

// knownTypeTokens is the JSON-Schema subset the engines declare.
var knownTypeTokens = map[string]bool{
	"string":  true,
	"number":  true,
	"integer": true,
	"boolean": true,
	"array":   true,
	"object":  true,
	"null":    true,
}

// NormalizeType lowercases a recognized type token. Unknown tokens are
// returned unchanged so provider-specific extensions survive a round trip.
func NormalizeType(token string) string {
	lower := strings.ToLower(token)
	if knownTypeTokens[lower] {
		return lower
	}
	return token
}

// normalizeSchema returns a copy of the schema properties with type
// tokens normalized, recursing into nested property maps and items.
func normalizeSchema(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for name, value := range props {
		out[name] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch k {
		case "type":
			switch t := v.(type) {
			case string:
				out[k] = NormalizeType(t)
			case []any:
				tokens := make([]any, len(t))
				for i, tv := range t {
					if s, ok := tv.(string); ok {
						tokens[i] = NormalizeType(s)
					} else {
						tokens[i] = tv
					}
				}
				out[k] = tokens
			default:
				out[k] = v
			}
		case "properties":
			if nested, ok := v.(map[string]any); ok {
				out[k] = normalizeSchema(nested)
			} else {
				out[k] = v
			}
		case "items", "anyOf":
			out[k] = normalizeChild(v)
		default:
			out[k] = v
		}
	}
	return out
}

func normalizeChild(v any) any {
	switch child := v.(type) {
	case map[string]any:
		return normalizeValue(child)
	case []any:
		out := make([]any, len(child))
		for i, item := range child {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

// ToOllamaTools converts the internal catalog to the Ollama API tool format.
func ToOllamaTools(catalog []mcptypes.Tool) []api.Tool {
	out := make([]api.Tool, 0, len(catalog))
	for _, tool := range catalog {
		out = append(out, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  toOllamaParameters(tool.InputSchema),
			},
		})
	}
	return out
}

func toOllamaParameters(schema mcptypes.ToolInputSchema) api.ToolFunctionParameters {
	params := api.ToolFunctionParameters{
		Type:       NormalizeType(schema.Type),
		Required:   schema.Required,
		Properties: make(map[string]api.ToolProperty),
	}
	if schema.Defs != nil {
		params.Defs = schema.Defs
	}
	for name, value := range normalizeSchema(schema.Properties) {
		params.Properties[name] = toOllamaProperty(value)
	}
	return params
}

// toOllamaProperty maps one property's schema fragment onto the typed
// Ollama property struct. Fragments that are not already maps are pushed
// through a JSON round trip first.
func toOllamaProperty(value any) api.ToolProperty {
	prop := api.ToolProperty{}

	m, ok := value.(map[string]any)
	if !ok {
		raw, err := json.Marshal(value)
		if err != nil {
			return prop
		}
		if err := json.Unmarshal(raw, &m); err != nil {
			return prop
		}
		m = normalizeValue(m).(map[string]any)
	}

	if typeVal, ok := m["type"]; ok {
		switch t := typeVal.(type) {
		case string:
			prop.Type = api.PropertyType{t}
		case []string:
			prop.Type = api.PropertyType(t)
		case []any:
			tokens := make([]string, 0, len(t))
			for _, v := range t {
				if s, ok := v.(string); ok {
					tokens = append(tokens, s)
				}
			}
			prop.Type = api.PropertyType(tokens)
		}
	}
	if desc, ok := m["description"].(string); ok {
		prop.Description = desc
	}
	if enumVal, ok := m["enum"].([]any); ok {
		prop.Enum = enumVal
	}
	if items, ok := m["items"]; ok {
		prop.Items = items
	}
	if anyOf, ok := m["anyOf"].([]any); ok {
		props := make([]api.ToolProperty, 0, len(anyOf))
		for _, item := range anyOf {
			props = append(props, toOllamaProperty(item))
		}
		prop.AnyOf = props
	}
	return prop
}

// ToOpenAITools converts the internal catalog to the OpenAI function-tool
// format. Both sides are JSON Schema, so the conversion is a field-name
// reshuffle on top of normalization.
func ToOpenAITools(catalog []mcptypes.Tool) []openai.ChatCompletionToolUnionParam {
	if len(catalog) == 0 {
		return nil
	}

	out := make([]openai.ChatCompletionToolUnionParam, len(catalog))
	for i, tool := range catalog {
		params := openai.FunctionParameters{
			"type":       NormalizeType(tool.InputSchema.Type),
			"properties": normalizeSchema(tool.InputSchema.Properties),
		}
		if len(tool.InputSchema.Required) > 0 {
			params["required"] = tool.InputSchema.Required
		}
		if tool.InputSchema.Defs != nil {
			params["$defs"] = tool.InputSchema.Defs
		}

		out[i] = openai.ChatCompletionFunctionTool(
			openai.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  params,
			},
		)
	}
	return out
}

// ToAnthropicTools converts the internal catalog to Anthropic's tool-use
// format. The input_schema type defaults to "object" when omitted, which
// matches every catalog the engines produce.
func ToAnthropicTools(catalog []mcptypes.Tool) []anthropic.ToolUnionParam {
	if len(catalog) == 0 {
		return nil
	}

	out := make([]anthropic.ToolUnionParam, len(catalog))
	for i, tool := range catalog {
		schema := anthropic.ToolInputSchemaParam{
			Properties: normalizeSchema(tool.InputSchema.Properties),
		}
		if len(tool.InputSchema.Required) > 0 {
			schema.Required = tool.InputSchema.Required
		}
		if tool.InputSchema.Defs != nil {
			schema.ExtraFields = map[string]any{
				"$defs": tool.InputSchema.Defs,
			}
		}

		out[i] = anthropic.ToolUnionParamOfTool(schema, tool.Name)
		if tool.Description != "" {
			out[i].OfTool.Description = anthropic.String(tool.Description)
		}
	}
	return out
}

// Merge concatenates catalogs for combined modes. Later catalogs win on a
// name collision so a caller can override a default declaration.
func Merge(catalogs ...[]mcptypes.Tool) []mcptypes.Tool {
	seen := make(map[string]int)
	var out []mcptypes.Tool
	for _, catalog := range catalogs {
		for _, tool := range catalog {
			if idx, ok := seen[tool.Name]; ok {
				out[idx] = tool
				continue
			}
			seen[tool.Name] = len(out)
			out = append(out, tool)
		}
	}
	return out
}
