package provider

import (
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// buildAnthropicToolInstructions creates minimal tool instructions for
// Claude models. Claude is capable but still needs explicit execution
// guidance to compute instead of estimate.
func buildAnthropicToolInstructions(catalog []mcptypes.Tool) string {
	toolNames := []string{}
	for _, tool := range catalog {
		toolNames = append(toolNames, tool.Name)
	}

	return strings.Join([]string{
		"TOOLS: " + strings.Join(toolNames, ", "),
		"",
		"These tools run against the dataset the user attached to this chat.",
		"When the user asks a question about their data:",
		"1. Determine which tool answers it",
		"2. Check if you have all required parameters",
		"3. If yes: call the tool IMMEDIATELY without explanation",
		"4. If no: ask for the missing parameter ONLY",
		"",
		"DO NOT:",
		"- List available tools",
		"- Explain what you're about to do",
		"- Guess values instead of computing them with a tool",
		"",
		"Example:",
		"User: 'what's the average view count?'",
		"You: [call aggregate_column(column='views', op='mean')]",
		"NOT: 'I can compute statistics. What would you like?'",
	}, "\n")
}
