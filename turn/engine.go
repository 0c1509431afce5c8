// Package turn runs one assistant turn end to end: routing the user
// message to an execution mode, driving the provider, executing tool
// calls against the active engine, and aggregating fragments into a
// single assistant message that updates incrementally.
package turn

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"datui/model"
)

// Engine is the executor surface both attachment engines present to the
// tool-call loop. Execute never returns a Go error for user-input
// problems (unresolvable column, empty dataset); those come back as
// error-kind results the model can react to.
type Engine interface {
	Catalog() []mcptypes.Tool
	Execute(ctx context.Context, name string, args map[string]any) model.ToolResult
}

// Round ceilings for the tool-call loop. The structured-record catalog
// gets more rounds because image generation and record selection chain
// more calls per question.
const (
	TableRoundLimit  = 5
	RecordRoundLimit = 8
)
