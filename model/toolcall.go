package model

import "encoding/json"

// ToolCall records one tool invocation requested by the model during an
// assistant turn: the tool name, the arguments the model supplied, and the
// result the executor produced. Tool calls accumulate in arrival order and
// are immutable once the turn completes.
type ToolCall struct {
	Name      string
	Arguments map[string]any
	Result    ToolResult
}

// ResultKind discriminates tool results at the type level.
type ResultKind int

const (
	// ResultValue is a plain structured value.
	ResultValue ResultKind = iota
	// ResultChart carries a chart payload for the renderer.
	ResultChart
	// ResultCard carries a display-card payload (title/thumbnail/url).
	ResultCard
	// ResultError is a recoverable user-input error. It is returned to the
	// model as a tool response so it can retry with different arguments;
	// it never aborts the turn.
	ResultError
)

// ToolResult is the tagged result of a tool execution. Exactly one of the
// payload fields is meaningful, selected by Kind.
type ToolResult struct {
	Kind  ResultKind
	Value map[string]any
	Chart *ChartPayload
	Card  *CardPayload
	Err   string
	// Image is set by tools that produce an image attachment (e.g. image
	// generation); the loop moves it onto the in-progress message.
	Image *ImageAttachment
}

// ValueResult wraps a plain structured value.
func ValueResult(v map[string]any) ToolResult {
	return ToolResult{Kind: ResultValue, Value: v}
}

// ChartResult wraps a chart payload.
func ChartResult(c ChartPayload) ToolResult {
	return ToolResult{Kind: ResultChart, Chart: &c}
}

// CardResult wraps a display-card payload.
func CardResult(c CardPayload) ToolResult {
	return ToolResult{Kind: ResultCard, Card: &c}
}

// ErrorResult wraps a user-input error message. The message should be
// actionable: name the thing that failed to resolve and list the available
// alternatives.
func ErrorResult(msg string) ToolResult {
	return ToolResult{Kind: ResultError, Err: msg}
}

// ProviderPayload renders the result as the structured value fed back to the
// model as a tool response.
func (r ToolResult) ProviderPayload() map[string]any {
	switch r.Kind {
	case ResultChart:
		return map[string]any{
			"chart":  r.Chart.Kind,
			"title":  r.Chart.Title,
			"points": len(r.Chart.Points),
			"note":   "chart rendered for the user",
		}
	case ResultCard:
		return map[string]any{
			"title": r.Card.Title,
			"url":   r.Card.URL,
			"note":  "card displayed to the user",
		}
	case ResultError:
		return map[string]any{"error": r.Err}
	default:
		return r.Value
	}
}

// MarshalProvider serializes the provider payload to compact JSON. A result
// that cannot be marshaled degrades to an error payload instead of failing
// the round.
func (r ToolResult) MarshalProvider() string {
	b, err := json.Marshal(r.ProviderPayload())
	if err != nil {
		return `{"error":"unserializable tool result"}`
	}
	return string(b)
}

// ChartPayload is a structured chart for the renderer. No image is rendered
// here; the payload carries enough to draw a bar/line/scatter chart.
type ChartPayload struct {
	Kind   string
	Title  string
	XLabel string
	YLabel string
	Points []ChartPoint
}

// ChartPoint is one datum of a chart series.
type ChartPoint struct {
	Label string
	Date  string
	Value float64
}

// CardPayload is a display card for a single selected record.
type CardPayload struct {
	Title     string
	Thumbnail string
	URL       string
}
