package turn

import (
	"time"

	"datui/model"
)

// Aggregator assembles the in-progress assistant message. Fragments are
// applied in arrival order, never reordered or deduplicated, and every
// mutation publishes a snapshot so a caller can render partial
// progress. Consumers observing the message between arrivals see a
// valid prefix, never a torn state.
type Aggregator struct {
	msg      model.Message
	onUpdate func(model.Message)
}

// NewAggregator creates an aggregator for one assistant turn. onUpdate
// may be nil when no incremental rendering is wanted.
func NewAggregator(onUpdate func(model.Message)) *Aggregator {
	return &Aggregator{
		msg: model.Message{
			Role:      "assistant",
			Timestamp: time.Now(),
		},
		onUpdate: onUpdate,
	}
}

func (a *Aggregator) publish() {
	if a.onUpdate != nil {
		a.onUpdate(a.msg)
	}
}

// AppendText appends a streamed text fragment.
func (a *Aggregator) AppendText(fragment string) {
	if fragment == "" {
		return
	}
	a.msg.Content += fragment
	a.publish()
}

// AddToolCall records one executed tool call, in call order. Chart,
// card and image payloads are lifted onto the message so the renderer
// finds them without walking the tool-call record.
func (a *Aggregator) AddToolCall(call model.ToolCall) {
	a.msg.ToolCalls = append(a.msg.ToolCalls, call)

	switch call.Result.Kind {
	case model.ResultChart:
		if call.Result.Chart != nil {
			a.msg.Charts = append(a.msg.Charts, *call.Result.Chart)
		}
	case model.ResultCard:
		if call.Result.Card != nil {
			a.msg.Cards = append(a.msg.Cards, *call.Result.Card)
		}
	}
	if call.Result.Image != nil {
		a.msg.Images = append(a.msg.Images, *call.Result.Image)
	}

	a.publish()
}

// SetParts installs the terminal structured-parts bundle. Once present
// it supersedes plain text rendering for this message.
func (a *Aggregator) SetParts(parts []model.Part) {
	if len(parts) == 0 {
		return
	}
	a.msg.Parts = parts
	a.publish()
}

// SetGrounding attaches citation metadata from a search-enabled turn.
func (a *Aggregator) SetGrounding(g *model.Grounding) {
	if g == nil {
		return
	}
	a.msg.Grounding = g
	a.publish()
}

// Fail replaces nothing: already-applied fragments are kept and the
// error is appended as the final visible content.
func (a *Aggregator) Fail(err error) {
	if a.msg.Content != "" {
		a.msg.Content += "\n\n"
	}
	a.msg.Content += "Error: " + err.Error()
	a.publish()
}

// Message returns the current snapshot.
func (a *Aggregator) Message() model.Message {
	return a.msg
}
