package turn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"datui/config"
	"datui/model"
	"datui/records"
	"datui/router"
	"datui/tabular"
)

// Status is the terminal state of a turn.
type Status int

const (
	// StatusDone means the model produced a final response.
	StatusDone Status = iota
	// StatusFailed means an unrecoverable provider error occurred.
	StatusFailed
	// StatusRoundsExhausted means the round ceiling was reached without
	// a final text response. Accumulated partial output is surfaced
	// rather than failing the turn.
	StatusRoundsExhausted
	// StatusAborted means the external abort flag was set. Applied
	// fragments are kept, not rolled back.
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	case StatusRoundsExhausted:
		return "rounds-exhausted"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// errAborted stops a provider stream from inside the callback; it is
// translated to StatusAborted rather than surfaced as a failure.
var errAborted = errors.New("turn aborted")

// Loop drives the tool-call state machine for one assistant turn:
// AWAITING_MODEL → EXECUTING_TOOLS → AWAITING_MODEL … until the model
// answers without tool calls, the round ceiling is hit, or the abort
// flag is set. The abort flag is polled between rounds and on every
// streamed chunk.
type Loop struct {
	Provider   model.Provider
	Engine     Engine
	RoundLimit int
	Abort      *atomic.Bool
}

func (l *Loop) aborted() bool {
	return l.Abort != nil && l.Abort.Load()
}

// Run executes the loop against a copy of history. Tool executions are
// awaited one at a time; the recorded tool-call order is the order the
// provider requested them.
func (l *Loop) Run(ctx context.Context, history []model.Message, agg *Aggregator) (Status, error) {
	catalog := l.Engine.Catalog()
	convo := append([]model.Message(nil), history...)

	limit := l.RoundLimit
	if limit <= 0 {
		limit = TableRoundLimit
	}

	for round := 0; round < limit; round++ {
		if l.aborted() {
			return StatusAborted, nil
		}

		var pending []model.ToolCall
		cb := func(chunk string, calls []model.ToolCall) error {
			if l.aborted() {
				return errAborted
			}
			agg.AppendText(chunk)
			pending = append(pending, calls...)
			return nil
		}

		if err := l.Provider.ChatWithTools(ctx, convo, catalog, cb); err != nil {
			if errors.Is(err, errAborted) {
				return StatusAborted, nil
			}
			return StatusFailed, err
		}

		if len(pending) == 0 {
			return StatusDone, nil
		}

		if config.Debug {
			config.DebugLog.Printf("[Turn] round %d: %d tool call(s)", round+1, len(pending))
		}

		// The model needs to see its own requests before the results.
		convo = append(convo, model.Message{
			Role:    "assistant",
			Content: describeCalls(pending),
		})

		for _, call := range pending {
			call.Result = l.Engine.Execute(ctx, call.Name, call.Arguments)
			agg.AddToolCall(call)
			convo = append(convo, model.Message{
				Role:    "tool",
				Content: fmt.Sprintf("%s -> %s", call.Name, call.Result.MarshalProvider()),
			})
		}
	}

	return StatusRoundsExhausted, nil
}

// describeCalls serializes requested calls for the conversation record.
func describeCalls(calls []model.ToolCall) string {
	summary := make([]map[string]any, len(calls))
	for i, c := range calls {
		summary[i] = map[string]any{"tool": c.Name, "arguments": c.Arguments}
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return "tool calls requested"
	}
	return string(raw)
}

// Runner executes one full user turn: route, prompt, dispatch to the
// selected mode, aggregate. A session runs at most one turn at a time;
// all mutable state here is confined to that single turn.
type Runner struct {
	Provider model.Provider
	State    *model.AttachmentState
	// Preamble is user-configured system prompt text placed ahead of the
	// generated prompt.
	Preamble string
	// Images backs the generate_image tool in record mode; nil disables it.
	Images records.ImageGenerator
	Abort  *atomic.Bool
}

// Outcome is the completed turn.
type Outcome struct {
	Message model.Message
	Status  Status
	Mode    router.Mode
}

// Run executes the turn. history is the prior conversation without the
// new user text; onUpdate receives a snapshot of the in-progress
// assistant message after every applied fragment.
func (r *Runner) Run(ctx context.Context, history []model.Message, userText string, onUpdate func(model.Message)) Outcome {
	decision := router.Decide(userText, router.State{
		TableLoaded:   r.State.Table() != nil,
		RecordsLoaded: r.State.Records() != nil,
		FreshDrop:     r.State.TakeFresh(),
	})

	if config.Debug {
		config.DebugLog.Printf("[Turn] mode=%s encode=%v", decision.Mode, decision.EncodeTable)
	}

	agg := NewAggregator(onUpdate)

	convo := make([]model.Message, 0, len(history)+2)
	if sys := BuildSystemPrompt(decision, r.State); sys != "" {
		if r.Preamble != "" {
			sys = r.Preamble + "\n\n" + sys
		}
		convo = append(convo, model.Message{Role: "system", Content: sys})
	}
	convo = append(convo, history...)
	convo = append(convo, model.Message{Role: "user", Content: userText})

	var status Status
	var err error

	switch decision.Mode {
	case router.ModeTableTools:
		loop := &Loop{
			Provider:   r.Provider,
			Engine:     tabular.Engine{Table: r.State.Table()},
			RoundLimit: TableRoundLimit,
			Abort:      r.Abort,
		}
		status, err = loop.Run(ctx, convo, agg)

	case router.ModeRecordTools:
		loop := &Loop{
			Provider:   r.Provider,
			Engine:     records.Engine{RecordsCtx: r.State.Records(), Images: r.Images},
			RoundLimit: RecordRoundLimit,
			Abort:      r.Abort,
		}
		status, err = loop.Run(ctx, convo, agg)

	case router.ModeCodeExecution:
		status, err = r.streamOnce(ctx, convo, agg, false)
		if status == StatusDone {
			agg.SetParts(SplitParts(agg.Message().Content))
		}

	default: // router.ModeStream
		status, err = r.streamOnce(ctx, convo, agg, r.Provider.Caps().Search)
	}

	if err != nil {
		agg.Fail(err)
	}

	return Outcome{
		Message: agg.Message(),
		Status:  status,
		Mode:    decision.Mode,
	}
}

// streamOnce runs a single streaming completion with no tool catalog,
// optionally through the provider's search capability.
func (r *Runner) streamOnce(ctx context.Context, convo []model.Message, agg *Aggregator, search bool) (Status, error) {
	cb := func(chunk string, _ []model.ToolCall) error {
		if r.Abort != nil && r.Abort.Load() {
			return errAborted
		}
		agg.AppendText(chunk)
		return nil
	}

	var err error
	if search {
		var grounding *model.Grounding
		grounding, err = r.Provider.ChatWithSearch(ctx, convo, cb)
		agg.SetGrounding(grounding)
	} else {
		err = r.Provider.Chat(ctx, convo, cb)
	}

	if err != nil {
		if errors.Is(err, errAborted) {
			return StatusAborted, nil
		}
		return StatusFailed, err
	}
	return StatusDone, nil
}
