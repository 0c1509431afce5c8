package turn

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"datui/model"
	"datui/provider/testutil"
	"datui/router"
	"datui/tabular"
)

const sampleCSV = `title,views,duration
First Steps,1200,10:30
Deep Dive,4800,22:15
Quick Tips,300,02:45
`

func loadTestTable(t *testing.T) *model.TableContext {
	t.Helper()
	table, err := tabular.Load("videos.csv", sampleCSV)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return table
}

func tableState(t *testing.T) *model.AttachmentState {
	t.Helper()
	state := &model.AttachmentState{}
	state.SetTable(loadTestTable(t))
	state.TakeFresh() // consume the fresh-drop flag from SetTable
	return state
}

func TestLoopStopsOnPlainResponse(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	history := testutil.TestMessages()
	var seen int
	mock.ChatWithToolsFunc = func(_ context.Context, msgs []model.Message, _ []mcptypes.Tool, cb model.StreamCallback) error {
		seen = len(msgs)
		return cb("All three videos average 2100 views.", nil)
	}

	agg := NewAggregator(nil)
	loop := &Loop{
		Provider: mock,
		Engine:   tabular.Engine{Table: loadTestTable(t)},
	}

	status, err := loop.Run(context.Background(), history, agg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if status != StatusDone {
		t.Errorf("status = %v, want StatusDone", status)
	}
	if seen != len(history) {
		t.Errorf("provider saw %d messages, want %d", seen, len(history))
	}
	if got := agg.Message().Content; !strings.Contains(got, "2100") {
		t.Errorf("Content = %q", got)
	}
}

func TestLoopExecutesToolsThenAnswers(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	round := 0
	var toolMessages []string
	mock.ChatWithToolsFunc = func(_ context.Context, msgs []model.Message, _ []mcptypes.Tool, cb model.StreamCallback) error {
		round++
		for _, m := range msgs {
			if m.Role == "tool" {
				toolMessages = append(toolMessages, m.Content)
			}
		}
		if round == 1 {
			return cb("", []model.ToolCall{{
				Name:      "aggregate_column",
				Arguments: map[string]any{"column": "views", "op": "mean"},
			}})
		}
		return cb("The mean is 2100 views.", nil)
	}

	agg := NewAggregator(nil)
	loop := &Loop{
		Provider: mock,
		Engine:   tabular.Engine{Table: loadTestTable(t)},
	}

	status, err := loop.Run(context.Background(), testutil.SingleUserMessage("what's the average views"), agg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if status != StatusDone {
		t.Errorf("status = %v, want StatusDone", status)
	}
	if round != 2 {
		t.Errorf("rounds = %d, want 2", round)
	}

	msg := agg.Message()
	if len(msg.ToolCalls) != 1 || msg.ToolCalls[0].Name != "aggregate_column" {
		t.Fatalf("ToolCalls = %+v", msg.ToolCalls)
	}
	if msg.ToolCalls[0].Result.Kind != model.ResultValue {
		t.Errorf("Result.Kind = %v, want ResultValue", msg.ToolCalls[0].Result.Kind)
	}

	// Round two must see the executed result as a tool-role message.
	if len(toolMessages) != 1 {
		t.Fatalf("tool messages in round 2 = %d, want 1", len(toolMessages))
	}
	if !strings.HasPrefix(toolMessages[0], "aggregate_column -> ") {
		t.Errorf("tool message = %q", toolMessages[0])
	}
}

func TestLoopRoundsExhausted(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	rounds := 0
	mock.ChatWithToolsFunc = func(_ context.Context, _ []model.Message, _ []mcptypes.Tool, cb model.StreamCallback) error {
		rounds++
		return cb("", []model.ToolCall{{
			Name:      "aggregate_column",
			Arguments: map[string]any{"column": "views", "op": "sum"},
		}})
	}

	agg := NewAggregator(nil)
	loop := &Loop{
		Provider:   mock,
		Engine:     tabular.Engine{Table: loadTestTable(t)},
		RoundLimit: 3,
	}

	status, err := loop.Run(context.Background(), nil, agg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if status != StatusRoundsExhausted {
		t.Errorf("status = %v, want StatusRoundsExhausted", status)
	}
	if rounds != 3 {
		t.Errorf("rounds = %d, want 3", rounds)
	}
	// Partial history is kept: one executed call per round.
	if got := len(agg.Message().ToolCalls); got != 3 {
		t.Errorf("ToolCalls = %d, want 3", got)
	}
}

func TestLoopAbortKeepsAppliedFragments(t *testing.T) {
	var abort atomic.Bool
	mock := testutil.NewMockProvider("test-model")
	mock.ChatWithToolsFunc = func(_ context.Context, _ []model.Message, _ []mcptypes.Tool, cb model.StreamCallback) error {
		if err := cb("First fragment. ", nil); err != nil {
			return err
		}
		abort.Store(true)
		return cb("Second fragment.", nil)
	}

	agg := NewAggregator(nil)
	loop := &Loop{
		Provider: mock,
		Engine:   tabular.Engine{Table: loadTestTable(t)},
		Abort:    &abort,
	}

	status, err := loop.Run(context.Background(), nil, agg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if status != StatusAborted {
		t.Errorf("status = %v, want StatusAborted", status)
	}
	if got := agg.Message().Content; got != "First fragment. " {
		t.Errorf("Content = %q, want only pre-abort fragment", got)
	}
}

func TestLoopProviderError(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	mock.ChatWithToolsFunc = func(_ context.Context, _ []model.Message, _ []mcptypes.Tool, _ model.StreamCallback) error {
		return errors.New("connection refused")
	}

	agg := NewAggregator(nil)
	loop := &Loop{
		Provider: mock,
		Engine:   tabular.Engine{Table: loadTestTable(t)},
	}

	status, err := loop.Run(context.Background(), nil, agg)
	if err == nil {
		t.Fatal("expected error")
	}
	if status != StatusFailed {
		t.Errorf("status = %v, want StatusFailed", status)
	}
}

func TestRunnerTableMode(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	var sawSystem string
	mock.ChatWithToolsFunc = func(_ context.Context, msgs []model.Message, tools []mcptypes.Tool, cb model.StreamCallback) error {
		if len(msgs) > 0 && msgs[0].Role == "system" {
			sawSystem = msgs[0].Content
		}
		if len(tools) == 0 {
			t.Error("table mode should forward a tool catalog")
		}
		return cb("Deep Dive has the most views.", nil)
	}

	runner := &Runner{Provider: mock, State: tableState(t)}
	outcome := runner.Run(context.Background(), nil, "which video has the most views?", nil)

	if outcome.Status != StatusDone {
		t.Errorf("Status = %v, want StatusDone", outcome.Status)
	}
	if outcome.Mode != router.ModeTableTools {
		t.Errorf("Mode = %v, want ModeTableTools", outcome.Mode)
	}
	if !strings.Contains(sawSystem, "videos.csv") {
		t.Errorf("system prompt missing dataset digest: %q", sawSystem)
	}
}

func TestRunnerCodeExecutionSynthesizesParts(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	var sawSystem string
	mock.ChatFunc = func(_ context.Context, msgs []model.Message, cb model.StreamCallback) error {
		if len(msgs) > 0 && msgs[0].Role == "system" {
			sawSystem = msgs[0].Content
		}
		return cb("Fit like this:\n```python\nimport numpy as np\n```\nDone.", nil)
	}

	runner := &Runner{Provider: mock, State: tableState(t)}
	outcome := runner.Run(context.Background(), nil, "run a regression of views on duration", nil)

	if outcome.Mode != router.ModeCodeExecution {
		t.Fatalf("Mode = %v, want ModeCodeExecution", outcome.Mode)
	}
	if outcome.Status != StatusDone {
		t.Fatalf("Status = %v, want StatusDone", outcome.Status)
	}
	// Python-only analysis with a loaded table encodes the bulk data.
	if !strings.Contains(sawSystem, "base64") {
		t.Errorf("system prompt missing encoded table: %.120q", sawSystem)
	}

	var kinds []model.PartKind
	for _, p := range outcome.Message.Parts {
		kinds = append(kinds, p.Kind)
	}
	want := []model.PartKind{model.PartText, model.PartCode, model.PartText}
	if len(kinds) != len(want) {
		t.Fatalf("part kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("part kinds = %v, want %v", kinds, want)
		}
	}
}

func TestRunnerStreamModeWithSearch(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	mock.CapsValue = model.Caps{Search: true}
	mock.ChatWithSearchFunc = func(_ context.Context, _ []model.Message, cb model.StreamCallback) (*model.Grounding, error) {
		if err := cb("Latest release is 3.2.", nil); err != nil {
			return nil, err
		}
		return &model.Grounding{
			Citations: []model.Citation{{Title: "Release notes", URL: "https://example.com/notes"}},
		}, nil
	}

	runner := &Runner{Provider: mock, State: &model.AttachmentState{}}
	outcome := runner.Run(context.Background(), nil, "what is the latest release?", nil)

	if outcome.Mode != router.ModeStream {
		t.Errorf("Mode = %v, want ModeStream", outcome.Mode)
	}
	if outcome.Message.Grounding == nil || len(outcome.Message.Grounding.Citations) != 1 {
		t.Errorf("grounding missing: %+v", outcome.Message.Grounding)
	}
}

func TestRunnerFreshDropStreams(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	usedTools := false
	mock.ChatWithToolsFunc = func(_ context.Context, _ []model.Message, _ []mcptypes.Tool, cb model.StreamCallback) error {
		usedTools = true
		return cb("ok", nil)
	}
	var system string
	mock.ChatFunc = func(_ context.Context, msgs []model.Message, cb model.StreamCallback) error {
		if len(msgs) > 0 && msgs[0].Role == "system" {
			system = msgs[0].Content
		}
		return cb("Loaded videos.csv with 3 rows.", nil)
	}

	state := &model.AttachmentState{}
	state.SetTable(loadTestTable(t)) // fresh flag left set

	runner := &Runner{Provider: mock, State: state}
	outcome := runner.Run(context.Background(), nil, "here is my data", nil)

	if outcome.Mode != router.ModeStream {
		t.Errorf("Mode = %v, want ModeStream on fresh drop", outcome.Mode)
	}
	if usedTools {
		t.Error("fresh drop turn should not enter the tool loop")
	}
	// The just-loaded attachment is described to the model in plain text.
	if !strings.Contains(system, "videos.csv") {
		t.Errorf("fresh-drop system prompt missing attachment digest:\n%s", system)
	}
}

func TestRunnerProviderFailureSurfacesError(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	mock.ChatFunc = func(_ context.Context, _ []model.Message, _ model.StreamCallback) error {
		return errors.New("model not found")
	}

	runner := &Runner{Provider: mock, State: &model.AttachmentState{}}
	outcome := runner.Run(context.Background(), nil, "hello", nil)

	if outcome.Status != StatusFailed {
		t.Errorf("Status = %v, want StatusFailed", outcome.Status)
	}
	if !strings.Contains(outcome.Message.Content, "model not found") {
		t.Errorf("Content = %q", outcome.Message.Content)
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusDone, "done"},
		{StatusFailed, "failed"},
		{StatusRoundsExhausted, "rounds-exhausted"},
		{StatusAborted, "aborted"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
