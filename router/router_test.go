package router

import "testing"

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		state      State
		wantMode   Mode
		wantEncode bool
		wantFresh  bool
	}{
		{
			name:       "histogram forces code execution with encoded table",
			text:       "show me a histogram of views",
			state:      State{TableLoaded: true},
			wantMode:   ModeCodeExecution,
			wantEncode: true,
		},
		{
			name:     "histogram without table still enters code execution",
			text:     "draw a histogram of these numbers: 1 2 3",
			state:    State{},
			wantMode: ModeCodeExecution,
		},
		{
			name:     "regression beats record context",
			text:     "run a linear regression on view count over time",
			state:    State{RecordsLoaded: true},
			wantMode: ModeCodeExecution,
		},
		{
			name:     "records active routes to record tools",
			text:     "which video got the most views",
			state:    State{RecordsLoaded: true},
			wantMode: ModeRecordTools,
		},
		{
			name:     "records win over table when both loaded",
			text:     "average duration across these",
			state:    State{TableLoaded: true, RecordsLoaded: true},
			wantMode: ModeRecordTools,
		},
		{
			name:     "table active routes to table tools",
			text:     "what's the average views",
			state:    State{TableLoaded: true},
			wantMode: ModeTableTools,
		},
		{
			name:      "fresh drop skips table tools",
			text:      "what's the average views",
			state:     State{TableLoaded: true, FreshDrop: true},
			wantMode:  ModeStream,
			wantFresh: true,
		},
		{
			name:     "plot keyword steers table turn to code execution",
			text:     "plot views against likes",
			state:    State{TableLoaded: true},
			wantMode: ModeCodeExecution,
		},
		{
			name:     "code intent without records enters code execution",
			text:     "write code in python to dedupe this list",
			state:    State{},
			wantMode: ModeCodeExecution,
		},
		{
			name:     "code intent with records falls through to streaming",
			text:     "use pandas to rank these",
			state:    State{RecordsLoaded: true},
			wantMode: ModeStream,
		},
		{
			name:     "plain chat streams",
			text:     "hello there",
			state:    State{},
			wantMode: ModeStream,
		},
		{
			name:     "keyword match is case-insensitive",
			text:     "Show a HEATMAP please",
			state:    State{TableLoaded: true},
			wantMode: ModeCodeExecution,
			wantEncode: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.text, tt.state)
			if got.Mode != tt.wantMode {
				t.Errorf("Decide(%q) mode = %s, want %s", tt.text, got.Mode, tt.wantMode)
			}
			if got.EncodeTable != tt.wantEncode {
				t.Errorf("Decide(%q) encode = %v, want %v", tt.text, got.EncodeTable, tt.wantEncode)
			}
			if got.FreshDrop != tt.wantFresh {
				t.Errorf("Decide(%q) fresh = %v, want %v", tt.text, got.FreshDrop, tt.wantFresh)
			}
		})
	}
}

func TestModeString(t *testing.T) {
	cases := map[Mode]string{
		ModeStream:        "stream",
		ModeTableTools:    "table-tools",
		ModeRecordTools:   "record-tools",
		ModeCodeExecution: "code-execution",
		Mode(99):          "unknown",
	}
	for mode, want := range cases {
		if got := mode.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", mode, got, want)
		}
	}
}
