// Package router decides, per user turn, which execution mode handles
// the turn. The decision is a pure function of the message text and the
// attachment state, evaluated highest-priority first. Tool modes are
// cheaper and deterministic; code execution is reserved for requests a
// fixed tool catalog cannot satisfy.
package router

import "strings"

// Mode is the execution strategy selected for a turn.
type Mode int

const (
	// ModeStream is plain streaming chat, optionally with web search.
	ModeStream Mode = iota
	// ModeTableTools runs the tabular tool catalog against the loaded table.
	ModeTableTools
	// ModeRecordTools runs the structured-record tool catalog.
	ModeRecordTools
	// ModeCodeExecution delegates to provider-side code execution.
	ModeCodeExecution
)

func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeTableTools:
		return "table-tools"
	case ModeRecordTools:
		return "record-tools"
	case ModeCodeExecution:
		return "code-execution"
	default:
		return "unknown"
	}
}

// State is the attachment context the decision runs against.
type State struct {
	// TableLoaded reports whether a tabular context is active.
	TableLoaded bool
	// RecordsLoaded reports whether a structured-record context is active.
	RecordsLoaded bool
	// FreshDrop is true when the table arrived in this same turn. A
	// fresh drop is passed along as plain text instead of entering
	// tabular tool mode.
	FreshDrop bool
}

// Decision is the routing outcome for one turn.
type Decision struct {
	Mode Mode
	// EncodeTable is set when the full table should be transport-encoded
	// and embedded in the prompt for code execution.
	EncodeTable bool
	// FreshDrop marks a stream turn that carries an attachment loaded in
	// this same turn; the prompt includes its digest as plain text.
	FreshDrop bool
}

// pythonOnly are terms that imply generated-code execution no matter
// what else is loaded: statistical modeling and plot types the fixed
// tool catalogs cannot produce.
var pythonOnly = []string{
	"regression",
	"histogram",
	"heatmap",
	"seaborn",
	"matplotlib",
	"scatter plot",
	"scatterplot",
	"box plot",
	"boxplot",
	"violin plot",
	"machine learning",
	"clustering",
	"k-means",
	"forecast",
	"time series model",
	"anova",
	"t-test",
	"p-value",
	"confidence interval",
	"correlation matrix",
}

// codeIntent is the broader set: anything here steers a turn away from
// the tool catalogs. Includes every python-only term plus generic
// code/plot language.
var codeIntent = append([]string{
	"python",
	"pandas",
	"numpy",
	"dataframe",
	"write code",
	"run code",
	"script",
	"plot",
	"graph",
	"visualize",
	"visualization",
	"visualise",
}, pythonOnly...)

func matchAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// Decide picks the execution mode for one turn.
//
// Priority order:
//  1. Python-only keyword → code execution with the bulk table encoded
//     into the prompt (the single most expensive mode).
//  2. Structured-record context active and no code-intent keyword →
//     record tool mode.
//  3. Tabular context active (not a same-turn fresh drop) and no
//     code-intent keyword → tabular tool mode.
//  4. Code-intent keyword and no structured-record context → code
//     execution with the attachment passed as plain text.
//  5. Otherwise → streaming/search mode.
func Decide(text string, st State) Decision {
	q := strings.ToLower(text)

	if matchAny(q, pythonOnly) {
		return Decision{Mode: ModeCodeExecution, EncodeTable: st.TableLoaded}
	}
	if st.RecordsLoaded && !matchAny(q, codeIntent) {
		return Decision{Mode: ModeRecordTools}
	}
	if st.TableLoaded && !st.FreshDrop && !matchAny(q, codeIntent) {
		return Decision{Mode: ModeTableTools}
	}
	if matchAny(q, codeIntent) && !st.RecordsLoaded {
		return Decision{Mode: ModeCodeExecution}
	}
	return Decision{Mode: ModeStream, FreshDrop: st.FreshDrop}
}
