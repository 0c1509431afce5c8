package turn

import (
	"encoding/json"
	"fmt"
	"strings"

	"datui/model"
	"datui/router"
	"datui/tabular"
)

const basePersona = "You are a data analysis assistant. Answer concisely and " +
	"ground every number in the attached data; never estimate a value a tool " +
	"or computation can produce."

// BuildSystemPrompt composes the system prompt for one turn from the
// selected mode and the active attachment. Tool modes get a compact
// dataset digest; code-execution mode embeds either the encoded bulk
// table with a decode recipe or, for plain code turns, the same digest
// the tool modes see. A fresh-drop stream turn also carries the digest
// so the just-loaded attachment is never invisible to the model.
func BuildSystemPrompt(decision router.Decision, state *model.AttachmentState) string {
	var b strings.Builder
	b.WriteString(basePersona)

	switch decision.Mode {
	case router.ModeTableTools:
		if state.Table() != nil {
			writeTableDigest(&b, state.Table())
			b.WriteString("\nUse the provided tools to compute answers from the full dataset.")
		}
	case router.ModeRecordTools:
		if state.Records() != nil {
			writeRecordDigest(&b, state.Records())
			b.WriteString("\nUse the provided tools to compute answers across all records.")
		}
	case router.ModeCodeExecution:
		b.WriteString("\n\nWhen the question needs computation, answer with " +
			"Python code in a fenced code block, then explain the result.")
		switch {
		case decision.EncodeTable && state.Table() != nil:
			t := state.Table()
			b.WriteString("\n\n")
			b.WriteString(tabular.EncodeForCodeExecution(t.Name, t.Raw))
		case state.Table() != nil:
			writeTableDigest(&b, state.Table())
		case state.Records() != nil:
			writeRecordDigest(&b, state.Records())
		}
	case router.ModeStream:
		if decision.FreshDrop {
			writeTableDigest(&b, state.Table())
			writeRecordDigest(&b, state.Records())
		}
	}

	return b.String()
}

func writeTableDigest(b *strings.Builder, t *model.TableContext) {
	if t == nil {
		return
	}
	fmt.Fprintf(b, "\n\nThe user attached %q (%d rows, %d bytes).", t.Name, len(t.Rows), t.RawSize)
	fmt.Fprintf(b, "\nColumns: %s", strings.Join(t.Headers, ", "))
	if t.Summary != "" {
		b.WriteString("\n\nColumn statistics:\n")
		b.WriteString(t.Summary)
	}
	if t.SlimCSV != "" {
		b.WriteString("\nSample of the data:\n")
		b.WriteString(t.SlimCSV)
	}
}

// writeRecordDigest includes the field universe plus a short sample so
// the model can see value shapes without the whole payload.
func writeRecordDigest(b *strings.Builder, r *model.RecordContext) {
	if r == nil {
		return
	}
	fmt.Fprintf(b, "\n\nThe user attached %q: %d records.", r.Name, len(r.Records))
	fmt.Fprintf(b, "\nFields: %s", strings.Join(r.Fields, ", "))

	sample := r.Records
	if len(sample) > 2 {
		sample = sample[:2]
	}
	if raw, err := json.Marshal(sample); err == nil {
		b.WriteString("\nSample records:\n")
		b.Write(raw)
	}
}
