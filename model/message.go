package model

import "time"

// Message represents one chat message in the conversation.
//
// Display content is always plain text; encoded binary payloads (base64 table
// blocks, image bytes) never appear in Content. Images ride alongside as
// attachments and are persisted only as thumbnails, never re-sent to the
// provider from history.
type Message struct {
	Role      string
	Content   string
	Images    []ImageAttachment
	ToolCalls []ToolCall
	Charts    []ChartPayload
	Cards     []CardPayload
	Grounding *Grounding
	Parts     []Part
	Timestamp time.Time
}

// ImageAttachment is a binary image carried by a message.
type ImageAttachment struct {
	MIME string
	Data []byte
}

// PlainText returns the text projection of the message used for persistence
// and for re-sending history to a provider. When a structured parts bundle is
// present it supersedes Content: the text segments of the parts are joined in
// order and binary fragments are skipped.
func (m *Message) PlainText() string {
	if len(m.Parts) == 0 {
		return m.Content
	}
	var out string
	for _, p := range m.Parts {
		switch p.Kind {
		case PartText:
			out += p.Text
		case PartCode:
			out += "\n```" + p.Language + "\n" + p.Text + "\n```\n"
		case PartResult:
			out += "\n" + p.Text + "\n"
		}
	}
	return out
}

// PartKind discriminates fragments of a provider-executed code run.
type PartKind int

const (
	PartText PartKind = iota
	PartCode
	PartResult
	PartImage
)

// Part is one ordered fragment of a structured response. Fragment order is
// preserved exactly as received; the aggregator never reorders or dedupes.
type Part struct {
	Kind     PartKind
	Text     string
	Language string
	MIME     string
	Data     []byte
}

// Grounding holds citation metadata returned by a provider's web search
// capability.
type Grounding struct {
	Queries   []string
	Citations []Citation
}

// Citation is a single grounded source reference.
type Citation struct {
	Title string
	URL   string
}
