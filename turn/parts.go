package turn

import (
	"strings"

	"datui/model"
)

// SplitParts splits final assistant text into an ordered parts bundle
// by fenced code blocks. Returns nil when the text has no complete
// fence, in which case plain text rendering stands.
func SplitParts(text string) []model.Part {
	if !strings.Contains(text, "```") {
		return nil
	}

	var parts []model.Part
	rest := text
	sawCode := false

	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			break
		}

		lead := rest[:start]
		body := rest[start+3:]

		language := ""
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			language = strings.TrimSpace(body[:nl])
			body = body[nl+1:]
		}

		end := strings.Index(body, "```")
		if end < 0 {
			// Unterminated fence: leave the remainder as text.
			rest = lead + "```" + language + "\n" + body
			break
		}

		if strings.TrimSpace(lead) != "" {
			parts = append(parts, model.Part{Kind: model.PartText, Text: lead})
		}
		code := strings.TrimRight(body[:end], "\n")
		if code != "" {
			parts = append(parts, model.Part{
				Kind:     model.PartCode,
				Text:     code,
				Language: language,
			})
			sawCode = true
		}

		rest = body[end+3:]
	}

	if !sawCode {
		return nil
	}
	if strings.TrimSpace(rest) != "" {
		parts = append(parts, model.Part{Kind: model.PartText, Text: rest})
	}
	return parts
}
