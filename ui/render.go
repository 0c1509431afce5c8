package ui

import (
	"fmt"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"datui/model"
)

// refreshViewport rebuilds the transcript. The in-progress assistant
// message renders as plain text; completed messages get full markdown.
func (a *App) refreshViewport(gotoBottom bool) {
	if !a.ready {
		return
	}

	var content strings.Builder
	for _, msg := range a.history {
		content.WriteString(a.renderMessage(msg, true))
	}

	if a.busy {
		if a.active {
			content.WriteString(a.renderMessage(a.pending, false))
		} else {
			content.WriteString(fmt.Sprintf("%s %s\n",
				a.loadingSpinner.View(), DimStyle.Render("Waiting for response...")))
		}
	}

	if content.Len() == 0 {
		content.WriteString(DimStyle.Render(
			"No messages yet. Load a dataset with /load <path> and start asking questions."))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func (a *App) renderMessage(msg model.Message, final bool) string {
	timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

	var role string
	switch msg.Role {
	case "user":
		role = UserStyle.Render("You")
	case "assistant":
		role = AssistantStyle.Render("Assistant")
	default:
		return DimStyle.Render(msg.Content) + "\n\n"
	}

	var body strings.Builder

	if len(msg.Parts) > 0 {
		body.WriteString(a.renderParts(msg.Parts))
	} else if final && msg.Role == "assistant" {
		body.WriteString(a.renderMarkdown(msg.Content))
	} else {
		body.WriteString(msg.Content)
	}

	for _, chart := range msg.Charts {
		body.WriteString("\n")
		body.WriteString(renderChart(chart, a.chartWidth()))
	}
	for _, card := range msg.Cards {
		body.WriteString("\n")
		body.WriteString(renderCard(card))
	}
	if msg.Grounding != nil && len(msg.Grounding.Citations) > 0 {
		body.WriteString("\n")
		body.WriteString(renderCitations(msg.Grounding))
	}

	return fmt.Sprintf("%s %s\n%s\n\n", timestamp, role, body.String())
}

// renderMarkdown renders assistant text with go-term-markdown. Autolink
// is disabled so terminals handle URL detection themselves.
func (a *App) renderMarkdown(content string) string {
	width := a.width - 4
	if width < 20 {
		width = 20
	}

	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width, 0)
	doc := p.Parse([]byte(content))
	return strings.TrimRight(string(gomarkdown.Render(doc, r)), "\n")
}

// renderParts renders a code-execution parts bundle: prose as markdown,
// code blocks framed with their language tag.
func (a *App) renderParts(parts []model.Part) string {
	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			b.WriteString("\n")
		}
		switch part.Kind {
		case model.PartCode:
			label := part.Language
			if label == "" {
				label = "code"
			}
			b.WriteString(DimStyle.Render("┌─ " + label))
			b.WriteString("\n")
			for _, line := range strings.Split(part.Text, "\n") {
				b.WriteString(DimStyle.Render("│ "))
				b.WriteString(line)
				b.WriteString("\n")
			}
			b.WriteString(DimStyle.Render("└─"))
		default:
			b.WriteString(a.renderMarkdown(strings.TrimSpace(part.Text)))
		}
	}
	return b.String()
}

func renderCard(card model.CardPayload) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(card.Title))
	if card.URL != "" {
		b.WriteString("\n")
		b.WriteString(DimStyle.Render(card.URL))
	}
	return b.String()
}

func renderCitations(g *model.Grounding) string {
	var b strings.Builder
	b.WriteString(DimStyle.Render("Sources:"))
	for i, c := range g.Citations {
		title := c.Title
		if title == "" {
			title = c.URL
		}
		fmt.Fprintf(&b, "\n%s %s", DimStyle.Render(fmt.Sprintf("  [%d]", i+1)), title)
		if c.Title != "" && c.URL != "" {
			b.WriteString(DimStyle.Render(" · " + c.URL))
		}
	}
	return b.String()
}

func (a *App) chartWidth() int {
	w := a.width - 8
	if w < 30 {
		w = 30
	}
	if w > 80 {
		w = 80
	}
	return w
}
