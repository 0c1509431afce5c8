package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"datui/config"
	"datui/records"
	"datui/tabular"
)

// attachmentSizeCeiling caps /load input. Larger files would blow the
// prompt budget of every downstream mode.
const attachmentSizeCeiling = 10 << 20

// parseCommand splits "/load data.csv" into ("load", "data.csv").
func parseCommand(text string) (string, string) {
	text = strings.TrimPrefix(text, "/")
	name, arg, _ := strings.Cut(text, " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

func (a *App) runCommand(text string) (tea.Model, tea.Cmd) {
	name, arg := parseCommand(text)

	switch name {
	case "load":
		if arg == "" {
			return a, notify("Usage: /load <path to .csv, .tsv, .json or .ndjson>")
		}
		return a, a.loadAttachment(arg)

	case "unload":
		a.attachments.Clear()
		return a, notify("Attachment cleared.")

	case "models":
		return a, a.fetchModels()

	case "sessions":
		return a, a.openSessionPicker()

	case "new":
		a.session = nil
		a.history = nil
		a.attachments.Clear()
		a.refreshViewport(true)
		return a, notify("Started a new session.")

	case "provider":
		if arg == "" {
			ids := make([]string, 0, len(a.providers))
			for id := range a.providers {
				ids = append(ids, id)
			}
			return a, notify("Available providers: " + strings.Join(ids, ", "))
		}
		if a.providers[arg] == nil {
			return a, notify(fmt.Sprintf("Provider %q is not configured.", arg))
		}
		a.providerID = arg
		if a.session != nil {
			_ = a.store.SetSessionModel(a.session.ID, arg, a.provider().GetModel())
		}
		return a, notify("Switched to provider " + arg + ".")

	case "search":
		if arg == "" {
			return a, notify("Usage: /search <text>")
		}
		return a, a.searchHistory(arg)

	case "copy":
		a.copyLastResponse()
		return a, nil

	case "help":
		a.showHelp = true
		return a, nil

	case "quit":
		return a, tea.Quit

	default:
		return a, notify(fmt.Sprintf("Unknown command /%s. Try /help.", name))
	}
}

func notify(text string) tea.Cmd {
	return func() tea.Msg { return infoMsg{Text: text} }
}

// loadAttachment reads and parses a local file into the attachment
// state. CSV and TSV become a table context; a JSON array becomes a
// record context.
func (a *App) loadAttachment(path string) tea.Cmd {
	state := a.attachments
	return func() tea.Msg {
		expanded := config.ExpandPath(path)

		info, err := os.Stat(expanded)
		if err != nil {
			return attachmentLoadedMsg{Err: err}
		}
		if info.Size() > attachmentSizeCeiling {
			return attachmentLoadedMsg{Err: fmt.Errorf("%s is too large (%d bytes)", filepath.Base(expanded), info.Size())}
		}

		raw, err := os.ReadFile(expanded)
		if err != nil {
			return attachmentLoadedMsg{Err: err}
		}

		name := filepath.Base(expanded)
		switch strings.ToLower(filepath.Ext(expanded)) {
		case ".csv", ".tsv", ".txt":
			table, err := tabular.Load(name, string(raw))
			if err != nil {
				return attachmentLoadedMsg{Err: err}
			}
			state.SetTable(table)
			return attachmentLoadedMsg{
				Descriptor: fmt.Sprintf("%s (%d rows, %d columns)", name, len(table.Rows), len(table.Headers)),
			}

		case ".json", ".ndjson":
			recs, err := records.Load(name, string(raw))
			if err != nil {
				return attachmentLoadedMsg{Err: err}
			}
			state.SetRecords(recs)
			return attachmentLoadedMsg{
				Descriptor: fmt.Sprintf("%s (%d records)", name, len(recs.Records)),
			}

		default:
			return attachmentLoadedMsg{Err: fmt.Errorf("unsupported file type %q", filepath.Ext(expanded))}
		}
	}
}

func (a *App) fetchModels() tea.Cmd {
	p := a.provider()
	return func() tea.Msg {
		models, err := p.ListModels(context.Background())
		return modelsListMsg{Models: models, Err: err}
	}
}

func (a *App) searchHistory(query string) tea.Cmd {
	store := a.store
	return func() tea.Msg {
		matches, err := store.SearchMessages(query)
		if err != nil {
			return errMsg{Err: err}
		}
		if len(matches) == 0 {
			return infoMsg{Text: fmt.Sprintf("No messages match %q.", query)}
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%d match(es) for %q:", len(matches), query)
		shown := matches
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for _, m := range shown {
			fmt.Fprintf(&b, "\n  [%s] %s: %s", m.SessionName, m.Role, m.Preview)
		}
		if len(matches) > len(shown) {
			fmt.Fprintf(&b, "\n  ... and %d more", len(matches)-len(shown))
		}
		return infoMsg{Text: b.String()}
	}
}

// copyLastResponse puts the newest assistant message on the clipboard.
func (a *App) copyLastResponse() {
	for i := len(a.history) - 1; i >= 0; i-- {
		if a.history[i].Role == "assistant" {
			if err := clipboard.WriteAll(a.history[i].PlainText()); err != nil {
				a.notice = ErrorStyle.Render("clipboard: " + err.Error())
			} else {
				a.notice = StatusStyle.Render("copied")
			}
			return
		}
	}
	a.notice = StatusStyle.Render("nothing to copy")
}
