package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"datui/model"
	"datui/storage"
)

type pickerKind int

const (
	pickerModels pickerKind = iota
	pickerSessions
)

type pickerItem struct {
	id     string
	label  string
	detail string
}

// pickerState is a filterable list overlay shared by the model selector
// and the session manager.
type pickerState struct {
	kind       pickerKind
	title      string
	items      []pickerItem
	filtered   []pickerItem
	selected   int
	filterMode bool
	filter     textinput.Model
}

func newPicker(kind pickerKind, title string, items []pickerItem) *pickerState {
	filter := textinput.New()
	filter.Prompt = "Filter: "
	filter.CharLimit = 64

	return &pickerState{
		kind:     kind,
		title:    title,
		items:    items,
		filtered: items,
		filter:   filter,
	}
}

func newModelPicker(models []model.ModelInfo, current string) *pickerState {
	items := make([]pickerItem, len(models))
	selected := 0
	for i, m := range models {
		detail := ""
		if m.Size > 0 {
			detail = fmt.Sprintf("%.1f GB", float64(m.Size)/1e9)
		}
		items[i] = pickerItem{id: m.Name, label: m.Name, detail: detail}
		if m.Name == current {
			selected = i
		}
	}
	p := newPicker(pickerModels, "Select Model", items)
	p.selected = selected
	return p
}

func newSessionPicker(sessions []storage.SessionMetadata) *pickerState {
	items := make([]pickerItem, len(sessions))
	for i, s := range sessions {
		items[i] = pickerItem{
			id:    s.ID,
			label: s.Name,
			detail: fmt.Sprintf("%d msgs · %s",
				s.MessageCount, s.UpdatedAt.Format("Jan 2 15:04")),
		}
	}
	return newPicker(pickerSessions, "Sessions", items)
}

func (a *App) openSessionPicker() tea.Cmd {
	store := a.store
	return func() tea.Msg {
		sessions, err := store.ListSessions()
		if err != nil {
			return errMsg{Err: err}
		}
		return sessionsListMsg{Sessions: sessions}
	}
}

// applyFilter recomputes the visible item list from the filter text.
func (p *pickerState) applyFilter() {
	query := p.filter.Value()
	if query == "" {
		p.filtered = p.items
	} else {
		targets := make([]string, len(p.items))
		for i, item := range p.items {
			targets[i] = item.label
		}
		matches := fuzzy.Find(query, targets)
		p.filtered = make([]pickerItem, 0, len(matches))
		for _, m := range matches {
			p.filtered = append(p.filtered, p.items[m.Index])
		}
	}
	if p.selected >= len(p.filtered) {
		p.selected = 0
	}
}

func (a *App) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := a.picker

	if p.filterMode {
		switch msg.String() {
		case "esc":
			p.filterMode = false
			p.filter.Reset()
			p.applyFilter()
		case "enter":
			p.filterMode = false
		default:
			var cmd tea.Cmd
			p.filter, cmd = p.filter.Update(msg)
			p.applyFilter()
			return a, cmd
		}
		return a, nil
	}

	switch msg.String() {
	case "esc", "q":
		a.picker = nil
		return a, nil

	case "up", "k":
		if p.selected > 0 {
			p.selected--
		}
	case "down", "j":
		if p.selected < len(p.filtered)-1 {
			p.selected++
		}

	case "/":
		p.filterMode = true
		p.filter.Focus()

	case "ctrl+d":
		if p.kind == pickerSessions && p.selected < len(p.filtered) {
			return a.deletePickedSession(p.filtered[p.selected].id)
		}

	case "enter":
		if p.selected < len(p.filtered) {
			return a.choosePickerItem(p.filtered[p.selected])
		}
	}
	return a, nil
}

func (a *App) choosePickerItem(item pickerItem) (tea.Model, tea.Cmd) {
	kind := a.picker.kind
	a.picker = nil

	switch kind {
	case pickerModels:
		a.provider().SetModel(item.id)
		if a.session != nil {
			_ = a.store.SetSessionModel(a.session.ID, a.providerID, item.id)
		}
		return a, notify("Model set to " + item.id + ".")

	case pickerSessions:
		return a.switchSession(item.id)
	}
	return a, nil
}

func (a *App) switchSession(id string) (tea.Model, tea.Cmd) {
	session, err := a.store.GetSession(id)
	if err != nil {
		return a, func() tea.Msg { return errMsg{Err: err} }
	}
	history, err := a.store.LoadMessages(id)
	if err != nil {
		return a, func() tea.Msg { return errMsg{Err: err} }
	}

	a.session = session
	a.history = history
	a.attachments.Clear()
	if session.Provider != "" && a.providers[session.Provider] != nil {
		a.providerID = session.Provider
	}
	if session.Model != "" {
		a.provider().SetModel(session.Model)
	}
	_ = a.store.SaveCurrentSessionID(id)

	a.refreshViewport(true)
	return a, nil
}

func (a *App) deletePickedSession(id string) (tea.Model, tea.Cmd) {
	if err := a.store.DeleteSession(id); err != nil {
		return a, func() tea.Msg { return errMsg{Err: err} }
	}
	if a.session != nil && a.session.ID == id {
		a.session = nil
		a.history = nil
		a.refreshViewport(true)
	}
	a.picker = nil
	return a, a.openSessionPicker()
}

func (p *pickerState) render(width, height int) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(p.title))
	b.WriteString("\n\n")

	if p.filterMode || p.filter.Value() != "" {
		b.WriteString(p.filter.View())
		b.WriteString("\n\n")
	}

	if len(p.filtered) == 0 {
		b.WriteString(DimStyle.Render("  (nothing here)"))
		b.WriteString("\n")
	}

	visible := height - 8
	if visible < 3 {
		visible = 3
	}
	start := 0
	if p.selected >= visible {
		start = p.selected - visible + 1
	}
	end := start + visible
	if end > len(p.filtered) {
		end = len(p.filtered)
	}

	for i := start; i < end; i++ {
		item := p.filtered[i]
		line := "  " + item.label
		if item.detail != "" {
			line += "  " + DimStyle.Render(item.detail)
		}
		if i == p.selected {
			line = SelectedStyle.Render("> " + item.label)
			if item.detail != "" {
				line += "  " + DimStyle.Render(item.detail)
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	footer := FormatFooter("j/k", "Navigate", "Enter", "Select", "/", "Filter", "Esc", "Close")
	if p.kind == pickerSessions {
		footer = FormatFooter("j/k", "Navigate", "Enter", "Open", "/", "Filter", "ctrl+d", "Delete", "Esc", "Close")
	}
	b.WriteString(footer)

	return lipgloss.NewStyle().Padding(1, 2).Width(width).Render(b.String())
}
