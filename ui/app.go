package ui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"datui/config"
	"datui/model"
	"datui/provider"
	"datui/records"
	"datui/storage"
	"datui/turn"
)

// App is the root bubbletea model: a chat transcript over the active
// session, an input box, and overlay pickers for models and sessions.
type App struct {
	cfg        *config.Config
	store      *storage.Store
	providers  map[string]model.Provider
	providerID string

	session     *storage.Session
	history     []model.Message
	attachments *model.AttachmentState
	images      records.ImageGenerator

	viewport       viewport.Model
	textarea       textarea.Model
	loadingSpinner spinner.Model

	width  int
	height int
	ready  bool

	// One turn runs at a time; events flow through a per-turn channel.
	busy    bool
	abort   *atomic.Bool
	events  chan tea.Msg
	pending model.Message
	active  bool // a pending snapshot exists

	showHelp bool
	picker   *pickerState
	notice   string
}

// New assembles the app around an open store and initialized providers.
func New(cfg *config.Config, store *storage.Store, providers map[string]model.Provider, session *storage.Session, history []model.Message) *App {
	ta := textarea.New()
	ta.Placeholder = "Ask about your data, or /help for commands..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = DimStyle

	providerID := cfg.DefaultProvider
	if session != nil && session.Provider != "" {
		providerID = session.Provider
	}
	if providers[providerID] == nil {
		providerID = "ollama"
	}

	var images records.ImageGenerator
	if key := cfg.CredentialStore.Get("openai"); key != "" {
		if client, err := provider.NewImageClient("", key, cfg.ImageModel); err == nil {
			images = client
		}
	}

	return &App{
		cfg:            cfg,
		store:          store,
		providers:      providers,
		providerID:     providerID,
		session:        session,
		history:        history,
		attachments:    &model.AttachmentState{},
		images:         images,
		viewport:       viewport.New(0, 0),
		textarea:       ta,
		loadingSpinner: sp,
		abort:          &atomic.Bool{},
	}
}

func (a *App) provider() model.Provider {
	if p := a.providers[a.providerID]; p != nil {
		return p
	}
	return a.providers["ollama"]
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, a.loadingSpinner.Tick)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		chromeHeight := a.textarea.Height() + 3
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - chromeHeight
		a.textarea.SetWidth(msg.Width - 2)
		a.ready = true
		a.refreshViewport(true)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		if a.busy {
			a.refreshViewport(false)
		}
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)

	case turnUpdateMsg:
		a.pending = msg.Snapshot
		a.active = true
		a.refreshViewport(true)
		return a, a.waitEvent()

	case turnDoneMsg:
		return a.finishTurn(msg.Outcome)

	case modelsListMsg:
		if msg.Err != nil {
			a.notice = ErrorStyle.Render("model list: " + msg.Err.Error())
			return a, nil
		}
		a.picker = newModelPicker(msg.Models, a.provider().GetModel())
		return a, nil

	case sessionsListMsg:
		a.picker = newSessionPicker(msg.Sessions)
		return a, nil

	case attachmentLoadedMsg:
		if msg.Err != nil {
			a.appendNotice("Could not load attachment: " + msg.Err.Error())
		} else {
			a.appendNotice("Loaded " + msg.Descriptor + ". Ask a question about it, or just say hi.")
		}
		a.refreshViewport(true)
		return a, nil

	case infoMsg:
		a.appendNotice(msg.Text)
		a.refreshViewport(true)
		return a, nil

	case errMsg:
		a.appendNotice("Error: " + msg.Err.Error())
		a.refreshViewport(true)
		return a, nil
	}

	return a, a.updateComponents(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Overlays swallow input first.
	if a.picker != nil {
		return a.updatePicker(msg)
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		if a.busy {
			a.abort.Store(true)
			return a, nil
		}
		return a, nil

	case "ctrl+l":
		return a, a.fetchModels()

	case "ctrl+s":
		return a, a.openSessionPicker()

	case "ctrl+y":
		a.copyLastResponse()
		return a, nil

	case "ctrl+h":
		a.showHelp = true
		return a, nil

	case "enter":
		if a.busy {
			return a, nil
		}
		text := strings.TrimSpace(a.textarea.Value())
		if text == "" {
			return a, nil
		}
		a.textarea.Reset()
		if strings.HasPrefix(text, "/") {
			return a.runCommand(text)
		}
		return a, a.startTurn(text)
	}

	return a, a.updateComponents(msg)
}

func (a *App) updateComponents(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

// startTurn launches one assistant turn in a goroutine. Snapshots and
// the final outcome arrive through the per-turn event channel.
func (a *App) startTurn(text string) tea.Cmd {
	prior := append([]model.Message(nil), a.history...)

	userMsg := model.Message{Role: "user", Content: text, Timestamp: time.Now()}
	a.history = append(a.history, userMsg)
	a.persist(userMsg)
	a.refreshViewport(true)

	a.busy = true
	a.abort.Store(false)
	a.active = false
	a.events = make(chan tea.Msg, 64)

	preamble := a.cfg.DefaultSystemPrompt
	if a.session != nil && a.session.SystemPrompt != "" {
		preamble = a.session.SystemPrompt
	}
	runner := &turn.Runner{
		Provider: a.provider(),
		State:    a.attachments,
		Preamble: preamble,
		Images:   a.images,
		Abort:    a.abort,
	}

	events := a.events
	go func() {
		outcome := runner.Run(context.Background(), prior, text, func(snapshot model.Message) {
			events <- turnUpdateMsg{Snapshot: snapshot}
		})
		events <- turnDoneMsg{Outcome: outcome}
	}()

	return a.waitEvent()
}

func (a *App) waitEvent() tea.Cmd {
	ch := a.events
	return func() tea.Msg { return <-ch }
}

func (a *App) finishTurn(outcome turn.Outcome) (tea.Model, tea.Cmd) {
	a.busy = false
	a.active = false

	final := outcome.Message
	a.history = append(a.history, final)
	a.persist(final)

	switch outcome.Status {
	case turn.StatusAborted:
		a.appendNotice("Generation stopped.")
	case turn.StatusRoundsExhausted:
		a.appendNotice("Stopped after the tool-call limit; partial results shown.")
	}

	a.refreshViewport(true)
	return a, nil
}

func (a *App) persist(msg model.Message) {
	if a.session == nil {
		name := storage.GenerateSessionName(msg.PlainText())
		session, err := a.store.CreateSession(name, a.providerID, a.provider().GetModel())
		if err != nil {
			if config.Debug {
				config.DebugLog.Printf("[UI] session create failed: %v", err)
			}
			return
		}
		a.session = session
		_ = a.store.SaveCurrentSessionID(session.ID)
	}
	if err := a.store.AppendMessage(a.session.ID, msg); err != nil && config.Debug {
		config.DebugLog.Printf("[UI] message persist failed: %v", err)
	}
}

// appendNotice adds a dim system line to the transcript without
// persisting it.
func (a *App) appendNotice(text string) {
	a.history = append(a.history, model.Message{
		Role:      "system",
		Content:   text,
		Timestamp: time.Now(),
	})
}

func (a *App) View() string {
	if !a.ready {
		return "Loading datui..."
	}
	if a.showHelp {
		return a.renderHelp()
	}
	if a.picker != nil {
		return a.picker.render(a.width, a.height)
	}

	var b strings.Builder
	b.WriteString(a.viewport.View())
	b.WriteString("\n")
	b.WriteString(a.textarea.View())
	b.WriteString("\n")
	b.WriteString(a.statusLine())
	return b.String()
}

func (a *App) statusLine() string {
	left := StatusStyle.Render(fmt.Sprintf("%s · %s", a.providerID, a.provider().GetModel()))

	var parts []string
	parts = append(parts, left)
	if desc := a.attachments.Descriptor(); desc != "" {
		parts = append(parts, AttachmentStyle.Render("⎘ "+desc))
	}
	if a.busy {
		parts = append(parts, a.loadingSpinner.View()+StatusStyle.Render("thinking... esc to stop"))
	}
	if a.notice != "" {
		parts = append(parts, a.notice)
	}
	parts = append(parts, StatusStyle.Render("ctrl+h help"))

	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(parts, "  "))
}
