package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"datui/config"
	"datui/model"
	"datui/provider"
	"datui/storage"
	"datui/ui"
)

const Version = "v0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	config.InitDebugLog(cfg.DataDir())

	lock, err := storage.AcquireInstanceLock(cfg.DataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := lock.Release(); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("Warning: failed to release instance lock: %v", err)
		}
	}()

	store, err := storage.Open(cfg.DataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	providers := provider.InitializeProviders(cfg)
	if len(providers) == 0 {
		fmt.Fprintln(os.Stderr, "No providers available. Start Ollama or configure an API key.")
		os.Exit(1)
	}

	// Resume the last session when one was recorded.
	var session *storage.Session
	var history []model.Message
	if id, err := store.LoadCurrentSessionID(); err == nil && id != "" {
		if s, err := store.GetSession(id); err == nil {
			session = s
			history, _ = store.LoadMessages(id)
		}
	}

	p := tea.NewProgram(
		ui.New(cfg, store, providers, session, history),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running datui: %v\n", err)
		os.Exit(1)
	}
}
