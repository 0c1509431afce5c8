package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type OllamaConfig struct {
	Host         string `toml:"host"`
	DefaultModel string `toml:"default_model"`
}

// ProviderConfig is one entry of the [[providers]] array in the user
// config. API keys live in the credential store, never here.
type ProviderConfig struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
}

type UserConfig struct {
	Ollama              OllamaConfig     `toml:"ollama"`
	Providers           []ProviderConfig `toml:"providers"`
	DefaultProvider     string           `toml:"default_provider,omitempty"`
	DefaultSystemPrompt string           `toml:"default_system_prompt,omitempty"`
	ImageModel          string           `toml:"image_model,omitempty"`
}

// Config is the resolved runtime configuration.
type Config struct {
	DataDirectory       string
	OllamaHost          string
	DefaultModel        string
	DefaultProvider     string
	DefaultSystemPrompt string
	ImageModel          string
	Providers           []ProviderConfig
	CredentialStore     *CredentialStore
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) OllamaURL() string {
	return c.OllamaHost
}

func (c *Config) Model() string {
	return c.DefaultModel
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("DATUI_OLLAMA_HOST"); host != "" {
		c.OllamaHost = host
	}
	if model := os.Getenv("DATUI_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if dataDir := os.Getenv("DATUI_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if provider := os.Getenv("DATUI_PROVIDER"); provider != "" {
		c.DefaultProvider = provider
	}
}

func CheckDebug() bool {
	debug := os.Getenv("DATUI_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog opens the opt-in debug log in the data directory. Does
// nothing unless DATUI_DEBUG is set.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: debug output may include prompt contents.
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (DATUI_DEBUG=%s) ===", os.Getenv("DATUI_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

// Load resolves the runtime configuration: TOML files when present,
// environment overrides on top, defaults underneath. Always ensures the
// data directory exists with user-only permissions.
func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory: "~/.local/share/datui",
		OllamaHost:    "http://localhost:11434",
		DefaultModel:  "llama3.1:latest",
	}

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	cfg.DataDirectory = systemCfg.DataDirectory

	dataDir := cfg.DataDir()
	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.OllamaHost = userCfg.Ollama.Host
	cfg.DefaultModel = userCfg.Ollama.DefaultModel
	cfg.DefaultProvider = userCfg.DefaultProvider
	cfg.DefaultSystemPrompt = userCfg.DefaultSystemPrompt
	cfg.ImageModel = userCfg.ImageModel
	cfg.Providers = userCfg.Providers

	cfg.applyEnvOverrides()

	dataDir = cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	cfg.CredentialStore = NewCredentialStore(SecurityPlainText, "")
	if keyPath := os.Getenv("DATUI_SSH_KEY"); keyPath != "" {
		cfg.CredentialStore = NewCredentialStore(SecuritySSHKey, ExpandPath(keyPath))
	}
	if err := cfg.CredentialStore.Load(dataDir); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	return cfg, nil
}
