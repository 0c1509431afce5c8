package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LoadSystemConfig loads settings.toml from the config directory,
// creating a default one on first run.
func LoadSystemConfig() (*SystemConfig, error) {
	path := GetSettingsFilePath()

	if !FileExists(path) {
		if err := CreateDefaultSystemConfig(); err != nil {
			return nil, fmt.Errorf("failed to create default system config: %w", err)
		}
	}

	var cfg SystemConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cfg.DataDirectory == "" {
		cfg.DataDirectory = DefaultSystemConfig().DataDirectory
	}

	return &cfg, nil
}

// LoadUserConfig loads config.toml from the data directory, creating a
// default one on first run.
func LoadUserConfig(dataDir string) (*UserConfig, error) {
	path := filepath.Join(dataDir, "config.toml")

	if !FileExists(path) {
		if err := CreateDefaultUserConfig(dataDir); err != nil {
			return nil, fmt.Errorf("failed to create default user config: %w", err)
		}
	}

	var cfg UserConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	defaults := DefaultUserConfig()
	if cfg.Ollama.Host == "" {
		cfg.Ollama.Host = defaults.Ollama.Host
	}
	if cfg.Ollama.DefaultModel == "" {
		cfg.Ollama.DefaultModel = defaults.Ollama.DefaultModel
	}
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = defaults.DefaultProvider
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = defaults.ImageModel
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = defaults.Providers
	}

	return &cfg, nil
}

// SaveSystemConfig writes settings.toml (0600).
func SaveSystemConfig(cfg *SystemConfig) error {
	if err := EnsureDir(GetConfigDir()); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path := GetSettingsFilePath()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// SaveUserConfig writes config.toml into the data directory (0600).
func SaveUserConfig(dataDir string, cfg *UserConfig) error {
	if err := EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dataDir, "config.toml")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// CreateDefaultSystemConfig writes the commented settings.toml template.
func CreateDefaultSystemConfig() error {
	if err := EnsureDir(GetConfigDir()); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(GetSettingsFilePath(), []byte(GenerateSystemConfigTemplate()), 0600)
}

// CreateDefaultUserConfig writes the commented config.toml template.
func CreateDefaultUserConfig(dataDir string) error {
	if err := EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte(GenerateUserConfigTemplate()), 0600)
}
