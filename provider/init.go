package provider

import (
	"datui/config"
	"datui/model"
)

// InitializeProviders creates every configured provider instance. The
// Ollama provider is always attempted; cloud providers are created only
// when enabled in the user config, with API keys pulled from the
// credential store. Failures degrade gracefully so the app can start
// offline.
func InitializeProviders(cfg *config.Config) map[string]model.Provider {
	providers := make(map[string]model.Provider)

	ollamaProvider := initializeOllama(cfg)
	if ollamaProvider != nil {
		providers["ollama"] = ollamaProvider
		if config.Debug {
			config.DebugLog.Printf("[Provider] Initialized Ollama provider")
		}
	} else if config.Debug {
		config.DebugLog.Printf("[Provider] Ollama provider initialization failed (offline mode)")
	}

	for _, providerCfg := range cfg.Providers {
		if !providerCfg.Enabled || providerCfg.ID == "ollama" {
			continue
		}

		apiKey := ""
		if cfg.CredentialStore != nil {
			apiKey = cfg.CredentialStore.Get(providerCfg.ID)
		}

		p, err := NewProvider(Config{
			Type:    MapProviderIDToType(providerCfg.ID),
			BaseURL: providerCfg.BaseURL,
			APIKey:  apiKey,
		})
		if err != nil {
			if config.Debug {
				config.DebugLog.Printf("[Provider] Warning: failed to initialize provider %s: %v", providerCfg.ID, err)
			}
			continue
		}

		providers[providerCfg.ID] = p
		if config.Debug {
			config.DebugLog.Printf("[Provider] Initialized provider: %s", providerCfg.ID)
		}
	}

	return providers
}

// initializeOllama creates the Ollama provider. Returns nil on failure
// so the app can run without a local daemon.
func initializeOllama(cfg *config.Config) model.Provider {
	p, err := NewProvider(Config{
		Type:    ProviderTypeOllama,
		BaseURL: cfg.OllamaURL(),
		Model:   cfg.Model(),
	})
	if err != nil {
		if config.Debug {
			config.DebugLog.Printf("[Provider] Ollama provider creation failed: %v", err)
		}
		return nil
	}
	return p
}
