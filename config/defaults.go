package config

// DefaultSystemConfig returns the default system configuration.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/datui",
	}
}

// DefaultUserConfig returns the default user configuration.
func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Ollama: OllamaConfig{
			Host:         "http://localhost:11434",
			DefaultModel: "llama3.1:latest",
		},
		Providers: []ProviderConfig{
			{ID: "ollama", Name: "Ollama", Enabled: true},
			{ID: "openai", Name: "OpenAI", Enabled: false},
			{ID: "anthropic", Name: "Anthropic", Enabled: false},
			{ID: "openrouter", Name: "OpenRouter", Enabled: false, BaseURL: "https://openrouter.ai/api/v1"},
		},
		DefaultProvider: "ollama",
		ImageModel:      "dall-e-3",
	}
}

// GenerateSystemConfigTemplate returns a commented settings.toml template.
func GenerateSystemConfigTemplate() string {
	return `# datui system configuration
#
# This file controls where datui stores its data (sessions, credentials,
# debug logs). Paths may use ~ for the home directory.

# Directory for session history, credentials and logs.
data_directory = "~/.local/share/datui"
`
}

// GenerateUserConfigTemplate returns a commented config.toml template.
func GenerateUserConfigTemplate() string {
	return `# datui user configuration
#
# Lives in the data directory. Provider API keys are NOT stored here;
# they live in the credential store alongside this file.

# Provider used when none is selected explicitly.
default_provider = "ollama"

# Optional extra instructions prepended to every conversation.
# default_system_prompt = ""

# Model used for image generation tool calls (OpenAI).
image_model = "dall-e-3"

[ollama]
host = "http://localhost:11434"
default_model = "llama3.1:latest"

[[providers]]
id = "ollama"
name = "Ollama"
enabled = true

[[providers]]
id = "openai"
name = "OpenAI"
enabled = false

[[providers]]
id = "anthropic"
name = "Anthropic"
enabled = false

[[providers]]
id = "openrouter"
name = "OpenRouter"
enabled = false
base_url = "https://openrouter.ai/api/v1"
`
}
