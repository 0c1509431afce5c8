// Package provider implements the model.Provider contract for each
// supported LLM backend.
//
// datui talks to three interchangeable backends: a local Ollama server,
// OpenAI (or any OpenAI-compatible endpoint such as OpenRouter) and
// Anthropic. The turn engine and UI stay provider-agnostic; the single
// point where a backend is chosen is the NewProvider factory.
//
// The provider layer owns every type conversion between datui's model
// types and each SDK's request/response shapes; see conversions.go.
// The Provider interface itself is defined in the model package to
// avoid import cycles.
package provider

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // for OpenAI/OpenRouter/Anthropic, unused for Ollama
}
