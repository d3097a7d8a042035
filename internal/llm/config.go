// Package llm wraps the text-generation providers used for rewriting behind
// one JSON-oriented client interface.
package llm

import "strings"

// Provider identifies an LLM provider.
type Provider string

const (
	// ProviderOpenAI is OpenAI or any OpenAI-compatible chat API.
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is Google Gemini.
	ProviderGemini Provider = "gemini"
)

// Default models and call settings.
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 3000
)

// Config selects a provider and model.
type Config struct {
	Provider Provider
	Model    string
	APIKey   string
	// BaseURL points the OpenAI client at a compatible endpoint. Ignored for Gemini.
	BaseURL string
}

// ParseProvider maps a configuration string to a Provider. Unknown values map
// to OpenAI.
func ParseProvider(s string) Provider {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gemini", "google":
		return ProviderGemini
	default:
		return ProviderOpenAI
	}
}

// ModelOrDefault returns the configured model, or the provider default.
func (c Config) ModelOrDefault() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultOpenAIModel
}
