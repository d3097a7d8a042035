package embedding

import (
	"context"
	"fmt"
	"strings"
)

// Config selects and configures an embedding backend.
type Config struct {
	Provider string // openai, gemini or hash
	Model    string
	APIKey   string
	BaseURL  string
}

// NewBackend builds the backend named by cfg.Provider.
func NewBackend(ctx context.Context, cfg Config) (Backend, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		return NewOpenAIBackend(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "gemini":
		return NewGeminiBackend(ctx, cfg.APIKey, cfg.Model)
	case "hash":
		return NewHashBackend(0), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
