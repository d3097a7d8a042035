// Package config loads settings from an optional config file, the environment
// and command line flags.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable bound to a config key,
// e.g. RESUME_RAG_EMBEDDING_PROVIDER for embedding.provider.
const EnvPrefix = "RESUME_RAG"

// Config is the full application configuration.
type Config struct {
	Debug bool `mapstructure:"debug"`
	JSON  bool `mapstructure:"json"`

	Embedding   EmbeddingConfig   `mapstructure:"embedding"`
	LLM         LLMConfig         `mapstructure:"llm"`
	VectorStore VectorStoreConfig `mapstructure:"vectorstore"`
	Results     ResultsConfig     `mapstructure:"results"`
	Selection   SelectionConfig   `mapstructure:"selection"`
	Server      ServerConfig      `mapstructure:"server"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
	Fetch       FetchConfig       `mapstructure:"fetch"`

	DatabaseURL  string `mapstructure:"database_url"`
	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
}

// EmbeddingConfig selects the embedding backend.
type EmbeddingConfig struct {
	Provider  string `mapstructure:"provider"`
	Model     string `mapstructure:"model"`
	BatchSize int    `mapstructure:"batch_size"`
	BaseURL   string `mapstructure:"base_url"`
}

// LLMConfig selects the text-generation provider used for rewriting.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// VectorStoreConfig selects where resume points are indexed.
type VectorStoreConfig struct {
	Backend    string `mapstructure:"backend"`
	SQLitePath string `mapstructure:"sqlite_path"`
	Collection string `mapstructure:"collection"`
}

// ResultsConfig selects where responses are archived.
type ResultsConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
}

// SelectionConfig holds the line estimation settings.
type SelectionConfig struct {
	MaxLines     int `mapstructure:"max_lines"`
	CharsPerLine int `mapstructure:"chars_per_line"`
}

// ServerConfig holds HTTP server and admin auth settings.
type ServerConfig struct {
	Port               int      `mapstructure:"port"`
	AllowedOrigins     []string `mapstructure:"allowed_origins"`
	AdminPasswordHash  string   `mapstructure:"admin_password_hash"`
	JWTSecret          string   `mapstructure:"jwt_secret"`
	JWTExpirationHours int      `mapstructure:"jwt_expiration_hours"`
	BcryptCost         int      `mapstructure:"bcrypt_cost"`
	PasswordPepper     string   `mapstructure:"password_pepper"`
}

// RateLimitConfig configures the per-client request limiter.
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// FetchConfig configures job posting downloads.
type FetchConfig struct {
	UseBrowser     bool `mapstructure:"use_browser"`
	TimeoutSeconds int  `mapstructure:"timeout_seconds"`
}

// defaults lists every key with its default value. Keys missing here are
// invisible to Unmarshal, so every field needs an entry.
var defaults = map[string]any{
	"debug": false,
	"json":  false,

	"embedding.provider":   "openai",
	"embedding.model":      "",
	"embedding.batch_size": 64,
	"embedding.base_url":   "",

	"llm.provider":    "openai",
	"llm.model":       "",
	"llm.base_url":    "",
	"llm.temperature": 0.7,
	"llm.max_tokens":  3000,

	"vectorstore.backend":     "sqlite",
	"vectorstore.sqlite_path": "data/vectors.db",
	"vectorstore.collection":  "resume_points",

	"results.backend": "file",
	"results.dir":     "data/results",

	"selection.max_lines":      50,
	"selection.chars_per_line": 70,

	"server.port":                 8000,
	"server.allowed_origins":      []string{"*"},
	"server.admin_password_hash":  "",
	"server.jwt_secret":           "",
	"server.jwt_expiration_hours": 24,
	"server.bcrypt_cost":          12,
	"server.password_pepper":      "",

	"ratelimit.enabled":             true,
	"ratelimit.requests_per_minute": 60,
	"ratelimit.burst":               10,

	"fetch.use_browser":     false,
	"fetch.timeout_seconds": 30,

	"database_url":   "",
	"openai_api_key": "",
	"gemini_api_key": "",
}

// conventionalEnv binds keys to the unprefixed variable names other tools use.
var conventionalEnv = map[string]string{
	"database_url":      "DATABASE_URL",
	"openai_api_key":    "OPENAI_API_KEY",
	"gemini_api_key":    "GEMINI_API_KEY",
	"server.jwt_secret": "JWT_SECRET",
}

// NewViper returns a viper instance with defaults and environment bindings
// applied. Callers may bind flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range conventionalEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, env)
	}
	return v
}

// Load reads the config file at path, if any, into v and returns the
// validated configuration. An empty path skips the file.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that values are in range and names are known.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(oneOf(c.Embedding.Provider, "openai", "gemini", "hash"),
		"embedding.provider must be openai, gemini or hash, got %q", c.Embedding.Provider)
	check(c.Embedding.BatchSize >= 1, "embedding.batch_size must be at least 1, got %d", c.Embedding.BatchSize)

	check(oneOf(c.LLM.Provider, "openai", "gemini"),
		"llm.provider must be openai or gemini, got %q", c.LLM.Provider)
	check(c.LLM.Temperature >= 0 && c.LLM.Temperature <= 2,
		"llm.temperature must be between 0 and 2, got %v", c.LLM.Temperature)
	check(c.LLM.MaxTokens >= 1, "llm.max_tokens must be at least 1, got %d", c.LLM.MaxTokens)

	check(oneOf(c.VectorStore.Backend, "memory", "sqlite", "postgres"),
		"vectorstore.backend must be memory, sqlite or postgres, got %q", c.VectorStore.Backend)
	check(c.VectorStore.Collection != "", "vectorstore.collection cannot be empty")
	check(c.VectorStore.Backend != "sqlite" || c.VectorStore.SQLitePath != "",
		"vectorstore.sqlite_path is required for the sqlite backend")

	check(oneOf(c.Results.Backend, "file", "postgres", "none"),
		"results.backend must be file, postgres or none, got %q", c.Results.Backend)

	needsDB := c.VectorStore.Backend == "postgres" || c.Results.Backend == "postgres"
	check(!needsDB || c.DatabaseURL != "", "database_url is required for postgres backends")

	check(c.Selection.MaxLines >= 1, "selection.max_lines must be at least 1, got %d", c.Selection.MaxLines)
	check(c.Selection.CharsPerLine >= 1, "selection.chars_per_line must be at least 1, got %d", c.Selection.CharsPerLine)

	check(c.Server.Port > 0 && c.Server.Port < 65536, "server.port out of range: %d", c.Server.Port)
	check(!c.RateLimit.Enabled || c.RateLimit.RequestsPerMinute >= 1,
		"ratelimit.requests_per_minute must be at least 1, got %d", c.RateLimit.RequestsPerMinute)
	check(!c.RateLimit.Enabled || c.RateLimit.Burst >= 1,
		"ratelimit.burst must be at least 1, got %d", c.RateLimit.Burst)

	return errors.Join(errs...)
}

// EmbeddingAPIKey returns the API key for the configured embedding provider.
func (c *Config) EmbeddingAPIKey() string {
	return c.apiKey(c.Embedding.Provider)
}

// LLMAPIKey returns the API key for the configured text-generation provider.
func (c *Config) LLMAPIKey() string {
	return c.apiKey(c.LLM.Provider)
}

func (c *Config) apiKey(provider string) string {
	if provider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

func oneOf(s string, options ...string) bool {
	return slices.Contains(options, s)
}
