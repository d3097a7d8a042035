package ratelimit

import (
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window; 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	DefaultBurst    int
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig returns a configuration allowing perMinute requests per client
// and endpoint with the given burst, plus the stricter endpoint defaults.
func NewConfig(enabled bool, perMinute, burst int) *Config {
	return &Config{
		Enabled:         enabled,
		DefaultLimit:    perMinute,
		DefaultWindow:   time.Minute,
		DefaultBurst:    burst,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Text-generation calls
		{Path: "/optimize", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},
		{Path: "/optimize/flat", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},

		// Password guessing
		{Path: "/admin/token", Method: "POST", Limit: 5, Window: time.Minute, Burst: 3},

		// Index writes embed every point
		{Path: "/admin/", Method: "POST", Limit: 10, Window: time.Minute, Burst: 2},
		{Path: "/admin/", Method: "DELETE", Limit: 10, Window: time.Minute, Burst: 2},

		// Health and metrics are unlimited, see MatchEndpoint
	}
}

// SetWhitelist replaces the whitelist with ips.
func (c *Config) SetWhitelist(ips []string) {
	c.Whitelist = toSet(ips)
}

// SetBlacklist replaces the blacklist with ips.
func (c *Config) SetBlacklist(ips []string) {
	c.Blacklist = toSet(ips)
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, item := range items {
		if item != "" {
			out[item] = true
		}
	}
	return out
}
