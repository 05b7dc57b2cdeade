package ratelimit

import (
	"net/http"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends with "/"
	Method string        // HTTP method; empty matches any method
	Limit  int           // Maximum requests per window; 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// key identifies the bucket family; every path matched by the same endpoint shares it.
func (e *EndpointConfig) key() string {
	return e.Method + " " + e.Path
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTimeout is how long an untouched bucket survives cleanup
	IdleTimeout     time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds a limiter configuration with the default endpoint table.
func NewConfig(enabled bool, defaultLimit int, defaultWindow time.Duration, whitelist, blacklist []string) *Config {
	return &Config{
		Enabled:         enabled,
		DefaultLimit:    defaultLimit,
		DefaultWindow:   defaultWindow,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		Whitelist:       toSet(whitelist),
		Blacklist:       toSet(blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Upstream model calls
		{Path: "/api/ai", Method: http.MethodPost, Limit: 10, Window: time.Minute, Burst: 3},

		// Image processing
		{Path: "/api/upload", Method: http.MethodPost, Limit: 20, Window: time.Minute, Burst: 5},
		{Path: "/api/upload", Method: http.MethodDelete, Limit: 20, Window: time.Minute, Burst: 5},

		// Password guessing
		{Path: "/api/admin/login", Method: http.MethodPost, Limit: 5, Window: time.Minute, Burst: 5},

		// Admin writes
		{Path: "/api/admin", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/admin/", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/admin/", Method: http.MethodPut, Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/admin/", Method: http.MethodDelete, Limit: 100, Window: time.Minute, Burst: 10},

		// Reads fall through to the default limit; /health is unlimited
	}
}

func toSet(items []string) map[string]bool {
	result := make(map[string]bool, len(items))
	for _, item := range items {
		if item != "" {
			result[item] = true
		}
	}
	return result
}
