// Package llm provides the completion client used by the content enhancement proxy.
// Two providers are supported: OpenRouter (OpenAI-compatible API) and Google Gemini.
package llm

import "time"

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderOpenRouter routes requests through the OpenRouter OpenAI-compatible API
	ProviderOpenRouter Provider = "openrouter"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// Defaults
const (
	DefaultOpenRouterModel   = "openai/gpt-4.1-nano"
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultGeminiModel       = "gemini-2.5-flash"
	DefaultMaxTokens         = 512
	DefaultTimeout           = 60 * time.Second
)

// Config holds the model configuration for the application
type Config struct {
	Provider  Provider
	Model     string
	BaseURL   string
	MaxTokens int
}

// DefaultConfig returns the default configuration (OpenRouter)
func DefaultConfig() *Config {
	return DefaultOpenRouterConfig()
}

// DefaultOpenRouterConfig returns the default OpenRouter configuration
func DefaultOpenRouterConfig() *Config {
	return &Config{
		Provider:  ProviderOpenRouter,
		Model:     DefaultOpenRouterModel,
		BaseURL:   DefaultOpenRouterBaseURL,
		MaxTokens: DefaultMaxTokens,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider:  ProviderGemini,
		Model:     DefaultGeminiModel,
		MaxTokens: DefaultMaxTokens,
	}
}

// GetModel returns the model to use, preferring override when set
func (c *Config) GetModel(override string) string {
	if override != "" {
		return override
	}
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultOpenRouterModel
}

// WithModel returns a new Config with a different default model
func (c *Config) WithModel(model string) *Config {
	newConfig := *c
	newConfig.Model = model
	return &newConfig
}

func (c *Config) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return DefaultMaxTokens
}
