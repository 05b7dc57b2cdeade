// Package config provides configuration loading and validation for the admin server and CLI.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonathan/cv-admin/internal/llm"
	"gopkg.in/yaml.v3"
)

// ModeDevelopment is the only operating mode that enables the admin surface
const ModeDevelopment = "development"

// Duration is a time.Duration that decodes from strings such as "60s"
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// LLMConfig configures the enhancement proxy's completion client
type LLMConfig struct {
	Provider          string   `json:"provider" yaml:"provider"`
	OpenRouterKey     string   `json:"-" yaml:"-"`
	OpenRouterModel   string   `json:"openrouter_model" yaml:"openrouter_model"`
	OpenRouterBaseURL string   `json:"openrouter_base_url" yaml:"openrouter_base_url"`
	GeminiAPIKey      string   `json:"-" yaml:"-"`
	GeminiModel       string   `json:"gemini_model" yaml:"gemini_model"`
	Timeout           Duration `json:"timeout" yaml:"timeout"`
	AllowedModels     []string `json:"allowed_models" yaml:"allowed_models"`
	// APIKey lets non-session callers use the AI endpoint through the x-api-key header
	APIKey string `json:"-" yaml:"-"`
}

// RateLimitConfig configures the request limiter
type RateLimitConfig struct {
	Enabled       bool     `json:"enabled" yaml:"enabled"`
	DefaultLimit  int      `json:"default_limit" yaml:"default_limit"`
	DefaultWindow Duration `json:"default_window" yaml:"default_window"`
	Whitelist     []string `json:"whitelist" yaml:"whitelist"`
	Blacklist     []string `json:"blacklist" yaml:"blacklist"`
}

// Config is the complete runtime configuration.
// Secrets are read from the environment only and never from config files.
type Config struct {
	Mode          string `json:"mode" yaml:"mode"`
	Port          int    `json:"port" yaml:"port"`
	DataDir       string `json:"data_dir" yaml:"data_dir"`
	PublicDir     string `json:"public_dir" yaml:"public_dir"`
	UploadsSubdir string `json:"uploads_subdir" yaml:"uploads_subdir"`

	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
	Password  PasswordConfig  `json:"password" yaml:"password"`
	Session   SessionConfig   `json:"session" yaml:"session"`

	AdminPasswordHash string `json:"-" yaml:"-"`
	AdminPassword     string `json:"-" yaml:"-"`

	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
	LogLevel    string   `json:"log_level" yaml:"log_level"`
	LogFile     string   `json:"log_file" yaml:"log_file"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Mode:          "production",
		Port:          3000,
		DataDir:       "data",
		PublicDir:     "public",
		UploadsSubdir: "uploads",
		LLM: LLMConfig{
			Provider:          string(llm.ProviderOpenRouter),
			OpenRouterModel:   llm.DefaultOpenRouterModel,
			OpenRouterBaseURL: llm.DefaultOpenRouterBaseURL,
			GeminiModel:       llm.DefaultGeminiModel,
			Timeout:           Duration(llm.DefaultTimeout),
		},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			DefaultLimit:  1000,
			DefaultWindow: Duration(time.Minute),
		},
		Password: PasswordConfig{BcryptCost: 12},
		Session:  SessionConfig{ExpirationHours: 24},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, a .env file, the environment
// and finally the optional config file at path.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML or JSON file at path onto cfg. The extension selects the decoder.
func LoadFile(path string, cfg *Config) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to parse config YAML: %w", err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("failed to parse config JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file extension %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}
	return nil
}

func (c *Config) applyEnv() error {
	mode := os.Getenv("APP_ENV")
	if mode == "" {
		mode = os.Getenv("NODE_ENV")
	}
	if mode != "" {
		c.Mode = mode
	}

	var err error
	if c.Port, err = getEnvInt("PORT", c.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}
	c.DataDir = getEnvString("DATA_DIR", c.DataDir)
	c.PublicDir = getEnvString("PUBLIC_DIR", c.PublicDir)
	c.UploadsSubdir = getEnvString("UPLOADS_SUBDIR", c.UploadsSubdir)

	c.LLM.Provider = getEnvString("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.OpenRouterKey = os.Getenv("OPENROUTER_KEY")
	c.LLM.OpenRouterModel = getEnvString("OPENROUTER_MODEL", c.LLM.OpenRouterModel)
	c.LLM.OpenRouterBaseURL = getEnvString("OPENROUTER_BASE_URL", c.LLM.OpenRouterBaseURL)
	c.LLM.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	c.LLM.GeminiModel = getEnvString("GEMINI_MODEL", c.LLM.GeminiModel)
	c.LLM.APIKey = os.Getenv("AI_API_KEY")
	if v := os.Getenv("AI_ALLOWED_MODELS"); v != "" {
		c.LLM.AllowedModels = parseList(v)
	}
	timeout, err := getEnvDuration("AI_TIMEOUT", time.Duration(c.LLM.Timeout))
	if err != nil {
		return fmt.Errorf("invalid AI_TIMEOUT: %w", err)
	}
	c.LLM.Timeout = Duration(timeout)

	if c.RateLimit.Enabled, err = getEnvBool("RATE_LIMIT_ENABLED", c.RateLimit.Enabled); err != nil {
		return fmt.Errorf("invalid RATE_LIMIT_ENABLED: %w", err)
	}
	if c.RateLimit.DefaultLimit, err = getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", c.RateLimit.DefaultLimit); err != nil {
		return fmt.Errorf("invalid RATE_LIMIT_DEFAULT_LIMIT: %w", err)
	}
	window, err := getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Duration(c.RateLimit.DefaultWindow))
	if err != nil {
		return fmt.Errorf("invalid RATE_LIMIT_DEFAULT_WINDOW: %w", err)
	}
	c.RateLimit.DefaultWindow = Duration(window)
	if v := os.Getenv("RATE_LIMIT_WHITELIST"); v != "" {
		c.RateLimit.Whitelist = parseList(v)
	}
	if v := os.Getenv("RATE_LIMIT_BLACKLIST"); v != "" {
		c.RateLimit.Blacklist = parseList(v)
	}

	password, err := NewPasswordConfig()
	if err != nil {
		return err
	}
	c.Password = *password

	session, err := NewSessionConfig()
	if err != nil {
		return err
	}
	c.Session = *session

	c.AdminPasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")
	c.AdminPassword = os.Getenv("ADMIN_PASSWORD")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = parseList(v)
	}
	c.LogLevel = getEnvString("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnvString("LOG_FILE", c.LogFile)
	return nil
}

// Validate checks that the configuration has valid values.
// Missing secrets are not errors; they disable the feature that needs them.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.DataDir == "" {
		return fmt.Errorf("config error: 'data_dir' must be set")
	}
	if strings.Contains(c.UploadsSubdir, "..") {
		return fmt.Errorf("config error: 'uploads_subdir' must stay inside the public directory")
	}
	switch llm.Provider(c.LLM.Provider) {
	case llm.ProviderOpenRouter, llm.ProviderGemini:
	default:
		return fmt.Errorf("config error: unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("config error: 'llm.timeout' must be positive")
	}
	if c.RateLimit.DefaultLimit < 0 {
		return fmt.Errorf("config error: 'rate_limit.default_limit' must be non-negative")
	}
	if c.RateLimit.Enabled && c.RateLimit.DefaultWindow <= 0 {
		return fmt.Errorf("config error: 'rate_limit.default_window' must be positive")
	}
	if err := c.Password.normalize(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.Session.normalize(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// Development reports whether the admin surface is enabled
func (c *Config) Development() bool {
	return strings.EqualFold(strings.TrimSpace(c.Mode), ModeDevelopment)
}

// LLMClientConfig returns the completion client configuration and the API key for the selected provider
func (c *Config) LLMClientConfig() (*llm.Config, string) {
	if llm.Provider(c.LLM.Provider) == llm.ProviderGemini {
		cfg := llm.DefaultGeminiConfig()
		if c.LLM.GeminiModel != "" {
			cfg.Model = c.LLM.GeminiModel
		}
		return cfg, c.LLM.GeminiAPIKey
	}

	cfg := llm.DefaultOpenRouterConfig()
	if c.LLM.OpenRouterModel != "" {
		cfg.Model = c.LLM.OpenRouterModel
	}
	if c.LLM.OpenRouterBaseURL != "" {
		cfg.BaseURL = c.LLM.OpenRouterBaseURL
	}
	return cfg, c.LLM.OpenRouterKey
}

// AITimeout returns the enhancement timeout
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.LLM.Timeout)
}

// AdminHash returns the bcrypt hash logins are checked against, or "" when
// no admin password is configured and authentication is disabled.
func (c *Config) AdminHash() (string, error) {
	return c.Password.ResolveHash(c.AdminPasswordHash, c.AdminPassword)
}
