package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
)

// SessionConfig holds configuration for the signed admin session token.
type SessionConfig struct {
	Secret          string `json:"-" yaml:"-"`
	ExpirationHours int    `json:"expiration_hours" yaml:"expiration_hours"`
	// Ephemeral is set when Secret was generated at startup; sessions do not survive a restart
	Ephemeral bool `json:"-" yaml:"-"`
}

// NewSessionConfig creates a session configuration from environment variables.
// It reads SESSION_SECRET and SESSION_EXPIRATION_HOURS (default: 24). A
// missing secret is replaced by a random one.
func NewSessionConfig() (*SessionConfig, error) {
	expirationStr := os.Getenv("SESSION_EXPIRATION_HOURS")
	if expirationStr == "" {
		expirationStr = "24"
	}

	expirationHours, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_EXPIRATION_HOURS: %v", err)
	}

	config := &SessionConfig{
		Secret:          os.Getenv("SESSION_SECRET"),
		ExpirationHours: expirationHours,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration and fills a missing secret.
func (c *SessionConfig) normalize() error {
	if c.ExpirationHours < 1 {
		return fmt.Errorf("SESSION_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	if c.Secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		c.Secret = hex.EncodeToString(buf)
		c.Ephemeral = true
	}
	return nil
}
