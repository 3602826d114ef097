// Package config loads the immutable service configuration from the
// environment. It is parsed once at startup and injected; nothing reads
// environment variables ad hoc afterwards.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

var (
	// ErrMissingClientID is returned when DISCORD_CLIENT_ID is not set.
	ErrMissingClientID = errors.New("client id is not configured")
	// ErrMissingClientSecret is returned when DISCORD_CLIENT_SECRET is not set.
	ErrMissingClientSecret = errors.New("client secret is not configured")
	// ErrMissingRedirectURI is returned when DISCORD_REDIRECT_URI is not set.
	ErrMissingRedirectURI = errors.New("redirect uri is not configured")
)

// Config holds the OAuth client configuration for the Discord exchange flow.
type Config struct {
	ClientID        string `env:"DISCORD_CLIENT_ID"`
	ClientSecret    string `env:"DISCORD_CLIENT_SECRET"`
	RedirectURI     string `env:"DISCORD_REDIRECT_URI"`
	RequiredScopes  string `env:"DISCORD_REQUIRED_SCOPES" envDefault:"identify email guilds"`
	SuccessRedirect string `env:"DISCORD_SUCCESS_REDIRECT" envDefault:"https://discord.com/oauth2/authorized"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate reports the first missing required field. The flow cannot proceed
// without client id, client secret, and redirect URI.
func (c Config) Validate() error {
	if c.ClientID == "" {
		return ErrMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrMissingClientSecret
	}
	if c.RedirectURI == "" {
		return ErrMissingRedirectURI
	}
	return nil
}

// Redacted returns a copy safe for logging with the client secret masked.
func (c Config) Redacted() Config {
	if c.ClientSecret != "" {
		c.ClientSecret = "[REDACTED]"
	}
	return c
}
