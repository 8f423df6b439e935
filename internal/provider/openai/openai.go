// Package openai implements the provider boundary against the OpenAI
// Chat Completions API.
package openai

import (
	"net/http"

	"github.com/intakehq/intake/internal/provider"
)

// Compile-time interface guards.
var (
	_ provider.Provider      = (*Client)(nil)
	_ provider.HealthChecker = (*Client)(nil)
)

// Client talks to the OpenAI Chat Completions API.
type Client struct {
	config Config
	client *http.Client
}

// New creates a Client from the given configuration. The configuration
// must have been validated; missing fields fall back to defaults.
func New(cfg Config) *Client {
	cfg.defaults()
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.parsedTimeout()},
	}
}

// ModelName returns the configured model identifier.
func (c *Client) ModelName() string {
	return c.config.Model
}
