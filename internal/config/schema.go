// Package config handles YAML configuration loading, environment variable
// expansion, and validation for the intake service.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/intakehq/intake/internal/gateway"
	"github.com/intakehq/intake/internal/provider/openai"
)

// Config is the top-level configuration structure. Every section is a
// typed struct; unknown keys fail the load in strict mode.
type Config struct {
	Server    gateway.Config  `yaml:"server"`
	Provider  openai.Config   `yaml:"provider"`
	History   HistoryConfig   `yaml:"history"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Export    ExportConfig    `yaml:"export"`
	Retention RetentionConfig `yaml:"retention"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// HistoryConfig controls conversation persistence.
type HistoryConfig struct {
	// Path is the SQLite database file. Empty selects the in-memory store,
	// which loses all conversations on restart.
	Path string `yaml:"path"`

	// RecentLimit bounds how many stored turns accompany each new prompt.
	RecentLimit int `yaml:"recent_limit"`
}

// PromptConfig controls the system prompt source.
type PromptConfig struct {
	// Path is a text file holding the system prompt. Empty or missing
	// falls back to the built-in default prompt.
	Path string `yaml:"path"`
}

// ExportConfig controls the finalized-record sink.
type ExportConfig struct {
	// Path is the CSV file finalized records are appended to.
	Path string `yaml:"path"`
}

// RetentionConfig controls the idle-history sweep.
type RetentionConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Schedule string        `yaml:"schedule"`
	MaxIdle  time.Duration `yaml:"max_idle"`
}

// TelemetryConfig controls trace export. Tracing is off unless an OTLP
// endpoint is configured.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Defaults fills zero values section by section.
func (c *Config) Defaults() {
	c.Server.Defaults()
	// Provider defaults are applied by openai.New.
	if c.History.RecentLimit <= 0 {
		c.History.RecentLimit = 10
	}
	if c.Export.Path == "" {
		c.Export.Path = "intake_records.csv"
	}
	if c.Retention.Schedule == "" {
		c.Retention.Schedule = "0 * * * *"
	}
	if c.Retention.MaxIdle <= 0 {
		c.Retention.MaxIdle = 30 * 24 * time.Hour
	}
}

// Validate checks cross-field constraints after defaults are applied.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Provider.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("provider: %w", err))
	}
	if c.Retention.Enabled && c.History.Path == "" {
		errs = append(errs, errors.New("retention: requires a persistent history path"))
	}

	return errors.Join(errs...)
}
