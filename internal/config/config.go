// Package config holds the CLI-derived run configuration for a single
// extraction pass.
package config

import (
	"time"

	"github.com/kestrelcase/intakex/internal/errs"
)

// Config is the fully resolved, validated set of options for one run,
// populated from the cobra/pflag CLI surface in cmd/intakex.
type Config struct {
	InputPath  string
	APIKey     string
	OutputJSON string

	Threads   int
	Lang      string
	Model     string
	PerFile   bool
	JSONLPath string
	CacheDir  string
	Redact    bool
	Audit     bool

	TimeoutSeconds int
	MaxLines       int
	MaxChars       int
}

const (
	minTimeoutSeconds = 30
	minMaxLines       = 6
	minMaxChars       = 500
)

// Timeout returns the configured per-request timeout as a time.Duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate enforces the required positional args and the documented
// minimums, clamping below-minimum flag values up rather than rejecting
// them.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return &errs.ConfigError{Msg: "INPUT_PATH is required"}
	}
	if c.APIKey == "" {
		return &errs.ConfigError{Msg: "OPENAI_API_KEY is required"}
	}
	if c.OutputJSON == "" {
		return &errs.ConfigError{Msg: "OUTPUT_JSON is required"}
	}
	if c.Threads <= 0 {
		c.Threads = 1
	}
	if c.Lang == "" {
		c.Lang = "eng"
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.TimeoutSeconds < minTimeoutSeconds {
		c.TimeoutSeconds = minTimeoutSeconds
	}
	if c.MaxLines < minMaxLines {
		c.MaxLines = minMaxLines
	}
	if c.MaxChars < minMaxChars {
		c.MaxChars = minMaxChars
	}
	return nil
}
