// Package config holds the runtime settings of the pagemeta CLI.
//
// Values are layered: built-in defaults, then a YAML file, then PAGEMETA_*
// environment variables. Command-line flags are applied last by the caller.
package config

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Defaults.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultUserAgent    = "pagemeta/1.0 (+https://github.com/gaurav-prasanna/pagemeta)"
	DefaultMaxRedirects = 10
	DefaultMaxBodySize  = 10 << 20
	DefaultMaxPages     = 100
	DefaultConcurrency  = 4
	DefaultLogLevel     = "info"
)

// Config is the full set of runtime settings.
type Config struct {
	Timeout      time.Duration `yaml:"timeout" split_words:"true"`
	UserAgent    string        `yaml:"user_agent" split_words:"true"`
	VerifyTLS    bool          `yaml:"verify_tls" split_words:"true"`
	MaxRedirects int           `yaml:"max_redirects" split_words:"true"`
	MaxBodySize  int64         `yaml:"max_body_size" split_words:"true"`

	// MaxPages bounds site discovery in multi-page runs.
	MaxPages int `yaml:"max_pages" split_words:"true"`
	// Concurrency is the number of pages parsed in parallel.
	Concurrency int    `yaml:"concurrency"`
	OutputDir   string `yaml:"output_dir" split_words:"true"`

	LogLevel    string `yaml:"log_level" split_words:"true"`
	Development bool   `yaml:"development"`
}

// Default returns a Config populated with the built-in defaults.
// TLS verification is off so that pages with broken certificates still parse.
func Default() Config {
	return Config{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		VerifyTLS:    false,
		MaxRedirects: DefaultMaxRedirects,
		MaxBodySize:  DefaultMaxBodySize,
		MaxPages:     DefaultMaxPages,
		Concurrency:  DefaultConcurrency,
		LogLevel:     DefaultLogLevel,
	}
}

// Validate checks every field and returns the first problem found.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return ErrEmptyUserAgent
	}
	if c.MaxRedirects < 0 {
		return ErrInvalidMaxRedirects
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return nil
}
