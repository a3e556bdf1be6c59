package config

import "errors"

// Validation errors returned by Config.Validate. Match them with errors.Is.
var (
	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxRedirects is returned for a negative redirect limit.
	// Zero disables redirects.
	ErrInvalidMaxRedirects = errors.New("invalid max redirects: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the body limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	ErrInvalidMaxPages    = errors.New("invalid max pages: must be positive")
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidLogLevel is returned when LogLevel is not a zap level name.
	ErrInvalidLogLevel = errors.New("invalid log level: use debug, info, warn or error")

	ErrEmptyUserAgent = errors.New("user agent must not be empty")
)

// ErrConfigNotFound is returned when an explicitly requested config file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")
