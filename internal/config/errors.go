package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use errors.Is()
// for programmatic handling while still printing a human-readable message.
var (
	// ErrNoTarget is returned when no URL or list file is specified.
	ErrNoTarget = errors.New("no target specified: provide a URL or use --list")

	// ErrInvalidTimeout is returned when the overall analysis timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidCollectorTimeout is returned when a whois, DNS, resolve or
	// fetch timeout is not positive.
	ErrInvalidCollectorTimeout = errors.New("invalid collector timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to fall back to the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidThreshold is returned when the classification threshold is negative.
	ErrInvalidThreshold = errors.New("invalid threshold: must be non-negative")

	// ErrInvalidDNSServer is returned when the DNS server is not in host:port form.
	ErrInvalidDNSServer = errors.New("invalid dns server: must be host:port")
)
