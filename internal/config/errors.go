package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoTarget is returned when no target URL was specified.
	// This error occurs when a command is invoked without positional URLs.
	ErrNoTarget = errors.New("no target specified: provide at least one URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDepth is returned when the traversal depth is negative.
	// Depth 0 is valid and means fetch only the start URL.
	ErrInvalidDepth = errors.New("invalid depth: must be non-negative")

	// ErrInvalidMaxPages is returned when the page budget is negative.
	// A value of 0 is valid and means use the default budget.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	// A concurrency of zero would mean no fetching at all.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidBackend is returned when an unknown backend was requested.
	// Valid values are "gateway", "direct", and "browser".
	ErrInvalidBackend = errors.New("invalid backend: must be gateway, direct, or browser")

	// ErrMissingEndpoint is returned when the gateway backend is selected
	// without a gateway endpoint to talk to.
	ErrMissingEndpoint = errors.New("missing endpoint: the gateway backend requires --endpoint or an endpoint in the config file")

	// ErrInvalidCacheMode is returned when an unknown cache mode was requested.
	// Valid values are "enabled", "bypass", and "only".
	ErrInvalidCacheMode = errors.New("invalid cache mode: must be enabled, bypass, or only")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
