package config

import "errors"

// Configuration validation errors.
// These are returned by Config.Validate and ParseCookies. We use
// package-level sentinel errors so callers can use errors.Is while still
// getting human-readable messages.
var (
	// ErrNoStartURL is returned when no start URL is provided.
	ErrNoStartURL = errors.New("no start URL specified")

	// ErrInvalidStartURL is returned when the start URL is not an
	// http(s) URL.
	ErrInvalidStartURL = errors.New("invalid start URL: must begin with http:// or https://")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrConflictingFilters is returned when both --ignore and --display
	// extension filters are set. Only one filter direction makes sense.
	ErrConflictingFilters = errors.New("conflicting filters: --ignore and --display cannot be used together")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingAgents is returned when both --random-agent and a
	// fixed --user-agent are specified.
	ErrConflictingAgents = errors.New("conflicting agents: --random-agent and --user-agent cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidCookieFormat is returned when the cookie string cannot be
	// parsed. Expected form: "key1=value1;key2=value2".
	ErrInvalidCookieFormat = errors.New("invalid cookie format: use \"key1=value1;key2=value2\"")
)
