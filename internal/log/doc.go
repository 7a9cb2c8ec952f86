// Package log provides logging for octocrawl on top of the standard slog
// package, with automatic masking of credential values (cookies,
// authorization headers) that the crawler attaches to requests.
//
// Usage:
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("checked", "url", u, "cookie", c) // cookie value is masked
package log
