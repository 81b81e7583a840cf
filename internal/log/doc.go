// Package log provides logging with automatic redaction of gateway
// credentials, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic redaction of sensitive values (API keys, cookies, tokens)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Redaction
//
// The RedactHandler automatically masks sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (bearer tokens, JWTs, keys)
//
// Session registry identifiers are deliberately NOT masked: they are local
// handles used for correlating fetches, and operators need to see them.
//
// Even in verbose mode, credentials are masked to prevent accidental
// exposure of secrets in logs that may be shared or stored.
//
// # Usage
//
//	// Create a redacting logger
//	logger := log.NewRedactLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("fetch sent",
//	    "authorization", "Bearer abc123",  // Will be masked
//	    "url", "http://example.com",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
