// Package logger provides structured logging for fleetdesk-cli.
//
// The package wraps log/slog:
//
//   - logger.go: Logger interface, configuration and the global default
//   - context.go: context-aware logging with request IDs
//   - redact.go: masking of bearer tokens, passwords and similar values
//
// The CLI logs to stderr so that command output on stdout stays machine
// readable.
package logger
