// Package logger provides structured logging for CompanyLock.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface, JSON/text handlers, dynamic level
//   - context.go: context propagation of the logger and request IDs
//   - redact.go: masking of credentials, secrets and bearer values
//
// Tokens and revealed passwords must never reach a log line; log
// token.Fingerprint(tok) under a "*_fingerprint" key instead.
package logger
