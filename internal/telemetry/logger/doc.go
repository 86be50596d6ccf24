// Package logger provides structured logging for ssmproxy.
//
// It wraps the standard library log/slog:
//
//   - logger.go: Logger interface, configuration and the process-wide default
//   - context.go: request, receiver and session IDs carried on a context
//   - redact.go: masking of tokens and authorization header values
//
// The level is held in a shared slog.LevelVar so it can be changed at
// runtime, e.g. when the config file is reloaded.
package logger
