// Package logger provides structured logging functionality for the application.
//
// It wraps log/slog with a JSON handler at a configurable level and carries
// request-scoped loggers through context.Context.
package logger
