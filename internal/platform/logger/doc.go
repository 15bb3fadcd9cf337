// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Records logged with a context automatically carry the
// request's trace ID and session ID when those were attached with WithTraceID and
// WithSessionID.
package logger
