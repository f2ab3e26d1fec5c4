// Package logger builds configured log/slog loggers with a consistent
// format across the service, plus helpers for common attributes
// (error, organization_id, payment_id, ...) and context-driven attribute
// injection for request-scoped values.
package logger
