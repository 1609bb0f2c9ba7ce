package postgresengine

import "github.com/booklend/rental-service/internal/store"

// Option defines a functional option for configuring the Engine.
type Option func(*Engine) error

// WithLogger sets the logger for the Engine.
// The logger will receive messages at different levels based on the logger's
// configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: row counts and durations (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: critical failures that cause operation failures.
func WithLogger(logger store.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}
