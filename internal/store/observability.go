package store

// Logger interface for SQL query logging, operational summaries, warnings,
// and error reporting. It is dependency-free so that any structured logging
// backend can be plugged in by implementing these four methods.
//
// Debug level: SQL queries with execution timing (development use)
// Info level: row counts and durations (production-safe)
// Warn level: non-critical issues like swallowed cleanup failures
// Error level: critical failures that cause operation failures.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
