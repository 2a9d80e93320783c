package postgresengine

import (
	"github.com/librarium/library-service-go/library"
)

// Option defines a functional option for configuring Library.
type Option func(*Library) error

// WithTableNames overrides the default table names for books, cards and
// borrow records.
func WithTableNames(bookTable, cardTable, borrowTable string) Option {
	return func(l *Library) error {
		if bookTable == "" || cardTable == "" || borrowTable == "" {
			return library.ErrEmptyTableName
		}

		l.bookTable = bookTable
		l.cardTable = cardTable
		l.borrowTable = borrowTable

		return nil
	}
}

// WithLogger sets the logger for the Library.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: operation outcomes and durations (production-safe)
// Warn level: non-critical issues like rollback failures
// Error level: critical failures that cause operation failures.
func WithLogger(logger library.Logger) Option {
	return func(l *Library) error {
		l.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Library.
// When both a Logger and a ContextualLogger are configured, the contextual
// logger takes precedence so trace correlation is never lost.
func WithContextualLogger(logger library.ContextualLogger) Option {
	return func(l *Library) error {
		l.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Library.
// The collector will receive operation durations and rollback counts.
func WithMetrics(collector library.MetricsCollector) Option {
	return func(l *Library) error {
		l.metricsCollector = collector
		return nil
	}
}
