package postgresengine

import (
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
)

// Option defines a functional option for configuring CacheStore.
type Option func(*CacheStore) error

// WithTableName sets the table name for the CacheStore.
func WithTableName(tableName string) Option {
	return func(cs *CacheStore) error {
		if tableName == "" {
			return datalayer.ErrEmptyCacheTableName
		}

		cs.cacheTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the CacheStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Entry reads/writes/removals with durations (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger datalayer.Logger) Option {
	return func(cs *CacheStore) error {
		cs.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the CacheStore.
// The contextual logger will receive log messages with context information including
// automatic trace/span correlation when tracing is enabled, enabling unified observability.
// When both logger types are configured, the contextual logger takes precedence.
func WithContextualLogger(logger datalayer.ContextualLogger) Option {
	return func(cs *CacheStore) error {
		cs.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the CacheStore.
// The metrics collector will receive performance and operational metrics including
// read/write/remove durations, hit and miss counts, and database errors.
func WithMetrics(collector datalayer.MetricsCollector) Option {
	return func(cs *CacheStore) error {
		cs.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the CacheStore.
// The tracing collector will receive distributed tracing information including
// span creation for read/write/remove operations, context propagation, and error tracking.
func WithTracing(collector datalayer.TracingCollector) Option {
	return func(cs *CacheStore) error {
		cs.tracingCollector = collector
		return nil
	}
}
