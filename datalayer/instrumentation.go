package datalayer

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// OperationDurationMetric tracks operation invocation duration (OpenTelemetry-compatible).
	OperationDurationMetric = "operation_invoke_duration_seconds"

	// OperationCallsMetric tracks total operation invocations.
	OperationCallsMetric = "operation_invocations_total"

	// OperationCanceledMetric tracks canceled invocations.
	OperationCanceledMetric = "operation_canceled_invocations_total"

	// OperationTimeoutMetric tracks timed-out invocations.
	OperationTimeoutMetric = "operation_timeout_invocations_total"

	// OperationShortCircuitMetric tracks invocations resolved by a precondition
	// without touching the gateway.
	OperationShortCircuitMetric = "operation_short_circuits_total"

	// GatewayQueryDurationMetric tracks gateway query duration (OpenTelemetry-compatible).
	GatewayQueryDurationMetric = "gateway_query_duration_seconds"

	// GatewayQueryCallsMetric tracks total gateway queries.
	GatewayQueryCallsMetric = "gateway_query_calls_total"

	// GatewayFallbackMetric tracks queries that fell back to the secondary source.
	//
	// Labels:
	//   - query: Name of the gateway query (e.g., "PopularTitles")
	//   - status: Result of the fallback path ("cache_hit" or "error")
	//
	// Cardinality: O(queries × 2)
	//
	// Use cases:
	//   - Alert on sustained remote failures: rate(gateway_cache_fallbacks_total[5m])
	//   - Offline-serving ratio per query
	GatewayFallbackMetric = "gateway_cache_fallbacks_total"

	// GatewayRefreshSuppressedMetric tracks remote refresh failures that were
	// suppressed because a cached value had already been delivered.
	GatewayRefreshSuppressedMetric = "gateway_suppressed_refresh_failures_total"

	// CacheStoreDurationMetric tracks cache store operation duration.
	CacheStoreDurationMetric = "cachestore_operation_duration_seconds"

	// CacheStoreCallsMetric tracks total cache store operations.
	CacheStoreCallsMetric = "cachestore_operation_calls_total"

	// StatusSuccess indicates successful completion.
	StatusSuccess = "success"

	// StatusError indicates a processing error.
	StatusError = "error"

	// StatusCanceled indicates the operation was canceled due to context cancellation.
	StatusCanceled = "canceled"

	// StatusTimeout indicates the operation timed out due to context deadline exceeded.
	StatusTimeout = "timeout"

	// StatusCacheHit indicates a value was served from the cache store.
	StatusCacheHit = "cache_hit"

	// StatusCacheMiss indicates the cache store held no value for the key.
	StatusCacheMiss = "cache_miss"

	// StatusSuppressed indicates a failure that was swallowed because a usable
	// value had already been delivered.
	StatusSuppressed = "suppressed"

	// StatusShortCircuit indicates a precondition resolved the invocation.
	StatusShortCircuit = "short_circuit"

	// LogMsgOperationStarted is logged when an operation invocation begins.
	LogMsgOperationStarted = "operation invocation started"

	// LogMsgOperationCompleted is logged when an operation invocation succeeds.
	LogMsgOperationCompleted = "operation invocation completed"

	// LogMsgOperationFailed is logged when an operation invocation fails.
	LogMsgOperationFailed = "operation invocation failed"

	// LogMsgOperationShortCircuited is logged when a precondition resolves an
	// invocation without invoking the gateway.
	LogMsgOperationShortCircuited = "operation short-circuited by precondition"

	// LogMsgOperationPanicRecovered is logged when a delegate panic was translated into a failure.
	LogMsgOperationPanicRecovered = "operation delegate panicked"

	// LogMsgGatewayQueryStarted is logged when a gateway query begins.
	LogMsgGatewayQueryStarted = "gateway query started"

	// LogMsgGatewayQueryCompleted is logged when a gateway query succeeds.
	LogMsgGatewayQueryCompleted = "gateway query completed"

	// LogMsgGatewayQueryFailed is logged when a gateway query fails.
	LogMsgGatewayQueryFailed = "gateway query failed"

	// LogMsgRemoteFetchFailed is logged whenever the remote path of a query
	// fails, regardless of whether a fallback value is served afterwards.
	// This keeps the original remote error discoverable.
	LogMsgRemoteFetchFailed = "remote fetch failed"

	// LogMsgServedFromCache is logged when a cached value is served after a remote failure.
	LogMsgServedFromCache = "serving cached value after remote failure"

	// LogMsgCacheMiss is logged when no cache entry exists for a query key.
	LogMsgCacheMiss = "no cached value for query key"

	// LogMsgCacheReadFailed is logged when the cache store fails while reading.
	LogMsgCacheReadFailed = "cache read failed"

	// LogMsgCacheWriteFailed is logged when persisting a fetched value fails.
	LogMsgCacheWriteFailed = "cache write failed"

	// LogMsgCacheRefreshed is logged when a fresher remote value replaced a cache entry.
	LogMsgCacheRefreshed = "cache entry refreshed with fresher remote value"

	// LogMsgRefreshFailureSuppressed is logged when a remote refresh failed after
	// a cached value was already delivered.
	LogMsgRefreshFailureSuppressed = "remote refresh failed, cached value already delivered"

	// LogAttrOperation identifies the operation name in logs.
	LogAttrOperation = "operation"

	// LogAttrQuery identifies the gateway query name in logs.
	LogAttrQuery = "query"

	// LogAttrQueryKey identifies the cache key of a logical query instance.
	LogAttrQueryKey = "query_key"

	// LogAttrInvocationID carries the unique id of one operation invocation.
	LogAttrInvocationID = "invocation_id"

	// LogAttrStatus indicates the processing status.
	LogAttrStatus = "status"

	// LogAttrDurationMS indicates the processing duration in milliseconds.
	LogAttrDurationMS = "duration_ms"

	// LogAttrError contains error details.
	LogAttrError = "error"

	// LogAttrSource indicates which data source produced a value.
	LogAttrSource = "source"

	// SourceRemote marks values produced by the remote fetch path.
	SourceRemote = "remote"

	// SourceCache marks values produced by the cache store path.
	SourceCache = "cache"

	// SpanNameOperationInvoke is the tracing span name for operation invocations.
	SpanNameOperationInvoke = "operation.invoke"

	// SpanNameGatewayQuery is the tracing span name for gateway queries.
	SpanNameGatewayQuery = "gateway.query"

	// SpanNameCacheStoreOperation is the tracing span name for cache store operations.
	SpanNameCacheStoreOperation = "cachestore.operation"
)

// BuildOperationLabels creates standard metric labels for operation invocations.
func BuildOperationLabels(operation, status string) map[string]string {
	return map[string]string{
		LogAttrOperation: operation,
		LogAttrStatus:    status,
	}
}

// BuildGatewayLabels creates standard metric labels for gateway queries.
func BuildGatewayLabels(query, status string) map[string]string {
	return map[string]string{
		LogAttrQuery:  query,
		LogAttrStatus: status,
	}
}

// BuildCacheStoreLabels creates standard metric labels for cache store operations.
func BuildCacheStoreLabels(operation, status string) map[string]string {
	return map[string]string{
		LogAttrOperation: operation,
		LogAttrStatus:    status,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with precision.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// RecordOperationMetrics records all relevant metrics for one operation invocation.
// It handles both context-aware and basic metrics collectors automatically.
func RecordOperationMetrics(
	ctx context.Context,
	collector MetricsCollector,
	operation string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildOperationLabels(operation, status)

	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, OperationDurationMetric, duration, labels)
		contextualCollector.IncrementCounterContext(ctx, OperationCallsMetric, labels)
	} else {
		collector.RecordDuration(OperationDurationMetric, duration, labels)
		collector.IncrementCounter(OperationCallsMetric, labels)
	}

	switch status {
	case StatusCanceled:
		incrementCounter(ctx, collector, OperationCanceledMetric, labels)
	case StatusTimeout:
		incrementCounter(ctx, collector, OperationTimeoutMetric, labels)
	case StatusShortCircuit:
		incrementCounter(ctx, collector, OperationShortCircuitMetric, labels)
	}
}

// RecordGatewayMetrics records all relevant metrics for one gateway query.
// It handles both context-aware and basic metrics collectors automatically.
func RecordGatewayMetrics(
	ctx context.Context,
	collector MetricsCollector,
	query string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildGatewayLabels(query, status)

	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, GatewayQueryDurationMetric, duration, labels)
		contextualCollector.IncrementCounterContext(ctx, GatewayQueryCallsMetric, labels)
	} else {
		collector.RecordDuration(GatewayQueryDurationMetric, duration, labels)
		collector.IncrementCounter(GatewayQueryCallsMetric, labels)
	}
}

// RecordCacheStoreMetrics records all relevant metrics for one cache store operation.
// It handles both context-aware and basic metrics collectors automatically.
func RecordCacheStoreMetrics(
	ctx context.Context,
	collector MetricsCollector,
	operation string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildCacheStoreLabels(operation, status)

	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, CacheStoreDurationMetric, duration, labels)
		contextualCollector.IncrementCounterContext(ctx, CacheStoreCallsMetric, labels)
	} else {
		collector.RecordDuration(CacheStoreDurationMetric, duration, labels)
		collector.IncrementCounter(CacheStoreCallsMetric, labels)
	}
}

// StartCacheStoreSpan starts a distributed tracing span for a cache store operation.
// Returns the updated context and span context, or original context and nil if tracing is disabled.
func StartCacheStoreSpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	operation string,
) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	attrs := map[string]string{
		LogAttrOperation: operation,
	}

	return tracingCollector.StartSpan(ctx, SpanNameCacheStoreOperation, attrs)
}

// IncrementGatewayCounter increments a gateway counter metric with standard labels.
func IncrementGatewayCounter(
	ctx context.Context,
	collector MetricsCollector,
	metric string,
	query string,
	status string,
) {
	if collector == nil {
		return
	}

	incrementCounter(ctx, collector, metric, BuildGatewayLabels(query, status))
}

func incrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
	} else {
		collector.IncrementCounter(metric, labels)
	}
}

// StartOperationSpan starts a distributed tracing span for an operation invocation.
// Returns the updated context and span context, or original context and nil if tracing is disabled.
func StartOperationSpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	operation string,
) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	attrs := map[string]string{
		LogAttrOperation: operation,
	}

	return tracingCollector.StartSpan(ctx, SpanNameOperationInvoke, attrs)
}

// StartGatewaySpan starts a distributed tracing span for a gateway query.
// Returns the updated context and span context, or original context and nil if tracing is disabled.
func StartGatewaySpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	query string,
) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	attrs := map[string]string{
		LogAttrQuery: query,
	}

	return tracingCollector.StartSpan(ctx, SpanNameGatewayQuery, attrs)
}

// FinishSpan completes a distributed tracing span with the operation outcome.
func FinishSpan(
	tracingCollector TracingCollector,
	span SpanContext,
	status string,
	duration time.Duration,
	err error,
) {
	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: formatDurationMS(duration),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

// LogOperationStart logs the beginning of an operation invocation.
func LogOperationStart(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	operation string,
	invocationID string,
) {
	args := []any{
		LogAttrOperation, operation,
		LogAttrInvocationID, invocationID,
	}

	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgOperationStarted, args...)
	} else if logger != nil {
		logger.Info(LogMsgOperationStarted, args...)
	}
}

// LogOperationSuccess logs successful completion of an operation invocation.
func LogOperationSuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	operation string,
	invocationID string,
	duration time.Duration,
) {
	args := []any{
		LogAttrOperation, operation,
		LogAttrInvocationID, invocationID,
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgOperationCompleted, args...)
	} else if logger != nil {
		logger.Info(LogMsgOperationCompleted, args...)
	}
}

// LogOperationError logs a failed operation invocation.
func LogOperationError(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	operation string,
	invocationID string,
	err error,
) {
	args := []any{
		LogAttrOperation, operation,
		LogAttrInvocationID, invocationID,
		LogAttrError, err.Error(),
	}

	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, LogMsgOperationFailed, args...)
	} else if logger != nil {
		logger.Error(LogMsgOperationFailed, args...)
	}
}

// formatDurationMS formats duration in milliseconds for span attributes.
func formatDurationMS(duration time.Duration) string {
	return fmt.Sprintf("%.2f", ToMilliseconds(duration))
}

// IsCancellationError checks if an error is due to context cancellation.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError checks if an error is due to context deadline exceeded.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
