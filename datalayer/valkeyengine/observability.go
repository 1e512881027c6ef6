package valkeyengine

import (
	"context"
	"time"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
)

// logOperation logs operational information at info level if a logger is configured.
// The contextual logger takes precedence for automatic trace correlation.
func (cs *CacheStore) logOperation(ctx context.Context, action string, args ...any) {
	if cs.contextualLogger != nil {
		cs.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	} else if cs.logger != nil {
		cs.logger.Info(logMsgOperation+action, args...)
	}
}

// logError logs error information at error level if a logger is configured.
func (cs *CacheStore) logError(
	ctx context.Context,
	message string,
	err error,
	args ...any,
) {
	allArgs := []any{datalayer.LogAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if cs.contextualLogger != nil {
		cs.contextualLogger.ErrorContext(ctx, message, allArgs...)
	} else if cs.logger != nil {
		cs.logger.Error(message, allArgs...)
	}
}

// finishOperation records duration and call metrics and completes the tracing
// span for one cache store operation.
func (cs *CacheStore) finishOperation(
	ctx context.Context,
	span datalayer.SpanContext,
	operation string,
	status string,
	start time.Time,
	err error,
) {
	duration := time.Since(start)
	datalayer.RecordCacheStoreMetrics(ctx, cs.metricsCollector, operation, status, duration)
	datalayer.FinishSpan(cs.tracingCollector, span, status, duration, err)
}
