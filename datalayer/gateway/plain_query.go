package gateway

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/outcome"
)

// PlainQuery streams the result of a remote fetch without any cache
// involvement. The stream is always [Pending, Success] or [Pending, Failure].
type PlainQuery[P any, R any, T any] struct {
	queryName string
	fetch     FetchFunc[P, R]
	mapRecord MapFunc[R, T]
	config    strategyConfig
}

// NewPlainQuery creates a plain query strategy for the given collaborators.
func NewPlainQuery[P any, R any, T any](
	queryName string,
	fetch FetchFunc[P, R],
	mapRecord MapFunc[R, T],
	opts ...Option,
) (*PlainQuery[P, R, T], error) {
	if queryName == "" {
		return nil, ErrEmptyQueryName
	}

	if fetch == nil {
		return nil, ErrNilFetchFunc
	}

	if mapRecord == nil {
		return nil, ErrNilMapFunc
	}

	config := defaultStrategyConfig()
	if err := config.apply(opts); err != nil {
		return nil, err
	}

	return &PlainQuery[P, R, T]{
		queryName: queryName,
		fetch:     fetch,
		mapRecord: mapRecord,
		config:    config,
	}, nil
}

// Stream starts producing on the configured launcher and returns the
// result channel. The channel is closed after the terminal element, or as
// soon as the context is cancelled.
func (q *PlainQuery[P, R, T]) Stream(ctx context.Context, params P) <-chan outcome.Outcome[T] {
	results := make(chan outcome.Outcome[T], q.config.channelCapacity)

	q.config.launcher(func() {
		defer close(results)

		var catcher panics.Catcher
		catcher.Try(func() {
			q.produce(ctx, params, results)
		})

		if recovered := catcher.Recovered(); recovered != nil {
			q.config.logError(ctx, datalayer.LogMsgGatewayQueryFailed,
				datalayer.LogAttrQuery, q.queryName,
				datalayer.LogAttrError, recovered.String())
			emit(ctx, results, outcome.FailureFromError[T](recovered.AsError()))
		}
	})

	return results
}

func (q *PlainQuery[P, R, T]) produce(parentCtx context.Context, params P, results chan<- outcome.Outcome[T]) {
	queryStart := time.Now()
	ctx, span := datalayer.StartGatewaySpan(parentCtx, q.config.tracing, q.queryName)

	q.config.logDebug(ctx, datalayer.LogMsgGatewayQueryStarted,
		datalayer.LogAttrQuery, q.queryName)

	if !emit(ctx, results, outcome.Pending[T]()) {
		q.finish(ctx, span, datalayer.StatusCanceled, queryStart, ctx.Err())
		return
	}

	value, err := fetchAndMap(ctx, q.fetch, q.mapRecord, params)
	if err != nil {
		status := gatewayStatus(err)
		q.config.logError(ctx, datalayer.LogMsgGatewayQueryFailed,
			datalayer.LogAttrQuery, q.queryName,
			datalayer.LogAttrError, err.Error())
		q.finish(ctx, span, status, queryStart, err)
		emit(ctx, results, outcome.Failure[T](failureInfo(err)))

		return
	}

	q.config.logDebug(ctx, datalayer.LogMsgGatewayQueryCompleted,
		datalayer.LogAttrQuery, q.queryName,
		datalayer.LogAttrSource, datalayer.SourceRemote)
	q.finish(ctx, span, datalayer.StatusSuccess, queryStart, nil)

	emit(ctx, results, outcome.Success(value))
}

func (q *PlainQuery[P, R, T]) finish(
	ctx context.Context,
	span datalayer.SpanContext,
	status string,
	queryStart time.Time,
	err error,
) {
	duration := time.Since(queryStart)
	datalayer.RecordGatewayMetrics(ctx, q.config.metrics, q.queryName, status, duration)
	datalayer.FinishSpan(q.config.tracing, span, status, duration, err)
}
