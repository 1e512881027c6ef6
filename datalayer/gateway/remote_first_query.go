package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/outcome"
)

// cacheWriteTimeout bounds how long a strategy waits for the cache store
// when persisting a freshly fetched value.
const cacheWriteTimeout = 30 * time.Second

// RemoteFirstQuery streams the result of a remote fetch, persisting every
// successfully mapped value to the cache store. When the remote fetch or
// the mapping fails, the strategy falls back to the cached value for the
// same key, keeping the original remote error discoverable in the log.
// When the cache cannot help either, the original remote error is surfaced
// as the Failure cause, not the cache error.
type RemoteFirstQuery[P any, R any, T any] struct {
	queryName string
	fetch     FetchFunc[P, R]
	mapRecord MapFunc[R, T]
	store     datalayer.CacheStore
	cacheKey  KeyFunc[P]
	config    strategyConfig
}

// NewRemoteFirstQuery creates a remote-first query strategy for the given
// collaborators.
func NewRemoteFirstQuery[P any, R any, T any](
	queryName string,
	fetch FetchFunc[P, R],
	mapRecord MapFunc[R, T],
	store datalayer.CacheStore,
	cacheKey KeyFunc[P],
	opts ...Option,
) (*RemoteFirstQuery[P, R, T], error) {
	if queryName == "" {
		return nil, ErrEmptyQueryName
	}

	if fetch == nil {
		return nil, ErrNilFetchFunc
	}

	if mapRecord == nil {
		return nil, ErrNilMapFunc
	}

	if store == nil {
		return nil, ErrNilCacheStore
	}

	if cacheKey == nil {
		return nil, ErrNilKeyFunc
	}

	config := defaultStrategyConfig()
	if err := config.apply(opts); err != nil {
		return nil, err
	}

	return &RemoteFirstQuery[P, R, T]{
		queryName: queryName,
		fetch:     fetch,
		mapRecord: mapRecord,
		store:     store,
		cacheKey:  cacheKey,
		config:    config,
	}, nil
}

// Stream starts producing on the configured launcher and returns the
// result channel. The channel is closed after the terminal element, or as
// soon as the context is cancelled.
func (q *RemoteFirstQuery[P, R, T]) Stream(ctx context.Context, params P) <-chan outcome.Outcome[T] {
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

func (q *RemoteFirstQuery[P, R, T]) produce(parentCtx context.Context, params P, results chan<- outcome.Outcome[T]) {
	queryStart := time.Now()
	key := q.cacheKey(params)
	ctx, span := datalayer.StartGatewaySpan(parentCtx, q.config.tracing, q.queryName)

	q.config.logDebug(ctx, datalayer.LogMsgGatewayQueryStarted,
		datalayer.LogAttrQuery, q.queryName,
		datalayer.LogAttrQueryKey, key.String())

	if !emit(ctx, results, outcome.Pending[T]()) {
		q.finish(ctx, span, datalayer.StatusCanceled, queryStart, ctx.Err())
		return
	}

	value, remoteErr := fetchAndMap(ctx, q.fetch, q.mapRecord, params)
	if remoteErr == nil {
		persistFetchedValue(ctx, q.store, key, q.queryName, &q.config, value)
		q.config.logDebug(ctx, datalayer.LogMsgGatewayQueryCompleted,
			datalayer.LogAttrQuery, q.queryName,
			datalayer.LogAttrSource, datalayer.SourceRemote)
		q.finish(ctx, span, datalayer.StatusSuccess, queryStart, nil)
		emit(ctx, results, outcome.Success(value))

		return
	}

	// The remote error is logged before any fallback, so it stays
	// discoverable even when the cache can serve the request.
	q.config.logError(ctx, datalayer.LogMsgRemoteFetchFailed,
		datalayer.LogAttrQuery, q.queryName,
		datalayer.LogAttrQueryKey, key.String(),
		datalayer.LogAttrError, remoteErr.Error())

	if ctx.Err() != nil {
		q.finish(ctx, span, datalayer.StatusCanceled, queryStart, ctx.Err())
		return
	}

	cached, cacheErr := readCachedValue[T](ctx, q.store, key, q.queryName, &q.config)
	if cacheErr == nil {
		datalayer.IncrementGatewayCounter(ctx, q.config.metrics,
			datalayer.GatewayFallbackMetric, q.queryName, datalayer.StatusCacheHit)
		q.config.logInfo(ctx, datalayer.LogMsgServedFromCache,
			datalayer.LogAttrQuery, q.queryName,
			datalayer.LogAttrQueryKey, key.String())
		q.finish(ctx, span, datalayer.StatusCacheHit, queryStart, remoteErr)
		emit(ctx, results, outcome.Success(cached))

		return
	}

	fallbackStatus := datalayer.StatusError
	if errors.Is(cacheErr, datalayer.ErrCacheMiss) {
		fallbackStatus = datalayer.StatusCacheMiss
	}
	datalayer.IncrementGatewayCounter(ctx, q.config.metrics,
		datalayer.GatewayFallbackMetric, q.queryName, fallbackStatus)

	q.finish(ctx, span, gatewayStatus(remoteErr), queryStart, remoteErr)
	emit(ctx, results, outcome.Failure[T](failureInfo(remoteErr)))
}

func (q *RemoteFirstQuery[P, R, T]) finish(
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
