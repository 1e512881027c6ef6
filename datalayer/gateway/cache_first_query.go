package gateway

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/outcome"
)

// CacheFirstQuery streams the cached value for the key immediately when one
// exists, then refreshes from remote. A successful refresh persists the
// fresher value and emits it as a second Success. A failed refresh is
// suppressed when a cached value was already delivered, so consumers keep
// showing the stale-but-usable value; without a cached value the remote
// failure is surfaced as Failure.
type CacheFirstQuery[P any, R any, T any] struct {
	queryName string
	fetch     FetchFunc[P, R]
	mapRecord MapFunc[R, T]
	store     datalayer.CacheStore
	cacheKey  KeyFunc[P]
	config    strategyConfig
}

// NewCacheFirstQuery creates a cache-first query strategy for the given
// collaborators.
func NewCacheFirstQuery[P any, R any, T any](
	queryName string,
	fetch FetchFunc[P, R],
	mapRecord MapFunc[R, T],
	store datalayer.CacheStore,
	cacheKey KeyFunc[P],
	opts ...Option,
) (*CacheFirstQuery[P, R, T], error) {
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

	return &CacheFirstQuery[P, R, T]{
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
func (q *CacheFirstQuery[P, R, T]) Stream(ctx context.Context, params P) <-chan outcome.Outcome[T] {
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

func (q *CacheFirstQuery[P, R, T]) produce(parentCtx context.Context, params P, results chan<- outcome.Outcome[T]) {
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

	servedFromCache := false

	cached, cacheErr := readCachedValue[T](ctx, q.store, key, q.queryName, &q.config)
	if cacheErr == nil {
		q.config.logDebug(ctx, datalayer.LogMsgGatewayQueryCompleted,
			datalayer.LogAttrQuery, q.queryName,
			datalayer.LogAttrSource, datalayer.SourceCache)

		if !emit(ctx, results, outcome.Success(cached)) {
			q.finish(ctx, span, datalayer.StatusCanceled, queryStart, ctx.Err())
			return
		}

		servedFromCache = true
	}

	value, remoteErr := fetchAndMap(ctx, q.fetch, q.mapRecord, params)
	if remoteErr == nil {
		persistFetchedValue(ctx, q.store, key, q.queryName, &q.config, value)

		if servedFromCache {
			q.config.logDebug(ctx, datalayer.LogMsgCacheRefreshed,
				datalayer.LogAttrQuery, q.queryName,
				datalayer.LogAttrQueryKey, key.String())
		}

		q.config.logDebug(ctx, datalayer.LogMsgGatewayQueryCompleted,
			datalayer.LogAttrQuery, q.queryName,
			datalayer.LogAttrSource, datalayer.SourceRemote)
		q.finish(ctx, span, datalayer.StatusSuccess, queryStart, nil)
		emit(ctx, results, outcome.Success(value))

		return
	}

	q.config.logError(ctx, datalayer.LogMsgRemoteFetchFailed,
		datalayer.LogAttrQuery, q.queryName,
		datalayer.LogAttrQueryKey, key.String(),
		datalayer.LogAttrError, remoteErr.Error())

	if ctx.Err() != nil {
		q.finish(ctx, span, datalayer.StatusCanceled, queryStart, ctx.Err())
		return
	}

	if servedFromCache {
		datalayer.IncrementGatewayCounter(ctx, q.config.metrics,
			datalayer.GatewayRefreshSuppressedMetric, q.queryName, datalayer.StatusSuppressed)
		q.config.logInfo(ctx, datalayer.LogMsgRefreshFailureSuppressed,
			datalayer.LogAttrQuery, q.queryName,
			datalayer.LogAttrQueryKey, key.String())
		q.finish(ctx, span, datalayer.StatusSuppressed, queryStart, remoteErr)

		return
	}

	q.finish(ctx, span, gatewayStatus(remoteErr), queryStart, remoteErr)
	emit(ctx, results, outcome.Failure[T](failureInfo(remoteErr)))
}

func (q *CacheFirstQuery[P, R, T]) finish(
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
