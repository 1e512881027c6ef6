package gateway

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
)

// readCachedValue reads and deserializes the cache entry for the key.
// A miss is logged at debug level and returned as ErrCacheMiss; any other
// failure is logged at warn level and wrapped with ErrCacheReadFailed.
func readCachedValue[T any](
	ctx context.Context,
	store datalayer.CacheStore,
	key datalayer.QueryKey,
	queryName string,
	config *strategyConfig,
) (T, error) {
	var zero T

	entry, err := store.Read(ctx, key)
	if err != nil {
		if errors.Is(err, datalayer.ErrCacheMiss) {
			config.logDebug(ctx, datalayer.LogMsgCacheMiss,
				datalayer.LogAttrQuery, queryName,
				datalayer.LogAttrQueryKey, key.String())

			return zero, err
		}

		wrapped := errors.Join(datalayer.ErrCacheReadFailed, err)
		config.logWarn(ctx, datalayer.LogMsgCacheReadFailed,
			datalayer.LogAttrQuery, queryName,
			datalayer.LogAttrQueryKey, key.String(),
			datalayer.LogAttrError, wrapped.Error())

		return zero, wrapped
	}

	value, err := unmarshalValue[T](entry.Data)
	if err != nil {
		wrapped := errors.Join(datalayer.ErrCacheReadFailed, err)
		config.logWarn(ctx, datalayer.LogMsgCacheReadFailed,
			datalayer.LogAttrQuery, queryName,
			datalayer.LogAttrQueryKey, key.String(),
			datalayer.LogAttrError, wrapped.Error())

		return zero, wrapped
	}

	return value, nil
}

// persistFetchedValue writes a freshly fetched value to the cache store.
// Write failures are logged and swallowed, they never disturb the stream.
func persistFetchedValue[T any](
	ctx context.Context,
	store datalayer.CacheStore,
	key datalayer.QueryKey,
	queryName string,
	config *strategyConfig,
	value T,
) {
	logFailure := func(err error) {
		config.logWarn(ctx, datalayer.LogMsgCacheWriteFailed,
			datalayer.LogAttrQuery, queryName,
			datalayer.LogAttrQueryKey, key.String(),
			datalayer.LogAttrError, err.Error())
	}

	data, err := marshalValue(value)
	if err != nil {
		logFailure(errors.Join(datalayer.ErrCacheWriteFailed, err))
		return
	}

	entry, err := datalayer.BuildCacheEntry(key, data)
	if err != nil {
		logFailure(errors.Join(datalayer.ErrCacheWriteFailed, err))
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, cacheWriteTimeout)
	defer cancel()

	if err := store.Write(writeCtx, entry); err != nil {
		logFailure(errors.Join(datalayer.ErrCacheWriteFailed, err))
	}
}
