package valkeyengine

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valkey-io/valkey-go"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
)

const (
	defaultKeyPrefix         = "datalayer:"
	logMsgGetFailed          = "valkey get command failed"
	logMsgSetFailed          = "valkey set command failed"
	logMsgDelFailed          = "valkey del command failed"
	logMsgDecodeEntryFailed  = "failed to decode stored cache entry"
	logMsgEncodeEntryFailed  = "failed to encode cache entry"
	logMsgEntryRead          = "cache entry read"
	logMsgEntryWritten       = "cache entry written"
	logMsgEntryRemoved       = "cache entry removed"
	logMsgNoEntryForKey      = "no entry for key"
	logMsgOperation          = "cache store operation: "
	operationRead            = "read"
	operationWrite           = "write"
	operationRemove          = "remove"
)

// storedEntry is the JSON wire format for one persisted cache entry.
// The query key is not stored; it is encoded in the Valkey key itself.
type storedEntry struct {
	Data     json.RawMessage `json:"data"`
	CachedAt time.Time       `json:"cached_at"`
}

// CacheStore persists cache entries in Valkey, one value per prefixed key,
// overwritten on every write. It works with any valkey.Client and supports
// customizable logging, metrics, tracing, and key prefix configuration.
type CacheStore struct {
	client           valkey.Client
	keyPrefix        string
	logger           datalayer.Logger
	contextualLogger datalayer.ContextualLogger
	metricsCollector datalayer.MetricsCollector
	tracingCollector datalayer.TracingCollector
}

var _ datalayer.CacheStore = (*CacheStore)(nil)

// NewCacheStoreFromClient creates a new CacheStore using a valkey.Client with optional configuration.
// Instrumented clients created via valkeyotel.NewClient work the same way as plain clients.
func NewCacheStoreFromClient(client valkey.Client, options ...Option) (*CacheStore, error) {
	if client == nil {
		return nil, datalayer.ErrNilDatabaseConnection
	}

	cs := &CacheStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}

	for _, option := range options {
		if err := option(cs); err != nil {
			return nil, err
		}
	}

	return cs, nil
}

// Read retrieves the cache entry stored under the given key
// and returns datalayer.ErrCacheMiss when Valkey holds no value for it.
func (cs *CacheStore) Read(ctx context.Context, key datalayer.QueryKey) (datalayer.CacheEntry, error) {
	var empty datalayer.CacheEntry

	if key.IsEmpty() {
		return empty, datalayer.ErrEmptyQueryKey
	}

	ctx, span := datalayer.StartCacheStoreSpan(ctx, cs.tracingCollector, operationRead)
	start := time.Now()
	storageKey := cs.storageKey(key)

	raw, getErr := cs.client.Do(ctx, cs.client.B().Get().Key(storageKey).Build()).AsBytes()
	if getErr != nil {
		if valkey.IsValkeyNil(getErr) {
			cs.logOperation(ctx, logMsgNoEntryForKey, datalayer.LogAttrQueryKey, key.String())
			cs.finishOperation(ctx, span, operationRead, datalayer.StatusCacheMiss, start, nil)

			return empty, datalayer.ErrCacheMiss
		}

		cs.logError(ctx, logMsgGetFailed, getErr, datalayer.LogAttrQueryKey, key.String())
		joinedErr := errors.Join(datalayer.ErrCacheReadFailed, getErr)
		cs.finishOperation(ctx, span, operationRead, datalayer.StatusError, start, joinedErr)

		return empty, joinedErr
	}

	var stored storedEntry
	if unmarshalErr := jsoniter.ConfigFastest.Unmarshal(raw, &stored); unmarshalErr != nil {
		cs.logError(ctx, logMsgDecodeEntryFailed, unmarshalErr, datalayer.LogAttrQueryKey, key.String())
		joinedErr := errors.Join(datalayer.ErrCacheReadFailed, unmarshalErr)
		cs.finishOperation(ctx, span, operationRead, datalayer.StatusError, start, joinedErr)

		return empty, joinedErr
	}

	entry := datalayer.CacheEntry{
		QueryKey: key,
		Data:     stored.Data,
		CachedAt: stored.CachedAt,
	}

	cs.logOperation(
		ctx,
		logMsgEntryRead,
		datalayer.LogAttrQueryKey, key.String(),
		datalayer.LogAttrDurationMS, datalayer.ToMilliseconds(time.Since(start)),
	)
	cs.finishOperation(ctx, span, operationRead, datalayer.StatusCacheHit, start, nil)

	return entry, nil
}

// Write stores the cache entry under its prefixed key, replacing any previous value.
func (cs *CacheStore) Write(ctx context.Context, entry datalayer.CacheEntry) error {
	if validateErr := entry.Validate(); validateErr != nil {
		return validateErr
	}

	ctx, span := datalayer.StartCacheStoreSpan(ctx, cs.tracingCollector, operationWrite)
	start := time.Now()
	storageKey := cs.storageKey(entry.QueryKey)

	payload, marshalErr := jsoniter.ConfigFastest.Marshal(storedEntry{
		Data:     entry.Data,
		CachedAt: entry.CachedAt,
	})
	if marshalErr != nil {
		cs.logError(ctx, logMsgEncodeEntryFailed, marshalErr, datalayer.LogAttrQueryKey, entry.QueryKey.String())
		joinedErr := errors.Join(datalayer.ErrCacheWriteFailed, marshalErr)
		cs.finishOperation(ctx, span, operationWrite, datalayer.StatusError, start, joinedErr)

		return joinedErr
	}

	setCmd := cs.client.B().Set().Key(storageKey).Value(valkey.BinaryString(payload)).Build()
	if execErr := cs.client.Do(ctx, setCmd).Error(); execErr != nil {
		cs.logError(ctx, logMsgSetFailed, execErr, datalayer.LogAttrQueryKey, entry.QueryKey.String())
		joinedErr := errors.Join(datalayer.ErrCacheWriteFailed, execErr)
		cs.finishOperation(ctx, span, operationWrite, datalayer.StatusError, start, joinedErr)

		return joinedErr
	}

	cs.logOperation(
		ctx,
		logMsgEntryWritten,
		datalayer.LogAttrQueryKey, entry.QueryKey.String(),
		datalayer.LogAttrDurationMS, datalayer.ToMilliseconds(time.Since(start)),
	)
	cs.finishOperation(ctx, span, operationWrite, datalayer.StatusSuccess, start, nil)

	return nil
}

// Remove deletes the cache entry stored under the given key.
// Removing an absent key is not an error.
func (cs *CacheStore) Remove(ctx context.Context, key datalayer.QueryKey) error {
	if key.IsEmpty() {
		return datalayer.ErrEmptyQueryKey
	}

	ctx, span := datalayer.StartCacheStoreSpan(ctx, cs.tracingCollector, operationRemove)
	start := time.Now()
	storageKey := cs.storageKey(key)

	delCmd := cs.client.B().Del().Key(storageKey).Build()
	if execErr := cs.client.Do(ctx, delCmd).Error(); execErr != nil {
		cs.logError(ctx, logMsgDelFailed, execErr, datalayer.LogAttrQueryKey, key.String())
		joinedErr := errors.Join(datalayer.ErrCacheRemoveFailed, execErr)
		cs.finishOperation(ctx, span, operationRemove, datalayer.StatusError, start, joinedErr)

		return joinedErr
	}

	cs.logOperation(
		ctx,
		logMsgEntryRemoved,
		datalayer.LogAttrQueryKey, key.String(),
		datalayer.LogAttrDurationMS, datalayer.ToMilliseconds(time.Since(start)),
	)
	cs.finishOperation(ctx, span, operationRemove, datalayer.StatusSuccess, start, nil)

	return nil
}

// storageKey builds the Valkey key for a query key by applying the configured prefix.
func (cs *CacheStore) storageKey(key datalayer.QueryKey) string {
	return cs.keyPrefix + key.String()
}
