package datalayer

import (
	"errors"
)

var (
	// ErrCacheMiss is returned by CacheStore.Read when no entry exists for the key.
	// It signals absence, not a store failure.
	ErrCacheMiss = errors.New("no cache entry for key")

	// ErrRemoteFetchFailed is returned when the remote fetch collaborator fails.
	ErrRemoteFetchFailed = errors.New("remote fetch failed")

	// ErrMappingFailed is returned when a fetched record cannot be mapped to a domain value.
	ErrMappingFailed = errors.New("mapping fetched record failed")

	// ErrCacheReadFailed is returned when the cache store fails while reading an entry.
	ErrCacheReadFailed = errors.New("reading cache entry failed")

	// ErrCacheWriteFailed is returned when the cache store fails while writing an entry.
	ErrCacheWriteFailed = errors.New("writing cache entry failed")

	// ErrCacheRemoveFailed is returned when the cache store fails while removing an entry.
	ErrCacheRemoveFailed = errors.New("removing cache entry failed")

	// ErrEmptyQueryKey is returned when an empty query key is supplied.
	ErrEmptyQueryKey = errors.New("query key must not be empty")

	// ErrNilDatabaseConnection is returned when a cache store engine is
	// constructed from a nil database connection or client.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyCacheTableName is returned when an empty cache table name is supplied.
	ErrEmptyCacheTableName = errors.New("cache table name must not be empty")

	// ErrEmptyCacheKeyPrefix is returned when an empty cache key prefix is supplied.
	ErrEmptyCacheKeyPrefix = errors.New("cache key prefix must not be empty")

	// ErrBuildingQueryFailed is returned when a cache store engine fails to build its SQL query.
	ErrBuildingQueryFailed = errors.New("building sql query failed")
)

// QueryKey identifies a logical operation instance, for example
// "popular-titles" or "title-details:<id>". It addresses cache entries and
// labels instrumentation; the pipeline performs no deduplication of
// concurrent queries sharing a key.
type QueryKey string

// String returns the key as a plain string.
func (k QueryKey) String() string {
	return string(k)
}

// IsEmpty reports whether the key is empty.
func (k QueryKey) IsEmpty() bool {
	return k == ""
}
