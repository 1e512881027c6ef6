package datalayer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var (
	// ErrInvalidCacheEntryJSON is returned when cache entry data is malformed or invalid JSON.
	ErrInvalidCacheEntryJSON = errors.New("cache entry data is not valid json")
)

// CacheEntry represents one stored value of the secondary data source.
// It holds the serialized domain value along with the query key it was
// stored under, enabling the fallback strategies to restore it later.
type CacheEntry struct {
	QueryKey QueryKey        // Key of the logical query this entry belongs to
	Data     json.RawMessage // Serialized domain value as JSON
	CachedAt time.Time       // When this entry was written/updated
}

// Validate ensures the entry has valid data for storage operations.
func (e CacheEntry) Validate() error {
	if e.QueryKey.IsEmpty() {
		return ErrEmptyQueryKey
	}

	if !jsoniter.ConfigFastest.Valid(e.Data) {
		return ErrInvalidCacheEntryJSON
	}

	return nil
}

// BuildCacheEntry creates a new CacheEntry with validation.
func BuildCacheEntry(key QueryKey, data json.RawMessage) (CacheEntry, error) {
	entry := CacheEntry{
		QueryKey: key,
		Data:     data,
		CachedAt: time.Now(),
	}

	if err := entry.Validate(); err != nil {
		return CacheEntry{}, err
	}

	return entry, nil
}

// CacheStore is the port to the secondary data source: one entry per key,
// overwritten on every write. It is the only shared mutable resource of the
// pipeline; implementations must be safe under concurrent use and guarantee
// that the most recently completed write is eventually visible to
// subsequent reads. No ordering guarantee beyond that is assumed.
type CacheStore interface {
	// Read returns the entry stored under key, or ErrCacheMiss when absent.
	Read(ctx context.Context, key QueryKey) (CacheEntry, error)

	// Write stores the entry under its key, replacing any previous entry.
	Write(ctx context.Context, entry CacheEntry) error

	// Remove deletes the entry stored under key. Removing an absent key is not an error.
	Remove(ctx context.Context, key QueryKey) error
}
