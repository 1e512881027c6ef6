// Package memoryengine provides a CacheStore implementation backed by an
// in-process map. It is the store of choice for tests and for demo runs
// that should not require external infrastructure.
package memoryengine

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
)

// CacheStore is an in-memory cache store, safe for concurrent use.
type CacheStore struct {
	mu      sync.RWMutex
	entries map[datalayer.QueryKey]datalayer.CacheEntry
}

var _ datalayer.CacheStore = (*CacheStore)(nil)

// NewCacheStore creates an empty in-memory cache store.
func NewCacheStore() *CacheStore {
	return &CacheStore{
		entries: make(map[datalayer.QueryKey]datalayer.CacheEntry),
	}
}

// Read returns the entry stored for the key, or ErrCacheMiss.
func (s *CacheStore) Read(ctx context.Context, key datalayer.QueryKey) (datalayer.CacheEntry, error) {
	if key.IsEmpty() {
		return datalayer.CacheEntry{}, datalayer.ErrEmptyQueryKey
	}

	if err := ctx.Err(); err != nil {
		return datalayer.CacheEntry{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, found := s.entries[key]
	if !found {
		return datalayer.CacheEntry{}, datalayer.ErrCacheMiss
	}

	return entry, nil
}

// Write stores the entry, replacing any previous entry for the same key.
func (s *CacheStore) Write(ctx context.Context, entry datalayer.CacheEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	stored := entry
	stored.Data = append([]byte(nil), entry.Data...)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.QueryKey] = stored

	return nil
}

// Remove deletes the entry for the key. Removing an absent key is not an error.
func (s *CacheStore) Remove(ctx context.Context, key datalayer.QueryKey) error {
	if key.IsEmpty() {
		return datalayer.ErrEmptyQueryKey
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)

	return nil
}

// Len reports how many entries the store currently holds.
func (s *CacheStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
