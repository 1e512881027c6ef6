package memoryengine_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer/memoryengine"
)

func Test_CacheStore_Read_ReturnsCacheMissForUnknownKey(t *testing.T) {
	// arrange
	store := memoryengine.NewCacheStore()

	// act
	_, err := store.Read(context.Background(), "titles:popular")

	// assert
	assert.ErrorIs(t, err, datalayer.ErrCacheMiss, "reading an unknown key should be a cache miss")
}

func Test_CacheStore_Read_FailsWithEmptyKey(t *testing.T) {
	// arrange
	store := memoryengine.NewCacheStore()

	// act
	_, err := store.Read(context.Background(), "")

	// assert
	assert.ErrorIs(t, err, datalayer.ErrEmptyQueryKey, "reading with an empty key should fail")
}

func Test_CacheStore_WriteThenRead_RoundTrips(t *testing.T) {
	// arrange
	store := memoryengine.NewCacheStore()
	entry, err := datalayer.BuildCacheEntry("titles:popular", []byte(`{"titles":["Aurora"]}`))
	require.NoError(t, err, "building the entry should succeed")

	// act
	writeErr := store.Write(context.Background(), entry)
	loaded, readErr := store.Read(context.Background(), "titles:popular")

	// assert
	require.NoError(t, writeErr, "writing the entry should succeed")
	require.NoError(t, readErr, "reading the entry back should succeed")
	assert.Equal(t, entry.QueryKey, loaded.QueryKey, "query key should round-trip")
	assert.JSONEq(t, string(entry.Data), string(loaded.Data), "payload should round-trip")
	assert.False(t, loaded.CachedAt.IsZero(), "cached-at timestamp should be set")
}

func Test_CacheStore_Write_ReplacesPreviousEntry(t *testing.T) {
	// arrange
	store := memoryengine.NewCacheStore()
	first, err := datalayer.BuildCacheEntry("titles:popular", []byte(`{"titles":[]}`))
	require.NoError(t, err)
	second, err := datalayer.BuildCacheEntry("titles:popular", []byte(`{"titles":["Aurora"]}`))
	require.NoError(t, err)

	// act
	require.NoError(t, store.Write(context.Background(), first))
	require.NoError(t, store.Write(context.Background(), second))
	loaded, readErr := store.Read(context.Background(), "titles:popular")

	// assert
	require.NoError(t, readErr, "reading the entry back should succeed")
	assert.JSONEq(t, string(second.Data), string(loaded.Data), "the later write should win")
	assert.Equal(t, 1, store.Len(), "the store should hold a single entry for the key")
}

func Test_CacheStore_Write_RejectsInvalidPayload(t *testing.T) {
	// arrange
	store := memoryengine.NewCacheStore()
	entry := datalayer.CacheEntry{QueryKey: "titles:popular", Data: []byte(`{not json`)}

	// act
	err := store.Write(context.Background(), entry)

	// assert
	assert.ErrorIs(t, err, datalayer.ErrInvalidCacheEntryJSON, "writing a broken payload should fail validation")
}

func Test_CacheStore_Remove_DeletesEntry(t *testing.T) {
	// arrange
	store := memoryengine.NewCacheStore()
	entry, err := datalayer.BuildCacheEntry("titles:popular", []byte(`{"titles":["Aurora"]}`))
	require.NoError(t, err)
	require.NoError(t, store.Write(context.Background(), entry))

	// act
	removeErr := store.Remove(context.Background(), "titles:popular")
	_, readErr := store.Read(context.Background(), "titles:popular")

	// assert
	require.NoError(t, removeErr, "removing the entry should succeed")
	assert.ErrorIs(t, readErr, datalayer.ErrCacheMiss, "the entry should be gone")
}

func Test_CacheStore_Remove_AbsentKeyIsNotAnError(t *testing.T) {
	// arrange
	store := memoryengine.NewCacheStore()

	// act
	err := store.Remove(context.Background(), "titles:unknown")

	// assert
	assert.NoError(t, err, "removing an absent key should not fail")
}

func Test_CacheStore_SupportsConcurrentAccess(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memoryengine.NewCacheStore()

	const workers = 8
	const iterations = 50

	sharedEntry, err := datalayer.BuildCacheEntry("titles:popular", []byte(`{"titles":["Aurora"]}`))
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, sharedEntry))

	// act
	var wg sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		wg.Add(1)

		go func(worker int) {
			defer wg.Done()

			key := datalayer.QueryKey(fmt.Sprintf("titles:worker-%d", worker))

			for iteration := 0; iteration < iterations; iteration++ {
				payload := []byte(fmt.Sprintf(`{"iteration":%d}`, iteration))
				entry, buildErr := datalayer.BuildCacheEntry(key, payload)
				assert.NoError(t, buildErr)
				assert.NoError(t, store.Write(ctx, entry))

				readBack, readErr := store.Read(ctx, key)
				assert.NoError(t, readErr)
				assert.Equal(t, key, readBack.QueryKey)

				_, sharedErr := store.Read(ctx, "titles:popular")
				assert.NoError(t, sharedErr)
			}
		}(worker)
	}
	wg.Wait()

	// assert
	for worker := 0; worker < workers; worker++ {
		key := datalayer.QueryKey(fmt.Sprintf("titles:worker-%d", worker))
		readBack, readErr := store.Read(ctx, key)
		require.NoError(t, readErr)
		assert.JSONEq(t, fmt.Sprintf(`{"iteration":%d}`, iterations-1), string(readBack.Data),
			"each worker's last write should win for its own key")
	}
	assert.Equal(t, workers+1, store.Len())
}
