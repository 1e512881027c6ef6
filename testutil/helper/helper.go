package helper

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
)

// GivenUniqueID supplies a time-ordered UUID for arranging test data.
func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	assert.NoError(t, err, "error in arranging test data")

	return id
}

// GivenCacheEntry builds a valid cache entry for arranging test data.
func GivenCacheEntry(t testing.TB, key datalayer.QueryKey, payload string) datalayer.CacheEntry {
	entry, err := datalayer.BuildCacheEntry(key, []byte(payload))
	assert.NoError(t, err, "error in arranging test data")

	return entry
}

// GivenUniqueQueryKey supplies a query key scoped to the given prefix,
// unique per call so parallel tests never collide on cache rows.
func GivenUniqueQueryKey(t testing.TB, prefix string) datalayer.QueryKey {
	return datalayer.QueryKey(prefix + ":" + GivenUniqueID(t).String())
}
