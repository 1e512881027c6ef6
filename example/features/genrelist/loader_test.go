package genrelist_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/features/genrelist"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/core"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/shell/catalogapi"
)

func Test_Loader_Load_ResolvesGenres(t *testing.T) {
	// arrange
	catalogGateway := &fakeCatalogGateway{records: genreRecords("Drama", "Science Fiction")}

	loader, err := genrelist.NewLoader(catalogGateway)
	require.NoError(t, err, "creating the loader should succeed")

	// act
	list, err := loader.Load(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, "Drama", list.Genres[0].Name)
	assert.Equal(t, "Science Fiction", list.Genres[1].Name)
	assert.Equal(t, int32(1), catalogGateway.calls.Load(), "the gateway should be fetched once")
}

func Test_Loader_Load_CollapsesConcurrentLoads(t *testing.T) {
	// arrange
	release := make(chan struct{})
	catalogGateway := &fakeCatalogGateway{records: genreRecords("Drama"), release: release}

	loader, err := genrelist.NewLoader(catalogGateway)
	require.NoError(t, err)

	const concurrentLoads = 5

	lists := make([]core.GenreList, concurrentLoads)
	loadErrs := make([]error, concurrentLoads)

	var ready, done sync.WaitGroup
	ready.Add(concurrentLoads)
	done.Add(concurrentLoads)

	// act: all loads start while the first fetch is still blocked
	for i := 0; i < concurrentLoads; i++ {
		go func(i int) {
			defer done.Done()
			ready.Done()
			lists[i], loadErrs[i] = loader.Load(context.Background())
		}(i)
	}

	ready.Wait()
	time.Sleep(100 * time.Millisecond)
	close(release)
	done.Wait()

	// assert
	assert.Equal(t, int32(1), catalogGateway.calls.Load(), "concurrent loads should collapse into one fetch")

	for i := 0; i < concurrentLoads; i++ {
		require.NoError(t, loadErrs[i])
		assert.Equal(t, 1, lists[i].Count, "every caller should receive the shared result")
	}
}

func Test_Loader_Load_FetchesAgainAfterCompletion(t *testing.T) {
	// arrange
	catalogGateway := &fakeCatalogGateway{records: genreRecords("Drama")}

	loader, err := genrelist.NewLoader(catalogGateway)
	require.NoError(t, err)

	// act
	_, firstErr := loader.Load(context.Background())
	_, secondErr := loader.Load(context.Background())

	// assert
	require.NoError(t, firstErr)
	require.NoError(t, secondErr)
	assert.Equal(t, int32(2), catalogGateway.calls.Load(),
		"a load after the previous one completed should fetch again, the flight is not a cache")
}

func Test_Loader_Load_ClassifiesRemoteFailure(t *testing.T) {
	// arrange
	catalogGateway := &fakeCatalogGateway{err: errors.New("catalog api is down")}

	loader, err := genrelist.NewLoader(catalogGateway)
	require.NoError(t, err)

	// act
	list, err := loader.Load(context.Background())

	// assert
	require.Error(t, err)
	assert.ErrorIs(t, err, datalayer.ErrRemoteFetchFailed)
	assert.Zero(t, list.Count)
}

func Test_Loader_Load_ClassifiesInvalidRecords(t *testing.T) {
	// arrange
	catalogGateway := &fakeCatalogGateway{
		records: catalogapi.GenreRecordList{
			Genres: []catalogapi.GenreRecord{{ID: "not-a-uuid", Name: "Drama"}},
		},
	}

	loader, err := genrelist.NewLoader(catalogGateway)
	require.NoError(t, err)

	// act
	_, err = loader.Load(context.Background())

	// assert
	require.Error(t, err)
	assert.ErrorIs(t, err, datalayer.ErrMappingFailed)
}

func Test_NewLoader_WithNilGateway(t *testing.T) {
	// act
	loader, err := genrelist.NewLoader(nil)

	// assert
	assert.ErrorIs(t, err, genrelist.ErrNilCatalogGateway)
	assert.Nil(t, loader)
}

// ====== Mock implementations and helpers ======

type fakeCatalogGateway struct {
	records catalogapi.GenreRecordList
	err     error
	calls   atomic.Int32
	release chan struct{}
}

func (f *fakeCatalogGateway) FetchGenres(_ context.Context) (catalogapi.GenreRecordList, error) {
	f.calls.Add(1)

	if f.release != nil {
		<-f.release
	}

	if f.err != nil {
		return catalogapi.GenreRecordList{}, f.err
	}

	return f.records, nil
}

func genreRecords(names ...string) catalogapi.GenreRecordList {
	records := make([]catalogapi.GenreRecord, 0, len(names))
	for _, name := range names {
		records = append(records, catalogapi.GenreRecord{ID: uuid.NewString(), Name: name})
	}

	return catalogapi.GenreRecordList{Genres: records}
}
