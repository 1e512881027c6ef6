package populartitles_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/coordinator"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer/memoryengine"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/features/populartitles"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/core"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/shell/catalogapi"
)

func Test_Controller_Load_RendersContentOnColdCache(t *testing.T) {
	// arrange
	catalogGateway := &fakeCatalogGateway{records: titleRecords("Aurora")}
	spy := &renderSpy{}

	controller, err := populartitles.NewController(
		catalogGateway, memoryengine.NewCacheStore(), spy.capture,
		populartitles.WithLauncher(datalayer.SynchronousLauncher()))
	require.NoError(t, err, "creating the controller should succeed")

	// act
	controller.Load()

	// assert
	require.Len(t, spy.states, 3, "initial loading, pending loading, and content should render")
	assert.True(t, spy.states[0].IsLoading(), "construction should render loading")
	assert.True(t, spy.states[1].IsLoading(), "the invocation should render loading again")
	require.True(t, spy.states[2].IsContent(), "the fetched list should render as content")

	list, _ := spy.states[2].Content()
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, "Aurora", list.Titles[0].Name)
	assert.Equal(t, 1, catalogGateway.calls, "the gateway should be fetched once")
	assert.True(t, controller.CurrentState().IsContent())
}

func Test_Controller_Load_RendersCachedThenRefreshedContent(t *testing.T) {
	// arrange
	cacheStore := memoryengine.NewCacheStore()
	catalogGateway := &fakeCatalogGateway{records: titleRecords("Aurora")}

	warmup, err := populartitles.NewController(
		catalogGateway, cacheStore, func(coordinator.ViewState[core.TitleList]) {},
		populartitles.WithLauncher(datalayer.SynchronousLauncher()))
	require.NoError(t, err)

	warmup.Load()
	warmup.Teardown()

	catalogGateway.records = titleRecords("Aurora", "Dune")
	spy := &renderSpy{}

	controller, err := populartitles.NewController(
		catalogGateway, cacheStore, spy.capture,
		populartitles.WithLauncher(datalayer.SynchronousLauncher()))
	require.NoError(t, err)

	// act
	controller.Load()

	// assert
	require.Len(t, spy.states, 4, "loading twice, then cached content, then refreshed content")
	require.True(t, spy.states[2].IsContent(), "the cached list should render first")
	require.True(t, spy.states[3].IsContent(), "the refreshed list should render afterwards")

	cached, _ := spy.states[2].Content()
	refreshed, _ := spy.states[3].Content()
	assert.Equal(t, 1, cached.Count, "the cached list is the one from the warmup load")
	assert.Equal(t, 2, refreshed.Count, "the refreshed list carries the new title")
}

func Test_Controller_Load_SuppressesRefreshFailureWhenCacheServed(t *testing.T) {
	// arrange
	cacheStore := memoryengine.NewCacheStore()
	catalogGateway := &fakeCatalogGateway{records: titleRecords("Aurora")}

	warmup, err := populartitles.NewController(
		catalogGateway, cacheStore, func(coordinator.ViewState[core.TitleList]) {},
		populartitles.WithLauncher(datalayer.SynchronousLauncher()))
	require.NoError(t, err)

	warmup.Load()
	warmup.Teardown()

	catalogGateway.err = errors.New("catalog api is down")
	spy := &renderSpy{}

	controller, err := populartitles.NewController(
		catalogGateway, cacheStore, spy.capture,
		populartitles.WithLauncher(datalayer.SynchronousLauncher()))
	require.NoError(t, err)

	// act
	controller.Load()

	// assert
	require.True(t, controller.CurrentState().IsContent(), "the stale list should stay on screen")

	for _, state := range spy.states {
		assert.False(t, state.IsFailed(), "a failed refresh behind served cache content should never render as failure")
	}
}

func Test_Controller_Load_RendersEmptyForEmptyList(t *testing.T) {
	// arrange
	catalogGateway := &fakeCatalogGateway{records: catalogapi.TitleRecordList{}}
	spy := &renderSpy{}

	controller, err := populartitles.NewController(
		catalogGateway, memoryengine.NewCacheStore(), spy.capture,
		populartitles.WithLauncher(datalayer.SynchronousLauncher()))
	require.NoError(t, err)

	// act
	controller.Load()

	// assert
	assert.True(t, controller.CurrentState().IsEmpty(), "an empty list should render as empty, not content")
}

func Test_Controller_Retry_RecoversFromFailure(t *testing.T) {
	// arrange
	catalogGateway := &fakeCatalogGateway{err: errors.New("catalog api is down")}
	spy := &renderSpy{}

	controller, err := populartitles.NewController(
		catalogGateway, memoryengine.NewCacheStore(), spy.capture,
		populartitles.WithLauncher(datalayer.SynchronousLauncher()))
	require.NoError(t, err)

	controller.Load()

	failedState := controller.CurrentState()
	require.True(t, failedState.IsFailed(), "a cold cache plus remote failure should render as failed")

	message, _ := failedState.Message()
	assert.Equal(t, coordinator.DefaultFailureMessage, message, "the failure should carry the generic message")

	// act
	catalogGateway.err = nil
	catalogGateway.records = titleRecords("Aurora")
	controller.Retry()

	// assert
	require.True(t, controller.CurrentState().IsContent(), "the retry should recover to content")
	assert.Equal(t, 2, catalogGateway.calls, "the retry should fetch again")
}

func Test_Controller_Select_DeliversNotificationOnce(t *testing.T) {
	// arrange
	catalogGateway := &fakeCatalogGateway{records: titleRecords("Aurora")}

	controller, err := populartitles.NewController(
		catalogGateway, memoryengine.NewCacheStore(), func(coordinator.ViewState[core.TitleList]) {},
		populartitles.WithLauncher(datalayer.SynchronousLauncher()))
	require.NoError(t, err)

	title := core.BuildTitle(uuid.New(), "Aurora", "A story.", 8.1, 2021)

	// act + assert: without an observer the notification is dropped
	assert.False(t, controller.Select(title), "a selection without an observer should report undelivered")

	var received []populartitles.TitleSelected
	controller.OnTitleSelected(func(notification populartitles.TitleSelected) {
		received = append(received, notification)
	})

	assert.True(t, controller.Select(title), "a selection with an observer should report delivered")
	require.Len(t, received, 1)
	assert.Equal(t, title.ID, received[0].TitleID)
	assert.Equal(t, "Aurora", received[0].Name)
}

func Test_Controller_Teardown_FreezesStateAndDetachesObserver(t *testing.T) {
	// arrange
	catalogGateway := &fakeCatalogGateway{records: titleRecords("Aurora")}
	spy := &renderSpy{}

	controller, err := populartitles.NewController(
		catalogGateway, memoryengine.NewCacheStore(), spy.capture,
		populartitles.WithLauncher(datalayer.SynchronousLauncher()))
	require.NoError(t, err)

	controller.OnTitleSelected(func(populartitles.TitleSelected) {})
	controller.Load()
	require.True(t, controller.CurrentState().IsContent())

	rendersBeforeTeardown := len(spy.states)

	// act
	controller.Teardown()
	controller.Retry()

	// assert
	assert.True(t, controller.CurrentState().IsContent(), "the state should stay frozen after teardown")
	assert.Len(t, spy.states, rendersBeforeTeardown, "no further renders should happen after teardown")
	assert.False(t, controller.Select(core.BuildTitle(uuid.New(), "Aurora", "", 8.1, 2021)),
		"teardown should detach the selection observer")
}

func Test_NewController_WithNilGateway(t *testing.T) {
	// act
	controller, err := populartitles.NewController(
		nil, memoryengine.NewCacheStore(), func(coordinator.ViewState[core.TitleList]) {})

	// assert
	assert.ErrorIs(t, err, populartitles.ErrNilCatalogGateway)
	assert.Nil(t, controller)
}

// ====== Mock implementations and helpers ======

type fakeCatalogGateway struct {
	records catalogapi.TitleRecordList
	err     error
	calls   int
}

func (f *fakeCatalogGateway) FetchPopularTitles(_ context.Context) (catalogapi.TitleRecordList, error) {
	f.calls++

	if f.err != nil {
		return catalogapi.TitleRecordList{}, f.err
	}

	return f.records, nil
}

type renderSpy struct {
	states []coordinator.ViewState[core.TitleList]
}

func (s *renderSpy) capture(state coordinator.ViewState[core.TitleList]) {
	s.states = append(s.states, state)
}

func titleRecords(names ...string) catalogapi.TitleRecordList {
	records := make([]catalogapi.TitleRecord, 0, len(names))
	for _, name := range names {
		records = append(records, catalogapi.TitleRecord{
			ID:          uuid.NewString(),
			Name:        name,
			Overview:    "A story.",
			Rating:      8.1,
			ReleaseYear: 2021,
		})
	}

	return catalogapi.TitleRecordList{Titles: records}
}
