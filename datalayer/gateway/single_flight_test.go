package gateway_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer/gateway"
)

func Test_SingleFlightCall_Do_CollapsesConcurrentCallsForSameKey(t *testing.T) {
	// arrange
	singleFlight := gateway.NewSingleFlightCall[string]()
	release := make(chan struct{})

	var executions atomic.Int32
	call := func(_ context.Context) (string, error) {
		executions.Add(1)
		<-release

		return "fantasy,scifi", nil
	}

	const callers = 4
	results := make([]string, callers)
	sharedFlags := make([]bool, callers)

	var group conc.WaitGroup
	group.Go(func() {
		results[0], sharedFlags[0], _ = singleFlight.Do(context.Background(), "genres:all", call)
	})

	require.Eventually(t, func() bool { return executions.Load() == 1 },
		time.Second, time.Millisecond, "the first call should be in flight")

	for i := 1; i < callers; i++ {
		i := i
		group.Go(func() {
			results[i], sharedFlags[i], _ = singleFlight.Do(context.Background(), "genres:all", call)
		})
	}

	// act
	time.Sleep(50 * time.Millisecond)
	close(release)
	group.Wait()

	// assert
	assert.Equal(t, int32(1), executions.Load(), "all callers should share a single execution")

	for i := 0; i < callers; i++ {
		assert.Equal(t, "fantasy,scifi", results[i], "every caller should receive the shared result")
	}

	assert.Contains(t, sharedFlags, true, "at least one caller should see the shared flag")
}

func Test_SingleFlightCall_Do_PropagatesErrorsToAllCallers(t *testing.T) {
	// arrange
	singleFlight := gateway.NewSingleFlightCall[string]()
	callErr := errors.New("genre service down")

	call := func(_ context.Context) (string, error) {
		return "", callErr
	}

	// act
	_, _, err := singleFlight.Do(context.Background(), "genres:all", call)

	// assert
	assert.ErrorIs(t, err, callErr, "the call error should be handed through")
}

func Test_SingleFlightCall_Do_RunsDistinctKeysIndependently(t *testing.T) {
	// arrange
	singleFlight := gateway.NewSingleFlightCall[string]()

	var executions atomic.Int32
	call := func(_ context.Context) (string, error) {
		executions.Add(1)
		return "result", nil
	}

	// act
	_, _, errFirst := singleFlight.Do(context.Background(), "genres:all", call)
	_, _, errSecond := singleFlight.Do(context.Background(), "genres:featured", call)

	// assert
	require.NoError(t, errFirst)
	require.NoError(t, errSecond)
	assert.Equal(t, int32(2), executions.Load(), "distinct keys should not share executions")
}
