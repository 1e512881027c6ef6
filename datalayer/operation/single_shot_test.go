package operation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer/operation"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/outcome"
	. "github.com/AntonStoeckl/outcome-streams-datalayer-go/testutil/helper" //nolint:revive
)

func Test_SingleShot_Call_ResolvesToValue(t *testing.T) {
	// arrange
	delegate := func(_ context.Context, genre string) ([]string, error) {
		return []string{"Aurora (" + genre + ")"}, nil
	}

	op, err := operation.NewSingleShot("genre_list", delegate)
	require.NoError(t, err, "creating the operation should succeed")

	// act
	value, callErr := op.Call(context.Background(), "scifi")

	// assert
	require.NoError(t, callErr)
	assert.Equal(t, []string{"Aurora (scifi)"}, value)
}

func Test_SingleShot_Call_ResolvesToError(t *testing.T) {
	// arrange
	delegateErr := errors.New("genre service down")
	delegate := func(_ context.Context, _ string) ([]string, error) {
		return nil, delegateErr
	}

	op, err := operation.NewSingleShot("genre_list", delegate)
	require.NoError(t, err)

	// act
	_, callErr := op.Call(context.Background(), "scifi")

	// assert
	assert.ErrorIs(t, callErr, delegateErr, "the delegate error should be handed through")
}

func Test_SingleShot_Call_TranslatesDelegatePanicIntoError(t *testing.T) {
	// arrange
	delegate := func(_ context.Context, _ string) ([]string, error) {
		panic("genre index corrupted")
	}

	op, err := operation.NewSingleShot("genre_list", delegate)
	require.NoError(t, err)

	// act
	_, callErr := op.Call(context.Background(), "scifi")

	// assert
	require.Error(t, callErr, "the panic must resolve into an error, not a crash")
	assert.Contains(t, callErr.Error(), "genre index corrupted", "the panic value should be preserved")
}

func Test_SingleShot_Call_ShortCircuitsViaPrecondition(t *testing.T) {
	// arrange
	delegateCalled := false
	delegate := func(_ context.Context, _ string) ([]string, error) {
		delegateCalled = true
		return []string{"should not appear"}, nil
	}

	nonEmptyGenre := func(genre string) (outcome.Outcome[[]string], bool) {
		if genre == "" {
			return outcome.Success([]string{}), true
		}

		return outcome.Pending[[]string](), false
	}

	op, err := operation.NewSingleShot("genre_list", delegate,
		operation.WithSingleShotPrecondition[string, []string](nonEmptyGenre))
	require.NoError(t, err)

	// act
	value, callErr := op.Call(context.Background(), "")

	// assert
	require.NoError(t, callErr, "the short-circuit should resolve successfully")
	assert.Empty(t, value, "the short-circuit should deliver the empty result")
	assert.False(t, delegateCalled, "the delegate must not run when the precondition resolves")
}

func Test_SingleShot_Call_FailingPreconditionResolvesToError(t *testing.T) {
	// arrange
	delegate := func(_ context.Context, _ string) ([]string, error) {
		return []string{}, nil
	}

	rejectAll := func(_ string) (outcome.Outcome[[]string], bool) {
		return outcome.Failure[[]string](outcome.NewErrorInfo("genre is not supported", nil)), true
	}

	op, err := operation.NewSingleShot("genre_list", delegate,
		operation.WithSingleShotPrecondition[string, []string](rejectAll))
	require.NoError(t, err)

	// act
	_, callErr := op.Call(context.Background(), "polka")

	// assert
	require.Error(t, callErr)
	assert.Contains(t, callErr.Error(), "genre is not supported")
}

func Test_SingleShot_Call_HonorsCallTimeout(t *testing.T) {
	// arrange
	delegate := func(ctx context.Context, _ string) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	op, err := operation.NewSingleShot("genre_list", delegate,
		operation.WithSingleShotCallTimeout[string, []string](20*time.Millisecond))
	require.NoError(t, err)

	// act
	_, callErr := op.Call(context.Background(), "scifi")

	// assert
	assert.ErrorIs(t, callErr, context.DeadlineExceeded, "the configured timeout should bound the call")
}

func Test_SingleShot_Call_RecordsMetrics(t *testing.T) {
	// arrange
	metricsSpy := NewMetricsCollectorSpy(true)
	delegate := func(_ context.Context, _ string) ([]string, error) {
		return []string{"Aurora"}, nil
	}

	op, err := operation.NewSingleShot("genre_list", delegate,
		operation.WithSingleShotMetrics[string, []string](metricsSpy))
	require.NoError(t, err)

	// act
	_, callErr := op.Call(context.Background(), "scifi")

	// assert
	require.NoError(t, callErr)
	assert.True(t,
		metricsSpy.HasDurationRecordForMetric(datalayer.OperationDurationMetric).
			WithOperation("genre_list").
			WithStatus(datalayer.StatusSuccess).
			Assert(),
		"the call should be timed with success status")
}

func Test_SingleShotNoParams_Call_ResolvesToValue(t *testing.T) {
	// arrange
	delegate := func(_ context.Context) ([]string, error) {
		return []string{"fantasy", "scifi"}, nil
	}

	op, err := operation.NewSingleShotNoParams("genre_list", delegate)
	require.NoError(t, err)

	// act
	value, callErr := op.Call(context.Background())

	// assert
	require.NoError(t, callErr)
	assert.Equal(t, []string{"fantasy", "scifi"}, value)
}

func Test_NewSingleShot_ValidatesArguments(t *testing.T) {
	t.Run("empty operation name", func(t *testing.T) {
		delegate := func(_ context.Context, _ string) ([]string, error) { return nil, nil }
		_, err := operation.NewSingleShot("", delegate)
		assert.ErrorIs(t, err, operation.ErrEmptyOperationName)
	})

	t.Run("nil delegate", func(t *testing.T) {
		_, err := operation.NewSingleShot[string, []string]("genre_list", nil)
		assert.ErrorIs(t, err, operation.ErrNilDelegate)
	})
}
