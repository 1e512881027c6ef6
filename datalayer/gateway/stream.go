package gateway

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/outcome"
)

// emit sends the element unless the context was cancelled first.
// It reports whether the element was delivered. The upfront error check
// keeps cancellation deterministic, a select with a buffered channel would
// otherwise pick randomly between both ready cases.
func emit[T any](ctx context.Context, results chan<- outcome.Outcome[T], element outcome.Outcome[T]) bool {
	if ctx.Err() != nil {
		return false
	}

	select {
	case <-ctx.Done():
		return false
	case results <- element:
		return true
	}
}

// fetchAndMap runs the remote fetch and the mapping step, wrapping failures
// with the matching sentinel so callers can classify them with errors.Is.
func fetchAndMap[P any, R any, T any](
	ctx context.Context,
	fetch FetchFunc[P, R],
	mapRecord MapFunc[R, T],
	params P,
) (T, error) {
	var zero T

	record, err := fetch(ctx, params)
	if err != nil {
		return zero, errors.Join(datalayer.ErrRemoteFetchFailed, err)
	}

	value, err := mapRecord(record)
	if err != nil {
		return zero, errors.Join(datalayer.ErrMappingFailed, err)
	}

	return value, nil
}

// failureInfo builds the error info carried by a Failure outcome: a short
// stable message for display plus the full technical cause.
func failureInfo(err error) outcome.ErrorInfo {
	switch {
	case errors.Is(err, datalayer.ErrRemoteFetchFailed):
		return outcome.NewErrorInfo(datalayer.ErrRemoteFetchFailed.Error(), err)
	case errors.Is(err, datalayer.ErrMappingFailed):
		return outcome.NewErrorInfo(datalayer.ErrMappingFailed.Error(), err)
	case errors.Is(err, datalayer.ErrCacheReadFailed):
		return outcome.NewErrorInfo(datalayer.ErrCacheReadFailed.Error(), err)
	default:
		return outcome.ErrorInfoFrom(err)
	}
}

// gatewayStatus classifies an error for metric labels and span status.
func gatewayStatus(err error) string {
	switch {
	case datalayer.IsCancellationError(err):
		return datalayer.StatusCanceled
	case datalayer.IsTimeoutError(err):
		return datalayer.StatusTimeout
	default:
		return datalayer.StatusError
	}
}
