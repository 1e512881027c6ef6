package operation

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/outcome"
)

// Validation and contract errors of the operation wrappers.
var (
	ErrEmptyOperationName = errors.New("operation name must not be empty")
	ErrNilDelegate        = errors.New("operation delegate must not be nil")

	// ErrNoTerminalResult reports a delegate stream that closed without a
	// terminal element. The wrapper converts this into a Failure so the
	// invocation contract holds even for a misbehaving delegate.
	ErrNoTerminalResult = errors.New("delegate stream ended without a terminal result")
)

// NoParams is the parameter type of operations that take no input.
type NoParams = struct{}

// StreamQueryFunc produces the delegate stream an operation forwards,
// typically the Stream method of a gateway query strategy.
type StreamQueryFunc[P any, T any] func(ctx context.Context, params P) <-chan outcome.Outcome[T]

// CallFunc is the delegate of a single-shot operation.
type CallFunc[P any, T any] func(ctx context.Context, params P) (T, error)

// Precondition inspects the params before the delegate runs. Returning
// (resolved, true) short-circuits the invocation with that outcome, which
// must be terminal. Returning (_, false) lets the invocation proceed.
type Precondition[P any, T any] func(params P) (outcome.Outcome[T], bool)

const defaultChannelCapacity = 4

// emitOutcome sends the element unless the context was cancelled first.
// It reports whether the element was delivered.
func emitOutcome[T any](ctx context.Context, results chan<- outcome.Outcome[T], element outcome.Outcome[T]) bool {
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

// resolveOutcome converts a terminal outcome into the (value, error) shape
// of a single-shot operation.
func resolveOutcome[T any](resolved outcome.Outcome[T]) (T, error) {
	var zero T

	if value, ok := resolved.Value(); ok {
		return value, nil
	}

	if cause, ok := resolved.Cause(); ok {
		return zero, cause
	}

	return zero, ErrNoTerminalResult
}
