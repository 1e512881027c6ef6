package gateway

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
)

// SingleFlightCall collapses concurrent single-shot calls that share a
// query key into one execution whose result all callers receive. It is an
// opt-in helper for single-shot operations; streamed invocations stay
// independent so every consumer observes its own full element sequence.
//
// The call runs on the context of the first caller for a key, so
// cancelling that caller fails the shared execution for all of them.
type SingleFlightCall[T any] struct {
	group singleflight.Group
}

// NewSingleFlightCall creates an empty single-flight helper.
func NewSingleFlightCall[T any]() *SingleFlightCall[T] {
	return &SingleFlightCall[T]{}
}

// Do executes call, collapsing concurrent invocations with the same key.
// The returned bool reports whether the result was shared with other callers.
func (s *SingleFlightCall[T]) Do(
	ctx context.Context,
	key datalayer.QueryKey,
	call func(ctx context.Context) (T, error),
) (T, bool, error) {
	result, err, shared := s.group.Do(key.String(), func() (any, error) {
		return call(ctx)
	})
	if err != nil {
		var zero T
		return zero, shared, err
	}

	value, _ := result.(T)

	return value, shared, nil
}

// Forget removes the key from the in-flight set, so the next Do for it
// starts a fresh execution instead of joining a running one.
func (s *SingleFlightCall[T]) Forget(key datalayer.QueryKey) {
	s.group.Forget(key.String())
}
