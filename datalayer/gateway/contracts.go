package gateway

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
)

// Validation errors returned by the strategy constructors.
var (
	ErrEmptyQueryName = errors.New("query name must not be empty")
	ErrNilFetchFunc   = errors.New("fetch function must not be nil")
	ErrNilMapFunc     = errors.New("map function must not be nil")
	ErrNilCacheStore  = errors.New("cache store must not be nil")
	ErrNilKeyFunc     = errors.New("cache key function must not be nil")
)

// FetchFunc loads the raw remote representation for the given params,
// typically by calling an HTTP or RPC client. It should honor ctx
// cancellation and return an error for any transport or protocol failure.
type FetchFunc[P any, R any] func(ctx context.Context, params P) (R, error)

// MapFunc converts the raw remote representation into the domain value the
// stream carries. It must be pure and is expected to fail with an error
// when required fields are missing or malformed.
type MapFunc[R any, T any] func(record R) (T, error)

// KeyFunc derives the cache key for the given params. Keys returned must be
// stable for identical params so cached values can be found again.
type KeyFunc[P any] func(params P) datalayer.QueryKey
