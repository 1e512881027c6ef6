package genrelist

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer/gateway"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer/operation"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/core"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/shell/catalogapi"
)

// CatalogGateway defines the interface needed by the Loader for remote catalog access.
type CatalogGateway interface {
	FetchGenres(ctx context.Context) (catalogapi.GenreRecordList, error)
}

const (
	operationName   = "genre_list"
	singleFlightKey = datalayer.QueryKey("genre-list")
)

// ErrNilCatalogGateway is returned when NewLoader is called without a gateway.
var ErrNilCatalogGateway = errors.New("catalog gateway must not be nil")

// Loader resolves the genre taxonomy as a plain value. Concurrent Load
// calls share one remote fetch; its result, success or failure, resolves
// all of them.
type Loader struct {
	op     *operation.SingleShotNoParams[core.GenreList]
	flight *gateway.SingleFlightCall[core.GenreList]

	metricsCollector datalayer.MetricsCollector
	tracingCollector datalayer.TracingCollector
	contextualLogger datalayer.ContextualLogger
	logger           datalayer.Logger
}

// NewLoader creates a new Loader with the provided dependencies and options.
func NewLoader(catalogGateway CatalogGateway, opts ...Option) (*Loader, error) {
	if catalogGateway == nil {
		return nil, ErrNilCatalogGateway
	}

	l := &Loader{
		flight: gateway.NewSingleFlightCall[core.GenreList](),
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	fetchGenres := func(ctx context.Context) (core.GenreList, error) {
		records, err := catalogGateway.FetchGenres(ctx)
		if err != nil {
			return core.GenreList{}, errors.Join(datalayer.ErrRemoteFetchFailed, err)
		}

		list, err := Project(records)
		if err != nil {
			return core.GenreList{}, errors.Join(datalayer.ErrMappingFailed, err)
		}

		return list, nil
	}

	delegate := func(ctx context.Context) (core.GenreList, error) {
		list, _, err := l.flight.Do(ctx, singleFlightKey, fetchGenres)
		return list, err
	}

	op, err := operation.NewSingleShotNoParams(operationName, delegate, l.operationOptions()...)
	if err != nil {
		return nil, err
	}
	l.op = op

	return l, nil
}

// Load resolves the genre list, joining an in-flight fetch when one is
// already running.
func (l *Loader) Load(ctx context.Context) (core.GenreList, error) {
	return l.op.Call(ctx)
}

/*** Loader Options and helper methods for wiring the pipeline ***/

// Option defines a functional option for configuring the Loader.
type Option func(*Loader) error

// WithMetrics sets the metrics collector for the operation.
func WithMetrics(collector datalayer.MetricsCollector) Option {
	return func(l *Loader) error {
		l.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the operation.
func WithTracing(collector datalayer.TracingCollector) Option {
	return func(l *Loader) error {
		l.tracingCollector = collector
		return nil
	}
}

// WithContextualLogging sets the contextual logger for the operation.
func WithContextualLogging(logger datalayer.ContextualLogger) Option {
	return func(l *Loader) error {
		l.contextualLogger = logger
		return nil
	}
}

// WithLogging sets the basic logger for the operation.
func WithLogging(logger datalayer.Logger) Option {
	return func(l *Loader) error {
		l.logger = logger
		return nil
	}
}

func (l *Loader) operationOptions() []operation.SingleShotOption[operation.NoParams, core.GenreList] {
	var options []operation.SingleShotOption[operation.NoParams, core.GenreList]

	if l.logger != nil {
		options = append(options, operation.WithSingleShotLogging[operation.NoParams, core.GenreList](l.logger))
	}
	if l.contextualLogger != nil {
		options = append(options, operation.WithSingleShotContextualLogging[operation.NoParams, core.GenreList](l.contextualLogger))
	}
	if l.metricsCollector != nil {
		options = append(options, operation.WithSingleShotMetrics[operation.NoParams, core.GenreList](l.metricsCollector))
	}
	if l.tracingCollector != nil {
		options = append(options, operation.WithSingleShotTracing[operation.NoParams, core.GenreList](l.tracingCollector))
	}

	return options
}
