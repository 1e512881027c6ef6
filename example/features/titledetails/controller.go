package titledetails

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/coordinator"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer/gateway"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer/operation"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/core"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/shell/catalogapi"
)

// CatalogGateway defines the interface needed by the Controller for remote catalog access.
type CatalogGateway interface {
	FetchTitleDetails(ctx context.Context, titleID uuid.UUID) (catalogapi.TitleRecord, error)
}

const (
	operationName  = "title_details"
	cacheKeyPrefix = "title-details:"
)

// ErrNilCatalogGateway is returned when NewController is called without a gateway.
var ErrNilCatalogGateway = errors.New("catalog gateway must not be nil")

// CacheKeyFor returns the cache key under which the details of the given
// title are stored.
func CacheKeyFor(titleID uuid.UUID) datalayer.QueryKey {
	return datalayer.QueryKey(cacheKeyPrefix + titleID.String())
}

// Controller orchestrates the title details feature end to end.
// It owns the remote-first gateway strategy, the streamed operation wrapping
// it, and the state reducer driving the render callback.
type Controller struct {
	op      *operation.Streamed[Query, core.Title]
	reducer *coordinator.StateReducer[core.Title]

	launcher         datalayer.Launcher
	metricsCollector datalayer.MetricsCollector
	tracingCollector datalayer.TracingCollector
	contextualLogger datalayer.ContextualLogger
	logger           datalayer.Logger
}

// NewController creates a new Controller with the provided dependencies and options.
// The render callback receives every view state transition, starting with the
// initial Loading state rendered during construction.
func NewController(
	catalogGateway CatalogGateway,
	cacheStore datalayer.CacheStore,
	render coordinator.RenderFunc[core.Title],
	opts ...Option,
) (*Controller, error) {
	if catalogGateway == nil {
		return nil, ErrNilCatalogGateway
	}

	c := &Controller{}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	fetch := func(ctx context.Context, query Query) (catalogapi.TitleRecord, error) {
		return catalogGateway.FetchTitleDetails(ctx, query.TitleID)
	}

	mapRecord := func(record catalogapi.TitleRecord) (core.Title, error) {
		return Project(record)
	}

	key := func(query Query) datalayer.QueryKey {
		return CacheKeyFor(query.TitleID)
	}

	query, err := gateway.NewRemoteFirstQuery(operationName, fetch, mapRecord, cacheStore, key, c.gatewayOptions()...)
	if err != nil {
		return nil, err
	}

	op, err := operation.NewStreamed(operationName, query.Stream, c.operationOptions()...)
	if err != nil {
		return nil, err
	}
	c.op = op

	reducer, err := coordinator.NewStateReducer(operationName, render, c.reducerOptions()...)
	if err != nil {
		return nil, err
	}
	c.reducer = reducer

	return c, nil
}

// Load starts an invocation for the given query and routes its stream into
// the reducer.
func (c *Controller) Load(query Query) {
	c.reducer.Observe(c.op.Invoke(c.reducer.Context(), query))
}

// Retry re-invokes the operation for the given query after a failure. The
// new invocation starts from a clean Pending and supersedes whatever state
// the screen showed.
func (c *Controller) Retry(query Query) {
	c.Load(query)
}

// CurrentState returns the state the screen last rendered.
func (c *Controller) CurrentState() coordinator.ViewState[core.Title] {
	return c.reducer.CurrentState()
}

// Teardown stops the feature: in-flight observations are cancelled and the
// rendered state freezes.
func (c *Controller) Teardown() {
	c.reducer.Teardown()
}

/*** Controller Options and helper methods for wiring the pipeline ***/

// Option defines a functional option for configuring the Controller.
type Option func(*Controller) error

// WithLauncher sets the launcher used for stream production and folding.
// The default starts a goroutine per invocation; tests supply a synchronous one.
func WithLauncher(launcher datalayer.Launcher) Option {
	return func(c *Controller) error {
		c.launcher = launcher
		return nil
	}
}

// WithMetrics sets the metrics collector for the whole pipeline.
func WithMetrics(collector datalayer.MetricsCollector) Option {
	return func(c *Controller) error {
		c.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the whole pipeline.
func WithTracing(collector datalayer.TracingCollector) Option {
	return func(c *Controller) error {
		c.tracingCollector = collector
		return nil
	}
}

// WithContextualLogging sets the contextual logger for the whole pipeline.
func WithContextualLogging(logger datalayer.ContextualLogger) Option {
	return func(c *Controller) error {
		c.contextualLogger = logger
		return nil
	}
}

// WithLogging sets the basic logger for the whole pipeline.
func WithLogging(logger datalayer.Logger) Option {
	return func(c *Controller) error {
		c.logger = logger
		return nil
	}
}

func (c *Controller) gatewayOptions() []gateway.Option {
	var options []gateway.Option

	if c.launcher != nil {
		options = append(options, gateway.WithLauncher(c.launcher))
	}
	if c.logger != nil {
		options = append(options, gateway.WithLogger(c.logger))
	}
	if c.contextualLogger != nil {
		options = append(options, gateway.WithContextualLogger(c.contextualLogger))
	}
	if c.metricsCollector != nil {
		options = append(options, gateway.WithMetrics(c.metricsCollector))
	}
	if c.tracingCollector != nil {
		options = append(options, gateway.WithTracing(c.tracingCollector))
	}

	return options
}

func (c *Controller) operationOptions() []operation.StreamedOption[Query, core.Title] {
	var options []operation.StreamedOption[Query, core.Title]

	if c.launcher != nil {
		options = append(options, operation.WithStreamedLauncher[Query, core.Title](c.launcher))
	}
	if c.logger != nil {
		options = append(options, operation.WithStreamedLogging[Query, core.Title](c.logger))
	}
	if c.contextualLogger != nil {
		options = append(options, operation.WithStreamedContextualLogging[Query, core.Title](c.contextualLogger))
	}
	if c.metricsCollector != nil {
		options = append(options, operation.WithStreamedMetrics[Query, core.Title](c.metricsCollector))
	}
	if c.tracingCollector != nil {
		options = append(options, operation.WithStreamedTracing[Query, core.Title](c.tracingCollector))
	}

	return options
}

func (c *Controller) reducerOptions() []coordinator.ReducerOption[core.Title] {
	var options []coordinator.ReducerOption[core.Title]

	if c.launcher != nil {
		options = append(options, coordinator.WithReducerLauncher[core.Title](c.launcher))
	}
	if c.logger != nil {
		options = append(options, coordinator.WithReducerLogging[core.Title](c.logger))
	}
	if c.contextualLogger != nil {
		options = append(options, coordinator.WithReducerContextualLogging[core.Title](c.contextualLogger))
	}
	if c.metricsCollector != nil {
		options = append(options, coordinator.WithReducerMetrics[core.Title](c.metricsCollector))
	}

	return options
}
