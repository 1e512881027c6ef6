package populartitles

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/coordinator"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer/gateway"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer/operation"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/core"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/shell/catalogapi"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/outcome"
)

// CatalogGateway defines the interface needed by the Controller for remote catalog access.
type CatalogGateway interface {
	FetchPopularTitles(ctx context.Context) (catalogapi.TitleRecordList, error)
}

const (
	operationName = "popular_titles"
	cacheKey      = datalayer.QueryKey("popular-titles")
)

// ErrNilCatalogGateway is returned when NewController is called without a gateway.
var ErrNilCatalogGateway = errors.New("catalog gateway must not be nil")

// Controller orchestrates the popular titles feature end to end.
// It owns the cache-first gateway strategy, the streamed operation wrapping
// it, the state reducer driving the render callback, and the notifier for
// title selection. Hosts never touch the pipeline pieces directly.
type Controller struct {
	op       *operation.StreamedNoParams[core.TitleList]
	reducer  *coordinator.StateReducer[core.TitleList]
	notifier *coordinator.Notifier[TitleSelected]

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
	render coordinator.RenderFunc[core.TitleList],
	opts ...Option,
) (*Controller, error) {
	if catalogGateway == nil {
		return nil, ErrNilCatalogGateway
	}

	c := &Controller{
		notifier: coordinator.NewNotifier[TitleSelected](),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	fetch := func(ctx context.Context, _ operation.NoParams) (catalogapi.TitleRecordList, error) {
		return catalogGateway.FetchPopularTitles(ctx)
	}

	mapRecords := func(records catalogapi.TitleRecordList) (core.TitleList, error) {
		return Project(records)
	}

	key := func(_ operation.NoParams) datalayer.QueryKey {
		return cacheKey
	}

	query, err := gateway.NewCacheFirstQuery(operationName, fetch, mapRecords, cacheStore, key, c.gatewayOptions()...)
	if err != nil {
		return nil, err
	}

	delegate := func(ctx context.Context) <-chan outcome.Outcome[core.TitleList] {
		return query.Stream(ctx, operation.NoParams{})
	}

	op, err := operation.NewStreamedNoParams(operationName, delegate, c.operationOptions()...)
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

// Load starts an invocation and routes its stream into the reducer.
func (c *Controller) Load() {
	c.reducer.Observe(c.op.Invoke(c.reducer.Context()))
}

// Retry re-invokes the operation after a failure. The new invocation starts
// from a clean Pending and supersedes whatever state the screen showed.
func (c *Controller) Retry() {
	c.Load()
}

// CurrentState returns the state the screen last rendered.
func (c *Controller) CurrentState() coordinator.ViewState[core.TitleList] {
	return c.reducer.CurrentState()
}

// Select publishes a one-shot TitleSelected notification for the given title.
// It reports whether an attached observer received it.
func (c *Controller) Select(title core.Title) bool {
	return c.notifier.Emit(BuildTitleSelected(title))
}

// OnTitleSelected attaches the observer receiving selection notifications,
// replacing any previously attached one.
func (c *Controller) OnTitleSelected(observer func(notification TitleSelected)) {
	c.notifier.Attach(observer)
}

// Teardown stops the feature: in-flight observations are cancelled, the
// rendered state freezes, and the selection observer is detached.
func (c *Controller) Teardown() {
	c.reducer.Teardown()
	c.notifier.Detach()
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

func (c *Controller) operationOptions() []operation.StreamedOption[operation.NoParams, core.TitleList] {
	var options []operation.StreamedOption[operation.NoParams, core.TitleList]

	if c.launcher != nil {
		options = append(options, operation.WithStreamedLauncher[operation.NoParams, core.TitleList](c.launcher))
	}
	if c.logger != nil {
		options = append(options, operation.WithStreamedLogging[operation.NoParams, core.TitleList](c.logger))
	}
	if c.contextualLogger != nil {
		options = append(options, operation.WithStreamedContextualLogging[operation.NoParams, core.TitleList](c.contextualLogger))
	}
	if c.metricsCollector != nil {
		options = append(options, operation.WithStreamedMetrics[operation.NoParams, core.TitleList](c.metricsCollector))
	}
	if c.tracingCollector != nil {
		options = append(options, operation.WithStreamedTracing[operation.NoParams, core.TitleList](c.tracingCollector))
	}

	return options
}

func (c *Controller) reducerOptions() []coordinator.ReducerOption[core.TitleList] {
	options := []coordinator.ReducerOption[core.TitleList]{
		coordinator.WithEmptyWhen(func(list core.TitleList) bool {
			return list.IsEmpty()
		}),
	}

	if c.launcher != nil {
		options = append(options, coordinator.WithReducerLauncher[core.TitleList](c.launcher))
	}
	if c.logger != nil {
		options = append(options, coordinator.WithReducerLogging[core.TitleList](c.logger))
	}
	if c.contextualLogger != nil {
		options = append(options, coordinator.WithReducerContextualLogging[core.TitleList](c.contextualLogger))
	}
	if c.metricsCollector != nil {
		options = append(options, coordinator.WithReducerMetrics[core.TitleList](c.metricsCollector))
	}

	return options
}
