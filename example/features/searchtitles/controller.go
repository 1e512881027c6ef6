package searchtitles

import (
	"context"
	"errors"
	"unicode/utf8"

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
	SearchTitles(ctx context.Context, searchText string) (catalogapi.TitleRecordList, error)
}

const (
	operationName = "search_titles"

	// minSearchTextLength is the number of runes a search text must have
	// before the remote catalog is queried at all.
	minSearchTextLength = 3
)

// ErrNilCatalogGateway is returned when NewController is called without a gateway.
var ErrNilCatalogGateway = errors.New("catalog gateway must not be nil")

// Controller orchestrates the title search feature end to end.
// Search results are volatile and keyed by free text, so the gateway runs
// the plain strategy: every search goes to the remote catalog, nothing is
// cached. Search texts shorter than minSearchTextLength short-circuit to an
// empty result before the gateway is touched.
type Controller struct {
	op      *operation.Streamed[Query, core.TitleList]
	reducer *coordinator.StateReducer[core.TitleList]

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
	render coordinator.RenderFunc[core.TitleList],
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

	fetch := func(ctx context.Context, query Query) (catalogapi.TitleRecordList, error) {
		return catalogGateway.SearchTitles(ctx, query.SearchText)
	}

	mapRecords := func(records catalogapi.TitleRecordList) (core.TitleList, error) {
		return Project(records)
	}

	query, err := gateway.NewPlainQuery(operationName, fetch, mapRecords, c.gatewayOptions()...)
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

// Search starts an invocation for the given query and routes its stream into
// the reducer. Search texts below the minimum length never reach the remote
// catalog and render as Empty.
func (c *Controller) Search(query Query) {
	c.reducer.Observe(c.op.Invoke(c.reducer.Context(), query))
}

// CurrentState returns the state the screen last rendered.
func (c *Controller) CurrentState() coordinator.ViewState[core.TitleList] {
	return c.reducer.CurrentState()
}

// Teardown stops the feature: in-flight observations are cancelled and the
// rendered state freezes.
func (c *Controller) Teardown() {
	c.reducer.Teardown()
}

func shortCircuitShortSearchText(query Query) (outcome.Outcome[core.TitleList], bool) {
	if utf8.RuneCountInString(query.SearchText) < minSearchTextLength {
		return outcome.Success(core.BuildTitleList(nil)), true
	}

	return outcome.Pending[core.TitleList](), false
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

func (c *Controller) operationOptions() []operation.StreamedOption[Query, core.TitleList] {
	options := []operation.StreamedOption[Query, core.TitleList]{
		operation.WithStreamedPrecondition[Query, core.TitleList](shortCircuitShortSearchText),
	}

	if c.launcher != nil {
		options = append(options, operation.WithStreamedLauncher[Query, core.TitleList](c.launcher))
	}
	if c.logger != nil {
		options = append(options, operation.WithStreamedLogging[Query, core.TitleList](c.logger))
	}
	if c.contextualLogger != nil {
		options = append(options, operation.WithStreamedContextualLogging[Query, core.TitleList](c.contextualLogger))
	}
	if c.metricsCollector != nil {
		options = append(options, operation.WithStreamedMetrics[Query, core.TitleList](c.metricsCollector))
	}
	if c.tracingCollector != nil {
		options = append(options, operation.WithStreamedTracing[Query, core.TitleList](c.tracingCollector))
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
