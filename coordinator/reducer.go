package coordinator

import (
	"context"
	"errors"
	"sync"

	"github.com/sourcegraph/conc/panics"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/outcome"
)

// Metric names recorded by the state reducer.
const (
	// StateTransitionsMetric counts state transitions.
	// Cardinality: reducer (bounded by feature count) × state (4 values).
	StateTransitionsMetric = "coordinator_state_transitions_total"

	// RenderPanicsMetric counts render callbacks that panicked.
	RenderPanicsMetric = "coordinator_render_panics_total"
)

// Log messages and attributes used by the state reducer.
const (
	LogMsgStateTransition      = "view state transition"
	LogMsgRenderPanicRecovered = "render callback panicked"
	LogMsgFailureCause         = "invocation failed, rendering failure state"

	LogAttrReducer = "reducer"
	LogAttrState   = "state"
)

// Construction errors of the state reducer.
var (
	ErrEmptyReducerName = errors.New("reducer name must not be empty")
	ErrNilRenderFunc    = errors.New("render callback must not be nil")
)

// RenderFunc receives every new view state. It runs on the goroutine that
// observed the stream element, so implementations must hand off to their
// UI thread themselves if they need one.
type RenderFunc[T any] func(state ViewState[T])

// StateReducer folds outcome streams into view states and pushes each new
// state into the render callback. It owns the lifecycle context for the
// invocations it observes: Teardown cancels that context, stopping all
// in-flight observations, and freezes the state permanently.
type StateReducer[T any] struct {
	reducerName      string
	render           RenderFunc[T]
	emptyWhen        func(T) bool
	failureMessage   string
	launcher         datalayer.Launcher
	metricsCollector datalayer.MetricsCollector
	contextualLogger datalayer.ContextualLogger
	logger           datalayer.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	current ViewState[T]
	closed  bool
}

// NewStateReducer creates a reducer and synchronously renders the initial
// Loading state.
func NewStateReducer[T any](
	reducerName string,
	render RenderFunc[T],
	opts ...ReducerOption[T],
) (*StateReducer[T], error) {
	if reducerName == "" {
		return nil, ErrEmptyReducerName
	}

	if render == nil {
		return nil, ErrNilRenderFunc
	}

	ctx, cancel := context.WithCancel(context.Background())

	reducer := &StateReducer[T]{
		reducerName:    reducerName,
		render:         render,
		failureMessage: DefaultFailureMessage,
		launcher:       datalayer.DefaultLauncher(),
		ctx:            ctx,
		cancel:         cancel,
		current:        LoadingState[T](),
	}

	for _, opt := range opts {
		if err := opt(reducer); err != nil {
			cancel()
			return nil, err
		}
	}

	reducer.renderState(reducer.current)

	return reducer, nil
}

// Context returns the lifecycle context invocations should run on, so that
// Teardown cancels them.
func (r *StateReducer[T]) Context() context.Context {
	return r.ctx
}

// CurrentState returns the state most recently handed to the render callback.
func (r *StateReducer[T]) CurrentState() ViewState[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current
}

// Observe consumes the stream on the configured launcher, folding every
// element into a view state until the stream closes or Teardown cancels
// the observation. Multiple streams may be observed over the reducer's
// lifetime; concurrent observations are not deduplicated, the last
// arriving element wins.
func (r *StateReducer[T]) Observe(stream <-chan outcome.Outcome[T]) {
	r.launcher(func() {
		r.consume(stream)
	})
}

func (r *StateReducer[T]) consume(stream <-chan outcome.Outcome[T]) {
	for {
		select {
		case <-r.ctx.Done():
			return

		case element, open := <-stream:
			if !open {
				return
			}

			r.apply(element)
		}
	}
}

// Teardown cancels all in-flight observations and freezes the current
// state. It is idempotent and safe to call from any goroutine.
func (r *StateReducer[T]) Teardown() {
	r.mu.Lock()
	alreadyClosed := r.closed
	r.closed = true
	r.mu.Unlock()

	if !alreadyClosed {
		r.cancel()
	}
}

// apply folds one stream element and renders the resulting state.
func (r *StateReducer[T]) apply(element outcome.Outcome[T]) {
	next := r.fold(element)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.current = next
	r.mu.Unlock()

	r.recordTransition(next)
	r.renderState(next)
}

func (r *StateReducer[T]) fold(element outcome.Outcome[T]) ViewState[T] {
	if value, ok := element.Value(); ok {
		if r.emptyWhen != nil && r.emptyWhen(value) {
			return EmptyState[T]()
		}

		return ContentState(value)
	}

	if cause, ok := element.Cause(); ok {
		r.logError(LogMsgFailureCause,
			LogAttrReducer, r.reducerName,
			datalayer.LogAttrError, cause.Error())

		return FailedState[T](r.failureMessage)
	}

	return LoadingState[T]()
}

// renderState calls the render callback, containing any panic it raises.
// A panicking callback turns the state into Failed; if rendering the
// Failed state panics as well, the failure is only logged.
func (r *StateReducer[T]) renderState(state ViewState[T]) {
	var catcher panics.Catcher
	catcher.Try(func() {
		r.render(state)
	})

	recovered := catcher.Recovered()
	if recovered == nil {
		return
	}

	r.logError(LogMsgRenderPanicRecovered,
		LogAttrReducer, r.reducerName,
		datalayer.LogAttrError, recovered.String())

	if r.metricsCollector != nil {
		r.metricsCollector.IncrementCounter(RenderPanicsMetric, map[string]string{
			LogAttrReducer: r.reducerName,
		})
	}

	failed := FailedState[T](r.failureMessage)

	r.mu.Lock()
	if r.closed || r.current.IsFailed() {
		r.mu.Unlock()
		return
	}
	r.current = failed
	r.mu.Unlock()

	var retryCatcher panics.Catcher
	retryCatcher.Try(func() {
		r.render(failed)
	})

	if second := retryCatcher.Recovered(); second != nil {
		r.logError(LogMsgRenderPanicRecovered,
			LogAttrReducer, r.reducerName,
			datalayer.LogAttrError, second.String())
	}
}

func (r *StateReducer[T]) recordTransition(state ViewState[T]) {
	r.logDebug(LogMsgStateTransition,
		LogAttrReducer, r.reducerName,
		LogAttrState, state.name())

	if r.metricsCollector != nil {
		r.metricsCollector.IncrementCounter(StateTransitionsMetric, map[string]string{
			LogAttrReducer: r.reducerName,
			LogAttrState:   state.name(),
		})
	}
}

func (r *StateReducer[T]) logDebug(msg string, args ...any) {
	if r.contextualLogger != nil {
		r.contextualLogger.DebugContext(r.ctx, msg, args...)
	} else if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func (r *StateReducer[T]) logError(msg string, args ...any) {
	if r.contextualLogger != nil {
		r.contextualLogger.ErrorContext(r.ctx, msg, args...)
	} else if r.logger != nil {
		r.logger.Error(msg, args...)
	}
}

// ReducerOption defines a functional option for configuring a StateReducer.
type ReducerOption[T any] func(*StateReducer[T]) error

// WithEmptyWhen supplies the emptiness rule: a successful value for which
// the predicate returns true renders as Empty instead of Content.
func WithEmptyWhen[T any](emptyWhen func(T) bool) ReducerOption[T] {
	return func(r *StateReducer[T]) error {
		if emptyWhen == nil {
			return errors.New("empty-when predicate must not be nil")
		}
		r.emptyWhen = emptyWhen

		return nil
	}
}

// WithFailureMessage overrides the message rendered for Failed states.
func WithFailureMessage[T any](message string) ReducerOption[T] {
	return func(r *StateReducer[T]) error {
		if message == "" {
			return errors.New("failure message must not be empty")
		}
		r.failureMessage = message

		return nil
	}
}

// WithReducerLauncher sets the launcher that runs stream observations.
// The default launcher starts a goroutine per Observe call.
func WithReducerLauncher[T any](launcher datalayer.Launcher) ReducerOption[T] {
	return func(r *StateReducer[T]) error {
		if launcher == nil {
			return errors.New("launcher must not be nil")
		}
		r.launcher = launcher

		return nil
	}
}

// WithReducerMetrics sets the metrics collector for the reducer.
func WithReducerMetrics[T any](collector datalayer.MetricsCollector) ReducerOption[T] {
	return func(r *StateReducer[T]) error {
		r.metricsCollector = collector
		return nil
	}
}

// WithReducerContextualLogging sets the contextual logger for the reducer.
func WithReducerContextualLogging[T any](logger datalayer.ContextualLogger) ReducerOption[T] {
	return func(r *StateReducer[T]) error {
		r.contextualLogger = logger
		return nil
	}
}

// WithReducerLogging sets the basic logger for the reducer.
func WithReducerLogging[T any](logger datalayer.Logger) ReducerOption[T] {
	return func(r *StateReducer[T]) error {
		r.logger = logger
		return nil
	}
}
