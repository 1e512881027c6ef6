package operation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/outcome"
)

// Streamed wraps a stream-producing delegate into an observable operation.
// Invoke always emits Pending first, forwards the delegate's terminal
// element(s) and closes the result channel afterwards. Leading Pending
// elements of the delegate are skipped, the wrapper already emitted its own.
type Streamed[P any, T any] struct {
	operationName    string
	delegate         StreamQueryFunc[P, T]
	precondition     Precondition[P, T]
	launcher         datalayer.Launcher
	channelCapacity  int
	invokeTimeout    time.Duration
	metricsCollector datalayer.MetricsCollector
	tracingCollector datalayer.TracingCollector
	contextualLogger datalayer.ContextualLogger
	logger           datalayer.Logger
}

// NewStreamed creates a streamed operation around the delegate.
func NewStreamed[P any, T any](
	operationName string,
	delegate StreamQueryFunc[P, T],
	opts ...StreamedOption[P, T],
) (*Streamed[P, T], error) {
	if operationName == "" {
		return nil, ErrEmptyOperationName
	}

	if delegate == nil {
		return nil, ErrNilDelegate
	}

	op := &Streamed[P, T]{
		operationName:   operationName,
		delegate:        delegate,
		launcher:        datalayer.DefaultLauncher(),
		channelCapacity: defaultChannelCapacity,
	}

	for _, opt := range opts {
		if err := opt(op); err != nil {
			return nil, err
		}
	}

	return op, nil
}

// Invoke runs the operation on the configured launcher and returns its
// stream. Concurrent invocations are independent; none of them is
// deduplicated or replayed.
func (o *Streamed[P, T]) Invoke(ctx context.Context, params P) <-chan outcome.Outcome[T] {
	results := make(chan outcome.Outcome[T], o.channelCapacity)

	o.launcher(func() {
		defer close(results)
		o.produce(ctx, params, results)
	})

	return results
}

func (o *Streamed[P, T]) produce(parentCtx context.Context, params P, results chan<- outcome.Outcome[T]) {
	invocationID := uuid.New().String()
	operationStart := time.Now()

	ctx, span := datalayer.StartOperationSpan(parentCtx, o.tracingCollector, o.operationName)
	datalayer.LogOperationStart(ctx, o.logger, o.contextualLogger, o.operationName, invocationID)

	cancel := func() {}
	if o.invokeTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, o.invokeTimeout)
	}
	defer cancel()

	if !emitOutcome(ctx, results, outcome.Pending[T]()) {
		o.recordCompletion(ctx, span, datalayer.StatusCanceled, operationStart, invocationID, ctx.Err())
		return
	}

	if o.precondition != nil {
		if resolved, done := o.precondition(params); done {
			o.logShortCircuit(ctx, invocationID)
			o.recordCompletion(ctx, span, datalayer.StatusShortCircuit, operationStart, invocationID, nil)
			emitOutcome(ctx, results, resolved)

			return
		}
	}

	var delegateStream <-chan outcome.Outcome[T]

	var catcher panics.Catcher
	catcher.Try(func() {
		delegateStream = o.delegate(ctx, params)
	})

	if recovered := catcher.Recovered(); recovered != nil {
		err := recovered.AsError()
		o.logPanic(ctx, invocationID, recovered.String())
		o.recordCompletion(ctx, span, datalayer.StatusError, operationStart, invocationID, err)
		emitOutcome(ctx, results, outcome.FailureFromError[T](err))

		return
	}

	o.forward(ctx, span, delegateStream, results, operationStart, invocationID)
}

// forward relays the delegate stream into the result channel until the
// delegate closes it or the context is cancelled.
func (o *Streamed[P, T]) forward(
	ctx context.Context,
	span datalayer.SpanContext,
	delegateStream <-chan outcome.Outcome[T],
	results chan<- outcome.Outcome[T],
	operationStart time.Time,
	invocationID string,
) {
	var lastTerminal outcome.Outcome[T]
	sawTerminal := false

	for {
		select {
		case <-ctx.Done():
			o.recordCompletion(ctx, span, cancellationStatus(ctx.Err()), operationStart, invocationID, ctx.Err())
			return

		case element, open := <-delegateStream:
			if !open {
				o.completeForward(ctx, span, results, operationStart, invocationID, lastTerminal, sawTerminal)
				return
			}

			if element.IsPending() {
				continue
			}

			if !emitOutcome(ctx, results, element) {
				o.recordCompletion(ctx, span, cancellationStatus(ctx.Err()), operationStart, invocationID, ctx.Err())
				return
			}

			lastTerminal = element
			sawTerminal = true
		}
	}
}

func (o *Streamed[P, T]) completeForward(
	ctx context.Context,
	span datalayer.SpanContext,
	results chan<- outcome.Outcome[T],
	operationStart time.Time,
	invocationID string,
	lastTerminal outcome.Outcome[T],
	sawTerminal bool,
) {
	if !sawTerminal {
		if ctx.Err() != nil {
			o.recordCompletion(ctx, span, cancellationStatus(ctx.Err()), operationStart, invocationID, ctx.Err())
			return
		}

		o.recordCompletion(ctx, span, datalayer.StatusError, operationStart, invocationID, ErrNoTerminalResult)
		emitOutcome(ctx, results, outcome.FailureFromError[T](ErrNoTerminalResult))

		return
	}

	if cause, failed := lastTerminal.Cause(); failed {
		o.recordCompletion(ctx, span, datalayer.StatusError, operationStart, invocationID, cause)
		return
	}

	o.recordCompletion(ctx, span, datalayer.StatusSuccess, operationStart, invocationID, nil)
}

func (o *Streamed[P, T]) recordCompletion(
	ctx context.Context,
	span datalayer.SpanContext,
	status string,
	operationStart time.Time,
	invocationID string,
	err error,
) {
	duration := time.Since(operationStart)
	datalayer.RecordOperationMetrics(ctx, o.metricsCollector, o.operationName, status, duration)
	datalayer.FinishSpan(o.tracingCollector, span, status, duration, err)

	switch status {
	case datalayer.StatusSuccess, datalayer.StatusShortCircuit:
		datalayer.LogOperationSuccess(ctx, o.logger, o.contextualLogger, o.operationName, invocationID, duration)
	case datalayer.StatusError:
		datalayer.LogOperationError(ctx, o.logger, o.contextualLogger, o.operationName, invocationID, err)
	default:
		// cancellations and timeouts end the invocation silently
	}
}

func (o *Streamed[P, T]) logShortCircuit(ctx context.Context, invocationID string) {
	args := []any{
		datalayer.LogAttrOperation, o.operationName,
		datalayer.LogAttrInvocationID, invocationID,
	}

	if o.contextualLogger != nil {
		o.contextualLogger.InfoContext(ctx, datalayer.LogMsgOperationShortCircuited, args...)
	} else if o.logger != nil {
		o.logger.Info(datalayer.LogMsgOperationShortCircuited, args...)
	}
}

func (o *Streamed[P, T]) logPanic(ctx context.Context, invocationID string, panicDetails string) {
	args := []any{
		datalayer.LogAttrOperation, o.operationName,
		datalayer.LogAttrInvocationID, invocationID,
		datalayer.LogAttrError, panicDetails,
	}

	if o.contextualLogger != nil {
		o.contextualLogger.ErrorContext(ctx, datalayer.LogMsgOperationPanicRecovered, args...)
	} else if o.logger != nil {
		o.logger.Error(datalayer.LogMsgOperationPanicRecovered, args...)
	}
}

func cancellationStatus(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return datalayer.StatusTimeout
	}

	return datalayer.StatusCanceled
}

// StreamedOption defines a functional option for configuring a Streamed operation.
type StreamedOption[P any, T any] func(*Streamed[P, T]) error

// WithStreamedLauncher sets the launcher that runs the invocation.
// The default launcher starts a goroutine per Invoke call.
func WithStreamedLauncher[P any, T any](launcher datalayer.Launcher) StreamedOption[P, T] {
	return func(o *Streamed[P, T]) error {
		if launcher == nil {
			return errors.New("launcher must not be nil")
		}
		o.launcher = launcher

		return nil
	}
}

// WithStreamedChannelCapacity sets the buffer size of the result channel.
func WithStreamedChannelCapacity[P any, T any](capacity int) StreamedOption[P, T] {
	return func(o *Streamed[P, T]) error {
		if capacity < 3 {
			return errors.New("channel capacity must be at least 3")
		}
		o.channelCapacity = capacity

		return nil
	}
}

// WithStreamedPrecondition sets the precondition evaluated before the delegate runs.
func WithStreamedPrecondition[P any, T any](precondition Precondition[P, T]) StreamedOption[P, T] {
	return func(o *Streamed[P, T]) error {
		if precondition == nil {
			return errors.New("precondition must not be nil")
		}
		o.precondition = precondition

		return nil
	}
}

// WithStreamedInvokeTimeout bounds a single invocation. Without this option
// an invocation runs until the delegate finishes or the caller cancels.
func WithStreamedInvokeTimeout[P any, T any](timeout time.Duration) StreamedOption[P, T] {
	return func(o *Streamed[P, T]) error {
		if timeout <= 0 {
			return errors.New("invoke timeout must be positive")
		}
		o.invokeTimeout = timeout

		return nil
	}
}

// WithStreamedMetrics sets the metrics collector for the operation.
func WithStreamedMetrics[P any, T any](collector datalayer.MetricsCollector) StreamedOption[P, T] {
	return func(o *Streamed[P, T]) error {
		o.metricsCollector = collector
		return nil
	}
}

// WithStreamedTracing sets the tracing collector for the operation.
func WithStreamedTracing[P any, T any](collector datalayer.TracingCollector) StreamedOption[P, T] {
	return func(o *Streamed[P, T]) error {
		o.tracingCollector = collector
		return nil
	}
}

// WithStreamedContextualLogging sets the contextual logger for the operation.
func WithStreamedContextualLogging[P any, T any](logger datalayer.ContextualLogger) StreamedOption[P, T] {
	return func(o *Streamed[P, T]) error {
		o.contextualLogger = logger
		return nil
	}
}

// WithStreamedLogging sets the basic logger for the operation.
func WithStreamedLogging[P any, T any](logger datalayer.Logger) StreamedOption[P, T] {
	return func(o *Streamed[P, T]) error {
		o.logger = logger
		return nil
	}
}

// StreamedNoParams is the zero-parameter variant of Streamed.
type StreamedNoParams[T any] struct {
	inner *Streamed[NoParams, T]
}

// NewStreamedNoParams creates a streamed operation around a delegate that
// needs no parameters.
func NewStreamedNoParams[T any](
	operationName string,
	delegate func(ctx context.Context) <-chan outcome.Outcome[T],
	opts ...StreamedOption[NoParams, T],
) (*StreamedNoParams[T], error) {
	if delegate == nil {
		return nil, ErrNilDelegate
	}

	adapted := func(ctx context.Context, _ NoParams) <-chan outcome.Outcome[T] {
		return delegate(ctx)
	}

	inner, err := NewStreamed(operationName, adapted, opts...)
	if err != nil {
		return nil, err
	}

	return &StreamedNoParams[T]{inner: inner}, nil
}

// Invoke runs the operation, see Streamed.Invoke.
func (o *StreamedNoParams[T]) Invoke(ctx context.Context) <-chan outcome.Outcome[T] {
	return o.inner.Invoke(ctx, NoParams{})
}
