package operation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
)

// SingleShot wraps a call-style delegate into an observable operation that
// resolves exactly once, without the streamed Pending prelude. Delegate
// panics surface as errors, never as a crash of the caller.
type SingleShot[P any, T any] struct {
	operationName    string
	delegate         CallFunc[P, T]
	precondition     Precondition[P, T]
	callTimeout      time.Duration
	metricsCollector datalayer.MetricsCollector
	tracingCollector datalayer.TracingCollector
	contextualLogger datalayer.ContextualLogger
	logger           datalayer.Logger
}

// NewSingleShot creates a single-shot operation around the delegate.
func NewSingleShot[P any, T any](
	operationName string,
	delegate CallFunc[P, T],
	opts ...SingleShotOption[P, T],
) (*SingleShot[P, T], error) {
	if operationName == "" {
		return nil, ErrEmptyOperationName
	}

	if delegate == nil {
		return nil, ErrNilDelegate
	}

	op := &SingleShot[P, T]{
		operationName: operationName,
		delegate:      delegate,
	}

	for _, opt := range opts {
		if err := opt(op); err != nil {
			return nil, err
		}
	}

	return op, nil
}

// Call runs the operation synchronously and resolves to a value or an error.
func (o *SingleShot[P, T]) Call(parentCtx context.Context, params P) (T, error) {
	var zero T

	invocationID := uuid.New().String()
	operationStart := time.Now()

	ctx, span := datalayer.StartOperationSpan(parentCtx, o.tracingCollector, o.operationName)
	datalayer.LogOperationStart(ctx, o.logger, o.contextualLogger, o.operationName, invocationID)

	cancel := func() {}
	if o.callTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, o.callTimeout)
	}
	defer cancel()

	if o.precondition != nil {
		if resolved, done := o.precondition(params); done {
			o.recordCompletion(ctx, span, datalayer.StatusShortCircuit, operationStart, invocationID, nil)
			return resolveOutcome(resolved)
		}
	}

	var value T
	var err error

	var catcher panics.Catcher
	catcher.Try(func() {
		value, err = o.delegate(ctx, params)
	})

	if recovered := catcher.Recovered(); recovered != nil {
		err = recovered.AsError()
	}

	if err != nil {
		o.recordCompletion(ctx, span, callStatus(err), operationStart, invocationID, err)
		return zero, err
	}

	o.recordCompletion(ctx, span, datalayer.StatusSuccess, operationStart, invocationID, nil)

	return value, nil
}

func (o *SingleShot[P, T]) recordCompletion(
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

func callStatus(err error) string {
	switch {
	case datalayer.IsCancellationError(err):
		return datalayer.StatusCanceled
	case datalayer.IsTimeoutError(err):
		return datalayer.StatusTimeout
	default:
		return datalayer.StatusError
	}
}

// SingleShotOption defines a functional option for configuring a SingleShot operation.
type SingleShotOption[P any, T any] func(*SingleShot[P, T]) error

// WithSingleShotPrecondition sets the precondition evaluated before the delegate runs.
func WithSingleShotPrecondition[P any, T any](precondition Precondition[P, T]) SingleShotOption[P, T] {
	return func(o *SingleShot[P, T]) error {
		if precondition == nil {
			return errors.New("precondition must not be nil")
		}
		o.precondition = precondition

		return nil
	}
}

// WithSingleShotCallTimeout bounds a single call. Without this option a
// call runs until the delegate finishes or the caller cancels.
func WithSingleShotCallTimeout[P any, T any](timeout time.Duration) SingleShotOption[P, T] {
	return func(o *SingleShot[P, T]) error {
		if timeout <= 0 {
			return errors.New("call timeout must be positive")
		}
		o.callTimeout = timeout

		return nil
	}
}

// WithSingleShotMetrics sets the metrics collector for the operation.
func WithSingleShotMetrics[P any, T any](collector datalayer.MetricsCollector) SingleShotOption[P, T] {
	return func(o *SingleShot[P, T]) error {
		o.metricsCollector = collector
		return nil
	}
}

// WithSingleShotTracing sets the tracing collector for the operation.
func WithSingleShotTracing[P any, T any](collector datalayer.TracingCollector) SingleShotOption[P, T] {
	return func(o *SingleShot[P, T]) error {
		o.tracingCollector = collector
		return nil
	}
}

// WithSingleShotContextualLogging sets the contextual logger for the operation.
func WithSingleShotContextualLogging[P any, T any](logger datalayer.ContextualLogger) SingleShotOption[P, T] {
	return func(o *SingleShot[P, T]) error {
		o.contextualLogger = logger
		return nil
	}
}

// WithSingleShotLogging sets the basic logger for the operation.
func WithSingleShotLogging[P any, T any](logger datalayer.Logger) SingleShotOption[P, T] {
	return func(o *SingleShot[P, T]) error {
		o.logger = logger
		return nil
	}
}

// SingleShotNoParams is the zero-parameter variant of SingleShot.
type SingleShotNoParams[T any] struct {
	inner *SingleShot[NoParams, T]
}

// NewSingleShotNoParams creates a single-shot operation around a delegate
// that needs no parameters.
func NewSingleShotNoParams[T any](
	operationName string,
	delegate func(ctx context.Context) (T, error),
	opts ...SingleShotOption[NoParams, T],
) (*SingleShotNoParams[T], error) {
	if delegate == nil {
		return nil, ErrNilDelegate
	}

	adapted := func(ctx context.Context, _ NoParams) (T, error) {
		return delegate(ctx)
	}

	inner, err := NewSingleShot(operationName, adapted, opts...)
	if err != nil {
		return nil, err
	}

	return &SingleShotNoParams[T]{inner: inner}, nil
}

// Call runs the operation, see SingleShot.Call.
func (o *SingleShotNoParams[T]) Call(ctx context.Context) (T, error) {
	return o.inner.Call(ctx, NoParams{})
}
