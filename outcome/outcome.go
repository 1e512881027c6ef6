package outcome

import (
	"fmt"
)

const unknownFailureMessage = "unknown failure"

type variant int

const (
	variantPending variant = iota
	variantSuccess
	variantFailure
)

// Outcome represents the result of one asynchronous operation invocation.
// The zero value is Pending; use the constructors to build the other variants.
type Outcome[T any] struct {
	variant variant
	value   T
	cause   ErrorInfo
}

// Pending creates an Outcome signalling that the operation has started
// and no terminal result exists yet.
func Pending[T any]() Outcome[T] {
	return Outcome[T]{variant: variantPending}
}

// Success creates a terminal Outcome carrying the operation's value.
func Success[T any](value T) Outcome[T] {
	return Outcome[T]{variant: variantSuccess, value: value}
}

// Failure creates a terminal Outcome carrying the cause of the failure.
// A zero cause is replaced with a generic one so that a Failure always
// carries a usable ErrorInfo.
func Failure[T any](cause ErrorInfo) Outcome[T] {
	if cause.isZero() {
		cause = NewErrorInfo(unknownFailureMessage, nil)
	}

	return Outcome[T]{variant: variantFailure, cause: cause}
}

// FailureFromError creates a terminal failure Outcome from a plain error.
func FailureFromError[T any](err error) Outcome[T] {
	return Failure[T](ErrorInfoFrom(err))
}

// IsPending reports whether no terminal result exists yet.
func (o Outcome[T]) IsPending() bool {
	return o.variant == variantPending
}

// IsSuccess reports whether the operation finished with a value.
func (o Outcome[T]) IsSuccess() bool {
	return o.variant == variantSuccess
}

// IsFailure reports whether the operation finished with a cause.
func (o Outcome[T]) IsFailure() bool {
	return o.variant == variantFailure
}

// IsTerminal reports whether the Outcome is Success or Failure.
func (o Outcome[T]) IsTerminal() bool {
	return o.variant != variantPending
}

// Value returns the carried value and true for a Success Outcome,
// the zero value and false otherwise.
func (o Outcome[T]) Value() (T, bool) {
	if o.variant != variantSuccess {
		var zero T
		return zero, false
	}

	return o.value, true
}

// Cause returns the carried cause and true for a Failure Outcome,
// a zero ErrorInfo and false otherwise.
func (o Outcome[T]) Cause() (ErrorInfo, bool) {
	if o.variant != variantFailure {
		return ErrorInfo{}, false
	}

	return o.cause, true
}

// String renders the active variant for logging.
func (o Outcome[T]) String() string {
	switch o.variant {
	case variantSuccess:
		return fmt.Sprintf("Success(%v)", o.value)
	case variantFailure:
		return fmt.Sprintf("Failure(%s)", o.cause.Message())
	default:
		return "Pending"
	}
}
