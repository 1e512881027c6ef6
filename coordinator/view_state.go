package coordinator

import "fmt"

// DefaultFailureMessage is shown for Failed states when no specific
// message was configured. Technical error details belong into the log,
// not onto the screen.
const DefaultFailureMessage = "something went wrong, please try again"

type stateKind int

const (
	kindLoading stateKind = iota
	kindContent
	kindEmpty
	kindFailed
)

// ViewState is the closed set of render states a reducer produces.
// The zero value is Loading.
type ViewState[T any] struct {
	kind    stateKind
	content T
	message string
}

// LoadingState creates the state shown while an invocation is in flight.
func LoadingState[T any]() ViewState[T] {
	return ViewState[T]{kind: kindLoading}
}

// ContentState creates the state carrying a renderable value.
func ContentState[T any](content T) ViewState[T] {
	return ViewState[T]{kind: kindContent, content: content}
}

// EmptyState creates the state shown for a successful but empty result.
func EmptyState[T any]() ViewState[T] {
	return ViewState[T]{kind: kindEmpty}
}

// FailedState creates the state shown for a failed invocation. An empty
// message falls back to DefaultFailureMessage.
func FailedState[T any](message string) ViewState[T] {
	if message == "" {
		message = DefaultFailureMessage
	}

	return ViewState[T]{kind: kindFailed, message: message}
}

// IsLoading reports whether the state is Loading.
func (s ViewState[T]) IsLoading() bool {
	return s.kind == kindLoading
}

// IsContent reports whether the state carries content.
func (s ViewState[T]) IsContent() bool {
	return s.kind == kindContent
}

// IsEmpty reports whether the state is Empty.
func (s ViewState[T]) IsEmpty() bool {
	return s.kind == kindEmpty
}

// IsFailed reports whether the state is Failed.
func (s ViewState[T]) IsFailed() bool {
	return s.kind == kindFailed
}

// Content returns the carried value and true for Content states.
func (s ViewState[T]) Content() (T, bool) {
	if s.kind != kindContent {
		var zero T
		return zero, false
	}

	return s.content, true
}

// Message returns the display message and true for Failed states.
func (s ViewState[T]) Message() (string, bool) {
	if s.kind != kindFailed {
		return "", false
	}

	return s.message, true
}

// String renders the state for logs and test output.
func (s ViewState[T]) String() string {
	switch s.kind {
	case kindContent:
		return fmt.Sprintf("Content(%v)", s.content)
	case kindEmpty:
		return "Empty"
	case kindFailed:
		return fmt.Sprintf("Failed(%s)", s.message)
	default:
		return "Loading"
	}
}

// name returns the metric/log label for the state.
func (s ViewState[T]) name() string {
	switch s.kind {
	case kindContent:
		return "content"
	case kindEmpty:
		return "empty"
	case kindFailed:
		return "failed"
	default:
		return "loading"
	}
}
