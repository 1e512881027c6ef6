package helper

import (
	"testing"
	"time"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/outcome"
)

const defaultStreamTimeout = 2 * time.Second

// CollectOutcomes drains the stream until it is closed, failing the test
// when no element arrives and the stream does not close within the timeout.
func CollectOutcomes[T any](t *testing.T, stream <-chan outcome.Outcome[T]) []outcome.Outcome[T] {
	t.Helper()

	return CollectOutcomesWithTimeout(t, stream, defaultStreamTimeout)
}

// CollectOutcomesWithTimeout drains the stream like CollectOutcomes with a custom timeout.
func CollectOutcomesWithTimeout[T any](t *testing.T, stream <-chan outcome.Outcome[T], timeout time.Duration) []outcome.Outcome[T] {
	t.Helper()

	collected := make([]outcome.Outcome[T], 0)
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case element, open := <-stream:
			if !open {
				return collected
			}
			collected = append(collected, element)

		case <-deadline.C:
			t.Fatalf("stream did not close within %s, collected %d element(s) so far", timeout, len(collected))
			return collected
		}
	}
}

// ReceiveOneOutcome receives a single element from the stream, failing the
// test when none arrives within the timeout.
func ReceiveOneOutcome[T any](t *testing.T, stream <-chan outcome.Outcome[T]) outcome.Outcome[T] {
	t.Helper()

	select {
	case element, open := <-stream:
		if !open {
			t.Fatal("stream was closed before an element arrived")
		}

		return element

	case <-time.After(defaultStreamTimeout):
		t.Fatal("no element arrived within the timeout")
	}

	return outcome.Pending[T]()
}

// AssertStreamClosed verifies that the stream closes without further
// elements within the timeout.
func AssertStreamClosed[T any](t *testing.T, stream <-chan outcome.Outcome[T]) {
	t.Helper()

	select {
	case element, open := <-stream:
		if open {
			t.Fatalf("expected the stream to close, received %s instead", element.String())
		}

	case <-time.After(defaultStreamTimeout):
		t.Fatal("stream did not close within the timeout")
	}
}
