package coordinator

import (
	"sync"

	"github.com/sourcegraph/conc/panics"
)

// Notifier carries one-shot notifications to at most one observer.
// Each notification is delivered at most once: emissions while no observer
// is attached are dropped, and a later Attach never sees past
// notifications. Attach replaces any previous observer.
type Notifier[N any] struct {
	mu       sync.Mutex
	observer func(notification N)
}

// NewNotifier creates a notifier without an observer.
func NewNotifier[N any]() *Notifier[N] {
	return &Notifier[N]{}
}

// Attach registers the observer, replacing a previously attached one.
func (n *Notifier[N]) Attach(observer func(notification N)) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.observer = observer
}

// Detach removes the current observer, if any.
func (n *Notifier[N]) Detach() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.observer = nil
}

// IsAttached reports whether an observer is currently attached.
func (n *Notifier[N]) IsAttached() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.observer != nil
}

// Emit delivers the notification to the attached observer synchronously
// and reports whether it was delivered. Without an observer the
// notification is dropped. A panicking observer is contained and counted
// as undelivered.
func (n *Notifier[N]) Emit(notification N) bool {
	n.mu.Lock()
	observer := n.observer
	n.mu.Unlock()

	if observer == nil {
		return false
	}

	var catcher panics.Catcher
	catcher.Try(func() {
		observer(notification)
	})

	return catcher.Recovered() == nil
}
