package datalayer

// Launcher runs the producer side of a streamed query or operation.
// It decides on which execution context the task runs. Implementations must
// return promptly; the task itself may run for an arbitrary time.
type Launcher func(task func())

// DefaultLauncher returns the launcher used when none is configured:
// it runs every task on its own goroutine.
func DefaultLauncher() Launcher {
	return func(task func()) {
		go task()
	}
}

// SynchronousLauncher returns a launcher that runs the task inline on the
// calling goroutine. It is mainly useful in tests, where it makes stream
// production deterministic. Stream channels are buffered, so a producer
// that emits no more elements than the channel capacity never blocks.
func SynchronousLauncher() Launcher {
	return func(task func()) {
		task()
	}
}
