// Package coordinator folds outcome streams into render state for a
// presentation surface and carries one-shot notifications to it.
//
// The StateReducer consumes the streams produced by operations and reduces
// every element into one of four view states: Loading, Content, Empty or
// Failed. A configured render callback receives each new state; a panic in
// that callback is contained and reported as a Failed state instead of
// crashing the process. Teardown cancels all in-flight observations, after
// which no further state transition happens.
//
// The Notifier holds at most one observer and delivers each notification
// at most once, without replay or buffering: notifications emitted while
// no observer is attached are dropped.
package coordinator
