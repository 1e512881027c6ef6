// Package outcome provides the result vocabulary for asynchronous data
// operations: a closed tagged union over Pending, Success and Failure.
//
// An Outcome is constructed fresh for every operation invocation, is never
// mutated, and is consumed exactly once by the immediate downstream fold.
// Exactly one variant is active at a time:
//   - Pending: the operation has started and no terminal result exists yet
//   - Success: the operation finished and carries its value
//   - Failure: the operation finished and carries an ErrorInfo cause
//
// Common usage pattern:
//
//	for result := range op.Invoke(ctx, params) {
//		switch {
//		case result.IsPending():
//			// show a spinner
//		case result.IsSuccess():
//			value, _ := result.Value()
//			// render value
//		case result.IsFailure():
//			cause, _ := result.Cause()
//			// render cause.Message()
//		}
//	}
package outcome
