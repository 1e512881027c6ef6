// Package operation provides the invocation wrappers that turn a gateway
// delegate into a safe, observable operation. A wrapper owns the outer
// contract of an invocation:
//
//   - Streamed operations always deliver Pending first, then the terminal
//     element(s) of the delegate stream, and close the channel afterwards.
//   - Every delegate panic is translated into a Failure (streamed) or an
//     error (single-shot); an invocation never crashes the caller.
//   - A configured precondition can resolve an invocation without running
//     the delegate at all.
//   - Concurrent invocations of the same operation are intentionally not
//     deduplicated; each one produces its own stream.
//
// Wrappers delegate all domain logic, they only add the contract plus
// logging, metrics and tracing, mirroring the strategy layer in
// datalayer/gateway.
package operation
