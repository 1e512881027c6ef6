// Package gateway provides the streamed query strategies a data source
// gateway implementation is assembled from. Every strategy combines the
// remote fetch collaborator, the pure field-mapping function and, where a
// secondary source is involved, a cache store into a stream of Outcome
// values with a uniform discipline: Pending is emitted first, then the
// terminal element(s), and the stream channel is closed afterwards.
//
// Strategies:
//   - PlainQuery: remote fetch only, no cache involvement
//   - RemoteFirstQuery: fetch remote, persist on success; on remote failure
//     serve the cached value and keep the original remote error
//     discoverable in the log; surface the original remote error when the
//     cache cannot help either
//   - CacheFirstQuery: serve the cached value immediately when present,
//     then refresh from remote, emitting a second fresher Success; a failed
//     refresh is suppressed when a cached value was already delivered
//   - SingleFlightCall: opt-in collapsing of concurrent identical
//     single-shot calls by query key (never applied to streams)
//
// Production runs on a configurable launcher (a goroutine by default); a
// cancelled context stops any further emission. Cached domain values are
// serialized as JSON cache entries.
package gateway
