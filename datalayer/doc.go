// Package datalayer provides the core abstractions of the asynchronous
// result-propagation pipeline: the cache store port and its entries, the
// pipeline error taxonomy, query keys, and the dependency-free
// observability interfaces shared by all pipeline components.
//
// The pipeline itself is assembled from the subpackages:
//   - gateway: streamed query strategies combining a remote fetch with an
//     optional cache store (plain, remote-first-with-fallback,
//     cache-first-with-refresh)
//   - operation: business-operation wrappers adding Pending-first emission,
//     panic containment, preconditions and execution-context configuration
//   - memoryengine, postgresengine, valkeyengine: CacheStore implementations
//   - oteladapters: OpenTelemetry implementations of the observability
//     interfaces
//
// Cached values are addressed by a QueryKey and stored as opaque JSON
// cache entries; the cache store is the only shared mutable resource of
// the pipeline and must be safe under concurrent use.
package datalayer
