// Package genrelist implements the Genre List lookup feature.
//
// This feature resolves the catalog's genre taxonomy with a single-shot
// operation instead of a stream: a genre list has no useful intermediate
// states, callers just want the value or an error. Concurrent lookups are
// collapsed through a single-flight call, because the taxonomy is the same
// for everyone and several screens tend to request it at once during
// startup.
//
// The Loader owns the pipeline (single-flight call, single-shot operation);
// hosts interact through Load alone.
package genrelist
