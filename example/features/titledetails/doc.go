// Package titledetails implements the Title Details feature.
//
// This feature streams the full record of a single catalog title through a
// remote-first strategy: fresh data is preferred, and when the remote fetch
// fails a previously cached record for the same title is served as fallback.
// Cache entries are keyed per title ("title-details:<id>") so different
// titles never shadow each other.
//
// The Controller owns the pipeline (gateway strategy, streamed operation,
// state reducer); hosts interact through Load/Retry/Teardown and the render
// callback.
package titledetails
