// Package populartitles implements the Popular Titles browsing feature.
//
// This feature streams the catalog's popular titles through a cache-first
// strategy: a cached list renders immediately while a remote refresh runs in
// the background, so the screen stays useful when the catalog API is slow or
// down. A successfully refreshed list replaces the cached one on screen and
// in the cache store.
//
// An empty list renders as Empty rather than Content, and picking a title
// publishes a one-shot TitleSelected notification for navigation.
//
// The Controller owns the whole pipeline (gateway strategy, streamed
// operation, state reducer, notifier); hosts interact only through
// Load/Retry/Select/Teardown and the render callback.
package populartitles
