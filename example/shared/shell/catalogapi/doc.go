// Package catalogapi provides the HTTP client for the remote catalog API
// for the example: Browsing a movie catalog.
//
// This package implements the "imperative shell" side of remote data access,
// handling request building, response decoding, and the classification of
// failures into retryable and permanent ones. Transient failures (transport
// errors and 5xx responses) are retried with exponential backoff before the
// client gives up and reports datalayer.ErrRemoteFetchFailed; undecodable
// payloads are never retried and report datalayer.ErrMappingFailed.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package catalogapi
