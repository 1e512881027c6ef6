// Package core contains domain values for the example:
// Browsing a movie catalog.
//
// This package implements plain domain values for catalog titles and genres,
// decoupled from the remote catalog API's wire format. The shell layer maps
// API records into these values before they reach gateway strategies, so
// features and render callbacks only ever see core types.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
