// Package config provides configuration helpers for the example:
// Browsing a movie catalog.
//
// This package contains the environment-driven application configuration and
// factory functions for the infrastructure the demo wires together: PostgreSQL
// connections using different drivers (pgx.Pool, sql.DB, sqlx.DB), a Valkey
// client with OpenTelemetry instrumentation, and the OTLP observability
// providers.
//
// This package is part of the shell (infrastructure) layer, providing
// connection and observability configuration for the catalog demo.
package config
