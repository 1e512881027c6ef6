// Package postgresengine provides a PostgreSQL implementation of the CacheStore interface.
//
// This package persists cache entries in a single key-value table using PostgreSQL
// as the storage backend, supporting multiple database adapters (pgx, sql.DB, sqlx)
// with upsert-based writes so the most recent write for a key always wins.
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Atomic writes via INSERT ... ON CONFLICT DO UPDATE
//   - JSONB storage for cache entry payloads
//   - Configurable table names and dual-logger support
//   - Optional metrics and tracing collectors
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewCacheStoreFromPGXPool(db)
//
//	// With a custom table and operational logging
//	store, _ := postgresengine.NewCacheStoreFromPGXPool(
//		db,
//		postgresengine.WithTableName("title_cache"),
//		postgresengine.WithLogger(logger),
//	)
//
//	entry, err := store.Read(ctx, key)
//	err = store.Write(ctx, entry)
//	err = store.Remove(ctx, key)
package postgresengine
