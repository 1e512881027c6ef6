// Package valkeyengine provides a Valkey implementation of the CacheStore interface.
//
// This package persists cache entries as JSON values under prefixed string keys,
// using plain GET/SET/DEL commands so the most recent write for a key always wins.
// A missing key is translated into datalayer.ErrCacheMiss.
//
// Key features:
//   - Works with any valkey.Client, including instrumented clients from valkeyotel
//   - Configurable key prefix to isolate applications sharing one Valkey instance
//   - Dual-logger support plus optional metrics and tracing collectors
//
// Usage examples:
//
//	client, _ := valkey.NewClient(valkey.ClientOption{InitAddress: []string{"localhost:6379"}})
//	store, _ := valkeyengine.NewCacheStoreFromClient(client)
//
//	// With a custom key prefix and operational logging
//	store, _ := valkeyengine.NewCacheStoreFromClient(
//		client,
//		valkeyengine.WithKeyPrefix("catalog:"),
//		valkeyengine.WithLogger(logger),
//	)
//
//	entry, err := store.Read(ctx, key)
//	err = store.Write(ctx, entry)
//	err = store.Remove(ctx, key)
package valkeyengine
