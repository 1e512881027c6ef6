package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer/memoryengine"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer/oteladapters"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer/postgresengine"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer/valkeyengine"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/shell/catalogapi"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/shell/config"
)

func main() {
	cfg := config.MustParseAppConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling so Ctrl+C aborts the walkthrough cleanly
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, aborting walkthrough...", sig)
		cancel()
	}()

	// Start the bundled catalog API so the demo needs no external catalog service
	catalog, err := startCatalogServer()
	if err != nil {
		log.Fatalf("Failed to start the bundled catalog API: %v", err)
	}
	defer catalog.Close()

	obs := newObservabilityConfig(cfg)
	defer obs.Shutdown()

	cacheStore, closeCacheStore, err := newCacheStore(ctx, cfg, obs)
	if err != nil {
		log.Fatalf("Failed to create the %s cache store: %v", cfg.CacheEngine, err)
	}
	defer closeCacheStore()

	client, err := catalogapi.NewClient(
		catalog.BaseURL(),
		catalogapi.WithRequestTimeout(cfg.CatalogAPIRequestTimeout),
		catalogapi.WithMaxRetries(cfg.CatalogAPIMaxRetries),
	)
	if err != nil {
		log.Fatalf("Failed to create the catalog API client: %v", err)
	}

	log.Printf("Catalog demo started: catalog_api=%s cache_engine=%s observability=%v",
		catalog.BaseURL(), cfg.CacheEngine, cfg.ObservabilityEnabled)

	if err := runWalkthrough(ctx, client, cacheStore, catalog, obs); err != nil {
		log.Fatalf("Walkthrough failed: %v", err)
	}

	log.Printf("Catalog demo finished")
}

// newCacheStore builds the cache store for the configured engine and returns
// it together with the function releasing its underlying connections.
func newCacheStore(
	ctx context.Context,
	cfg config.AppConfig,
	obs ObservabilityConfig,
) (datalayer.CacheStore, func(), error) {
	switch cfg.CacheEngine {
	case config.CacheEngineMemory:
		return memoryengine.NewCacheStore(), func() {}, nil

	case config.CacheEnginePostgres:
		pgxPool, err := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolConfig(cfg.PostgresDSN))
		if err != nil {
			return nil, nil, fmt.Errorf("creating pgx pool: %w", err)
		}

		if err := pgxPool.Ping(ctx); err != nil {
			pgxPool.Close()
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}

		store, err := postgresengine.NewCacheStoreFromPGXPool(pgxPool, postgresOptions(cfg, obs)...)
		if err != nil {
			pgxPool.Close()
			return nil, nil, err
		}

		return store, pgxPool.Close, nil

	case config.CacheEngineValkey:
		valkeyClient, err := config.ValkeyClientConfig(cfg.ValkeyAddress)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to valkey: %w", err)
		}

		store, err := valkeyengine.NewCacheStoreFromClient(valkeyClient, valkeyOptions(cfg, obs)...)
		if err != nil {
			valkeyClient.Close()
			return nil, nil, err
		}

		return store, valkeyClient.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache engine %q", cfg.CacheEngine)
	}
}

func postgresOptions(cfg config.AppConfig, obs ObservabilityConfig) []postgresengine.Option {
	options := []postgresengine.Option{postgresengine.WithTableName(cfg.CacheTableName)}

	if obs.ContextualLogger != nil {
		options = append(options, postgresengine.WithContextualLogger(obs.ContextualLogger))
	}
	if obs.MetricsCollector != nil {
		options = append(options, postgresengine.WithMetrics(obs.MetricsCollector))
	}
	if obs.TracingCollector != nil {
		options = append(options, postgresengine.WithTracing(obs.TracingCollector))
	}

	return options
}

func valkeyOptions(cfg config.AppConfig, obs ObservabilityConfig) []valkeyengine.Option {
	options := []valkeyengine.Option{valkeyengine.WithKeyPrefix(cfg.ValkeyPrefix)}

	if obs.ContextualLogger != nil {
		options = append(options, valkeyengine.WithContextualLogger(obs.ContextualLogger))
	}
	if obs.MetricsCollector != nil {
		options = append(options, valkeyengine.WithMetrics(obs.MetricsCollector))
	}
	if obs.TracingCollector != nil {
		options = append(options, valkeyengine.WithTracing(obs.TracingCollector))
	}

	return options
}

// ObservabilityConfig holds the observability adapters shared by the whole pipeline.
type ObservabilityConfig struct {
	ContextualLogger datalayer.ContextualLogger
	MetricsCollector datalayer.MetricsCollector
	TracingCollector datalayer.TracingCollector

	providers *config.ObservabilityProviders
}

func newObservabilityConfig(cfg config.AppConfig) ObservabilityConfig {
	if !cfg.ObservabilityEnabled {
		return ObservabilityConfig{}
	}

	providers, err := config.NewObservabilityConfig()
	if err != nil {
		log.Printf("Failed to create observability providers, continuing without: %v", err)
		return ObservabilityConfig{}
	}

	tracer := otel.Tracer("catalog-demo")
	meter := otel.Meter("catalog-demo")

	return ObservabilityConfig{
		ContextualLogger: oteladapters.NewSlogBridgeLogger("catalog-demo"),
		MetricsCollector: oteladapters.NewMetricsCollector(meter),
		TracingCollector: oteladapters.NewTracingCollector(tracer),
		providers:        providers,
	}
}

// Shutdown flushes the telemetry exporters; without providers it is a no-op.
func (c ObservabilityConfig) Shutdown() {
	if c.providers == nil {
		return
	}

	if err := c.providers.Shutdown(); err != nil {
		log.Printf("Error during observability shutdown: %v", err)
	}
}
