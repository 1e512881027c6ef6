package gateway

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
)

const defaultChannelCapacity = 4

// Option configures a query strategy.
// Options are applied in order during construction and may return an error
// for invalid input, which aborts construction.
type Option func(cfg *strategyConfig) error

type strategyConfig struct {
	launcher         datalayer.Launcher
	channelCapacity  int
	logger           datalayer.Logger
	contextualLogger datalayer.ContextualLogger
	metrics          datalayer.MetricsCollector
	tracing          datalayer.TracingCollector
}

func defaultStrategyConfig() strategyConfig {
	return strategyConfig{
		launcher:        datalayer.DefaultLauncher(),
		channelCapacity: defaultChannelCapacity,
	}
}

func (cfg *strategyConfig) apply(opts []Option) error {
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return err
		}
	}

	return nil
}

// WithLauncher supplies the launcher that runs the producer side of the
// stream. The default launcher starts a goroutine per Stream call; a
// synchronous launcher can be supplied for deterministic tests.
func WithLauncher(launcher datalayer.Launcher) Option {
	return func(cfg *strategyConfig) error {
		if launcher == nil {
			return errors.New("launcher must not be nil")
		}
		cfg.launcher = launcher

		return nil
	}
}

// WithChannelCapacity sets the buffer size of the stream channel.
// The capacity must be large enough to hold every element a strategy can
// emit (Pending plus up to two terminal elements), otherwise a synchronous
// launcher would block on its own channel.
func WithChannelCapacity(capacity int) Option {
	return func(cfg *strategyConfig) error {
		if capacity < 3 {
			return errors.New("channel capacity must be at least 3")
		}
		cfg.channelCapacity = capacity

		return nil
	}
}

// WithLogger supplies a basic logger used for strategy log output.
func WithLogger(logger datalayer.Logger) Option {
	return func(cfg *strategyConfig) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		cfg.logger = logger

		return nil
	}
}

// WithContextualLogger supplies a context-aware logger used for strategy
// log output. When both logger types are configured, the contextual logger
// takes precedence.
func WithContextualLogger(logger datalayer.ContextualLogger) Option {
	return func(cfg *strategyConfig) error {
		if logger == nil {
			return errors.New("contextual logger must not be nil")
		}
		cfg.contextualLogger = logger

		return nil
	}
}

// WithMetrics supplies a metrics collector for query timing and counters.
func WithMetrics(collector datalayer.MetricsCollector) Option {
	return func(cfg *strategyConfig) error {
		if collector == nil {
			return errors.New("metrics collector must not be nil")
		}
		cfg.metrics = collector

		return nil
	}
}

// WithTracing supplies a tracing collector for query spans.
func WithTracing(collector datalayer.TracingCollector) Option {
	return func(cfg *strategyConfig) error {
		if collector == nil {
			return errors.New("tracing collector must not be nil")
		}
		cfg.tracing = collector

		return nil
	}
}

// logDebug logs with the contextual logger when configured, falling back to
// the basic logger.
func (cfg *strategyConfig) logDebug(ctx context.Context, msg string, args ...any) {
	if cfg.contextualLogger != nil {
		cfg.contextualLogger.DebugContext(ctx, msg, args...)
	} else if cfg.logger != nil {
		cfg.logger.Debug(msg, args...)
	}
}

func (cfg *strategyConfig) logInfo(ctx context.Context, msg string, args ...any) {
	if cfg.contextualLogger != nil {
		cfg.contextualLogger.InfoContext(ctx, msg, args...)
	} else if cfg.logger != nil {
		cfg.logger.Info(msg, args...)
	}
}

func (cfg *strategyConfig) logWarn(ctx context.Context, msg string, args ...any) {
	if cfg.contextualLogger != nil {
		cfg.contextualLogger.WarnContext(ctx, msg, args...)
	} else if cfg.logger != nil {
		cfg.logger.Warn(msg, args...)
	}
}

func (cfg *strategyConfig) logError(ctx context.Context, msg string, args ...any) {
	if cfg.contextualLogger != nil {
		cfg.contextualLogger.ErrorContext(ctx, msg, args...)
	} else if cfg.logger != nil {
		cfg.logger.Error(msg, args...)
	}
}
