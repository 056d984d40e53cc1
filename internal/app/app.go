// Package app wires the scout pipeline from configuration. The HTTP server,
// the CLI and the MCP server all start from Build.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/maxviazov/soccer-scout-service/internal/cache"
	"github.com/maxviazov/soccer-scout-service/internal/config"
	"github.com/maxviazov/soccer-scout-service/internal/engine"
	"github.com/maxviazov/soccer-scout-service/internal/interpreter"
	"github.com/maxviazov/soccer-scout-service/internal/llm"
	"github.com/maxviazov/soccer-scout-service/internal/metrics"
	"github.com/maxviazov/soccer-scout-service/internal/model"
	"github.com/maxviazov/soccer-scout-service/internal/narrative"
	"github.com/maxviazov/soccer-scout-service/internal/repository"
	"github.com/maxviazov/soccer-scout-service/internal/repository/postgres"
	"github.com/maxviazov/soccer-scout-service/internal/repository/sqlite"
	"github.com/maxviazov/soccer-scout-service/internal/service"
	"github.com/maxviazov/soccer-scout-service/internal/store"
)

// App holds the wired pipeline and the resources it must release.
type App struct {
	Service  service.ScoutService
	Store    *store.Store
	Metrics  *metrics.Manager
	QueryLog repository.QueryLogRepository

	log zerolog.Logger
}

// Option applies a configuration option to Build.
type Option func(*options)

type options struct {
	completer llm.Completer
	noMetrics bool
}

// WithCompleter replaces the configured LLM client.
func WithCompleter(c llm.Completer) Option {
	return func(o *options) { o.completer = c }
}

// WithoutMetrics skips the Prometheus registry, for one-shot tools.
func WithoutMetrics() Option {
	return func(o *options) { o.noMetrics = true }
}

// Build loads the player data and assembles the service. A store that cannot
// load leaves the service in not-ready mode rather than failing, so the
// process can still answer health checks. Query log failures fall back to
// no logging.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.With().Str("module", "app").Logger()

	a := &App{log: log}
	if cfg.Metrics.Enabled && !o.noMetrics {
		var mopts []metrics.Option
		if cfg.Metrics.Runtime {
			mopts = append(mopts, metrics.WithRuntimeCollectors())
		}
		a.Metrics = metrics.NewManager(mopts...)
	}

	s, err := store.Load(ctx, cfg.Data.Sources, logger)
	if err != nil {
		log.Error().Err(err).Msg("player data unavailable, serving in not-ready mode")
	} else {
		a.Store = s
		a.Metrics.SetPlayers(s.Len())
	}

	completer := o.completer
	if completer == nil && cfg.LLM.Enabled() {
		completer = llm.NewClient(llm.Config{
			APIKey:   cfg.LLM.APIKey,
			Model:    cfg.LLM.Model,
			Endpoint: cfg.LLM.Endpoint,
			Timeout:  max(cfg.LLM.ParseTimeout, cfg.LLM.NarrativeTimeout),
		}, nil, logger)
	}

	a.QueryLog = openQueryLog(ctx, cfg, logger)

	deps := service.Deps{
		Interpreter: interpreter.New(logger, interpreter.WithLLM(completer, cfg.LLM.ParseTimeout)),
		Narrative:   narrative.NewGenerator(completer, cfg.LLM.NarrativeTimeout, logger),
		QueryLog:    a.QueryLog,
		Metrics:     a.Metrics,
		LLMEnabled:  completer != nil,
	}
	// A typed nil *store.Store must not reach the interfaces.
	if a.Store != nil {
		deps.Store = a.Store
		deps.Analyzer = engine.NewAnalyzer(a.Store, logger)
	}
	if cfg.Cache.Enabled {
		deps.Cache = cache.New[model.Outcome](cache.WithCapacity(cfg.Cache.Capacity))
	}

	a.Service = service.NewScoutService(deps, logger,
		service.WithTimeout(cfg.Query.Timeout),
		service.WithMaxQueryLength(cfg.Query.MaxLength),
	)
	log.Info().
		Bool("ready", a.Store != nil).
		Bool("llm", completer != nil).
		Bool("cache", cfg.Cache.Enabled).
		Str("query_log", cfg.QueryLog.Driver).
		Msg("pipeline ready")
	return a, nil
}

// openQueryLog never fails: an unreachable backend is logged and replaced
// with a no-op log.
func openQueryLog(ctx context.Context, cfg *config.Config, logger zerolog.Logger) repository.QueryLogRepository {
	log := logger.With().Str("module", "app").Str("component", "query_log").Logger()
	var (
		repo repository.QueryLogRepository
		err  error
	)
	switch cfg.QueryLog.Driver {
	case "sqlite":
		repo, err = sqlite.Open(ctx, cfg.Sqlite.Path)
	case "postgres":
		repo, err = openPostgres(ctx, cfg.Postgres, logger)
	default:
		return repository.NopQueryLog{}
	}
	if err != nil {
		log.Warn().Err(err).Str("driver", cfg.QueryLog.Driver).Msg("query log disabled")
		return repository.NopQueryLog{}
	}
	return repo
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig, logger zerolog.Logger) (repository.QueryLogRepository, error) {
	pool, err := repository.NewPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	repo, err := postgres.NewQueryLogRepository(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate query log: %w", err)
	}
	return repo, nil
}

// Ready returns the readiness probe target, or nil when no data is loaded.
func (a *App) Ready() interface{ Ping(ctx context.Context) error } {
	if a.Store == nil {
		return nil
	}
	return a.Store
}

// Close releases the query log.
func (a *App) Close() error {
	if a.QueryLog == nil {
		return nil
	}
	if err := a.QueryLog.Close(); err != nil {
		a.log.Warn().Err(err).Msg("query log close failed")
		return err
	}
	return nil
}
