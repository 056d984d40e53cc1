// Command scoutctl runs scouting queries against the local player data
// without starting the HTTP server.
//
// Usage:
//
//	scoutctl query "Find young midfielders under 21"
//	scoutctl query --json "Compare Haaland vs Mbappé"
//	scoutctl capabilities
//	scoutctl health
//	scoutctl recent --limit 10
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/maxviazov/soccer-scout-service/internal/app"
	"github.com/maxviazov/soccer-scout-service/internal/config"
	"github.com/maxviazov/soccer-scout-service/internal/logger"
	"github.com/maxviazov/soccer-scout-service/internal/service"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(openPipeline).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// openFunc builds the service for one command run and returns its release func.
type openFunc func(ctx context.Context, configPath string, verbose bool) (service.ScoutService, func(), error)

func openPipeline(ctx context.Context, configPath string, verbose bool) (service.ScoutService, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	// Keep stdout for results.
	cfg.Logger.OutputTarget = "stderr"
	if !verbose {
		cfg.Logger.Level = "warn"
	}
	l, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	a, err := app.Build(ctx, cfg, l, app.WithoutMetrics())
	if err != nil {
		return nil, nil, err
	}
	return a.Service, func() { _ = a.Close() }, nil
}
