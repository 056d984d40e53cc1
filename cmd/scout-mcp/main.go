// Command scout-mcp exposes the scouting pipeline as MCP tools over stdio.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/maxviazov/soccer-scout-service/internal/app"
	"github.com/maxviazov/soccer-scout-service/internal/config"
	"github.com/maxviazov/soccer-scout-service/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// stdout carries the protocol.
	cfg.Logger.OutputTarget = "stderr"
	l, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, l, app.WithoutMetrics())
	if err != nil {
		l.Fatal().Err(err).Msg("pipeline wiring failed")
	}
	defer a.Close()

	server := newServer(a.Service, cfg.App.Version)
	l.Info().Msg("scout MCP server listening on stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		l.Error().Err(err).Msg("mcp server stopped")
	}
}
