package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/kirillkom/legal-assistant/internal/adapters/mcp"
	"github.com/kirillkom/legal-assistant/internal/bootstrap"
	"github.com/kirillkom/legal-assistant/internal/config"
	"github.com/kirillkom/legal-assistant/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	// stdout carries the protocol.
	logger := logging.NewJSONLoggerTo(os.Stderr, "legal-mcp", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engines, err := bootstrap.NewEngines(logger)
	if err != nil {
		logger.Error("engines_init_failed", "error", err)
		os.Exit(1)
	}

	srv := mcpadapter.New(mcpadapter.Deps{
		Assessor:            engines.Assessor,
		Answerer:            engines.QA,
		Entities:            engines.Entities,
		Logger:              logger,
		DefaultJurisdiction: cfg.DefaultJurisdiction,
		MaxTextChars:        cfg.MaxTextChars,
	})
	logger.Info("mcp_serving_stdio")
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		logger.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
