package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/legal-assistant/internal/adapters/cli"
	"github.com/kirillkom/legal-assistant/internal/bootstrap"
	"github.com/kirillkom/legal-assistant/internal/config"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
	"github.com/kirillkom/legal-assistant/internal/core/usecase"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/extractor"
	"github.com/kirillkom/legal-assistant/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLoggerTo(os.Stderr, "legalctl", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engines, err := bootstrap.NewEngines(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	analyzer := usecase.NewAnalyzeTextUseCase(usecase.AnalyzeDeps{
		Entities:   engines.Entities,
		Assessor:   engines.Assessor,
		Summarizer: engines.Extractive,
		Clauses:    engines.Clauses,
		Logger:     logger,
	})

	root := cli.NewRootCommand(cli.Deps{
		Analyzer:   analyzer,
		Assessor:   engines.Assessor,
		Entities:   engines.Entities,
		Clauses:    engines.Clauses,
		NewChunker: func(overlap int) ports.Chunker { return engines.NewChunker(overlap) },
		NewSession: engines.NewSession,
		Decoder:    extractor.NewDispatcher(nil, cfg.MaxUploadBytes(), extractor.DefaultFormats(cfg.MaxPDFPages)...),

		DefaultJurisdiction: cfg.DefaultJurisdiction,
	})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
