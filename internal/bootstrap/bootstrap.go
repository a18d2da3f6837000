package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/legal-assistant/internal/config"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
	"github.com/kirillkom/legal-assistant/internal/core/usecase"
	rediscache "github.com/kirillkom/legal-assistant/internal/infrastructure/cache/redis"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/extractor"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/repository/memory"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/repository/sqlite"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/storage/localfs"
	miniostore "github.com/kirillkom/legal-assistant/internal/infrastructure/storage/minio"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/summarizer"
)

type App struct {
	Config  config.Config
	Engines *Engines

	Queue      ports.MessageQueue
	Repo       ports.DocumentRepository
	Extractor  *extractor.Dispatcher
	IngestUC   *usecase.IngestDocumentUseCase
	ProcessUC  *usecase.ProcessDocumentUseCase
	AnalyzeUC  *usecase.AnalyzeTextUseCase
	AskUC      *usecase.AskUseCase
	FeedbackUC *usecase.FeedbackUseCase

	closers []func()
}

type Options struct {
	Logger *slog.Logger
	// Observer receives engine outcomes; nil disables analysis metrics.
	Observer ports.AnalysisObserver
}

func New(ctx context.Context, cfg config.Config, opts Options) (_ *App, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	engines, err := NewEngines(logger)
	if err != nil {
		return nil, err
	}
	app.Engines = engines

	executor := resilience.NewExecutor(ResilienceConfig(cfg), resilience.WithLogger(logger))

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	app.closers = append(app.closers, func() { _ = db.Close() })
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	app.Repo = repo

	storage, err := newObjectStorage(ctx, cfg, executor)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}
	app.closers = append(app.closers, queue.Close)
	app.Queue = queue

	var history ports.ChatHistoryStore
	switch cfg.HistoryBackend {
	case "memory":
		history = memory.NewHistoryStore()
	case "postgres", "":
		history = postgres.NewHistoryRepository(db)
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.HistoryBackend)
	}

	feedbackStore, err := sqlite.Open(cfg.FeedbackDBPath)
	if err != nil {
		return nil, fmt.Errorf("init feedback store: %w", err)
	}
	app.closers = append(app.closers, func() { _ = feedbackStore.Close() })

	var cache ports.AssessmentCache
	if cfg.RedisURL != "" {
		client, err := rediscache.NewClient(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("init assessment cache: %w", err)
		}
		app.closers = append(app.closers, func() { _ = client.Close() })
		assessmentCache := rediscache.NewAssessmentCache(client, time.Duration(cfg.AssessmentCacheTTLSeconds)*time.Second, executor)
		if err := assessmentCache.Ping(ctx); err != nil {
			logger.Warn("assessment_cache_unreachable", "error", err)
		}
		cache = assessmentCache
	}

	dispatcher := extractor.NewDispatcher(storage, cfg.MaxUploadBytes(), extractor.DefaultFormats(cfg.MaxPDFPages)...)
	app.Extractor = dispatcher

	app.AnalyzeUC = usecase.NewAnalyzeTextUseCase(usecase.AnalyzeDeps{
		Repo:       repo,
		Entities:   engines.Entities,
		Assessor:   engines.Assessor,
		Summarizer: newSummarizer(cfg, engines, executor, logger),
		Clauses:    engines.Clauses,
		Cache:      cache,
		Observer:   opts.Observer,
		Logger:     logger,
	})
	app.IngestUC = usecase.NewIngestDocumentUseCase(repo, storage, queue, dispatcher, cfg.MaxUploadBytes())
	app.ProcessUC = usecase.NewProcessDocumentUseCase(repo, dispatcher, app.AnalyzeUC)
	app.AskUC = usecase.NewAskUseCase(usecase.AskDeps{
		Repo:     repo,
		Answerer: engines.QA,
		History:  history,
		Observer: opts.Observer,
		Logger:   logger,
	}, cfg.DefaultJurisdiction)
	app.FeedbackUC = usecase.NewFeedbackUseCase(feedbackStore)

	return app, nil
}

// Close releases resources in reverse acquisition order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func ResilienceConfig(cfg config.Config) resilience.Config {
	return resilience.Config{
		RetryMaxAttempts:    cfg.ResilienceRetryMaxAttempts,
		RetryInitialBackoff: time.Duration(cfg.ResilienceRetryInitialBackoffMS) * time.Millisecond,
		RetryMaxBackoff:     time.Duration(cfg.ResilienceRetryMaxBackoffMS) * time.Millisecond,
		RetryMultiplier:     2,

		BreakerEnabled:          cfg.ResilienceBreakerEnabled,
		BreakerMinRequests:      uint32(max(cfg.ResilienceBreakerMinRequests, 0)),
		BreakerFailureRatio:     cfg.ResilienceBreakerFailureRatio,
		BreakerOpenTimeout:      time.Duration(cfg.ResilienceBreakerOpenTimeoutMS) * time.Millisecond,
		BreakerHalfOpenMaxCalls: 2,
	}
}

func newObjectStorage(ctx context.Context, cfg config.Config, executor *resilience.Executor) (ports.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "localfs", "":
		return localfs.New(cfg.StoragePath)
	case "minio":
		store, err := miniostore.New(miniostore.Config{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		}, executor)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, errors.New("unknown storage backend " + cfg.StorageBackend)
	}
}

// newSummarizer prefers the local model when one is configured and always keeps
// the extractive summary as the fallback.
func newSummarizer(cfg config.Config, engines *Engines, executor *resilience.Executor, logger *slog.Logger) ports.Summarizer {
	if cfg.OllamaURL == "" {
		return engines.Extractive
	}
	client := ollama.New(cfg.OllamaURL, cfg.OllamaModel, ollama.Options{
		Timeout:  time.Duration(cfg.OllamaTimeoutSec) * time.Second,
		Executor: executor,
	})
	return summarizer.NewFallback(ollama.NewSummarizer(client, summarizer.DefaultMaxInputChars), engines.Extractive, logger)
}
