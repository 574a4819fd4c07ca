package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"NewsAggregator/internal/config"
	"NewsAggregator/internal/domain"
	"NewsAggregator/internal/infrastructure/adapter"
	"NewsAggregator/internal/infrastructure/scheduler"
	"NewsAggregator/internal/infrastructure/storage"
	"NewsAggregator/internal/logging"
	"NewsAggregator/internal/provider"
	"NewsAggregator/internal/usecase"
)

// Application wires configuration to the ingestion pipeline.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sqlx.DB
	queue    *usecase.Queue
	ingestor *usecase.Ingestor
	trigger  *scheduler.Interval
}

// New connects storage, seeds the configured sources and assembles the
// provider registry, queue and orchestrator.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sources := storage.NewSourceStore(db)
	articles := storage.NewArticleStore(db, nil)
	jobs := storage.NewJobStore(db, nil)

	seed := lo.Map(cfg.Sources, func(src config.SourceConfig, _ int) domain.NewsSource {
		return domain.NewsSource{
			Name:       src.Name,
			Slug:       src.Slug,
			SourceType: src.SourceType,
			BaseURL:    src.BaseURL,
			APIKey:     src.APIKey,
			IsActive:   src.Active,
		}
	})
	if err := sources.Seed(ctx, seed); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed sources: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	keys := cfg.Providers.Keys

	registry := provider.NewRegistry()
	registry.Register(adapter.NewNewsAPI(client, articles,
		baseLogger.With("component", "adapter.news_api"), keys[domain.SourceTypeNewsAPI]))
	registry.Register(adapter.NewGuardian(client, articles,
		baseLogger.With("component", "adapter.guardian"), keys[domain.SourceTypeGuardian]))
	registry.Register(adapter.NewNYT(client, articles,
		baseLogger.With("component", "adapter.nyt"), keys[domain.SourceTypeNYT]))
	registry.Register(adapter.NewOpenNews(client, articles,
		baseLogger.With("component", "adapter.open_news"), keys[domain.SourceTypeOpenNews]))

	queue := usecase.NewQueue(cfg.Ingest.Workers, cfg.Ingest.QueueSize,
		baseLogger.With("component", "queue"))

	ingestor := usecase.NewIngestor(usecase.IngestorDeps{
		Sources:     sources,
		Jobs:        jobs,
		Registry:    registry,
		Queue:       queue,
		Logger:      baseLogger.With("component", "ingestor"),
		RetryDelay:  cfg.Ingest.RetryDelay.Std(),
		MaxAttempts: cfg.Ingest.MaxAttempts,
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		db:       db,
		queue:    queue,
		ingestor: ingestor,
		trigger:  scheduler.NewInterval(cfg.Scheduler.Interval.Std()),
	}, nil
}

// RunOptions selects between a one-shot dispatch and the periodic server
// mode, with optional source/category/limit overrides from the CLI.
type RunOptions struct {
	Once     bool
	Source   string
	Category string
	Limit    int
}

// Run starts the worker pool and either dispatches once and drains, or
// keeps dispatching on the configured interval until ctx is cancelled.
func (a *Application) Run(ctx context.Context, opts RunOptions) error {
	a.queue.Start(ctx, a.ingestor.Execute)

	dispatch := usecase.DispatchOptions{
		Source:   opts.Source,
		Category: opts.Category,
		Limit:    opts.Limit,
	}
	if dispatch.Category == "" {
		dispatch.Category = a.cfg.Ingest.DefaultCategory
	}
	if dispatch.Limit <= 0 {
		dispatch.Limit = a.cfg.Ingest.DefaultLimit
	}

	if opts.Once {
		if err := a.ingestor.Dispatch(ctx, dispatch); err != nil {
			return err
		}
		a.queue.Drain()
		return nil
	}

	err := a.trigger.Start(ctx, func(t time.Time) {
		a.logger.Info("scheduled dispatch", "at", t.Format(time.RFC3339))
		if err := a.ingestor.Dispatch(ctx, dispatch); err != nil {
			a.logger.Error("dispatch failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("start trigger: %w", err)
	}

	<-ctx.Done()
	_ = a.trigger.Stop(context.Background())
	return ctx.Err()
}

// Close releases the database handle.
func (a *Application) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
