package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"NewsAggregator/internal/domain"
	"NewsAggregator/internal/ports"
	"NewsAggregator/internal/provider"
)

const (
	defaultRetryDelay  = 5 * time.Minute
	defaultMaxAttempts = 5
)

// IngestorDeps wires the driven adapters into the orchestrator.
type IngestorDeps struct {
	Sources     ports.SourceRepository
	Jobs        ports.JobTracker
	Registry    *provider.Registry
	Queue       ports.TaskQueue
	Logger      *slog.Logger
	RetryDelay  time.Duration
	MaxAttempts int
	Now         func() time.Time
}

// Ingestor selects sources, dispatches one asynchronous fetch task per
// source, and reconciles task outcomes with the job tracker. It is the
// single point deciding retry versus terminal failure.
type Ingestor struct {
	sources     ports.SourceRepository
	jobs        ports.JobTracker
	registry    *provider.Registry
	queue       ports.TaskQueue
	logger      *slog.Logger
	retryDelay  time.Duration
	maxAttempts int
	now         func() time.Time
}

// NewIngestor constructs the orchestrator with sane retry defaults.
func NewIngestor(deps IngestorDeps) *Ingestor {
	if deps.RetryDelay <= 0 {
		deps.RetryDelay = defaultRetryDelay
	}
	if deps.MaxAttempts <= 0 {
		deps.MaxAttempts = defaultMaxAttempts
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Ingestor{
		sources:     deps.Sources,
		jobs:        deps.Jobs,
		registry:    deps.Registry,
		queue:       deps.Queue,
		logger:      deps.Logger,
		retryDelay:  deps.RetryDelay,
		maxAttempts: deps.MaxAttempts,
		now:         deps.Now,
	}
}

// DispatchOptions narrows which sources get ingested and with what hints.
type DispatchOptions struct {
	// Source optionally selects a single source by name, slug or type.
	Source   string
	Category string
	Limit    int
}

// Dispatch creates a pending fetch job per selected source and enqueues
// one task each. Tasks run independently and fully in parallel.
func (i *Ingestor) Dispatch(ctx context.Context, opts DispatchOptions) error {
	var (
		sources []domain.NewsSource
		err     error
	)

	if opts.Source != "" {
		var src domain.NewsSource
		src, err = i.sources.FindBySelector(ctx, opts.Source)
		if err != nil {
			return fmt.Errorf("select source: %w", err)
		}
		sources = []domain.NewsSource{src}
	} else {
		sources, err = i.sources.ActiveSources(ctx)
		if err != nil {
			return fmt.Errorf("select active sources: %w", err)
		}
	}

	for _, src := range sources {
		job, err := i.jobs.Create(ctx, src.ID)
		if err != nil {
			return fmt.Errorf("create fetch job for %s: %w", src.Slug, err)
		}

		i.logger.Info("dispatching fetch job", "source", src.Slug, "job_id", job.ID)
		i.queue.Enqueue(domain.FetchTask{
			JobID:    job.ID,
			SourceID: src.ID,
			Category: opts.Category,
			Limit:    opts.Limit,
			Attempt:  1,
		})
	}

	return nil
}

// Execute runs one fetch task: mark the job running, invoke the matching
// adapter, and record the outcome. Transient provider failures re-enqueue
// the same task after the retry delay, leaving the job running; every
// other failure is terminal.
func (i *Ingestor) Execute(ctx context.Context, task domain.FetchTask) error {
	source, err := i.sources.SourceByID(ctx, task.SourceID)
	if err != nil {
		return i.fail(ctx, task, fmt.Errorf("load source: %w", err))
	}

	// A job that cannot start must not sit pending forever; fail it with
	// the cause. On a terminal job the guard rejects MarkFailed too, so a
	// duplicate delivery still cannot mutate anything.
	if err := i.jobs.MarkStarted(ctx, task.JobID); err != nil {
		return i.fail(ctx, task, fmt.Errorf("mark started: %w", err))
	}

	prov, err := i.registry.Resolve(source.SourceType)
	if err != nil {
		// Configuration error: no adapter for this source type, no retry.
		return i.fail(ctx, task, err)
	}

	result, err := prov.FetchArticles(ctx, source, provider.FetchRequest{
		Query: task.Category,
		Limit: task.Limit,
	})
	if err != nil {
		if transientError(err) && task.Attempt < i.maxAttempts {
			i.logger.Warn("transient provider failure, requeueing",
				"source", source.Slug,
				"job_id", task.JobID,
				"attempt", task.Attempt,
				"delay", i.retryDelay,
				"error", err)
			next := task
			next.Attempt++
			i.queue.EnqueueAfter(i.retryDelay, next)
			return nil
		}
		return i.fail(ctx, task, err)
	}

	if err := i.jobs.MarkCompleted(ctx, task.JobID, result.Fetched, result.Stored, result.Skipped); err != nil {
		return fmt.Errorf("mark job %d completed: %w", task.JobID, err)
	}

	if err := i.sources.MarkFetched(ctx, source.ID, result.Stored, i.now()); err != nil {
		i.logger.Warn("update source counters", "source", source.Slug, "error", err)
	}

	i.logger.Info("fetch job completed",
		"source", source.Slug,
		"job_id", task.JobID,
		"fetched", result.Fetched,
		"stored", result.Stored,
		"skipped", result.Skipped)

	return nil
}

// fail records the terminal failure on the job and surfaces the cause so
// the queue can log it.
func (i *Ingestor) fail(ctx context.Context, task domain.FetchTask, cause error) error {
	if err := i.jobs.MarkFailed(ctx, task.JobID, cause.Error()); err != nil {
		i.logger.Error("mark job failed", "job_id", task.JobID, "error", err)
	}
	return fmt.Errorf("fetch job %d: %w", task.JobID, cause)
}

// transientError classifies rate limits and network timeouts as worth a
// delayed retry; everything else is permanent.
func transientError(err error) bool {
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}
