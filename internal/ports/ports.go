package ports

import (
	"context"
	"time"

	"NewsAggregator/internal/domain"
)

// ArticleStore deduplicates and persists canonical article records. The
// returned bool reports whether the row was newly inserted; a duplicate
// fetch resolves to the pre-existing row untouched.
type ArticleStore interface {
	StoreArticle(ctx context.Context, data domain.ArticleData, source domain.NewsSource) (domain.Article, bool, error)
}

// SourceRepository manages NewsSource rows.
type SourceRepository interface {
	ActiveSources(ctx context.Context) ([]domain.NewsSource, error)
	SourceByID(ctx context.Context, id int64) (domain.NewsSource, error)
	// FindBySelector matches a source by name, slug or source type.
	FindBySelector(ctx context.Context, selector string) (domain.NewsSource, error)
	// MarkFetched records a completed fetch on the source row.
	MarkFetched(ctx context.Context, id int64, stored int, at time.Time) error
	Seed(ctx context.Context, sources []domain.NewsSource) error
}

// JobTracker records fetch-job lifecycle state and result counters. Each
// job is mutated only by the one task executing its fetch; the completed
// and failed transitions are final.
type JobTracker interface {
	Create(ctx context.Context, sourceID int64) (domain.FetchJob, error)
	MarkStarted(ctx context.Context, jobID int64) error
	MarkCompleted(ctx context.Context, jobID int64, fetched, stored, skipped int) error
	MarkFailed(ctx context.Context, jobID int64, message string) error
}

// TaskQueue schedules fetch tasks for asynchronous execution.
type TaskQueue interface {
	Enqueue(task domain.FetchTask)
	EnqueueAfter(delay time.Duration, task domain.FetchTask)
}

// Trigger fires a recurring job, e.g. the periodic ingestion dispatch.
type Trigger interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
