package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"NewsAggregator/internal/domain"
	"NewsAggregator/internal/ports"
)

var jobColumns = []string{
	"id", "news_source_id", "status", "started_at", "completed_at",
	"articles_fetched", "articles_stored", "articles_skipped", "attempts",
	"error_message", "created_at", "updated_at",
}

// Statuses a job can still be mutated from. Completed and failed rows are
// immutable: the guard below makes reopening impossible at the SQL level.
var openStatuses = []string{string(domain.JobPending), string(domain.JobRunning)}

// JobStore tracks fetch-job lifecycle state and result counters.
type JobStore struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ ports.JobTracker = (*JobStore)(nil)

// NewJobStore wires the store; now falls back to time.Now.
func NewJobStore(db *sqlx.DB, now func() time.Time) *JobStore {
	if now == nil {
		now = time.Now
	}
	return &JobStore{db: db, now: now}
}

type dbJob struct {
	ID              int64          `db:"id"`
	NewsSourceID    int64          `db:"news_source_id"`
	Status          string         `db:"status"`
	StartedAt       sql.NullTime   `db:"started_at"`
	CompletedAt     sql.NullTime   `db:"completed_at"`
	ArticlesFetched int            `db:"articles_fetched"`
	ArticlesStored  int            `db:"articles_stored"`
	ArticlesSkipped int            `db:"articles_skipped"`
	Attempts        int            `db:"attempts"`
	ErrorMessage    sql.NullString `db:"error_message"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (j dbJob) toDomain() domain.FetchJob {
	job := domain.FetchJob{
		ID:              j.ID,
		NewsSourceID:    j.NewsSourceID,
		Status:          domain.FetchJobStatus(j.Status),
		ArticlesFetched: j.ArticlesFetched,
		ArticlesStored:  j.ArticlesStored,
		ArticlesSkipped: j.ArticlesSkipped,
		Attempts:        j.Attempts,
		ErrorMessage:    j.ErrorMessage.String,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
	if j.StartedAt.Valid {
		at := j.StartedAt.Time
		job.StartedAt = &at
	}
	if j.CompletedAt.Valid {
		at := j.CompletedAt.Time
		job.CompletedAt = &at
	}
	return job
}

// Create inserts a pending job for one ingestion attempt.
func (s *JobStore) Create(ctx context.Context, sourceID int64) (domain.FetchJob, error) {
	query, args, err := psql.Insert("fetch_jobs").
		Columns("news_source_id", "status").
		Values(sourceID, string(domain.JobPending)).
		Suffix("RETURNING " + columnList(jobColumns)).
		ToSql()
	if err != nil {
		return domain.FetchJob{}, fmt.Errorf("build insert: %w", err)
	}

	var row dbJob
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		return domain.FetchJob{}, fmt.Errorf("create fetch job: %w", err)
	}

	return row.toDomain(), nil
}

// MarkStarted moves the job to running and bumps the attempt counter; a
// transient-failure retry restarts the same job and is counted here.
func (s *JobStore) MarkStarted(ctx context.Context, jobID int64) error {
	now := s.now().UTC()
	query, args, err := psql.Update("fetch_jobs").
		Set("status", string(domain.JobRunning)).
		Set("started_at", now).
		Set("attempts", sq.Expr("attempts + 1")).
		Set("updated_at", now).
		Where(sq.Eq{"id": jobID, "status": openStatuses}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	return s.mutate(ctx, jobID, query, args)
}

// MarkCompleted finalizes the job with its result counters.
func (s *JobStore) MarkCompleted(ctx context.Context, jobID int64, fetched, stored, skipped int) error {
	now := s.now().UTC()
	query, args, err := psql.Update("fetch_jobs").
		Set("status", string(domain.JobCompleted)).
		Set("completed_at", now).
		Set("articles_fetched", fetched).
		Set("articles_stored", stored).
		Set("articles_skipped", skipped).
		Set("updated_at", now).
		Where(sq.Eq{"id": jobID, "status": string(domain.JobRunning)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	return s.mutate(ctx, jobID, query, args)
}

// MarkFailed finalizes the job with the error message.
func (s *JobStore) MarkFailed(ctx context.Context, jobID int64, message string) error {
	now := s.now().UTC()
	query, args, err := psql.Update("fetch_jobs").
		Set("status", string(domain.JobFailed)).
		Set("completed_at", now).
		Set("error_message", message).
		Set("updated_at", now).
		Where(sq.Eq{"id": jobID, "status": openStatuses}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	return s.mutate(ctx, jobID, query, args)
}

func (s *JobStore) mutate(ctx context.Context, jobID int64, query string, args []interface{}) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update fetch job %d: %w", jobID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update fetch job %d: %w", jobID, err)
	}
	if affected == 0 {
		return fmt.Errorf("fetch job %d is terminal or missing", jobID)
	}

	return nil
}
