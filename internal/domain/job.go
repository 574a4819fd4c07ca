package domain

import "time"

// FetchJobStatus enumerates fetch-job lifecycle states.
type FetchJobStatus string

const (
	JobPending   FetchJobStatus = "pending"
	JobRunning   FetchJobStatus = "running"
	JobCompleted FetchJobStatus = "completed"
	JobFailed    FetchJobStatus = "failed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s FetchJobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// CanTransition reports whether moving from s to next is a legal step of
// the pending -> running -> (completed | failed) machine. Re-entering
// running is allowed: a transient-failure retry restarts the same job.
// Failing straight from pending is allowed too, for jobs that never get
// to start (the source row vanished between dispatch and execution).
func (s FetchJobStatus) CanTransition(next FetchJobStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case JobRunning:
		return s == JobPending || s == JobRunning
	case JobCompleted:
		return s == JobRunning
	case JobFailed:
		return s == JobPending || s == JobRunning
	default:
		return false
	}
}

// FetchJob records one tracked ingestion attempt against one NewsSource.
type FetchJob struct {
	ID              int64
	NewsSourceID    int64
	Status          FetchJobStatus
	StartedAt       *time.Time
	CompletedAt     *time.Time
	ArticlesFetched int
	ArticlesStored  int
	ArticlesSkipped int
	Attempts        int
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
