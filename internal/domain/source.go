package domain

import "time"

// Source types discriminate which provider adapter serves a NewsSource.
const (
	SourceTypeNewsAPI  = "news_api"
	SourceTypeGuardian = "guardian"
	SourceTypeNYT      = "nyt"
	SourceTypeOpenNews = "open_news"
)

// NewsSource identifies one external news provider account.
type NewsSource struct {
	ID                   int64
	Name                 string
	Slug                 string
	SourceType           string
	BaseURL              string
	APIKey               string
	IsActive             bool
	LastFetchedAt        *time.Time
	TotalArticlesFetched int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// FetchTask is one unit of ingestion work: fetch articles for a single
// source under a single tracked job. Attempt counts delivery attempts so
// transient-failure requeues stay bounded.
type FetchTask struct {
	JobID    int64
	SourceID int64
	Category string
	Limit    int
	Attempt  int
}
