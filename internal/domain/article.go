package domain

import "time"

// Article is the canonical normalized news item persisted after ingestion.
type Article struct {
	ID             int64
	Title          string
	Content        string
	Summary        string
	URL            string
	ImageURL       string
	PublishedAt    time.Time
	NewsSourceID   int64
	CategoryID     *int64
	AuthorID       *int64
	ContentHash    string
	ExternalID     string
	ViewCount      int
	SentimentScore *float64
	IsFeatured     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ArticleData is the provider-agnostic shape every adapter transform maps
// raw provider items into before storage.
type ArticleData struct {
	Title       string
	Content     string
	Summary     string
	URL         string
	ImageURL    string
	PublishedAt *time.Time
	ExternalID  string
	Author      *AuthorData
	Category    *CategoryData
}

// AuthorData carries the byline extracted by a transform.
type AuthorData struct {
	Slug       string
	Name       string
	Bio        string
	ProfileURL string
}

// CategoryData carries the section/topic extracted by a transform.
type CategoryData struct {
	Slug       string
	Name       string
	Pillar     string
	ExternalID string
}

// Category is a topic/section, created lazily by the first adapter that
// reports it. First write wins on the descriptive fields.
type Category struct {
	ID         int64
	Slug       string
	Name       string
	Pillar     string
	ExternalID string
	IsActive   bool
	CreatedAt  time.Time
}

// Author is a byline identity, created lazily with the same
// first-write-wins policy as Category.
type Author struct {
	ID         int64
	Slug       string
	Name       string
	Bio        string
	ProfileURL string
	CreatedAt  time.Time
}
