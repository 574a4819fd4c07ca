package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"NewsAggregator/internal/domain"
	"NewsAggregator/internal/ports"
)

var articleColumns = []string{
	"id", "title", "content", "summary", "url", "image_url", "published_at",
	"news_source_id", "category_id", "author_id", "content_hash",
	"external_id", "view_count", "sentiment_score", "is_featured",
	"created_at", "updated_at",
}

// ArticleStore persists canonical articles with hash-based deduplication.
type ArticleStore struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ ports.ArticleStore = (*ArticleStore)(nil)

// NewArticleStore wires the store; now falls back to time.Now.
func NewArticleStore(db *sqlx.DB, now func() time.Time) *ArticleStore {
	if now == nil {
		now = time.Now
	}
	return &ArticleStore{db: db, now: now}
}

type dbArticle struct {
	ID             int64           `db:"id"`
	Title          string          `db:"title"`
	Content        sql.NullString  `db:"content"`
	Summary        sql.NullString  `db:"summary"`
	URL            sql.NullString  `db:"url"`
	ImageURL       sql.NullString  `db:"image_url"`
	PublishedAt    time.Time       `db:"published_at"`
	NewsSourceID   int64           `db:"news_source_id"`
	CategoryID     sql.NullInt64   `db:"category_id"`
	AuthorID       sql.NullInt64   `db:"author_id"`
	ContentHash    string          `db:"content_hash"`
	ExternalID     sql.NullString  `db:"external_id"`
	ViewCount      int             `db:"view_count"`
	SentimentScore sql.NullFloat64 `db:"sentiment_score"`
	IsFeatured     bool            `db:"is_featured"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (a dbArticle) toDomain() domain.Article {
	article := domain.Article{
		ID:           a.ID,
		Title:        a.Title,
		Content:      a.Content.String,
		Summary:      a.Summary.String,
		URL:          a.URL.String,
		ImageURL:     a.ImageURL.String,
		PublishedAt:  a.PublishedAt,
		NewsSourceID: a.NewsSourceID,
		ContentHash:  a.ContentHash,
		ExternalID:   a.ExternalID.String,
		ViewCount:    a.ViewCount,
		IsFeatured:   a.IsFeatured,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.CategoryID.Valid {
		article.CategoryID = &a.CategoryID.Int64
	}
	if a.AuthorID.Valid {
		article.AuthorID = &a.AuthorID.Int64
	}
	if a.SentimentScore.Valid {
		article.SentimentScore = &a.SentimentScore.Float64
	}
	return article
}

// ContentHash derives the deduplication key: the provider's external id
// when present, else the canonical URL, else a random fallback so the row
// still maps to exactly one hash.
func ContentHash(data domain.ArticleData) string {
	key := data.ExternalID
	if key == "" {
		key = data.URL
	}
	if key == "" {
		key = uuid.NewString()
	}

	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// StoreArticle resolves category/author, then atomically inserts the
// article unless a row with the same content hash exists. The returned
// bool reports a fresh insert; on a duplicate the pre-existing row comes
// back untouched, so callers see the resolved row either way.
func (s *ArticleStore) StoreArticle(ctx context.Context, data domain.ArticleData, source domain.NewsSource) (domain.Article, bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Article{}, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	categoryID, err := ensureCategory(ctx, tx, data.Category)
	if err != nil {
		return domain.Article{}, false, fmt.Errorf("resolve category: %w", err)
	}

	authorID, err := ensureAuthor(ctx, tx, data.Author)
	if err != nil {
		return domain.Article{}, false, fmt.Errorf("resolve author: %w", err)
	}

	title := data.Title
	if title == "" {
		title = "Untitled"
	}

	publishedAt := s.now().UTC()
	if data.PublishedAt != nil {
		publishedAt = data.PublishedAt.UTC()
	}

	hash := ContentHash(data)

	query, args, err := psql.Insert("articles").
		Columns("title", "content", "summary", "url", "image_url", "published_at",
			"news_source_id", "category_id", "author_id", "content_hash", "external_id").
		Values(title, nullString(data.Content), nullString(data.Summary),
			nullString(data.URL), nullString(data.ImageURL), publishedAt,
			source.ID, categoryID, authorID, hash, nullString(data.ExternalID)).
		Suffix("ON CONFLICT (content_hash) DO NOTHING RETURNING " + columnList(articleColumns)).
		ToSql()
	if err != nil {
		return domain.Article{}, false, fmt.Errorf("build insert: %w", err)
	}

	var row dbArticle
	err = tx.GetContext(ctx, &row, query, args...)
	created := true

	if errors.Is(err, sql.ErrNoRows) {
		// Duplicate fetch: the hash already maps to a stored row.
		created = false
		selQuery, selArgs, selErr := psql.Select(articleColumns...).
			From("articles").
			Where(sq.Eq{"content_hash": hash}).
			ToSql()
		if selErr != nil {
			return domain.Article{}, false, fmt.Errorf("build select: %w", selErr)
		}
		err = tx.GetContext(ctx, &row, selQuery, selArgs...)
	}
	if err != nil {
		return domain.Article{}, false, fmt.Errorf("upsert article: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Article{}, false, fmt.Errorf("commit tx: %w", err)
	}

	return row.toDomain(), created, nil
}

// ensureCategory resolves or creates a category by slug; the insert is
// protected by the unique constraint so concurrent first writers cannot
// race into duplicate rows. First write wins on descriptive fields.
func ensureCategory(ctx context.Context, tx *sqlx.Tx, data *domain.CategoryData) (sql.NullInt64, error) {
	if data == nil || data.Slug == "" {
		return sql.NullInt64{}, nil
	}

	name := data.Name
	if name == "" {
		name = data.Slug
	}

	query, args, err := psql.Insert("categories").
		Columns("slug", "name", "pillar", "external_id").
		Values(data.Slug, name, nullString(data.Pillar), nullString(data.ExternalID)).
		Suffix("ON CONFLICT (slug) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	err = tx.GetContext(ctx, &id, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		selQuery, selArgs, selErr := psql.Select("id").From("categories").Where(sq.Eq{"slug": data.Slug}).ToSql()
		if selErr != nil {
			return sql.NullInt64{}, fmt.Errorf("build select: %w", selErr)
		}
		err = tx.GetContext(ctx, &id, selQuery, selArgs...)
	}
	if err != nil {
		return sql.NullInt64{}, err
	}

	return sql.NullInt64{Int64: id, Valid: true}, nil
}

// ensureAuthor resolves or creates an author by slug when a non-empty
// name is present, same policy as ensureCategory.
func ensureAuthor(ctx context.Context, tx *sqlx.Tx, data *domain.AuthorData) (sql.NullInt64, error) {
	if data == nil || data.Name == "" || data.Slug == "" {
		return sql.NullInt64{}, nil
	}

	query, args, err := psql.Insert("authors").
		Columns("slug", "name", "bio", "profile_url").
		Values(data.Slug, data.Name, nullString(data.Bio), nullString(data.ProfileURL)).
		Suffix("ON CONFLICT (slug) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	err = tx.GetContext(ctx, &id, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		selQuery, selArgs, selErr := psql.Select("id").From("authors").Where(sq.Eq{"slug": data.Slug}).ToSql()
		if selErr != nil {
			return sql.NullInt64{}, fmt.Errorf("build select: %w", selErr)
		}
		err = tx.GetContext(ctx, &id, selQuery, selArgs...)
	}
	if err != nil {
		return sql.NullInt64{}, err
	}

	return sql.NullInt64{Int64: id, Valid: true}, nil
}
