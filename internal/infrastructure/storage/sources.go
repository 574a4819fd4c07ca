package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"NewsAggregator/internal/domain"
	"NewsAggregator/internal/ports"
)

var sourceColumns = []string{
	"id", "name", "slug", "source_type", "base_url", "api_key", "is_active",
	"last_fetched_at", "total_articles_fetched", "created_at", "updated_at",
}

// SourceStore manages NewsSource rows. Sources are soft-deleted only, so
// every query filters on deleted_at.
type SourceStore struct {
	db *sqlx.DB
}

var _ ports.SourceRepository = (*SourceStore)(nil)

// NewSourceStore wires the store.
func NewSourceStore(db *sqlx.DB) *SourceStore {
	return &SourceStore{db: db}
}

type dbSource struct {
	ID                   int64          `db:"id"`
	Name                 string         `db:"name"`
	Slug                 string         `db:"slug"`
	SourceType           string         `db:"source_type"`
	BaseURL              sql.NullString `db:"base_url"`
	APIKey               sql.NullString `db:"api_key"`
	IsActive             bool           `db:"is_active"`
	LastFetchedAt        sql.NullTime   `db:"last_fetched_at"`
	TotalArticlesFetched int            `db:"total_articles_fetched"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

func (s dbSource) toDomain() domain.NewsSource {
	source := domain.NewsSource{
		ID:                   s.ID,
		Name:                 s.Name,
		Slug:                 s.Slug,
		SourceType:           s.SourceType,
		BaseURL:              s.BaseURL.String,
		APIKey:               s.APIKey.String,
		IsActive:             s.IsActive,
		TotalArticlesFetched: s.TotalArticlesFetched,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
	if s.LastFetchedAt.Valid {
		at := s.LastFetchedAt.Time
		source.LastFetchedAt = &at
	}
	return source
}

// ActiveSources lists every active, non-deleted source.
func (s *SourceStore) ActiveSources(ctx context.Context) ([]domain.NewsSource, error) {
	query, args, err := psql.Select(sourceColumns...).
		From("news_sources").
		Where(sq.Eq{"is_active": true, "deleted_at": nil}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []dbSource
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select active sources: %w", err)
	}

	return lo.Map(rows, func(row dbSource, _ int) domain.NewsSource { return row.toDomain() }), nil
}

// SourceByID loads one source row.
func (s *SourceStore) SourceByID(ctx context.Context, id int64) (domain.NewsSource, error) {
	query, args, err := psql.Select(sourceColumns...).
		From("news_sources").
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return domain.NewsSource{}, fmt.Errorf("build select: %w", err)
	}

	var row dbSource
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewsSource{}, fmt.Errorf("source %d: %w", id, ErrNotFound)
		}
		return domain.NewsSource{}, fmt.Errorf("select source %d: %w", id, err)
	}

	return row.toDomain(), nil
}

// FindBySelector matches a source by name, slug or source type, mirroring
// the admin CLI's loose source lookup.
func (s *SourceStore) FindBySelector(ctx context.Context, selector string) (domain.NewsSource, error) {
	query, args, err := psql.Select(sourceColumns...).
		From("news_sources").
		Where(sq.And{
			sq.Eq{"deleted_at": nil},
			sq.Or{
				sq.Eq{"name": selector},
				sq.Eq{"slug": selector},
				sq.Eq{"source_type": selector},
			},
		}).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return domain.NewsSource{}, fmt.Errorf("build select: %w", err)
	}

	var row dbSource
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewsSource{}, fmt.Errorf("source %q: %w", selector, ErrNotFound)
		}
		return domain.NewsSource{}, fmt.Errorf("select source %q: %w", selector, err)
	}

	return row.toDomain(), nil
}

// MarkFetched bumps last_fetched_at and the running article counter after
// a completed fetch job.
func (s *SourceStore) MarkFetched(ctx context.Context, id int64, stored int, at time.Time) error {
	query, args, err := psql.Update("news_sources").
		Set("last_fetched_at", at.UTC()).
		Set("total_articles_fetched", sq.Expr("total_articles_fetched + ?", stored)).
		Set("updated_at", at.UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark source %d fetched: %w", id, err)
	}

	return nil
}

// Seed inserts the configured stock sources, keyed by unique slug so a
// restart never duplicates them.
func (s *SourceStore) Seed(ctx context.Context, sources []domain.NewsSource) error {
	for _, src := range sources {
		query, args, err := psql.Insert("news_sources").
			Columns("name", "slug", "source_type", "base_url", "api_key", "is_active").
			Values(src.Name, src.Slug, src.SourceType, nullString(src.BaseURL), nullString(src.APIKey), src.IsActive).
			Suffix("ON CONFLICT (slug) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}

		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed source %s: %w", src.Slug, err)
		}
	}

	return nil
}
