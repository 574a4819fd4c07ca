package adapter

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"NewsAggregator/internal/domain"
	"NewsAggregator/internal/infrastructure/storage"
)

// fakeStore mimics the hash-deduplicating article store in memory.
type fakeStore struct {
	mu     sync.Mutex
	byHash map[string]domain.Article
	nextID int64
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{byHash: map[string]domain.Article{}}
}

func (f *fakeStore) StoreArticle(_ context.Context, data domain.ArticleData, source domain.NewsSource) (domain.Article, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return domain.Article{}, false, f.err
	}

	hash := storage.ContentHash(data)
	if existing, ok := f.byHash[hash]; ok {
		return existing, false, nil
	}

	f.nextID++
	publishedAt := time.Now().UTC()
	if data.PublishedAt != nil {
		publishedAt = *data.PublishedAt
	}

	article := domain.Article{
		ID:           f.nextID,
		Title:        data.Title,
		Content:      data.Content,
		Summary:      data.Summary,
		URL:          data.URL,
		ImageURL:     data.ImageURL,
		PublishedAt:  publishedAt,
		NewsSourceID: source.ID,
		ContentHash:  hash,
		ExternalID:   data.ExternalID,
	}
	f.byHash[hash] = article
	return article, true, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
