package adapter

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"NewsAggregator/internal/domain"
	"NewsAggregator/internal/ports"
	"NewsAggregator/internal/provider"
)

const openNewsDefaultLimit = 20

// OpenNews ingests articles from the OpenNews aggregation API.
type OpenNews struct {
	client      *http.Client
	store       ports.ArticleStore
	logger      *slog.Logger
	fallbackKey string
}

var _ provider.Provider = (*OpenNews)(nil)

// NewOpenNews wires the adapter; a nil client gets the 30s default.
func NewOpenNews(client *http.Client, store ports.ArticleStore, logger *slog.Logger, fallbackKey string) *OpenNews {
	return &OpenNews{
		client:      defaultClient(client),
		store:       store,
		logger:      logger,
		fallbackKey: fallbackKey,
	}
}

// Type identifies the adapter inside the registry.
func (a *OpenNews) Type() string {
	return domain.SourceTypeOpenNews
}

type openNewsResponse struct {
	Status   string            `json:"status"`
	Message  string            `json:"message"`
	Articles []openNewsArticle `json:"articles"`
}

type openNewsArticle struct {
	Headline    string `json:"headline"`
	Body        string `json:"body"`
	Summary     string `json:"summary"`
	Link        string `json:"link"`
	Image       string `json:"image"`
	PublishedAt string `json:"published_at"`
	Author      string `json:"author"`
	Section     string `json:"section"`
}

// FetchArticles pulls one page of articles and persists each item.
// OpenNews authenticates with a bearer token instead of a key header.
func (a *OpenNews) FetchArticles(ctx context.Context, source domain.NewsSource, req provider.FetchRequest) (provider.FetchResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = openNewsDefaultLimit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("page", "1")
	if req.Query != "" {
		query.Set("q", req.Query)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+apiKey(source.APIKey, a.fallbackKey))

	endpoint := strings.TrimRight(source.BaseURL, "/") + "/articles"

	var envelope openNewsResponse
	if err := getJSON(ctx, a.client, "OpenNews", endpoint, query, header, &envelope); err != nil {
		return provider.FetchResult{}, err
	}

	if envelope.Status != "ok" {
		return provider.FetchResult{}, envelopeError("OpenNews", envelope)
	}

	a.logger.Debug("provider returned items", "provider", a.Type(), "source", source.Slug, "count", len(envelope.Articles))

	batch := lo.Map(envelope.Articles, func(item openNewsArticle, _ int) domain.ArticleData {
		return a.Transform(item)
	})

	return persistAll(ctx, a.store, source, batch)
}

// Transform maps a raw OpenNews item into canonical article fields.
func (a *OpenNews) Transform(raw openNewsArticle) domain.ArticleData {
	var author *domain.AuthorData
	if name := extractByline(raw.Author); name != "" {
		author = &domain.AuthorData{Slug: slugify(name), Name: name}
	}

	var category *domain.CategoryData
	if raw.Section != "" {
		category = &domain.CategoryData{Slug: slugify(raw.Section), Name: raw.Section}
	}

	return domain.ArticleData{
		Title:       stripHTML(raw.Headline),
		Content:     stripHTML(raw.Body),
		Summary:     clipSummary(raw.Summary),
		URL:         raw.Link,
		ImageURL:    raw.Image,
		PublishedAt: parseTime(raw.PublishedAt),
		Author:      author,
		Category:    category,
	}
}
