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

const newsAPIDefaultLimit = 20

// NewsAPI ingests articles from the NewsAPI.org "everything" endpoint.
type NewsAPI struct {
	client      *http.Client
	store       ports.ArticleStore
	logger      *slog.Logger
	fallbackKey string
}

var _ provider.Provider = (*NewsAPI)(nil)

// NewNewsAPI wires the adapter; a nil client gets the 30s default.
func NewNewsAPI(client *http.Client, store ports.ArticleStore, logger *slog.Logger, fallbackKey string) *NewsAPI {
	return &NewsAPI{
		client:      defaultClient(client),
		store:       store,
		logger:      logger,
		fallbackKey: fallbackKey,
	}
}

// Type identifies the adapter inside the registry.
func (a *NewsAPI) Type() string {
	return domain.SourceTypeNewsAPI
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

// FetchArticles pulls one page from /everything and persists each item.
func (a *NewsAPI) FetchArticles(ctx context.Context, source domain.NewsSource, req provider.FetchRequest) (provider.FetchResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = newsAPIDefaultLimit
	}

	query := url.Values{}
	query.Set("language", "en")
	query.Set("sortBy", "publishedAt")
	query.Set("pageSize", strconv.Itoa(limit))
	query.Set("page", "1")
	if req.Query != "" {
		query.Set("q", req.Query)
	}

	header := http.Header{}
	header.Set("X-API-Key", apiKey(source.APIKey, a.fallbackKey))

	endpoint := strings.TrimRight(source.BaseURL, "/") + "/everything"

	var envelope newsAPIResponse
	if err := getJSON(ctx, a.client, "NewsAPI", endpoint, query, header, &envelope); err != nil {
		return provider.FetchResult{}, err
	}

	if envelope.Status != "ok" {
		return provider.FetchResult{}, envelopeError("NewsAPI", envelope)
	}

	a.logger.Debug("provider returned items", "provider", a.Type(), "source", source.Slug, "count", len(envelope.Articles))

	batch := lo.Map(envelope.Articles, func(item newsAPIArticle, _ int) domain.ArticleData {
		return a.Transform(item)
	})

	return persistAll(ctx, a.store, source, batch)
}

// Transform maps a raw NewsAPI item into canonical article fields. NewsAPI
// omits a stable item id, so the store dedups on the article URL.
func (a *NewsAPI) Transform(raw newsAPIArticle) domain.ArticleData {
	var author *domain.AuthorData
	if name := extractByline(raw.Author); name != "" {
		author = &domain.AuthorData{Slug: slugify(name), Name: name}
	}

	return domain.ArticleData{
		Title:       stripHTML(raw.Title),
		Content:     stripHTML(raw.Content),
		Summary:     clipSummary(raw.Description),
		URL:         raw.URL,
		ImageURL:    raw.URLToImage,
		PublishedAt: parseTime(raw.PublishedAt),
		Author:      author,
	}
}
