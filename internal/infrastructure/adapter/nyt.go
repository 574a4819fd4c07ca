package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/samber/lo"

	"NewsAggregator/internal/domain"
	"NewsAggregator/internal/ports"
	"NewsAggregator/internal/provider"
)

const nytDefaultSection = "world"

// NYT ingests articles from the New York Times Top Stories API.
type NYT struct {
	client      *http.Client
	store       ports.ArticleStore
	logger      *slog.Logger
	fallbackKey string
}

var _ provider.Provider = (*NYT)(nil)

// NewNYT wires the adapter; a nil client gets the 30s default.
func NewNYT(client *http.Client, store ports.ArticleStore, logger *slog.Logger, fallbackKey string) *NYT {
	return &NYT{
		client:      defaultClient(client),
		store:       store,
		logger:      logger,
		fallbackKey: fallbackKey,
	}
}

// Type identifies the adapter inside the registry.
func (a *NYT) Type() string {
	return domain.SourceTypeNYT
}

type nytResponse struct {
	Status  string       `json:"status"`
	Results []nytArticle `json:"results"`
}

type nytArticle struct {
	Section       string          `json:"section"`
	Title         string          `json:"title"`
	Abstract      string          `json:"abstract"`
	URL           string          `json:"url"`
	URI           string          `json:"uri"`
	Byline        string          `json:"byline"`
	PublishedDate string          `json:"published_date"`
	Multimedia    []nytMultimedia `json:"multimedia"`
}

type nytMultimedia struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

// FetchArticles pulls the top stories of one section and persists them.
// The query hint selects the section; Top Stories has no server-side
// limit, so the result list is truncated locally.
func (a *NYT) FetchArticles(ctx context.Context, source domain.NewsSource, req provider.FetchRequest) (provider.FetchResult, error) {
	section := req.Query
	if section == "" {
		section = nytDefaultSection
	}

	query := url.Values{}
	query.Set("api-key", apiKey(source.APIKey, a.fallbackKey))

	endpoint := fmt.Sprintf("%s/topstories/v2/%s.json", strings.TrimRight(source.BaseURL, "/"), section)

	var envelope nytResponse
	if err := getJSON(ctx, a.client, "NYT", endpoint, query, nil, &envelope); err != nil {
		return provider.FetchResult{}, err
	}

	if envelope.Status != "OK" {
		return provider.FetchResult{}, envelopeError("NYT", envelope)
	}

	results := envelope.Results
	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}

	a.logger.Debug("provider returned items", "provider", a.Type(), "source", source.Slug, "count", len(results))

	batch := lo.Map(results, func(item nytArticle, _ int) domain.ArticleData {
		return a.Transform(item)
	})

	return persistAll(ctx, a.store, source, batch)
}

// Transform maps a raw NYT item into canonical article fields. The image
// prefers the superJumbo rendition, falling back to the first offered.
func (a *NYT) Transform(raw nytArticle) domain.ArticleData {
	var author *domain.AuthorData
	if name := extractByline(raw.Byline); name != "" {
		author = &domain.AuthorData{Slug: slugify(name), Name: name}
	}

	sectionName := raw.Section
	if sectionName == "" {
		sectionName = "General"
	}
	category := &domain.CategoryData{
		Slug:       slugify(sectionName),
		Name:       sectionName,
		ExternalID: slugify(sectionName),
	}

	var image string
	if len(raw.Multimedia) > 0 {
		preferred, ok := lo.Find(raw.Multimedia, func(m nytMultimedia) bool { return m.Format == "superJumbo" })
		if !ok {
			preferred = raw.Multimedia[0]
		}
		image = preferred.URL
	}

	return domain.ArticleData{
		Title:       stripHTML(raw.Title),
		Content:     stripHTML(raw.Abstract),
		Summary:     clipSummary(raw.Abstract),
		URL:         raw.URL,
		ImageURL:    image,
		PublishedAt: parseTime(raw.PublishedDate),
		ExternalID:  raw.URI,
		Author:      author,
		Category:    category,
	}
}
