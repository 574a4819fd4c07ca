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

const guardianDefaultLimit = 20

// Guardian ingests articles from the Guardian Content API.
type Guardian struct {
	client      *http.Client
	store       ports.ArticleStore
	logger      *slog.Logger
	fallbackKey string
}

var _ provider.Provider = (*Guardian)(nil)

// NewGuardian wires the adapter; a nil client gets the 30s default.
func NewGuardian(client *http.Client, store ports.ArticleStore, logger *slog.Logger, fallbackKey string) *Guardian {
	return &Guardian{
		client:      defaultClient(client),
		store:       store,
		logger:      logger,
		fallbackKey: fallbackKey,
	}
}

// Type identifies the adapter inside the registry.
func (a *Guardian) Type() string {
	return domain.SourceTypeGuardian
}

type guardianEnvelope struct {
	Response guardianResponse `json:"response"`
}

type guardianResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Results []guardianItem `json:"results"`
}

type guardianItem struct {
	ID                 string `json:"id"`
	SectionID          string `json:"sectionId"`
	SectionName        string `json:"sectionName"`
	WebPublicationDate string `json:"webPublicationDate"`
	WebTitle           string `json:"webTitle"`
	WebURL             string `json:"webUrl"`
	Fields             struct {
		Headline  string `json:"headline"`
		TrailText string `json:"trailText"`
		Body      string `json:"body"`
		Thumbnail string `json:"thumbnail"`
	} `json:"fields"`
	Tags []guardianTag `json:"tags"`
}

type guardianTag struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	WebTitle string `json:"webTitle"`
	WebURL   string `json:"webUrl"`
	Bio      string `json:"bio"`
}

// FetchArticles searches the content API and persists each result.
func (a *Guardian) FetchArticles(ctx context.Context, source domain.NewsSource, req provider.FetchRequest) (provider.FetchResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = guardianDefaultLimit
	}

	query := url.Values{}
	query.Set("api-key", apiKey(source.APIKey, a.fallbackKey))
	query.Set("page-size", strconv.Itoa(limit))
	query.Set("show-fields", "headline,trailText,body,thumbnail")
	query.Set("show-tags", "contributor")
	query.Set("order-by", "newest")
	if req.Query != "" {
		query.Set("q", req.Query)
	}

	endpoint := strings.TrimRight(source.BaseURL, "/") + "/search"

	var envelope guardianEnvelope
	if err := getJSON(ctx, a.client, "Guardian", endpoint, query, nil, &envelope); err != nil {
		return provider.FetchResult{}, err
	}

	if envelope.Response.Status != "ok" {
		return provider.FetchResult{}, envelopeError("Guardian", envelope.Response)
	}

	a.logger.Debug("provider returned items", "provider", a.Type(), "source", source.Slug, "count", len(envelope.Response.Results))

	batch := lo.Map(envelope.Response.Results, func(item guardianItem, _ int) domain.ArticleData {
		return a.Transform(item)
	})

	return persistAll(ctx, a.store, source, batch)
}

// Transform maps a raw Guardian item into canonical article fields. The
// author comes from the first contributor tag on the item.
func (a *Guardian) Transform(raw guardianItem) domain.ArticleData {
	title := stripHTML(raw.Fields.Headline)
	if title == "" {
		title = stripHTML(raw.WebTitle)
	}

	var author *domain.AuthorData
	if tag, ok := lo.Find(raw.Tags, func(t guardianTag) bool { return t.Type == "contributor" }); ok {
		name := strings.TrimSpace(tag.WebTitle)
		if name != "" {
			author = &domain.AuthorData{
				Slug:       slugify(name),
				Name:       name,
				Bio:        stripHTML(tag.Bio),
				ProfileURL: tag.WebURL,
			}
		}
	}

	var category *domain.CategoryData
	if raw.SectionID != "" || raw.SectionName != "" {
		slug := raw.SectionID
		if slug == "" {
			slug = slugify(raw.SectionName)
		}
		name := raw.SectionName
		if name == "" {
			name = raw.SectionID
		}
		category = &domain.CategoryData{Slug: slug, Name: name, ExternalID: raw.SectionID}
	}

	return domain.ArticleData{
		Title:       title,
		Content:     stripHTML(raw.Fields.Body),
		Summary:     clipSummary(raw.Fields.TrailText),
		URL:         raw.WebURL,
		ImageURL:    raw.Fields.Thumbnail,
		PublishedAt: parseTime(raw.WebPublicationDate),
		ExternalID:  raw.ID,
		Author:      author,
		Category:    category,
	}
}
