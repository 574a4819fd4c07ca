package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsAggregator/internal/domain"
	"NewsAggregator/internal/ports"
	"NewsAggregator/internal/provider"
)

const (
	userAgent      = "NewsAggregator/1.0"
	requestTimeout = 30 * time.Second
)

func defaultClient(client *http.Client) *http.Client {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return client
}

// getJSON issues a provider GET and decodes the JSON body. A non-2xx
// status becomes an APIError carrying the provider's error body.
func getJSON(ctx context.Context, client *http.Client, providerName, endpoint string, query url.Values, header http.Header, out any) error {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %s: %w", endpoint, err)
	}

	merged := parsed.Query()
	for key, values := range query {
		for _, value := range values {
			merged.Set(key, value)
		}
	}
	parsed.RawQuery = merged.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for key, values := range header {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", providerName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s read response: %w", providerName, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &provider.APIError{Provider: providerName, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s decode response: %w", providerName, err)
	}

	return nil
}

// envelopeError reports a provider error envelope inside a 2xx response.
func envelopeError(providerName string, payload any) error {
	body, _ := json.Marshal(payload)
	return &provider.APIError{Provider: providerName, StatusCode: http.StatusOK, Body: string(body)}
}

// persistAll forwards transformed items to the article store and tallies
// the outcome. Duplicates resolve to their existing row and count as
// skipped; any store failure aborts the batch.
func persistAll(ctx context.Context, store ports.ArticleStore, source domain.NewsSource, batch []domain.ArticleData) (provider.FetchResult, error) {
	result := provider.FetchResult{Fetched: len(batch)}

	for _, data := range batch {
		article, created, err := store.StoreArticle(ctx, data, source)
		if err != nil {
			return provider.FetchResult{}, fmt.Errorf("store article %q: %w", data.URL, err)
		}

		if created {
			result.Stored++
		} else {
			result.Skipped++
		}
		result.Articles = append(result.Articles, article)
	}

	return result, nil
}

// apiKey picks the per-source key, falling back to the process-wide
// default configured for the provider type.
func apiKey(sourceKey, fallback string) string {
	if sourceKey != "" {
		return sourceKey
	}
	return fallback
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime accepts the publish-date formats seen across providers and
// returns nil when the value is absent or unparseable; the store then
// falls back to the ingestion time.
func parseTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}

	return nil
}
