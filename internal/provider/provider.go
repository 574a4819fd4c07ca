package provider

import (
	"context"
	"fmt"
	"net/http"

	"NewsAggregator/internal/domain"
)

// FetchRequest carries the per-dispatch parameters handed to an adapter.
type FetchRequest struct {
	// Query is a free-text query or category hint, provider-interpreted.
	Query string
	// Limit bounds the number of items requested from the provider.
	Limit int
}

// FetchResult aggregates the outcome of one adapter run. Articles holds
// the resolved stored rows for every processed item, duplicates included.
type FetchResult struct {
	Articles []domain.Article
	Fetched  int
	Stored   int
	Skipped  int
}

// Provider is the capability interface implemented once per news API.
type Provider interface {
	// Type identifies the adapter inside the registry and matches the
	// source_type attribute on NewsSource rows.
	Type() string
	FetchArticles(ctx context.Context, source domain.NewsSource, req FetchRequest) (FetchResult, error)
}

// Registry keeps the closed mapping from source types to adapters.
// Adding a provider is a registration, never a conditional branch.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

// Register adds or replaces an adapter implementation.
func (r *Registry) Register(p Provider) {
	if r.providers == nil {
		r.providers = map[string]Provider{}
	}
	r.providers[p.Type()] = p
}

// Resolve returns the adapter for a source type or an error if absent.
func (r *Registry) Resolve(sourceType string) (Provider, error) {
	if p, ok := r.providers[sourceType]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no provider registered for source type %q", sourceType)
}

// APIError is a hard failure reported by a provider: a non-success HTTP
// status or an error envelope in an otherwise well-formed response.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API request failed (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// Transient reports whether the failure is worth retrying after a delay.
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusServiceUnavailable
}
