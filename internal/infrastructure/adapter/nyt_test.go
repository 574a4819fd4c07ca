package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"NewsAggregator/internal/domain"
	"NewsAggregator/internal/provider"
)

func TestNYTFetchArticles(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/topstories/v2/science.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("api-key") != "nyt-key" {
			t.Errorf("missing api-key param")
		}

		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [
				{"title": "One", "abstract": "a", "url": "https://nyt.example/1", "uri": "nyt://article/1", "section": "science", "published_date": "2026-08-30T07:00:00Z"},
				{"title": "Two", "abstract": "b", "url": "https://nyt.example/2", "uri": "nyt://article/2", "section": "science", "published_date": "2026-08-30T07:05:00Z"},
				{"title": "Three", "abstract": "c", "url": "https://nyt.example/3", "uri": "nyt://article/3", "section": "science", "published_date": "2026-08-30T07:10:00Z"}
			]
		}`))
	}))
	defer server.Close()

	store := newFakeStore()
	a := NewNYT(server.Client(), store, testLogger(), "nyt-key")
	source := domain.NewsSource{ID: 3, Slug: "new-york-times", BaseURL: server.URL}

	result, err := a.FetchArticles(context.Background(), source, provider.FetchRequest{Query: "science", Limit: 2})
	if err != nil {
		t.Fatalf("FetchArticles error: %v", err)
	}

	// Top Stories has no server-side limit; the adapter truncates locally.
	if result.Fetched != 2 || result.Stored != 2 {
		t.Fatalf("unexpected counts: %+v", result)
	}
}

func TestNYTErrorEnvelope(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ERROR"}`))
	}))
	defer server.Close()

	a := NewNYT(server.Client(), newFakeStore(), testLogger(), "bad")
	_, err := a.FetchArticles(context.Background(), domain.NewsSource{BaseURL: server.URL}, provider.FetchRequest{})

	var apiErr *provider.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
}

func TestNYTTransform(t *testing.T) {
	t.Parallel()

	a := NewNYT(nil, nil, testLogger(), "")
	raw := nytArticle{
		Section:       "World",
		Title:         "Big story",
		Abstract:      "<p>What happened today</p>",
		URL:           "https://nyt.example/big",
		URI:           "nyt://article/big",
		Byline:        "By John Doe",
		PublishedDate: "2026-08-30T06:00:00Z",
		Multimedia: []nytMultimedia{
			{URL: "https://img.example/thumb.jpg", Format: "thumbLarge"},
			{URL: "https://img.example/super.jpg", Format: "superJumbo"},
		},
	}

	data := a.Transform(raw)

	if data.Author == nil || data.Author.Name != "John Doe" || data.Author.Slug != "john-doe" {
		t.Fatalf("byline prefix must be stripped: %+v", data.Author)
	}
	if data.ImageURL != "https://img.example/super.jpg" {
		t.Fatalf("superJumbo rendition must win: %q", data.ImageURL)
	}
	if data.Category == nil || data.Category.Slug != "world" {
		t.Fatalf("unexpected category: %+v", data.Category)
	}
	if data.ExternalID != "nyt://article/big" {
		t.Fatalf("uri must become the external id: %q", data.ExternalID)
	}
	if data.Content != "What happened today" {
		t.Fatalf("abstract html not stripped: %q", data.Content)
	}

	if !reflect.DeepEqual(data, a.Transform(raw)) {
		t.Fatalf("transform must be deterministic")
	}
}

func TestNYTTransformImageFallback(t *testing.T) {
	t.Parallel()

	a := NewNYT(nil, nil, testLogger(), "")
	raw := nytArticle{
		Title:      "No jumbo",
		URL:        "https://nyt.example/x",
		Multimedia: []nytMultimedia{{URL: "https://img.example/first.jpg", Format: "mediumThreeByTwo"}},
	}

	if data := a.Transform(raw); data.ImageURL != "https://img.example/first.jpg" {
		t.Fatalf("first rendition must be the fallback: %q", data.ImageURL)
	}

	raw.Multimedia = nil
	if data := a.Transform(raw); data.ImageURL != "" {
		t.Fatalf("no multimedia must yield empty image url")
	}
}
