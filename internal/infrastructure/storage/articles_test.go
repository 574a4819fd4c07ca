package storage

import (
	"testing"

	"NewsAggregator/internal/domain"
)

func TestContentHashPrefersExternalID(t *testing.T) {
	t.Parallel()

	withBoth := domain.ArticleData{ExternalID: "ext-1", URL: "https://example.org/a"}
	onlyID := domain.ArticleData{ExternalID: "ext-1"}

	if ContentHash(withBoth) != ContentHash(onlyID) {
		t.Fatalf("hash must key on external id when present")
	}

	otherURL := domain.ArticleData{ExternalID: "ext-1", URL: "https://example.org/b"}
	if ContentHash(withBoth) != ContentHash(otherURL) {
		t.Fatalf("url must not affect the hash when an external id exists")
	}
}

func TestContentHashURLFallback(t *testing.T) {
	t.Parallel()

	a := domain.ArticleData{URL: "https://example.org/a"}
	b := domain.ArticleData{URL: "https://example.org/a"}
	c := domain.ArticleData{URL: "https://example.org/c"}

	if ContentHash(a) != ContentHash(b) {
		t.Fatalf("same url must hash identically")
	}
	if ContentHash(a) == ContentHash(c) {
		t.Fatalf("different urls must hash differently")
	}
}

func TestContentHashRandomFallback(t *testing.T) {
	t.Parallel()

	first := ContentHash(domain.ArticleData{})
	second := ContentHash(domain.ArticleData{})

	if len(first) != 64 || len(second) != 64 {
		t.Fatalf("hash must be 64 hex chars, got %d/%d", len(first), len(second))
	}
	if first == second {
		t.Fatalf("empty items must not collide on the random fallback")
	}
}

func TestContentHashStableLength(t *testing.T) {
	t.Parallel()

	if got := ContentHash(domain.ArticleData{ExternalID: "x"}); len(got) != 64 {
		t.Fatalf("hash must be 64 hex chars, got %d", len(got))
	}
}
