package adapter

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const summaryLimit = 280

var (
	bylinePrefix = regexp.MustCompile(`(?i)^by\s+`)
	slugInvalid  = regexp.MustCompile(`[^a-z0-9]+`)
)

// stripHTML flattens a provider-supplied HTML fragment to plain text.
func stripHTML(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if !strings.ContainsAny(trimmed, "<&") {
		return trimmed
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		return trimmed
	}

	return strings.TrimSpace(strings.Join(strings.Fields(doc.Text()), " "))
}

// clipSummary strips markup and clips the result to the summary limit,
// appending an ellipsis when content was cut. The limit counts runes, so
// a clip never splits a multi-byte character.
func clipSummary(value string) string {
	text := stripHTML(value)
	if len(text) <= summaryLimit {
		return text
	}

	runes := []rune(text)
	if len(runes) <= summaryLimit {
		return text
	}

	clipped := string(runes[:summaryLimit])
	if idx := strings.LastIndex(clipped, " "); idx > 0 {
		clipped = clipped[:idx]
	}
	return clipped + "..."
}

// slugify converts a display name into a URL-safe unique identifier.
func slugify(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	slug := slugInvalid.ReplaceAllString(lowered, "-")
	return strings.Trim(slug, "-")
}

// extractByline strips the leading "By " prefix from a provider byline.
func extractByline(byline string) string {
	return strings.TrimSpace(bylinePrefix.ReplaceAllString(strings.TrimSpace(byline), ""))
}
