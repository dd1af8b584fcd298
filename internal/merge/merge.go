package merge

import (
	"net/url"
	"strings"

	"github.com/psyduck-osint/psyduck/internal/models"
)

// Query parameters stripped during normalization.
var trackingParams = map[string]bool{
	"gclid":  true,
	"fbclid": true,
	"ref":    true,
	"source": true,
}

// NormalizeURL canonicalizes a result URL for identity comparison:
// scheme and host lowercased, default port dropped, tracking parameters
// removed, fragment dropped, trailing slash trimmed. Unparsable input is
// returned trimmed so records without a clean URL still dedup by string.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	host := strings.ToLower(parsed.Host)
	switch {
	case parsed.Scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case parsed.Scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}
	parsed.Host = host
	parsed.Fragment = ""

	query := parsed.Query()
	for param := range query {
		if trackingParams[param] || strings.HasPrefix(param, "utm_") {
			query.Del(param)
		}
	}
	parsed.RawQuery = query.Encode()

	parsed.Path = strings.TrimSuffix(parsed.Path, "/")

	return parsed.String()
}

// Dedupe collapses records that share a normalized URL. The record with the
// highest completed stage wins; on equal depth the earliest ScrapedAt wins.
// Output preserves first-discovery order.
func Dedupe(records []models.Record) []models.Record {
	type slot struct {
		index  int
		record models.Record
	}

	byURL := make(map[string]*slot, len(records))
	order := make([]string, 0, len(records))

	for _, rec := range records {
		key := NormalizeURL(rec.URL)
		existing, ok := byURL[key]
		if !ok {
			byURL[key] = &slot{index: len(order), record: rec}
			order = append(order, key)
			continue
		}
		if better(rec, existing.record) {
			existing.record = rec
		}
	}

	out := make([]models.Record, 0, len(order))
	for _, key := range order {
		out = append(out, byURL[key].record)
	}
	return out
}

// better reports whether a should replace b for the same normalized URL.
func better(a, b models.Record) bool {
	if a.CompletedStage != b.CompletedStage {
		return a.CompletedStage > b.CompletedStage
	}
	return a.ScrapedAt.Before(b.ScrapedAt)
}
