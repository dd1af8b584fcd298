package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/psyduck-osint/psyduck/internal/models"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTPS://Example.COM/Path", "https://example.com/Path"},
		{"strips default https port", "https://example.com:443/a", "https://example.com/a"},
		{"strips default http port", "http://example.com:80/a", "http://example.com/a"},
		{"keeps explicit port", "https://example.com:8443/a", "https://example.com:8443/a"},
		{"drops fragment", "https://example.com/a#section", "https://example.com/a"},
		{"trims trailing slash", "https://example.com/a/", "https://example.com/a"},
		{"removes utm params", "https://example.com/a?utm_source=x&utm_medium=y&id=7", "https://example.com/a?id=7"},
		{"removes click ids", "https://example.com/a?gclid=123&fbclid=456", "https://example.com/a"},
		{"removes ref and source", "https://example.com/a?ref=feed&source=rss&q=1", "https://example.com/a?q=1"},
		{"unparsable passes through trimmed", "  not a url  ", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.in))
		})
	}
}

func TestDedupe_UniqueURLs(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	records := []models.Record{
		{URL: "https://example.com/a", Rank: 1, ScrapedAt: base},
		{URL: "https://example.com/b", Rank: 2, ScrapedAt: base},
		{URL: "https://example.com/a?utm_source=x", Rank: 3, ScrapedAt: base.Add(time.Minute)},
	}

	out := Dedupe(records)

	assert.Len(t, out, 2)
	seen := map[string]bool{}
	for _, r := range out {
		key := NormalizeURL(r.URL)
		assert.False(t, seen[key], "duplicate normalized URL %s", key)
		seen[key] = true
	}
}

func TestDedupe_HigherStageWins(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	records := []models.Record{
		{URL: "https://example.com/a", CompletedStage: models.StageLinksOnly, ScrapedAt: base},
		{URL: "https://example.com/a", CompletedStage: models.StageDiscussion, Summary: "deep", ScrapedAt: base.Add(time.Hour)},
	}

	out := Dedupe(records)

	assert.Len(t, out, 1)
	assert.Equal(t, models.StageDiscussion, out[0].CompletedStage)
	assert.Equal(t, "deep", out[0].Summary)
}

func TestDedupe_TieBreaksOnEarliestScrape(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	records := []models.Record{
		{URL: "https://example.com/a", Title: "later", CompletedStage: models.StageMetadata, ScrapedAt: base.Add(time.Hour)},
		{URL: "https://example.com/a", Title: "earlier", CompletedStage: models.StageMetadata, ScrapedAt: base},
	}

	out := Dedupe(records)

	assert.Len(t, out, 1)
	assert.Equal(t, "earlier", out[0].Title)
}

func TestDedupe_PreservesDiscoveryOrder(t *testing.T) {
	records := []models.Record{
		{URL: "https://example.com/c"},
		{URL: "https://example.com/a"},
		{URL: "https://example.com/b"},
		{URL: "https://example.com/a"},
	}

	out := Dedupe(records)

	assert.Equal(t, []string{"https://example.com/c", "https://example.com/a", "https://example.com/b"},
		[]string{out[0].URL, out[1].URL, out[2].URL})
}
