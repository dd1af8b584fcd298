package scrape

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gocolly/colly/v2"

	"github.com/psyduck-osint/psyduck/internal/logging"
	"github.com/psyduck-osint/psyduck/internal/models"
	"github.com/psyduck-osint/psyduck/internal/platforms"
	"github.com/psyduck-osint/psyduck/internal/vision"
)

// StaticSearcher reads search listings from the HTML-only DuckDuckGo
// endpoint. It serves as the fallback when no browser session is
// available, and needs no inference calls.
type StaticSearcher struct {
	userAgent string
}

// NewStaticSearcher creates the fallback searcher.
func NewStaticSearcher() *StaticSearcher {
	return &StaticSearcher{
		userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	}
}

// Search fetches up to limit listing entries for the target and term.
func (s *StaticSearcher) Search(target models.PlatformTarget, term string, limit int) ([]vision.ListingEntry, error) {
	c := colly.NewCollector(
		colly.UserAgent(s.userAgent),
		colly.AllowedDomains("html.duckduckgo.com", "duckduckgo.com"),
	)

	var entries []vision.ListingEntry

	c.OnHTML("div.result", func(e *colly.HTMLElement) {
		if len(entries) >= limit {
			return
		}
		link := e.ChildAttr("a.result__a", "href")
		resolved := resolveRedirect(link)
		if models.ValidateURL(resolved) != nil {
			return
		}
		entries = append(entries, vision.ListingEntry{
			Title:   strings.TrimSpace(e.ChildText("a.result__a")),
			URL:     resolved,
			Excerpt: strings.TrimSpace(e.ChildText("a.result__snippet")),
			Rank:    len(entries) + 1,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logging.Warnf("static search request failed [%s]: %v", r.Request.URL, err)
	})

	searchURL := platforms.StaticSearchURL(target, term)
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("static search %s: %w", searchURL, err)
	}
	c.Wait()

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// resolveRedirect unwraps the duckduckgo /l/?uddg= redirect links the HTML
// endpoint serves instead of direct destinations.
func resolveRedirect(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if uddg := parsed.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	if parsed.Host == "" {
		return ""
	}
	return href
}
