package models

import "time"

// Comment is a single discussion entry attached to a record.
// Text is filled at depth 2; Author/PostedAt/Likes at depth 3.
type Comment struct {
	Author   string `json:"author,omitempty"`    // commenter handle
	Text     string `json:"text"`                // comment body
	PostedAt string `json:"posted_at,omitempty"` // timestamp as shown on page
	Likes    string `json:"likes,omitempty"`     // like/upvote count as shown
}

// Record is one collected result. URL is the identity field; optional
// fields stay empty unless the run's depth reached the stage that owns them.
type Record struct {
	SearchTerm     string    `json:"search_term"`         // term that produced this result
	Engine         string    `json:"engine"`              // search engine that served the listing
	Platform       string    `json:"platform"`            // resolved platform name
	URL            string    `json:"url"`                 // result URL
	Title          string    `json:"title,omitempty"`     // depth >= 1
	Author         string    `json:"author,omitempty"`    // depth >= 1
	Date           string    `json:"date,omitempty"`      // depth >= 1, as shown on page
	Publisher      string    `json:"publisher,omitempty"` // depth >= 1
	Rank           int       `json:"rank"`                // 1-based position in its platform batch
	Excerpt        string    `json:"excerpt,omitempty"`   // listing snippet
	Summary        string    `json:"summary,omitempty"`   // depth >= 1
	HasComments    bool      `json:"has_comments"`        // depth >= 1 signal
	Comments       []Comment `json:"comments,omitempty"`  // depth >= 2
	ScrapedAt      time.Time `json:"scraped_at"`          // first collection time
	CompletedStage Stage     `json:"completed_stage"`     // deepest stage that succeeded
}
