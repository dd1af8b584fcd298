package models

import (
	"fmt"
	"time"
)

// Default request parameters.
const (
	DefaultTargetResults  = 10
	DefaultTimeoutSeconds = 900
)

// ScrapeRequest is a fully interpreted scrape instruction. It is built once
// by the interpreter and not mutated afterward.
type ScrapeRequest struct {
	ID             string    `json:"id"`              // run ID (UUID)
	RawInstruction string    `json:"raw_instruction"` // user input as given
	SearchTerm     string    `json:"search_term"`     // term submitted to engines
	TargetResults  int       `json:"target_results"`  // requested result count (best effort)
	PlatformSpec   string    `json:"platform_spec"`   // platform expression, "" = any
	Depth          Stage     `json:"depth"`           // requested crawl depth
	TimeoutSeconds int       `json:"timeout_seconds"` // shared wall-clock budget
	CreatedAt      time.Time `json:"created_at"`
}

// Validate checks the request bounds.
func (r *ScrapeRequest) Validate() error {
	if r.SearchTerm == "" {
		return fmt.Errorf("search term must not be empty")
	}
	if r.TargetResults < 1 {
		return fmt.Errorf("target results must be at least 1, got %d", r.TargetResults)
	}
	if !r.Depth.Valid() {
		return fmt.Errorf("depth must be between 0 and 3, got %d", int(r.Depth))
	}
	if r.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", r.TimeoutSeconds)
	}
	return nil
}

// NewScrapeRequest builds a request with defaults applied and validated.
func NewScrapeRequest(raw, term string, results int, platformSpec string, depth Stage, timeoutSeconds int) (*ScrapeRequest, error) {
	if results == 0 {
		results = DefaultTargetResults
	}
	if timeoutSeconds == 0 {
		timeoutSeconds = DefaultTimeoutSeconds
	}
	req := &ScrapeRequest{
		ID:             generateID(),
		RawInstruction: raw,
		SearchTerm:     term,
		TargetResults:  results,
		PlatformSpec:   platformSpec,
		Depth:          depth,
		TimeoutSeconds: timeoutSeconds,
		CreatedAt:      time.Now(),
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Timeout returns the wall-clock budget as a duration.
func (r *ScrapeRequest) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// PlatformTarget is one resolved search destination. Entry selects how the
// listing is produced.
type PlatformTarget struct {
	Name      string `json:"name"`       // platform name (reddit, medium, ...)
	Engine    string `json:"engine"`     // engine serving the search
	Entry     string `json:"entry"`      // "browser" or "static"
	SiteScope string `json:"site_scope"` // site: filter appended to the term, "" for none
}

// Entry strategies.
const (
	EntryBrowser = "browser"
	EntryStatic  = "static"
)
