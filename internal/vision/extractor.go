package vision

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/psyduck-osint/psyduck/internal/models"
	"github.com/psyduck-osint/psyduck/pkg/openai"
)

// ListingEntry is one organic result read off a search listing screenshot.
type ListingEntry struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Excerpt   string `json:"excerpt"`
	Publisher string `json:"publisher"`
	Date      string `json:"date"`
	Rank      int    `json:"rank"`
}

// PageSummary is the depth-1 extraction of a rendered page.
type PageSummary struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Date        string `json:"date"`
	Publisher   string `json:"publisher"`
	Summary     string `json:"summary"`
	HasComments bool   `json:"has_comments"`
}

// CommentMeta is the depth-3 metadata for one comment, aligned by order.
type CommentMeta struct {
	Author   string `json:"author"`
	PostedAt string `json:"posted_at"`
	Likes    string `json:"likes"`
}

// Extractor turns page screenshots into structured data through a
// vision-capable model. Every call is metered on the run's ledger.
type Extractor struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewExtractor creates an extractor bound to one model.
func NewExtractor(client openai.Client, model string, maxTokens int64) *Extractor {
	if model == "" {
		model = openai.DefaultVisionModel
	}
	return &Extractor{client: client, model: model, maxTokens: maxTokens}
}

// ListingEntries extracts the organic results from a listing screenshot.
func (e *Extractor) ListingEntries(rc *models.RunContext, engine, term string, screenshot []byte) ([]ListingEntry, error) {
	content, err := e.complete(rc, listingPrompt(engine, term), screenshot)
	if err != nil {
		return nil, err
	}

	var entries []ListingEntry
	if err := json.Unmarshal([]byte(cleanJSON(content)), &entries); err != nil {
		return nil, fmt.Errorf("parse listing response: %w", err)
	}
	return entries, nil
}

// PageSummary extracts the depth-1 metadata of a page screenshot.
// Fields the model could not read stay empty; that is not an error.
func (e *Extractor) PageSummary(rc *models.RunContext, pageURL string, screenshot []byte) (*PageSummary, error) {
	content, err := e.complete(rc, summaryPrompt(pageURL), screenshot)
	if err != nil {
		return nil, err
	}

	var summary PageSummary
	if err := json.Unmarshal([]byte(cleanJSON(content)), &summary); err != nil {
		return nil, fmt.Errorf("parse summary response: %w", err)
	}
	return &summary, nil
}

// Comments extracts the visible comment texts in display order.
func (e *Extractor) Comments(rc *models.RunContext, screenshot []byte) ([]string, error) {
	content, err := e.complete(rc, commentsPrompt, screenshot)
	if err != nil {
		return nil, err
	}

	var comments []string
	if err := json.Unmarshal([]byte(cleanJSON(content)), &comments); err != nil {
		return nil, fmt.Errorf("parse comments response: %w", err)
	}
	return comments, nil
}

// CommentMetadata extracts per-comment author/time/likes, order-aligned
// with a previous Comments call.
func (e *Extractor) CommentMetadata(rc *models.RunContext, count int, screenshot []byte) ([]CommentMeta, error) {
	content, err := e.complete(rc, commentMetaPrompt(count), screenshot)
	if err != nil {
		return nil, err
	}

	var meta []CommentMeta
	if err := json.Unmarshal([]byte(cleanJSON(content)), &meta); err != nil {
		return nil, fmt.Errorf("parse comment metadata response: %w", err)
	}
	return meta, nil
}

func (e *Extractor) complete(rc *models.RunContext, prompt string, screenshot []byte) (string, error) {
	req := openai.CompletionRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		Prompt:    prompt,
	}
	if len(screenshot) > 0 {
		req.ImageDataURL = "data:image/png;base64," + base64.StdEncoding.EncodeToString(screenshot)
	}

	resp, err := e.client.CreateCompletion(rc.Ctx, req)
	if err != nil {
		return "", err
	}

	rc.Ledger.Add(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	resp.Usage.LogCost(e.model, "vision")

	return resp.Content, nil
}
