package scrape

import (
	"context"
	"errors"

	"github.com/psyduck-osint/psyduck/internal/models"
	"github.com/psyduck-osint/psyduck/internal/vision"
)

var errNoBrowser = errors.New("no browser session for depth processing")

// PageVisitor opens URLs in a rendering context and yields views of them.
type PageVisitor interface {
	Visit(ctx context.Context, pageURL string) (PageView, error)
}

// PageView is one rendered page.
type PageView interface {
	Screenshot() ([]byte, error)
	ScrollDown() error
	ScrollToComments() error
	ZoomOut()
	Close()
}

// Extractor is the vision surface the pipeline needs.
type Extractor interface {
	ListingEntries(rc *models.RunContext, engine, term string, screenshot []byte) ([]vision.ListingEntry, error)
	PageSummary(rc *models.RunContext, pageURL string, screenshot []byte) (*vision.PageSummary, error)
	Comments(rc *models.RunContext, screenshot []byte) ([]string, error)
	CommentMetadata(rc *models.RunContext, count int, screenshot []byte) ([]vision.CommentMeta, error)
}

// sessionVisitor adapts the browser Session to PageVisitor.
type sessionVisitor struct {
	session *Session
}

// NewSessionVisitor wraps a started browser session.
func NewSessionVisitor(session *Session) PageVisitor {
	return &sessionVisitor{session: session}
}

func (v *sessionVisitor) Visit(ctx context.Context, pageURL string) (PageView, error) {
	return v.session.Open(ctx, pageURL)
}

// DepthMachine runs the per-URL stage ladder. Stages execute strictly in
// order; the first failed stage ends the ladder for that URL and the
// record keeps its last completed stage.
type DepthMachine struct {
	visitor   PageVisitor
	extractor Extractor
}

// NewDepthMachine creates the stage ladder runner.
func NewDepthMachine(visitor PageVisitor, extractor Extractor) *DepthMachine {
	return &DepthMachine{visitor: visitor, extractor: extractor}
}

// Process deepens one stage-0 record up to the requested depth. The
// returned error is always an *ExtractionError; the record is valid either
// way.
func (m *DepthMachine) Process(rc *models.RunContext, rec *models.Record, depth models.Stage) error {
	if depth < models.StageMetadata {
		return nil
	}
	if m.visitor == nil {
		// static-only runs cannot render pages; the record stays at stage 0
		return &ExtractionError{Engine: rec.Engine, URL: rec.URL, Stage: models.StageMetadata, Err: errNoBrowser}
	}

	view, err := m.visitor.Visit(rc.Ctx, rec.URL)
	if err != nil {
		return &ExtractionError{Engine: rec.Engine, URL: rec.URL, Stage: models.StageMetadata, Err: err}
	}
	defer view.Close()

	if err := m.runMetadata(rc, rec, view); err != nil {
		return err
	}

	if depth < models.StageDiscussion || !rec.HasComments {
		return nil
	}
	if err := m.runDiscussion(rc, rec, view); err != nil {
		return err
	}

	if depth < models.StageDiscussionMeta || len(rec.Comments) == 0 {
		return nil
	}
	return m.runDiscussionMeta(rc, rec, view)
}

func (m *DepthMachine) runMetadata(rc *models.RunContext, rec *models.Record, view PageView) error {
	shot, err := view.Screenshot()
	if err != nil {
		return &ExtractionError{Engine: rec.Engine, URL: rec.URL, Stage: models.StageMetadata, Err: err}
	}
	summary, err := m.extractor.PageSummary(rc, rec.URL, shot)
	if err != nil {
		return &ExtractionError{Engine: rec.Engine, URL: rec.URL, Stage: models.StageMetadata, Err: err}
	}

	if summary.Title != "" {
		rec.Title = summary.Title
	}
	rec.Author = summary.Author
	if summary.Date != "" {
		rec.Date = summary.Date
	}
	if summary.Publisher != "" {
		rec.Publisher = summary.Publisher
	}
	rec.Summary = summary.Summary
	rec.HasComments = summary.HasComments
	rec.CompletedStage = models.StageMetadata
	return nil
}

func (m *DepthMachine) runDiscussion(rc *models.RunContext, rec *models.Record, view PageView) error {
	if err := view.ScrollToComments(); err != nil {
		return &ExtractionError{Engine: rec.Engine, URL: rec.URL, Stage: models.StageDiscussion, Err: err}
	}
	shot, err := view.Screenshot()
	if err != nil {
		return &ExtractionError{Engine: rec.Engine, URL: rec.URL, Stage: models.StageDiscussion, Err: err}
	}
	texts, err := m.extractor.Comments(rc, shot)
	if err != nil {
		return &ExtractionError{Engine: rec.Engine, URL: rec.URL, Stage: models.StageDiscussion, Err: err}
	}

	rec.Comments = make([]models.Comment, len(texts))
	for i, text := range texts {
		rec.Comments[i] = models.Comment{Text: text}
	}
	rec.CompletedStage = models.StageDiscussion
	return nil
}

func (m *DepthMachine) runDiscussionMeta(rc *models.RunContext, rec *models.Record, view PageView) error {
	shot, err := view.Screenshot()
	if err != nil {
		return &ExtractionError{Engine: rec.Engine, URL: rec.URL, Stage: models.StageDiscussionMeta, Err: err}
	}
	meta, err := m.extractor.CommentMetadata(rc, len(rec.Comments), shot)
	if err != nil {
		return &ExtractionError{Engine: rec.Engine, URL: rec.URL, Stage: models.StageDiscussionMeta, Err: err}
	}

	// metadata aligns with comments by display order; extras are ignored
	for i := range rec.Comments {
		if i >= len(meta) {
			break
		}
		rec.Comments[i].Author = meta[i].Author
		rec.Comments[i].PostedAt = meta[i].PostedAt
		rec.Comments[i].Likes = meta[i].Likes
	}
	rec.CompletedStage = models.StageDiscussionMeta
	return nil
}
