package scrape

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psyduck-osint/psyduck/internal/models"
	"github.com/psyduck-osint/psyduck/internal/vision"
)

// fakeView is a scripted PageView.
type fakeView struct {
	scrolls int
}

func (v *fakeView) Screenshot() ([]byte, error) { return []byte("png"), nil }
func (v *fakeView) ScrollDown() error           { v.scrolls++; return nil }
func (v *fakeView) ScrollToComments() error     { return nil }
func (v *fakeView) ZoomOut()                    {}
func (v *fakeView) Close()                      {}

// fakeVisitor serves fakeViews, failing for URLs in failFor.
type fakeVisitor struct {
	failFor map[string]bool
	visited []string
}

func (f *fakeVisitor) Visit(_ context.Context, pageURL string) (PageView, error) {
	f.visited = append(f.visited, pageURL)
	if f.failFor[pageURL] {
		return nil, errors.New("navigation refused")
	}
	return &fakeView{}, nil
}

// fakeExtractor returns canned listing entries and summaries.
type fakeExtractor struct {
	listings     map[string][]vision.ListingEntry // engine -> entries
	listingErr   error
	listingErrs  map[string]error // engine -> error
	summaries    map[string]*vision.PageSummary // url -> summary
	summaryErr   error
	comments     []string
	commentsErr  error
	metadata     []vision.CommentMeta
	listingCalls int
}

func (f *fakeExtractor) ListingEntries(_ *models.RunContext, engine, _ string, _ []byte) ([]vision.ListingEntry, error) {
	f.listingCalls++
	if f.listingErr != nil {
		return nil, f.listingErr
	}
	if err := f.listingErrs[engine]; err != nil {
		return nil, err
	}
	return f.listings[engine], nil
}

func (f *fakeExtractor) PageSummary(_ *models.RunContext, pageURL string, _ []byte) (*vision.PageSummary, error) {
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	if s, ok := f.summaries[pageURL]; ok {
		return s, nil
	}
	return &vision.PageSummary{URL: pageURL}, nil
}

func (f *fakeExtractor) Comments(_ *models.RunContext, _ []byte) ([]string, error) {
	if f.commentsErr != nil {
		return nil, f.commentsErr
	}
	return f.comments, nil
}

func (f *fakeExtractor) CommentMetadata(_ *models.RunContext, _ int, _ []byte) ([]vision.CommentMeta, error) {
	return f.metadata, nil
}

// fakeStatic is a scripted ListingSearcher.
type fakeStatic struct {
	entries []vision.ListingEntry
	err     error
	calls   int
}

func (f *fakeStatic) Search(_ models.PlatformTarget, _ string, limit int) ([]vision.ListingEntry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.entries) > limit {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func entriesFor(urls ...string) []vision.ListingEntry {
	out := make([]vision.ListingEntry, len(urls))
	for i, u := range urls {
		out[i] = vision.ListingEntry{Title: "t", URL: u, Rank: i + 1}
	}
	return out
}

func newRunContext(timeout time.Duration) *models.RunContext {
	return models.NewRunContext(context.Background(), models.NewDefaultCostLedger(), timeout)
}

func mustRequest(t *testing.T, results int, depth models.Stage) *models.ScrapeRequest {
	t.Helper()
	req, err := models.NewScrapeRequest("term", "term", results, "", depth, 900)
	require.NoError(t, err)
	return req
}

func TestSplitQuota(t *testing.T) {
	tests := []struct {
		name  string
		total int
		n     int
		want  []int
	}{
		{"even", 10, 2, []int{5, 5}},
		{"remainder to earlier", 10, 3, []int{4, 3, 3}},
		{"more platforms than results", 2, 4, []int{1, 1, 0, 0}},
		{"single platform", 7, 1, []int{7}},
		{"no platforms", 5, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitQuota(tt.total, tt.n))
		})
	}
}

func TestRun_LinksOnly(t *testing.T) {
	extractor := &fakeExtractor{listings: map[string][]vision.ListingEntry{
		"duckduckgo": entriesFor("https://a.example/1", "https://a.example/2", "https://a.example/3"),
		"google":     entriesFor("https://b.example/1", "https://b.example/2"),
	}}
	visitor := &fakeVisitor{}
	orch := NewOrchestrator(visitor, nil, extractor, 8, false)

	targets := []models.PlatformTarget{
		{Name: "duckduckgo", Engine: "duckduckgo", Entry: models.EntryBrowser},
		{Name: "google", Engine: "google", Entry: models.EntryBrowser},
	}
	result, err := orch.Run(newRunContext(0), mustRequest(t, 4, models.StageLinksOnly), targets)
	require.NoError(t, err)

	require.Len(t, result.Records, 4)
	assert.False(t, result.TimedOut)

	// quota 2+2, ranks contiguous per platform
	assert.Equal(t, []int{1, 2, 1, 2}, []int{
		result.Records[0].Rank, result.Records[1].Rank,
		result.Records[2].Rank, result.Records[3].Rank,
	})
	assert.Equal(t, "duckduckgo", result.Records[0].Platform)
	assert.Equal(t, "google", result.Records[2].Platform)

	// depth 0 leaves deep fields untouched
	for _, rec := range result.Records {
		assert.Equal(t, models.StageLinksOnly, rec.CompletedStage)
		assert.Empty(t, rec.Summary)
		assert.Empty(t, rec.Comments)
		assert.False(t, rec.HasComments)
	}

	// only the two listing pages were visited, no per-URL navigation
	assert.Len(t, visitor.visited, 2)
}

func TestRun_DepthOne(t *testing.T) {
	extractor := &fakeExtractor{
		listings: map[string][]vision.ListingEntry{
			"duckduckgo": entriesFor("https://a.example/1"),
		},
		summaries: map[string]*vision.PageSummary{
			"https://a.example/1": {Title: "Deep Title", Author: "ann", Summary: "about things", HasComments: true},
		},
	}
	orch := NewOrchestrator(&fakeVisitor{}, nil, extractor, 8, false)

	targets := []models.PlatformTarget{{Name: "duckduckgo", Engine: "duckduckgo", Entry: models.EntryBrowser}}
	result, err := orch.Run(newRunContext(0), mustRequest(t, 1, models.StageMetadata), targets)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, models.StageMetadata, rec.CompletedStage)
	assert.Equal(t, "Deep Title", rec.Title)
	assert.Equal(t, "ann", rec.Author)
	assert.True(t, rec.HasComments)
	assert.Empty(t, rec.Comments, "depth 1 never collects comment text")
}

func TestRun_DepthThreeAlignsCommentMetadata(t *testing.T) {
	extractor := &fakeExtractor{
		listings: map[string][]vision.ListingEntry{
			"duckduckgo": entriesFor("https://a.example/1"),
		},
		summaries: map[string]*vision.PageSummary{
			"https://a.example/1": {Title: "T", HasComments: true},
		},
		comments: []string{"great post", "disagree"},
		metadata: []vision.CommentMeta{
			{Author: "alice", PostedAt: "1h", Likes: "3"},
			{Author: "bob"},
		},
	}
	orch := NewOrchestrator(&fakeVisitor{}, nil, extractor, 8, false)

	targets := []models.PlatformTarget{{Name: "duckduckgo", Engine: "duckduckgo", Entry: models.EntryBrowser}}
	result, err := orch.Run(newRunContext(0), mustRequest(t, 1, models.StageDiscussionMeta), targets)
	require.NoError(t, err)

	rec := result.Records[0]
	assert.Equal(t, models.StageDiscussionMeta, rec.CompletedStage)
	require.Len(t, rec.Comments, 2)
	assert.Equal(t, "great post", rec.Comments[0].Text)
	assert.Equal(t, "alice", rec.Comments[0].Author)
	assert.Equal(t, "3", rec.Comments[0].Likes)
	assert.Equal(t, "bob", rec.Comments[1].Author)
	assert.Empty(t, rec.Comments[1].PostedAt)
}

func TestRun_FailedStageKeepsRecord(t *testing.T) {
	extractor := &fakeExtractor{
		listings: map[string][]vision.ListingEntry{
			"duckduckgo": entriesFor("https://a.example/1"),
		},
		summaryErr: errors.New("model unavailable"),
	}
	orch := NewOrchestrator(&fakeVisitor{}, nil, extractor, 8, false)

	targets := []models.PlatformTarget{{Name: "duckduckgo", Engine: "duckduckgo", Entry: models.EntryBrowser}}
	result, err := orch.Run(newRunContext(0), mustRequest(t, 1, models.StageDiscussion), targets)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, models.StageLinksOnly, result.Records[0].CompletedStage)
}

func TestDepthMachine_NoBrowserKeepsStageZero(t *testing.T) {
	machine := NewDepthMachine(nil, &fakeExtractor{})
	rec := models.Record{Engine: "duckduckgo", URL: "https://a.example/1", CompletedStage: models.StageLinksOnly}

	err := machine.Process(newRunContext(0), &rec, models.StageMetadata)

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, models.StageMetadata, extErr.Stage)
	assert.Equal(t, models.StageLinksOnly, rec.CompletedStage)
}

func TestRun_StaticOnlyDepthDegradesToStageZero(t *testing.T) {
	static := &fakeStatic{entries: entriesFor("https://a.example/1", "https://a.example/2")}
	orch := NewOrchestrator(nil, static, &fakeExtractor{}, 8, false)

	targets := []models.PlatformTarget{{Name: "duckduckgo", Engine: "duckduckgo", Entry: models.EntryBrowser}}
	result, err := orch.Run(newRunContext(0), mustRequest(t, 2, models.StageMetadata), targets)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	for _, rec := range result.Records {
		assert.Equal(t, models.StageLinksOnly, rec.CompletedStage)
		assert.Empty(t, rec.Summary)
	}
}

func TestRun_EntryStaticRoutesToStaticSearcher(t *testing.T) {
	static := &fakeStatic{entries: entriesFor("https://a.example/1")}
	visitor := &fakeVisitor{}
	orch := NewOrchestrator(visitor, static, &fakeExtractor{}, 8, false)

	targets := []models.PlatformTarget{{Name: "duckduckgo", Engine: "duckduckgo", Entry: models.EntryStatic}}
	result, err := orch.Run(newRunContext(0), mustRequest(t, 1, models.StageLinksOnly), targets)
	require.NoError(t, err)

	assert.Equal(t, 1, static.calls)
	assert.Empty(t, visitor.visited, "static entry must not open a browser listing")
	require.Len(t, result.Records, 1)
}

func TestRun_DropsEntriesWithoutUsableURL(t *testing.T) {
	extractor := &fakeExtractor{listings: map[string][]vision.ListingEntry{
		"duckduckgo": {
			{Title: "good", URL: "https://a.example/1"},
			{Title: "no url"},
			{Title: "relative", URL: "/results?page=2"},
			{Title: "wrong scheme", URL: "ftp://a.example/2"},
		},
	}}
	orch := NewOrchestrator(&fakeVisitor{}, nil, extractor, 8, false)

	targets := []models.PlatformTarget{{Name: "duckduckgo", Engine: "duckduckgo", Entry: models.EntryBrowser}}
	result, err := orch.Run(newRunContext(0), mustRequest(t, 4, models.StageLinksOnly), targets)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "https://a.example/1", result.Records[0].URL)
	assert.Equal(t, 1, result.Records[0].Rank)
}

func TestRun_TimeoutReturnsPartial(t *testing.T) {
	extractor := &fakeExtractor{listings: map[string][]vision.ListingEntry{
		"duckduckgo": entriesFor("https://a.example/1", "https://a.example/2"),
	}}
	orch := NewOrchestrator(&fakeVisitor{}, nil, extractor, 8, false)

	rc := newRunContext(time.Nanosecond)
	time.Sleep(time.Millisecond)

	targets := []models.PlatformTarget{
		{Name: "duckduckgo", Engine: "duckduckgo", Entry: models.EntryBrowser},
	}
	result, err := orch.Run(rc, mustRequest(t, 2, models.StageLinksOnly), targets)

	require.NoError(t, err, "timeout is a warning, not an error")
	assert.True(t, result.TimedOut)
}

func TestRun_AllPlatformsFailed(t *testing.T) {
	extractor := &fakeExtractor{listingErr: errors.New("vision down")}
	orch := NewOrchestrator(&fakeVisitor{}, nil, extractor, 8, false)

	targets := []models.PlatformTarget{
		{Name: "duckduckgo", Engine: "duckduckgo", Entry: models.EntryBrowser},
		{Name: "google", Engine: "google", Entry: models.EntryBrowser},
	}
	_, err := orch.Run(newRunContext(0), mustRequest(t, 4, models.StageLinksOnly), targets)
	assert.ErrorIs(t, err, ErrAllPlatformsFailed)
}

func TestRun_EmptySuccessfulPlatformIsNotFatal(t *testing.T) {
	// duckduckgo searches fine but finds nothing; google's search fails.
	// one platform out of two failing is not a universal failure.
	extractor := &fakeExtractor{
		listings:    map[string][]vision.ListingEntry{},
		listingErrs: map[string]error{"google": errors.New("vision down")},
	}
	orch := NewOrchestrator(&fakeVisitor{}, nil, extractor, 8, false)

	targets := []models.PlatformTarget{
		{Name: "duckduckgo", Engine: "duckduckgo", Entry: models.EntryBrowser},
		{Name: "google", Engine: "google", Entry: models.EntryBrowser},
	}
	result, err := orch.Run(newRunContext(0), mustRequest(t, 4, models.StageLinksOnly), targets)

	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.False(t, result.TimedOut)
}

func TestRun_DeduplicatesAcrossPlatforms(t *testing.T) {
	extractor := &fakeExtractor{listings: map[string][]vision.ListingEntry{
		"duckduckgo": entriesFor("https://shared.example/post"),
		"google":     entriesFor("https://shared.example/post"),
	}}
	orch := NewOrchestrator(&fakeVisitor{}, nil, extractor, 8, false)

	targets := []models.PlatformTarget{
		{Name: "duckduckgo", Engine: "duckduckgo", Entry: models.EntryBrowser},
		{Name: "google", Engine: "google", Entry: models.EntryBrowser},
	}
	result, err := orch.Run(newRunContext(0), mustRequest(t, 2, models.StageLinksOnly), targets)
	require.NoError(t, err)

	assert.Len(t, result.Records, 1)
}

func TestExtractionError_Wraps(t *testing.T) {
	inner := errors.New("boom")
	err := &ExtractionError{Engine: "bing", URL: "https://x.example", Stage: models.StageDiscussion, Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.True(t, strings.Contains(err.Error(), "discussion"))
}

func TestResolveRedirect(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"uddg redirect", "//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa", "https://example.com/a"},
		{"direct link", "https://example.com/a", "https://example.com/a"},
		{"empty", "", ""},
		{"relative junk", "/html/?q=x", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveRedirect(tt.in))
		})
	}
}
