package scrape

import (
	"errors"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/psyduck-osint/psyduck/internal/logging"
	"github.com/psyduck-osint/psyduck/internal/merge"
	"github.com/psyduck-osint/psyduck/internal/models"
	"github.com/psyduck-osint/psyduck/internal/platforms"
	"github.com/psyduck-osint/psyduck/internal/vision"
)

const (
	defaultMaxScrolls = 8
	maxEmptyRounds    = 3
)

// Result is the outcome of one orchestrated run.
type Result struct {
	Records  []models.Record
	TimedOut bool
}

// ListingSearcher produces listing entries without a browser session.
type ListingSearcher interface {
	Search(target models.PlatformTarget, term string, limit int) ([]vision.ListingEntry, error)
}

// Orchestrator drives the per-platform search and the per-URL depth
// ladder sequentially under one shared deadline.
type Orchestrator struct {
	visitor    PageVisitor
	static     ListingSearcher
	extractor  Extractor
	maxScrolls int
	progress   bool
}

// NewOrchestrator builds the pipeline driver. visitor may be nil, forcing
// every search through the static fallback; depth beyond links-only then
// degrades to stage-level failures.
func NewOrchestrator(visitor PageVisitor, static ListingSearcher, extractor Extractor, maxScrolls int, progress bool) *Orchestrator {
	if maxScrolls <= 0 {
		maxScrolls = defaultMaxScrolls
	}
	return &Orchestrator{
		visitor:    visitor,
		static:     static,
		extractor:  extractor,
		maxScrolls: maxScrolls,
		progress:   progress,
	}
}

// SplitQuota divides total evenly across n platforms, with the remainder
// going to the earlier ones.
func SplitQuota(total, n int) []int {
	if n <= 0 {
		return nil
	}
	quotas := make([]int, n)
	base := total / n
	rem := total % n
	for i := range quotas {
		quotas[i] = base
		if i < rem {
			quotas[i]++
		}
	}
	return quotas
}

// Run executes the request against the resolved targets and returns the
// merged record set. Deadline expiry is not an error: the partial set is
// returned with TimedOut set.
func (o *Orchestrator) Run(rc *models.RunContext, req *models.ScrapeRequest, targets []models.PlatformTarget) (*Result, error) {
	quotas := SplitQuota(req.TargetResults, len(targets))

	var collected []models.Record
	attempted := 0
	failedPlatforms := 0
	timedOut := false

platforms:
	for i, target := range targets {
		if rc.Expired() {
			timedOut = true
			break
		}
		quota := quotas[i]
		if quota == 0 {
			continue
		}

		attempted++
		logging.Infof("searching %s via %s (quota %d)", target.Name, target.Engine, quota)
		entries, err := o.search(rc, target, req.SearchTerm, quota)
		if err != nil {
			logging.Warnf("platform %s search failed, skipping: %v", target.Name, err)
			failedPlatforms++
			continue
		}
		if len(entries) == 0 {
			logging.Warnf("platform %s returned no results", target.Name)
			continue
		}

		records := o.toRecords(req.SearchTerm, target, entries, quota)

		var bar *progressbar.ProgressBar
		if o.progress && req.Depth >= models.StageMetadata {
			bar = newProgressBar(len(records), target.Name)
		}

		machine := NewDepthMachine(o.visitor, o.extractor)
		for j := range records {
			if rc.Expired() {
				// stage-0 data for the remaining records is already in hand
				timedOut = true
				collected = append(collected, records...)
				break platforms
			}
			if err := machine.Process(rc, &records[j], req.Depth); err != nil {
				var extErr *ExtractionError
				if errors.As(err, &extErr) {
					logging.Warnf("depth processing stopped at %s for %s: %v", extErr.Stage, extErr.URL, extErr.Err)
				}
			}
			if bar != nil {
				_ = bar.Add(1)
			}
		}
		collected = append(collected, records...)
	}

	// an empty but successful search is a normal outcome; the fatal error
	// is reserved for every attempted platform failing outright
	if len(collected) == 0 && attempted > 0 && failedPlatforms == attempted {
		return nil, ErrAllPlatformsFailed
	}

	merged := merge.Dedupe(collected)

	if timedOut {
		logging.Warnf("timeout exceeded: collected %d of %d requested results", len(merged), req.TargetResults)
	}

	return &Result{Records: merged, TimedOut: timedOut}, nil
}

// search produces up to quota listing entries for one target.
func (o *Orchestrator) search(rc *models.RunContext, target models.PlatformTarget, term string, quota int) ([]vision.ListingEntry, error) {
	if o.visitor == nil || target.Entry == models.EntryStatic {
		if o.static == nil {
			return nil, errors.New("no search path available")
		}
		return o.static.Search(target, term, quota)
	}

	view, err := o.visitor.Visit(rc.Ctx, platforms.SearchURL(target, term))
	if err != nil {
		// browser path failed; the static endpoint can still serve the listing
		if o.static != nil {
			logging.Warnf("browser search failed for %s, using static fallback: %v", target.Name, err)
			return o.static.Search(target, term, quota)
		}
		return nil, err
	}
	defer view.Close()
	view.ZoomOut()

	seen := make(map[string]bool)
	var entries []vision.ListingEntry
	emptyRounds := 0

	for scrolls := 0; ; scrolls++ {
		shot, err := view.Screenshot()
		if err != nil {
			return entries, err
		}
		batch, err := o.extractor.ListingEntries(rc, target.Engine, term, shot)
		if err != nil {
			if len(entries) > 0 {
				logging.Warnf("listing extraction failed mid-scroll for %s: %v", target.Name, err)
				break
			}
			return nil, err
		}

		added := 0
		for _, entry := range batch {
			if models.ValidateURL(entry.URL) != nil {
				continue
			}
			key := merge.NormalizeURL(entry.URL)
			if seen[key] {
				continue
			}
			seen[key] = true
			entries = append(entries, entry)
			added++
		}

		if len(entries) >= quota || scrolls >= o.maxScrolls {
			break
		}
		if added == 0 {
			emptyRounds++
			if emptyRounds >= maxEmptyRounds {
				break
			}
		} else {
			emptyRounds = 0
		}
		if err := view.ScrollDown(); err != nil {
			break
		}
		if rc.Expired() {
			break
		}
	}

	return entries, nil
}

// toRecords converts listing entries into stage-0 records with contiguous
// ranks for this platform batch.
func (o *Orchestrator) toRecords(term string, target models.PlatformTarget, entries []vision.ListingEntry, quota int) []models.Record {
	if len(entries) > quota {
		entries = entries[:quota]
	}
	now := time.Now()
	records := make([]models.Record, len(entries))
	for i, entry := range entries {
		records[i] = models.Record{
			SearchTerm:     term,
			Engine:         target.Engine,
			Platform:       target.Name,
			URL:            entry.URL,
			Title:          entry.Title,
			Excerpt:        entry.Excerpt,
			Publisher:      entry.Publisher,
			Date:           entry.Date,
			Rank:           i + 1,
			ScrapedAt:      now,
			CompletedStage: models.StageLinksOnly,
		}
	}
	return records
}

func newProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
