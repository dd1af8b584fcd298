package models

import "fmt"

// Stage is the crawl depth a record has been processed to.
type Stage int

const (
	StageLinksOnly      Stage = 0 // listing URL and rank only
	StageMetadata       Stage = 1 // page title/author/date/summary
	StageDiscussion     Stage = 2 // discussion thread text
	StageDiscussionMeta Stage = 3 // per-comment author/time/likes
)

// String returns the stage name used in logs and reports.
func (s Stage) String() string {
	switch s {
	case StageLinksOnly:
		return "links_only"
	case StageMetadata:
		return "metadata"
	case StageDiscussion:
		return "discussion"
	case StageDiscussionMeta:
		return "discussion_meta"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Valid reports whether s is one of the four defined depths.
func (s Stage) Valid() bool {
	return s >= StageLinksOnly && s <= StageDiscussionMeta
}
