package scrape

import (
	"errors"
	"fmt"

	"github.com/psyduck-osint/psyduck/internal/models"
)

// ErrAllPlatformsFailed is returned when every resolved platform failed to
// produce a single record.
var ErrAllPlatformsFailed = errors.New("all platforms failed")

// ExtractionError marks a failed extraction stage for one URL. Stage-level
// failures are absorbed by the orchestrator; the record keeps whatever
// depth it completed.
type ExtractionError struct {
	Engine string
	URL    string
	Stage  models.Stage
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: engine=%s url=%s stage=%s: %v", e.Engine, e.URL, e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
