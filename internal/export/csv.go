package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/psyduck-osint/psyduck/internal/logging"
	"github.com/psyduck-osint/psyduck/internal/models"
)

// header is the fixed superset column order of every exported dataset.
var header = []string{
	"search_term", "engine", "url", "title", "author", "date", "publisher",
	"rank", "excerpt", "summary", "has_comments", "comments", "scraped_at",
}

const maxTermLen = 60

var (
	invalidChars = regexp.MustCompile(`[^\w\s-]`)
	separators   = regexp.MustCompile(`[\s-]+`)
)

// SanitizeTerm turns a search term into a filesystem-safe file name part.
func SanitizeTerm(term string) string {
	s := invalidChars.ReplaceAllString(term, "")
	s = separators.ReplaceAllString(s, "_")
	if len(s) > maxTermLen {
		s = s[:maxTermLen]
	}
	return s
}

// DeepscrapePath is the dataset path for a deepscrape run.
func DeepscrapePath(dataDir, term string) string {
	return filepath.Join(dataDir, fmt.Sprintf("deepscrape_%s.csv", SanitizeTerm(term)))
}

// WebscrapePath is the dataset path for a single-engine webscrape run.
func WebscrapePath(dataDir, engine, term string) string {
	return filepath.Join(dataDir, fmt.Sprintf("webscrape_%s_%s.csv", engine, SanitizeTerm(term)))
}

// WriteCSV writes the records in order to path, creating the directory as
// needed. The comments column holds a JSON array so nested commas survive.
func WriteCSV(path string, records []models.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		row, err := toRow(rec)
		if err != nil {
			return err
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", rec.URL, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	logging.Infof("exported %d records to %s", len(records), path)
	return nil
}

func toRow(rec models.Record) ([]string, error) {
	comments := ""
	if len(rec.Comments) > 0 {
		data, err := json.Marshal(rec.Comments)
		if err != nil {
			return nil, fmt.Errorf("marshal comments for %s: %w", rec.URL, err)
		}
		comments = string(data)
	}

	return []string{
		rec.SearchTerm,
		rec.Engine,
		rec.URL,
		rec.Title,
		rec.Author,
		rec.Date,
		rec.Publisher,
		strconv.Itoa(rec.Rank),
		rec.Excerpt,
		rec.Summary,
		strconv.FormatBool(rec.HasComments),
		comments,
		rec.ScrapedAt.Format(time.RFC3339),
	}, nil
}
