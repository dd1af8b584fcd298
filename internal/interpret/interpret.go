package interpret

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/psyduck-osint/psyduck/internal/logging"
	"github.com/psyduck-osint/psyduck/internal/models"
	"github.com/psyduck-osint/psyduck/pkg/openai"
)

// ErrInterpretation is returned when neither the heuristic nor the
// inference call produces a usable search term.
var ErrInterpretation = errors.New("could not interpret instruction into a search term")

// Words that mark an input as an instruction rather than a search term.
var instructionWords = map[string]bool{
	"find": true, "collect": true, "scrape": true, "search": true,
	"get": true, "look": true, "gather": true, "analyze": true,
	"fetch": true, "show": true, "list": true, "compare": true,
	"monitor": true, "track": true, "want": true, "need": true,
	"give": true,
}

const maxBareTermWords = 6

// IsBareTerm reports whether the input can be used as a search term
// directly: at most six words, no instruction verbs, no question mark.
func IsBareTerm(s string) bool {
	if strings.ContainsRune(s, '?') {
		return false
	}
	words := strings.Fields(s)
	if len(words) == 0 || len(words) > maxBareTermWords {
		return false
	}
	for _, w := range words {
		if instructionWords[strings.ToLower(strings.Trim(w, ".,!:;"))] {
			return false
		}
	}
	return true
}

// Flags carries the explicit command-line parameters. Explicit values
// always beat inferred ones. Depth uses -1 as the unset marker because 0
// is a meaningful depth.
type Flags struct {
	Results   int    // 0 = unset
	Platforms string // "" = unset
	Depth     int    // -1 = unset
	Timeout   int    // 0 = unset
}

// inferred is the JSON shape the disambiguation prompt asks for.
type inferred struct {
	SearchTerm         string `json:"search_term"`
	SuggestedPlatforms string `json:"suggested_platforms"`
	SuggestedDepth     int    `json:"suggested_depth"`
}

const interpretPromptFmt = `A user typed this into a web intelligence collector:
"%s"
Extract the underlying search intent. Respond with a single JSON object
only, no prose and no markdown fences:
{"search_term": "...", "suggested_platforms": "...", "suggested_depth": 0}
Rules:
- search_term is the concise query to submit to a search engine
- suggested_platforms is a comma separated subset of: duckduckgo, google,
  bing, reddit, twitter, medium, wordpress, youtube, news, blogs,
  social media, video, forums, any
- suggested_depth is 0 (links only), 1 (page metadata), 2 (discussions)
  or 3 (discussion metadata), matching how much detail the user wants`

// Interpreter turns raw user input into a validated scrape request.
type Interpreter struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// New creates an interpreter. The client may be nil when only bare terms
// are expected; instruction input then fails with ErrInterpretation.
func New(client openai.Client, model string, maxTokens int64) *Interpreter {
	if model == "" {
		model = openai.DefaultVisionModel
	}
	return &Interpreter{client: client, model: model, maxTokens: maxTokens}
}

// Interpret builds the scrape request for raw input. Bare terms are used
// as-is; instruction-like input goes through one metered inference call.
func (i *Interpreter) Interpret(rc *models.RunContext, raw string, flags Flags) (*models.ScrapeRequest, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInterpretation)
	}

	term := raw
	platforms := flags.Platforms
	depth := flags.Depth

	if !IsBareTerm(raw) {
		inf, err := i.infer(rc, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInterpretation, err)
		}
		term = strings.TrimSpace(inf.SearchTerm)
		if term == "" {
			return nil, fmt.Errorf("%w: inference returned no search term", ErrInterpretation)
		}
		if platforms == "" {
			platforms = inf.SuggestedPlatforms
		}
		if depth < 0 && inf.SuggestedDepth >= 0 && inf.SuggestedDepth <= 3 {
			depth = inf.SuggestedDepth
		}
		logging.Infof("interpreted instruction: term=%q platforms=%q depth=%d", term, platforms, depth)
	}

	if depth < 0 {
		depth = int(models.StageLinksOnly)
	}

	return models.NewScrapeRequest(raw, term, flags.Results, platforms, models.Stage(depth), flags.Timeout)
}

func (i *Interpreter) infer(rc *models.RunContext, raw string) (*inferred, error) {
	if i.client == nil {
		return nil, errors.New("no inference client configured")
	}

	resp, err := i.client.CreateCompletion(rc.Ctx, openai.CompletionRequest{
		Model:     i.model,
		MaxTokens: i.maxTokens,
		Prompt:    fmt.Sprintf(interpretPromptFmt, raw),
	})
	if err != nil {
		return nil, err
	}
	rc.Ledger.Add(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	resp.Usage.LogCost(i.model, "interpret")

	var inf inferred
	if err := json.Unmarshal([]byte(cleanJSON(resp.Content)), &inf); err != nil {
		return nil, fmt.Errorf("parse interpretation response: %w", err)
	}
	return &inf, nil
}

// cleanJSON strips fences and prose around the first JSON object.
func cleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
