package platforms

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/psyduck-osint/psyduck/internal/logging"
	"github.com/psyduck-osint/psyduck/internal/models"
)

// ErrNoPlatformsResolved is returned when a platform expression matches
// nothing in the known set.
var ErrNoPlatformsResolved = errors.New("no platforms resolved from platform expression")

// Search engines with a native listing page.
const (
	EngineDuckDuckGo = "duckduckgo"
	EngineGoogle     = "google"
	EngineBing       = "bing"
)

// platformDef is one entry of the known-platform table. Declaration order
// defines search priority and is never reordered.
type platformDef struct {
	name      string
	engine    string
	siteScope string
}

var knownPlatforms = []platformDef{
	{name: EngineDuckDuckGo, engine: EngineDuckDuckGo},
	{name: EngineGoogle, engine: EngineGoogle},
	{name: EngineBing, engine: EngineBing},
	{name: "reddit", engine: EngineDuckDuckGo, siteScope: "site:reddit.com"},
	{name: "twitter", engine: EngineDuckDuckGo, siteScope: "site:twitter.com"},
	{name: "medium", engine: EngineDuckDuckGo, siteScope: "site:medium.com"},
	{name: "wordpress", engine: EngineDuckDuckGo, siteScope: "site:wordpress.com"},
	{name: "youtube", engine: EngineDuckDuckGo, siteScope: "site:youtube.com"},
}

// synonyms maps expression tokens to platform names. Tokens are matched
// after lowercasing and whitespace normalization.
var synonyms = map[string][]string{
	"duckduckgo":   {EngineDuckDuckGo},
	"ddg":          {EngineDuckDuckGo},
	"google":       {EngineGoogle},
	"bing":         {EngineBing},
	"search":       {EngineDuckDuckGo},
	"web":          {EngineDuckDuckGo},
	"news":         {EngineGoogle, EngineBing},
	"social media": {"reddit", "twitter"},
	"social":       {"reddit", "twitter"},
	"twitter":      {"twitter"},
	"reddit":       {"reddit"},
	"blogs":        {"medium", "wordpress"},
	"blog":         {"medium", "wordpress"},
	"medium":       {"medium"},
	"wordpress":    {"wordpress"},
	"video":        {"youtube"},
	"videos":       {"youtube"},
	"youtube":      {"youtube"},
	"forums":       {"reddit"},
	"forum":        {"reddit"},
}

var tokenSplitter = regexp.MustCompile(`\s*(?:,|&|\+|\band\b)\s*`)

// Resolve turns a platform expression into an ordered target list.
// An empty expression or "any"/"all" selects the full known set. Unmatched
// tokens are dropped with a warning; nothing matched at all is an error.
func Resolve(spec string) ([]models.PlatformTarget, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	if spec == "" || spec == "any" || spec == "all" {
		return allTargets(), nil
	}

	selected := make(map[string]bool)
	matchedAny := false
	for _, token := range tokenSplitter.Split(spec, -1) {
		token = strings.Join(strings.Fields(token), " ")
		if token == "" {
			continue
		}
		if token == "any" || token == "all" {
			return allTargets(), nil
		}
		names, ok := synonyms[token]
		if !ok {
			logging.Warnf("unknown platform %q ignored", token)
			continue
		}
		matchedAny = true
		for _, n := range names {
			selected[n] = true
		}
	}

	if !matchedAny {
		return nil, fmt.Errorf("%w: %q", ErrNoPlatformsResolved, spec)
	}

	targets := make([]models.PlatformTarget, 0, len(selected))
	for _, def := range knownPlatforms {
		if selected[def.name] {
			targets = append(targets, toTarget(def))
		}
	}
	return targets, nil
}

// ResolveEngine returns the single target for one named search engine.
func ResolveEngine(engine string) (*models.PlatformTarget, error) {
	engine = strings.ToLower(strings.TrimSpace(engine))
	for _, def := range knownPlatforms {
		if def.name == engine && def.siteScope == "" {
			t := toTarget(def)
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown engine %q", ErrNoPlatformsResolved, engine)
}

func allTargets() []models.PlatformTarget {
	targets := make([]models.PlatformTarget, 0, len(knownPlatforms))
	for _, def := range knownPlatforms {
		targets = append(targets, toTarget(def))
	}
	return targets
}

func toTarget(def platformDef) models.PlatformTarget {
	return models.PlatformTarget{
		Name:      def.name,
		Engine:    def.engine,
		Entry:     models.EntryBrowser,
		SiteScope: def.siteScope,
	}
}

// SearchURL builds the engine listing URL for a target and term.
func SearchURL(target models.PlatformTarget, term string) string {
	q := term
	if target.SiteScope != "" {
		q = term + " " + target.SiteScope
	}
	escaped := url.QueryEscape(q)

	switch target.Engine {
	case EngineGoogle:
		return "https://www.google.com/search?q=" + escaped + "&tbm=nws"
	case EngineBing:
		return "https://www.bing.com/news/search?q=" + escaped
	default:
		return "https://duckduckgo.com/?q=" + escaped + "&t=h_&ia=web"
	}
}

// StaticSearchURL builds the HTML-only DuckDuckGo endpoint used by the
// static fallback collector.
func StaticSearchURL(target models.PlatformTarget, term string) string {
	q := term
	if target.SiteScope != "" {
		q = term + " " + target.SiteScope
	}
	return "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(q)
}
