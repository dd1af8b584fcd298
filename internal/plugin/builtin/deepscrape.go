package builtin

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/psyduck-osint/psyduck/internal/interpret"
	"github.com/psyduck-osint/psyduck/internal/logging"
	"github.com/psyduck-osint/psyduck/internal/models"
	"github.com/psyduck-osint/psyduck/internal/platforms"
	"github.com/psyduck-osint/psyduck/internal/plugin"
	"github.com/psyduck-osint/psyduck/internal/scrape"
	"github.com/psyduck-osint/psyduck/internal/vision"
	"github.com/psyduck-osint/psyduck/pkg/openai"

	exportpkg "github.com/psyduck-osint/psyduck/internal/export"
)

// DeepscrapePlugin is the full pipeline: interpret, resolve, scrape at
// depth, merge, export.
func DeepscrapePlugin(deps Deps) plugin.Plugin {
	return plugin.Plugin{
		Name:        "deepscrape",
		Description: "depth-configurable AI-assisted collection across platforms",
		Version:     deps.Version,
		Commands: []plugin.Command{{
			Name:        "deepscrape",
			Description: "collect structured records for a term or instruction",
			Usage:       `deepscrape "<term|instruction>" [--results=N] [--platforms=STR] [--depth=0|1|2|3] [--timeout=SECONDS]`,
			Handler: func(ctx context.Context, args []string) error {
				return runDeepscrape(ctx, deps, args)
			},
		}},
	}
}

func runDeepscrape(ctx context.Context, deps Deps, args []string) error {
	fs := pflag.NewFlagSet("deepscrape", pflag.ContinueOnError)
	results := fs.Int("results", deps.Config.Scrape.Results, "target result count")
	platformSpec := fs.String("platforms", "", "platform expression, e.g. \"blogs & social media\"")
	depth := fs.Int("depth", deps.Config.Scrape.Depth, "crawl depth 0-3")
	timeout := fs.Int("timeout", deps.Config.Scrape.TimeoutSeconds, "shared wall-clock budget in seconds")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: %s", `deepscrape "<term|instruction>" [--results=N] [--platforms=STR] [--depth=0|1|2|3] [--timeout=SECONDS]`)
	}
	raw := fs.Arg(0)

	client, err := deps.client()
	if err != nil {
		return err
	}

	ledger := models.NewDefaultCostLedger()
	model := deps.Config.OpenAI.Model
	maxTokens := int64(deps.Config.OpenAI.MaxTokens)

	// interpretation runs before the scrape budget starts ticking
	flags := interpret.Flags{
		Results: *results,
		Timeout: *timeout,
		Depth:   -1,
	}
	if fs.Changed("platforms") {
		flags.Platforms = *platformSpec
	}
	if fs.Changed("depth") || interpret.IsBareTerm(raw) {
		flags.Depth = *depth
	}

	interpRC := models.NewRunContext(ctx, ledger, 0)
	defer interpRC.Close()
	req, err := interpret.New(client, model, maxTokens).Interpret(interpRC, raw, flags)
	if err != nil {
		return err
	}

	targets, err := platforms.Resolve(req.PlatformSpec)
	if err != nil {
		return err
	}

	result, err := deps.Pipeline(ctx, deps, client, ledger, req, targets)
	if err != nil {
		return err
	}

	if len(result.Records) > 0 {
		path := exportpkg.DeepscrapePath(deps.Config.Output.DataDir, req.SearchTerm)
		if err := exportpkg.WriteCSV(path, result.Records); err != nil {
			return err
		}
		fmt.Fprintf(deps.Out, "Dataset written to %s\n", path)
	}

	fmt.Fprintf(deps.Out, "Collected %d of %d requested results", len(result.Records), req.TargetResults)
	if result.TimedOut {
		fmt.Fprint(deps.Out, " (timeout exceeded, partial results)")
	}
	fmt.Fprintln(deps.Out)
	printCostSummary(deps, ledger, len(result.Records))
	return nil
}

// runPipeline starts the browser session and drives the orchestrator
// under the request's deadline.
func runPipeline(ctx context.Context, deps Deps, client openai.Client, ledger *models.CostLedger, req *models.ScrapeRequest, targets []models.PlatformTarget) (*scrape.Result, error) {
	extractor := vision.NewExtractor(client, deps.Config.OpenAI.Model, int64(deps.Config.OpenAI.MaxTokens))

	var visitor scrape.PageVisitor
	session := scrape.NewSession(deps.Config.Scrape.Headless, deps.Config.Scrape.ProfileDir)
	if err := session.Start("default"); err != nil {
		logging.Warnf("browser unavailable, static fallback only: %v", err)
	} else {
		visitor = scrape.NewSessionVisitor(session)
		defer session.Close()
	}

	orch := scrape.NewOrchestrator(visitor, scrape.NewStaticSearcher(), extractor, deps.Config.Scrape.MaxScrolls, true)

	rc := models.NewRunContext(ctx, ledger, req.Timeout())
	defer rc.Close()

	return orch.Run(rc, req, targets)
}

func printCostSummary(deps Deps, ledger *models.CostLedger, records int) {
	fmt.Fprintf(deps.Out, "Tokens: %d prompt / %d completion over %d calls\n",
		ledger.PromptTokens(), ledger.CompletionTokens(), ledger.CallCount())
	fmt.Fprintf(deps.Out, "Estimated cost: $%.4f", ledger.EstimatedCost())
	if records > 0 {
		fmt.Fprintf(deps.Out, " ($%.4f per result)", ledger.AveragePerRecord(records))
	}
	fmt.Fprintln(deps.Out)
}
