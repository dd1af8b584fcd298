package builtin

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/psyduck-osint/psyduck/internal/models"
	"github.com/psyduck-osint/psyduck/internal/platforms"
	"github.com/psyduck-osint/psyduck/internal/plugin"

	exportpkg "github.com/psyduck-osint/psyduck/internal/export"
)

// WebscrapePlugin is the single-engine listing scrape: one search engine,
// ranked links only.
func WebscrapePlugin(deps Deps) plugin.Plugin {
	return plugin.Plugin{
		Name:        "webscrape",
		Description: "single-engine search listing scrape",
		Version:     deps.Version,
		Commands: []plugin.Command{{
			Name:        "webscrape",
			Description: "scrape ranked results from one search engine",
			Usage:       `webscrape "<term>" <limit> --location=duckduckgo|google|bing`,
			Handler: func(ctx context.Context, args []string) error {
				return runWebscrape(ctx, deps, args)
			},
		}},
	}
}

func runWebscrape(ctx context.Context, deps Deps, args []string) error {
	fs := pflag.NewFlagSet("webscrape", pflag.ContinueOnError)
	location := fs.String("location", platforms.EngineDuckDuckGo, "search engine: duckduckgo, google or bing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: %s", `webscrape "<term>" <limit> --location=duckduckgo|google|bing`)
	}
	term := fs.Arg(0)
	limit, err := strconv.Atoi(fs.Arg(1))
	if err != nil || limit < 1 {
		return fmt.Errorf("limit must be a positive integer, got %q", fs.Arg(1))
	}

	target, err := platforms.ResolveEngine(*location)
	if err != nil {
		return err
	}

	client, err := deps.client()
	if err != nil {
		return err
	}

	ledger := models.NewDefaultCostLedger()
	req, err := models.NewScrapeRequest(term, term, limit, target.Name, models.StageLinksOnly, deps.Config.Scrape.TimeoutSeconds)
	if err != nil {
		return err
	}

	result, err := deps.Pipeline(ctx, deps, client, ledger, req, []models.PlatformTarget{*target})
	if err != nil {
		return err
	}

	if len(result.Records) > 0 {
		path := exportpkg.WebscrapePath(deps.Config.Output.DataDir, target.Name, term)
		if err := exportpkg.WriteCSV(path, result.Records); err != nil {
			return err
		}
		fmt.Fprintf(deps.Out, "Dataset written to %s\n", path)
	}

	fmt.Fprintf(deps.Out, "Collected %d of %d requested results from %s\n",
		len(result.Records), limit, target.Name)
	printCostSummary(deps, ledger, len(result.Records))
	return nil
}
