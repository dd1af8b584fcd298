// Package builtin holds the commands shipped with the shell. Each plugin
// constructor takes the shared dependency set so tests can swap the
// inference client and output stream.
package builtin

import (
	"context"
	"io"
	"os"

	"github.com/psyduck-osint/psyduck/internal/config"
	"github.com/psyduck-osint/psyduck/internal/models"
	"github.com/psyduck-osint/psyduck/internal/plugin"
	"github.com/psyduck-osint/psyduck/internal/scrape"
	"github.com/psyduck-osint/psyduck/pkg/openai"
)

// PipelineFunc runs an interpreted request against resolved targets.
type PipelineFunc func(ctx context.Context, deps Deps, client openai.Client, ledger *models.CostLedger, req *models.ScrapeRequest, targets []models.PlatformTarget) (*scrape.Result, error)

// Deps is the shared wiring for the builtin plugins.
type Deps struct {
	Config    *config.Config
	Version   string
	BuildDate string

	// NewClient builds the inference client from an API key. Tests
	// substitute a stub here.
	NewClient func(apiKey string) openai.Client

	// APIKey resolves credentials; defaults to config.APIKey.
	APIKey func() (string, error)

	// Pipeline defaults to the browser-backed orchestrator.
	Pipeline PipelineFunc

	Out io.Writer
}

func (d *Deps) fill() {
	if d.NewClient == nil {
		d.NewClient = openai.NewClient
	}
	if d.APIKey == nil {
		d.APIKey = config.APIKey
	}
	if d.Pipeline == nil {
		d.Pipeline = runPipeline
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
}

// All returns every builtin plugin, wired with deps.
func All(deps Deps) []plugin.Plugin {
	deps.fill()
	return []plugin.Plugin{
		DeepscrapePlugin(deps),
		WebscrapePlugin(deps),
		ModelsPlugin(deps),
		VersionPlugin(deps),
	}
}

// client resolves credentials and builds the inference client.
func (d Deps) client() (openai.Client, error) {
	key, err := d.APIKey()
	if err != nil {
		return nil, err
	}
	return d.NewClient(key), nil
}
