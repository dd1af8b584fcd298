package builtin

import (
	"context"
	"fmt"
	"runtime"

	"github.com/psyduck-osint/psyduck/internal/plugin"
)

// VersionPlugin reports build information.
func VersionPlugin(deps Deps) plugin.Plugin {
	return plugin.Plugin{
		Name:        "version",
		Description: "build information",
		Version:     deps.Version,
		Commands: []plugin.Command{{
			Name:        "version",
			Description: "print version and build details",
			Usage:       "version",
			Handler: func(_ context.Context, _ []string) error {
				fmt.Fprintf(deps.Out, "psyduck %s\n", deps.Version)
				fmt.Fprintf(deps.Out, "  build date: %s\n", deps.BuildDate)
				fmt.Fprintf(deps.Out, "  go version: %s\n", runtime.Version())
				fmt.Fprintf(deps.Out, "  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
				return nil
			},
		}},
	}
}
