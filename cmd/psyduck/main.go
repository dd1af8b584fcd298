package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/psyduck-osint/psyduck/internal/config"
	"github.com/psyduck-osint/psyduck/internal/logging"
	"github.com/psyduck-osint/psyduck/internal/plugin"
	"github.com/psyduck-osint/psyduck/internal/plugin/builtin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	configFile string
	logLevel   string
)

var registry = plugin.NewRegistry()

var rootCmd = &cobra.Command{
	Use:   "psyduck [command]",
	Short: "AI-assisted web intelligence collector",
	Long: `Psyduck - depth-configurable, AI-assisted web intelligence collector

Given a topic or a natural-language instruction it decides which platforms
to search, crawls each result to a configurable depth, reads rendered
pages through a vision model and emits a deduplicated CSV dataset.

Commands:
  deepscrape "<term|instruction>" [--results=N] [--platforms=STR] [--depth=0|1|2|3] [--timeout=SECONDS]
  webscrape "<term>" <limit> --location=duckduckgo|google|bing
  models | model-info <name> | test-openai
  version

Run without arguments for the interactive shell.

Version: ` + Version,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	// registry commands are not cobra subcommands, let them through
	Args: cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logConfig := logging.Config{
			Level:      cfg.Logging.Level,
			LogDir:     cfg.Logging.LogDir,
			MaxSize:    cfg.Logging.Rotation.MaxSize,
			MaxBackups: cfg.Logging.Rotation.MaxBackups,
			MaxAge:     cfg.Logging.Rotation.MaxAge,
			Compress:   cfg.Logging.Rotation.Compress,
		}
		if logLevel != "" {
			logConfig.Level = logLevel
		}
		if err := logging.Init(logConfig); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}

		for _, p := range builtin.All(builtin.Deps{
			Config:    cfg,
			Version:   Version,
			BuildDate: BuildTime,
		}) {
			registry.Register(p)
		}
		registry.Freeze()

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if len(args) == 0 {
			return runShell(ctx, registry, os.Stdin, os.Stdout)
		}
		return registry.Dispatch(ctx, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version and build details",
	RunE: func(cmd *cobra.Command, args []string) error {
		return registry.Dispatch(cmd.Context(), []string{"version"})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace|debug|info|warn|error)")

	// plugin command flags stay with the plugin parsers
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(versionCmd)
}

func main() {
	rootCmd.SetContext(context.Background())
	if err := rootCmd.Execute(); err != nil {
		var notFound *plugin.CommandNotFoundError
		if errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, notFound.Error())
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
