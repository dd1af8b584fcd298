package builtin

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/psyduck-osint/psyduck/internal/config"
	"github.com/psyduck-osint/psyduck/internal/plugin"
	"github.com/psyduck-osint/psyduck/pkg/openai"
)

// ModelsPlugin groups the inference-service introspection commands.
func ModelsPlugin(deps Deps) plugin.Plugin {
	return plugin.Plugin{
		Name:        "models",
		Description: "inference service introspection",
		Version:     deps.Version,
		Commands: []plugin.Command{
			{
				Name:        "models",
				Description: "list available models grouped by family",
				Usage:       "models",
				Handler: func(ctx context.Context, args []string) error {
					return runModels(ctx, deps)
				},
			},
			{
				Name:        "model-info",
				Description: "show details for one model",
				Usage:       "model-info <name>",
				Handler: func(ctx context.Context, args []string) error {
					return runModelInfo(ctx, deps, args)
				},
			},
			{
				Name:        "test-openai",
				Description: "probe the inference service connection",
				Usage:       "test-openai",
				Handler: func(ctx context.Context, args []string) error {
					return runTestOpenAI(ctx, deps)
				},
			},
		},
	}
}

func runModels(ctx context.Context, deps Deps) error {
	client, err := deps.client()
	if err != nil {
		return err
	}

	list, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}

	groups := map[string][]openai.ModelInfo{}
	for _, m := range list {
		groups[modelFamily(m.ID)] = append(groups[modelFamily(m.ID)], m)
	}

	for _, family := range []string{"gpt", "embedding", "other"} {
		members := groups[family]
		if len(members) == 0 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
		fmt.Fprintf(deps.Out, "%s models (%d):\n", family, len(members))
		for _, m := range members {
			fmt.Fprintf(deps.Out, "  %s\n", m.ID)
		}
	}
	return nil
}

func modelFamily(id string) string {
	switch {
	case strings.HasPrefix(id, "gpt-") || strings.HasPrefix(id, "o"):
		return "gpt"
	case strings.Contains(id, "embedding"):
		return "embedding"
	default:
		return "other"
	}
}

func runModelInfo(ctx context.Context, deps Deps, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: model-info <name>")
	}

	client, err := deps.client()
	if err != nil {
		return err
	}

	m, err := client.GetModel(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get model: %w", err)
	}

	fmt.Fprintf(deps.Out, "ID:       %s\n", m.ID)
	fmt.Fprintf(deps.Out, "Owner:    %s\n", m.OwnedBy)
	if m.Created > 0 {
		fmt.Fprintf(deps.Out, "Created:  %s\n", time.Unix(m.Created, 0).UTC().Format("2006-01-02"))
	}
	return nil
}

func runTestOpenAI(ctx context.Context, deps Deps) error {
	key, err := deps.APIKey()
	if err != nil {
		return err
	}
	client := deps.NewClient(key)
	fmt.Fprintf(deps.Out, "Using key %s\n", config.RedactKey(key))

	start := time.Now()
	resp, err := client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:     deps.Config.OpenAI.Model,
		MaxTokens: 16,
		Prompt:    "Reply with the single word: ok",
	})
	if err != nil {
		return fmt.Errorf("connection probe failed: %w", err)
	}

	fmt.Fprintf(deps.Out, "Connection OK: model=%s latency=%s reply=%q\n",
		deps.Config.OpenAI.Model, time.Since(start).Round(time.Millisecond), strings.TrimSpace(resp.Content))
	return nil
}
