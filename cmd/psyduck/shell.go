package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/psyduck-osint/psyduck/internal/plugin"
)

const banner = `
  ┌─────────────────────────────────────────┐
  │  psyduck - web intelligence collector   │
  └─────────────────────────────────────────┘
Type 'help' for commands, 'exit' to leave.`

// runShell is the interactive mode: one command per line, fatal command
// errors return to the prompt instead of exiting the process.
func runShell(ctx context.Context, registry *plugin.Registry, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, banner)
	printHelp(registry, out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "psyduck> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		argv := tokenize(scanner.Text())
		if len(argv) == 0 {
			continue
		}

		switch argv[0] {
		case "exit", "quit":
			fmt.Fprintln(out, "bye")
			return nil
		case "help":
			printHelp(registry, out)
			continue
		}

		if err := registry.Dispatch(ctx, argv); err != nil {
			var notFound *plugin.CommandNotFoundError
			if errors.As(err, &notFound) {
				fmt.Fprintln(out, notFound.Error())
			} else {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
	}
}

func printHelp(registry *plugin.Registry, out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	for _, cmd := range registry.Commands() {
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		fmt.Fprintf(out, "  %-12s %s\n", cmd.Name, cmd.Description)
		fmt.Fprintf(out, "               %s\n", usage)
	}
	fmt.Fprintln(out, "  help         show this list")
	fmt.Fprintln(out, "  exit         leave the shell")
}

// tokenize splits a shell line honoring double and single quotes, so
// multi-word search terms stay one argument.
func tokenize(line string) []string {
	var tokens []string
	var current strings.Builder
	var quote rune
	inToken := false

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens
}
