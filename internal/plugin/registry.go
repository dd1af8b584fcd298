package plugin

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/psyduck-osint/psyduck/internal/logging"
)

// HandlerFunc executes one command invocation. args excludes the command
// name itself.
type HandlerFunc func(ctx context.Context, args []string) error

// Command is one dispatchable operation.
type Command struct {
	Name        string
	Description string
	Usage       string
	Handler     HandlerFunc
}

// Plugin is a named bundle of commands.
type Plugin struct {
	Name        string
	Description string
	Version     string
	Commands    []Command
}

// CommandNotFoundError marks an unknown command name. It is a user error:
// the interactive shell prints it and continues.
type CommandNotFoundError struct {
	Name string
}

func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("unknown command %q, run 'help' for the command list", e.Name)
}

// Registry holds the command table. It is populated at startup, frozen,
// and read-only afterward.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	plugins  []Plugin
	frozen   bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a plugin's commands. A name collision is last-write-wins
// with a warning. Registration after Freeze is ignored.
func (r *Registry) Register(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		logging.Warnf("registry frozen, plugin %s ignored", p.Name)
		return
	}

	r.plugins = append(r.plugins, p)
	for _, cmd := range p.Commands {
		if _, exists := r.commands[cmd.Name]; exists {
			logging.Warnf("command %q re-registered by plugin %s", cmd.Name, p.Name)
		}
		r.commands[cmd.Name] = cmd
	}
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Dispatch resolves argv[0] and runs its handler with the remaining args.
func (r *Registry) Dispatch(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return &CommandNotFoundError{Name: ""}
	}

	r.mu.RLock()
	cmd, ok := r.commands[argv[0]]
	r.mu.RUnlock()

	if !ok {
		return &CommandNotFoundError{Name: argv[0]}
	}
	return cmd.Handler(ctx, argv[1:])
}

// Commands returns the registered commands sorted by name.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Plugins returns the registered plugins in registration order.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Plugin(nil), r.plugins...)
}
