package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/autopeer-io/ft/internal/core"
)

// Command handles one or more ft modes.
type Command interface {
	// Modes returns the mode names the command handles.
	Modes() []string

	// DoCheck validates the invocation before the full parse. It may
	// register extra flags with rt.AddFlags.
	DoCheck(rt *Runtime, mode string, args []string) error

	// DoCommand runs the mode and returns the process exit code.
	DoCommand(ctx context.Context, rt *Runtime, mode string, parsed *Parsed) (int, error)
}

// Registry maps mode names to commands. It is filled once at startup.
type Registry struct {
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register binds every mode of cmd. Claiming a mode that is already
// bound is a *core.ConfigError; modes bound before the clash stay bound.
func (r *Registry) Register(cmd Command) error {
	for _, mode := range cmd.Modes() {
		if _, ok := r.commands[mode]; ok {
			return core.NewConfigError("", "command %q already defined", mode)
		}
		r.commands[mode] = cmd
	}
	return nil
}

// Lookup returns the command bound to mode.
func (r *Registry) Lookup(mode string) (Command, bool) {
	cmd, ok := r.commands[mode]
	return cmd, ok
}

// Modes returns the bound mode names, sorted.
func (r *Registry) Modes() []string {
	modes := make([]string, 0, len(r.commands))
	for m := range r.commands {
		modes = append(modes, m)
	}
	slices.Sort(modes)
	return modes
}

func (r *Registry) String() string {
	return fmt.Sprintf("Registry%v", r.Modes())
}
