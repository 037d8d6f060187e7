// Package cli resolves the ft command line: it picks the mode in a first
// pass over a restricted set of options, lets the mode's command extend
// the option set, then parses everything and runs the command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/autopeer-io/ft/internal/config"
	"github.com/autopeer-io/ft/internal/core"
	"github.com/autopeer-io/ft/internal/plugins"
	"github.com/autopeer-io/ft/pkg/log"
)

// Runtime is what commands see of the application.
type Runtime struct {
	Name    string
	Version string
	First   *FirstPass
	Config  *config.Config
	Plugins *plugins.Set
	Stdout  io.Writer
	Stderr  io.Writer

	parser *Parser
}

// AddFlags registers flags for the full parse. It is meant to be called
// from Command.DoCheck.
func (rt *Runtime) AddFlags(section string, fn func(fs *pflag.FlagSet)) {
	rt.parser.AddFlags(section, fn)
}

// App wires the registry and the parser together.
type App struct {
	Name     string
	Version  string
	Registry *Registry
	Parser   *Parser
	// Log is reconfigured from the verbosity options of each pass.
	Log *log.Options
	// Validate, if set, checks application options after the full parse.
	Validate func() error

	Stdout io.Writer
	Stderr io.Writer
}

func NewApp(name, version string, stdout, stderr io.Writer) *App {
	return &App{
		Name:     name,
		Version:  version,
		Registry: NewRegistry(),
		Parser:   NewParser(name),
		Log:      log.NewOptions(),
		Stdout:   stdout,
		Stderr:   stderr,
	}
}

// Run parses args and runs the selected command, returning its exit
// code. Errors are returned with exit code 1 unless a command says
// otherwise; printing them is left to the caller.
func (a *App) Run(ctx context.Context, args []string) (int, error) {
	first, err := a.Parser.FirstParse(args)
	if err != nil {
		return 1, err
	}
	if first.Options.Version {
		_, _ = fmt.Fprintln(a.Stdout, a.Version)
		return 0, nil
	}
	if err := a.initLogging(first.Options); err != nil {
		return 1, err
	}

	rt, err := a.newRuntime(first)
	if err != nil {
		return 1, err
	}

	mode := first.Mode()
	cmd, ok := a.Registry.Lookup(mode)
	if !ok {
		a.Parser.PrintUsage(a.Stderr, a.Registry.Modes())
		if mode == "" {
			return 1, core.ErrMode
		}
		return 1, fmt.Errorf("%w: unknown mode %q", core.ErrMode, mode)
	}
	if err := cmd.DoCheck(rt, mode, args); err != nil {
		return 1, err
	}

	parsed, err := a.Parser.Parse(first, args)
	if errors.Is(err, ErrHelp) {
		a.Parser.PrintUsage(a.Stdout, a.Registry.Modes())
		return 0, nil
	}
	if err != nil {
		return 1, err
	}
	if a.Validate != nil {
		if err := a.Validate(); err != nil {
			return 1, &core.OptionsError{Err: err}
		}
	}
	if err := a.initLogging(parsed.Options); err != nil {
		return 1, err
	}

	log.Debug("Running command", "mode", mode, "configs", rt.Config.Files())
	return cmd.DoCommand(ctx, rt, mode, parsed)
}

func (a *App) initLogging(o Options) error {
	a.Log.ApplyVerbosity(o.Verbosity, o.Trace)
	if errs := a.Log.Validate(); len(errs) > 0 {
		return &core.OptionsError{Err: errors.Join(errs...)}
	}
	log.Init(a.Log)
	return nil
}

func (a *App) newRuntime(first *FirstPass) (*Runtime, error) {
	cfg, err := config.Load(first.Options.ConfigSources())
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Name:    a.Name,
		Version: a.Version,
		First:   first,
		Config:  cfg,
		Plugins: plugins.Resolve(first.Options.DisabledPlugins, first.Options.FakeMode, cfg.PluginEnabled),
		Stdout:  a.Stdout,
		Stderr:  a.Stderr,
		parser:  a.Parser,
	}, nil
}
