package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/autopeer-io/ft/cmd/ft/app/options"
	"github.com/autopeer-io/ft/internal/cli"
	"github.com/autopeer-io/ft/internal/commands"
	"github.com/autopeer-io/ft/internal/core"
	"github.com/autopeer-io/ft/pkg/log"
)

const (
	commandName = "ft"
	commandDesc = `ft inventories the firmware of this system, finds newer packages in the
firmware repository and installs them in dependency order.`
)

// Version is set at build time with -ldflags.
var Version = "dev"

// exitError carries the exit code of a command through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// NewFtCommand returns the root command. Flag parsing is left to the
// two pass parser in internal/cli, cobra only dispatches.
func NewFtCommand(ctx context.Context, stdout, stderr io.Writer) *cobra.Command {
	opts := options.NewFtOptions()
	cmd := &cobra.Command{
		Use:                commandName + " [options]",
		Short:              "Firmware update tool",
		Long:               commandDesc,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := run(ctx, opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if code != 0 || err != nil {
				return &exitError{code: max(code, 1), err: err}
			}
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

func run(ctx context.Context, opts *options.FtOptions, args []string, stdout, stderr io.Writer) (int, error) {
	a := cli.NewApp(commandName, Version, stdout, stderr)
	a.Log = opts.Log
	a.Validate = opts.Validate
	opts.AddFlags(a.Parser.AddFlags)
	if err := commands.Register(a.Registry); err != nil {
		return 1, err
	}
	defer func() { _ = log.Sync() }()

	return a.Run(ctx, args)
}

// Run executes ft with args and returns the process exit code. Fatal
// errors are reported on stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewFtCommand(ctx, stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var exit *exitError
	if !errors.As(err, &exit) {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if exit.err != nil {
		_, _ = fmt.Fprintln(stderr, diagnostic(exit.err))
	}
	return exit.code
}

func diagnostic(err error) string {
	switch {
	case errors.Is(err, core.ErrConfig):
		return "Config Error: " + err.Error()
	case errors.Is(err, core.ErrOptions):
		return "Options Error: " + err.Error()
	case errors.Is(err, core.ErrMode):
		return "Error: " + err.Error()
	case errors.Is(err, context.Canceled):
		return "Exiting on user cancel."
	default:
		return "Error: " + err.Error()
	}
}
