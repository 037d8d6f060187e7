package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/pflag"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/autopeer-io/ft/internal/core"
)

// ErrHelp is returned by Parse when help was requested.
var ErrHelp = pflag.ErrHelp

const genericSection = "Generic"

// FirstPass is the result of phase one: the mode and the config files.
// It is a snapshot; changing it has no effect on the parser.
type FirstPass struct {
	Options Options
}

// Mode is the selected mode, empty when none was given.
func (f *FirstPass) Mode() string {
	return f.Options.Mode
}

// Parsed is the result of phase two.
type Parsed struct {
	Options Options
	// Args are the positional arguments.
	Args []string

	flags *pflag.FlagSet
}

// Changed reports whether the named flag was set on the command line.
func (p *Parsed) Changed(name string) bool {
	return p.flags.Changed(name)
}

type registration struct {
	section string
	fn      func(fs *pflag.FlagSet)
}

// Parser parses the ft command line in two phases. Phase one only looks
// at the options that select the mode and the config files. Phase two
// parses the whole command line against the shared options plus every
// flag registered with AddFlags in the meantime.
type Parser struct {
	name string
	regs []registration
}

func NewParser(name string) *Parser {
	return &Parser{name: name}
}

// AddFlags registers flags for phase two, listed under section in the
// usage text.
func (p *Parser) AddFlags(section string, fn func(fs *pflag.FlagSet)) {
	p.regs = append(p.regs, registration{section: section, fn: fn})
}

// FirstParse runs phase one over args.
func (p *Parser) FirstParse(args []string) (*FirstPass, error) {
	filtered, err := FilterArgs(firstPassNoValue, firstPassValue, args)
	if err != nil {
		return nil, err
	}

	o := NewOptions()
	fs := pflag.NewFlagSet(p.name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	o.AddFlags(fs)
	if err := fs.Parse(filtered); err != nil {
		return nil, &core.OptionsError{Err: err}
	}
	if err := o.Complete(); err != nil {
		return nil, &core.OptionsError{Err: err}
	}

	return &FirstPass{Options: o.snapshot()}, nil
}

// Parse runs phase two over the complete args. The mode must agree with
// the first pass.
func (p *Parser) Parse(first *FirstPass, args []string) (*Parsed, error) {
	o := NewOptions()
	fs := pflag.NewFlagSet(p.name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fss := p.flagSets(o)
	for _, name := range fss.Order {
		fs.AddFlagSet(fss.FlagSets[name])
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, ErrHelp
		}
		return nil, &core.OptionsError{Err: err}
	}
	if err := o.Complete(); err != nil {
		return nil, &core.OptionsError{Err: err}
	}
	if o.Mode != first.Mode() {
		return nil, &core.OptionsError{Err: fmt.Errorf("mode changed from %q to %q between parses", first.Mode(), o.Mode)}
	}

	return &Parsed{
		Options: o.snapshot(),
		Args:    slices.Clone(fs.Args()),
		flags:   fs,
	}, nil
}

func (p *Parser) flagSets(o *Options) cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.AddFlags(fss.FlagSet(genericSection))
	for _, r := range p.regs {
		r.fn(fss.FlagSet(r.section))
	}
	return fss
}

// PrintUsage writes the usage text with every known flag.
func (p *Parser) PrintUsage(w io.Writer, modes []string) {
	_, _ = fmt.Fprintf(w, "Usage: %s [options]\n\nModes:", p.name)
	for _, m := range modes {
		_, _ = fmt.Fprintf(w, " --%s", m)
	}
	_, _ = fmt.Fprintln(w)
	cliflag.PrintSections(w, p.flagSets(NewOptions()), 0)
}
