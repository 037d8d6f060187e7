package cli

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/autopeer-io/ft/internal/config"
)

// Modes selectable on the command line.
const (
	ModeUpdate      = "update"
	ModeInventory   = "inventory"
	ModeBootstrap   = "bootstrap"
	ModeListPlugins = "listplugins"
)

var modeFlags = []string{ModeInventory, ModeUpdate, ModeBootstrap, ModeListPlugins}

// Phase one option sets: everything that decides the mode, the config
// files, logging and plugin selection.
var (
	firstPassNoValue = []string{
		"--version", "-q", "-v", "--quiet", "--verbose", "--trace", "--fake-mode",
		"--inventory", "--update", "--bootstrap", "--listplugins",
	}
	firstPassValue = []string{"-c", "--config", "--disableplugin", "--extra-plugin-config"}
)

// Options are the options every mode shares.
type Options struct {
	Mode            string
	ConfigFiles     []string
	ExtraConfigs    []string
	Verbosity       int
	Trace           bool
	FakeMode        bool
	DisabledPlugins []string
	Version         bool

	// DefaultConfig is set when ConfigFiles fell back to the default.
	DefaultConfig bool

	modes map[string]*bool
}

func NewOptions() *Options {
	o := &Options{Verbosity: 1, modes: make(map[string]*bool, len(modeFlags))}
	for _, m := range modeFlags {
		o.modes[m] = new(bool)
	}
	return o
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(o.modes[ModeInventory], ModeInventory, false, "List the devices of this system.")
	fs.BoolVar(o.modes[ModeUpdate], ModeUpdate, false, "Update firmware of this system.")
	fs.BoolVar(o.modes[ModeBootstrap], ModeBootstrap, false, "List package names that provide updates for this system.")
	fs.BoolVar(o.modes[ModeListPlugins], ModeListPlugins, false, "List available plugins.")

	fs.StringArrayVarP(&o.ConfigFiles, "config", "c", nil, "Override default config file with user-specified config file.")
	fs.StringArrayVar(&o.ExtraConfigs, "extra-plugin-config", nil, "Add additional plugin config file.")
	fs.VarPF((*verboseValue)(&o.Verbosity), "verbose", "v", "Display more verbose output.").NoOptDefVal = "+1"
	fs.VarPF((*quietValue)(&o.Verbosity), "quiet", "q", "Minimize program output. Only errors and warnings are displayed.").NoOptDefVal = "true"
	fs.BoolVar(&o.Trace, "trace", false, "Enable verbose function tracing.")
	fs.BoolVar(&o.FakeMode, "fake-mode", false, "Display fake data for unit-testing.")
	fs.StringArrayVar(&o.DisabledPlugins, "disableplugin", nil, "Disable single named plugin.")
	fs.BoolVar(&o.Version, "version", false, "Show program's version number and exit.")
}

// Complete derives Mode and the config file list from the parsed flags.
func (o *Options) Complete() error {
	var selected []string
	for _, m := range modeFlags {
		if *o.modes[m] {
			selected = append(selected, m)
		}
	}
	if len(selected) > 1 {
		return fmt.Errorf("options --%s are mutually exclusive", joinModes(selected))
	}
	if len(selected) == 1 {
		o.Mode = selected[0]
	}

	if len(o.ConfigFiles) == 0 {
		o.ConfigFiles = []string{config.DefaultConfigFile()}
		o.DefaultConfig = true
	}
	o.ConfigFiles = append(slices.Clone(o.ConfigFiles), o.ExtraConfigs...)
	return nil
}

// verboseValue and quietValue share the verbosity level, so -v and -q
// apply in command line order: "-q -v" is 1, "-v -q" is 0.
type verboseValue int

func (v *verboseValue) Set(s string) error {
	if s == "+1" {
		*v++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*v = verboseValue(1 + n)
	return nil
}

func (v *verboseValue) String() string { return strconv.Itoa(int(*v)) }

func (v *verboseValue) Type() string { return "count" }

type quietValue int

func (q *quietValue) Set(s string) error {
	on, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if on {
		*q = 0
	}
	return nil
}

func (q *quietValue) String() string { return strconv.FormatBool(*q == 0) }

func (q *quietValue) Type() string { return "bool" }

func joinModes(modes []string) string {
	s := modes[0]
	for _, m := range modes[1:] {
		s += " and --" + m
	}
	return s
}

// ConfigSources lists the config files to load. Only the default config
// file may be missing.
func (o *Options) ConfigSources() []config.File {
	files := make([]config.File, 0, len(o.ConfigFiles))
	for i, path := range o.ConfigFiles {
		files = append(files, config.File{Path: path, Optional: o.DefaultConfig && i == 0})
	}
	return files
}

// snapshot copies o without the flag bindings.
func (o *Options) snapshot() Options {
	return Options{
		Mode:            o.Mode,
		ConfigFiles:     slices.Clone(o.ConfigFiles),
		ExtraConfigs:    slices.Clone(o.ExtraConfigs),
		Verbosity:       o.Verbosity,
		Trace:           o.Trace,
		FakeMode:        o.FakeMode,
		DisabledPlugins: slices.Clone(o.DisabledPlugins),
		Version:         o.Version,
		DefaultConfig:   o.DefaultConfig,
	}
}
