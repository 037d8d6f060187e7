package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/ft/internal/config"
	"github.com/autopeer-io/ft/internal/core"
)

func TestFirstParseDefaults(t *testing.T) {
	first, err := NewParser("ft").FirstParse([]string{"--update", "--yes", "positional"})
	require.NoError(t, err)

	assert.Equal(t, ModeUpdate, first.Mode())
	assert.Equal(t, []string{config.DefaultConfigFile()}, first.Options.ConfigFiles)
	assert.True(t, first.Options.DefaultConfig)
	assert.Equal(t, 1, first.Options.Verbosity)
	assert.True(t, first.Options.ConfigSources()[0].Optional)
}

func TestFirstParseConfigFiles(t *testing.T) {
	first, err := NewParser("ft").FirstParse([]string{
		"--extra-plugin-config", "plugin.conf", "-c", "a.conf", "--config=b.conf", "-cc.conf", "--inventory",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.conf", "b.conf", "c.conf", "plugin.conf"}, first.Options.ConfigFiles)
	assert.False(t, first.Options.DefaultConfig)
	for _, f := range first.Options.ConfigSources() {
		assert.False(t, f.Optional, f.Path)
	}
}

func TestFirstParseVerbosity(t *testing.T) {
	tests := []struct {
		args []string
		want int
	}{
		{nil, 1},
		{[]string{"-v"}, 2},
		{[]string{"-v", "--verbose"}, 3},
		{[]string{"-v", "-q"}, 0},
		{[]string{"-q", "-v"}, 1},
		{[]string{"-q", "-v", "-v"}, 2},
		{[]string{"--verbose", "--quiet", "--verbose"}, 1},
	}
	for _, tt := range tests {
		first, err := NewParser("ft").FirstParse(tt.args)
		require.NoError(t, err)
		assert.Equal(t, tt.want, first.Options.Verbosity, "%v", tt.args)
	}
}

func TestFirstParseModesAreExclusive(t *testing.T) {
	_, err := NewParser("ft").FirstParse([]string{"--update", "--inventory"})
	assert.ErrorIs(t, err, core.ErrOptions)

	first, err := NewParser("ft").FirstParse([]string{"--update", "--update"})
	require.NoError(t, err)
	assert.Equal(t, ModeUpdate, first.Mode())
}

func TestFirstPassIsSnapshot(t *testing.T) {
	p := NewParser("ft")
	args := []string{"--update", "-c", "a.conf"}
	first, err := p.FirstParse(args)
	require.NoError(t, err)

	first.Options.ConfigFiles[0] = "changed.conf"

	again, err := p.FirstParse(args)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.conf"}, again.Options.ConfigFiles)
}

func TestParseWithRegisteredFlags(t *testing.T) {
	p := NewParser("ft")
	args := []string{"--update", "-vv", "--yes", "--disableplugin", "spinner", "extra"}
	first, err := p.FirstParse(args)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Options.Verbosity, "glued counters are only seen by the full parse")

	var yes bool
	p.AddFlags("Update", func(fs *pflag.FlagSet) {
		fs.BoolVarP(&yes, "yes", "y", false, "")
	})

	parsed, err := p.Parse(first, args)
	require.NoError(t, err)

	assert.True(t, yes)
	assert.True(t, parsed.Changed("yes"))
	assert.False(t, parsed.Changed("trace"))
	assert.Equal(t, 3, parsed.Options.Verbosity)
	assert.Equal(t, []string{"spinner"}, parsed.Options.DisabledPlugins)
	assert.Equal(t, []string{"extra"}, parsed.Args)
}

func TestParseUnknownFlag(t *testing.T) {
	p := NewParser("ft")
	args := []string{"--update", "--yes"}
	first, err := p.FirstParse(args)
	require.NoError(t, err)

	_, err = p.Parse(first, args)
	assert.ErrorIs(t, err, core.ErrOptions)
}

func TestParseHelp(t *testing.T) {
	p := NewParser("ft")
	first, err := p.FirstParse([]string{"--update", "--help"})
	require.NoError(t, err)

	_, err = p.Parse(first, []string{"--update", "--help"})
	assert.ErrorIs(t, err, ErrHelp)
}

func TestPrintUsage(t *testing.T) {
	p := NewParser("ft")
	p.AddFlags("Update", func(fs *pflag.FlagSet) {
		fs.Bool("test", false, "Only report what would be updated.")
	})

	var out bytes.Buffer
	p.PrintUsage(&out, []string{ModeInventory, ModeUpdate})

	assert.Contains(t, out.String(), "Usage: ft [options]")
	assert.Contains(t, out.String(), "--inventory --update")
	assert.Contains(t, out.String(), "Generic flags:")
	assert.Contains(t, out.String(), "Update flags:")
	assert.Contains(t, out.String(), "--extra-plugin-config")
}
