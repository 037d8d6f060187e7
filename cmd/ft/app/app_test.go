package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/ft/internal/core"
)

func runFt(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func testConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "firmware.conf")
	require.NoError(t, os.WriteFile(path, []byte("[plugin:spinner]\nenabled = 0\n"), 0o644))
	return path
}

func TestRunVersion(t *testing.T) {
	code, out, _ := runFt(t, "--version")
	assert.Zero(t, code)
	assert.Equal(t, Version+"\n", out)
}

func TestRunWithoutMode(t *testing.T) {
	code, _, errOut := runFt(t, "-c", testConfig(t))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error: mode not specified")
	assert.Contains(t, errOut, "Usage: ft [options]")
}

func TestRunMissingConfig(t *testing.T) {
	code, _, errOut := runFt(t, "--inventory", "-c", filepath.Join(t.TempDir(), "missing.conf"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Config Error:")
}

func TestRunConflictingModes(t *testing.T) {
	code, _, errOut := runFt(t, "--inventory", "--update", "-c", testConfig(t))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Options Error:")
}

func TestRunInvalidLogFormat(t *testing.T) {
	code, _, errOut := runFt(t, "--inventory", "--fake-mode", "--log.format", "xml", "-c", testConfig(t))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `invalid log format "xml"`)
}

func TestRunFakeUpdate(t *testing.T) {
	code, out, _ := runFt(t, "--update", "--fake-mode", "--test", "-c", testConfig(t))
	assert.Zero(t, code)
	assert.Contains(t, out, "Test mode complete.")
}

func TestRunHelp(t *testing.T) {
	code, out, _ := runFt(t, "--update", "--help", "-c", testConfig(t))
	assert.Zero(t, code)
	assert.Contains(t, out, "--yes")
	assert.Contains(t, out, "--log.format")
}

func TestDiagnostic(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{core.NewConfigError("a.conf", "bad"), "Config Error: a.conf: bad"},
		{&core.OptionsError{Err: errors.New("bad flag")}, "Options Error: bad flag"},
		{fmt.Errorf("run: %w", context.Canceled), "Exiting on user cancel."},
		{errors.New("boom"), "Error: boom"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, diagnostic(tt.err))
	}
}
