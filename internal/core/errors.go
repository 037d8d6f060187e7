package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfig marks configuration problems: duplicate modes, unreadable
	// or invalid config files.
	ErrConfig = errors.New("config error")

	// ErrOptions marks malformed command line values.
	ErrOptions = errors.New("options error")

	// ErrMode is returned when no mode, or an unknown one, was selected.
	ErrMode = errors.New("mode not specified")

	// ErrNoInstaller is returned when a package cannot be installed on this
	// platform. It is not fatal to an update run.
	ErrNoInstaller = errors.New("no installer available")
)

// ConfigError describes a configuration problem. It matches ErrConfig.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Source == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// NewConfigError returns a ConfigError for source with a formatted message.
func NewConfigError(source, format string, args ...any) *ConfigError {
	return &ConfigError{Source: source, Err: fmt.Errorf(format, args...)}
}

// OptionsError wraps a command line parsing failure. It matches ErrOptions.
type OptionsError struct {
	Err error
}

func (e *OptionsError) Error() string { return e.Err.Error() }

func (e *OptionsError) Unwrap() error { return e.Err }

func (e *OptionsError) Is(target error) bool { return target == ErrOptions }

// UnmetDependencyError is returned by Repository.CheckDependencies.
type UnmetDependencyError struct {
	Dependency Dependency
	Reason     string
}

func (e *UnmetDependencyError) Error() string {
	return e.Reason
}

// PendingDependency is a requirement that no device fact satisfies but
// packages of the repository would, once installed.
type PendingDependency struct {
	Dependency Dependency
	Providers  []*Package
}

// PendingDependencyError is returned by Repository.CheckDependencies when
// every other requirement holds. The package is only installable if one
// provider of each pending requirement is installed in the same run.
type PendingDependencyError struct {
	Pending []PendingDependency
}

// MissingPrerequisite is the failure reason of a requirement that nothing
// installed or installable in the run meets.
func MissingPrerequisite(dep Dependency) string {
	return fmt.Sprintf("missing prerequisite %s", dep)
}

func (e *PendingDependencyError) Error() string {
	deps := make([]string, 0, len(e.Pending))
	for _, p := range e.Pending {
		deps = append(deps, p.Dependency.String())
	}
	return "requires packages from the repository: " + strings.Join(deps, ", ")
}

// InstallError is a failed install. Detail carries the low-level output,
// typically from the flashing command.
type InstallError struct {
	Package *Package
	Detail  string
	Err     error
}

func (e *InstallError) Error() string {
	msg := fmt.Sprintf("installation failed for package %s", e.Package)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InstallError) Unwrap() error { return e.Err }
