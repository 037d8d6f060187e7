// Package installer runs package installs.
package installer

import (
	"context"
	"fmt"

	utilexec "k8s.io/utils/exec"

	"github.com/autopeer-io/ft/internal/core"
)

// Locator resolves where the payload of a package can be read from.
type Locator interface {
	Locate(ctx context.Context, pkg *core.Package) (string, error)
}

// ExecFactory hands out ExecInstallers. Packages without an
// install_command have no installer.
type ExecFactory struct {
	Locator Locator
	Exec    utilexec.Interface
	Shell   string
}

var _ core.InstallerFactory = (*ExecFactory)(nil)

func NewExecFactory(locator Locator) *ExecFactory {
	return &ExecFactory{Locator: locator, Exec: utilexec.New(), Shell: "/bin/sh"}
}

func (f *ExecFactory) InstallerFor(pkg *core.Package) (core.Installer, error) {
	if pkg.InstallCommand == "" {
		return nil, fmt.Errorf("package %s: %w", pkg, core.ErrNoInstaller)
	}
	return &ExecInstaller{pkg: pkg, locator: f.Locator, exec: f.Exec, shell: f.Shell}, nil
}

// MockFactory hands out MockInstallers for every package.
type MockFactory struct {
	Steps int
}

var _ core.InstallerFactory = (*MockFactory)(nil)

func (f *MockFactory) InstallerFor(pkg *core.Package) (core.Installer, error) {
	return NewMockInstaller(pkg, f.Steps), nil
}

// None has no installer for any package.
type None struct{}

var _ core.InstallerFactory = None{}

func (None) InstallerFor(pkg *core.Package) (core.Installer, error) {
	return nil, fmt.Errorf("package %s: %w", pkg, core.ErrNoInstaller)
}
