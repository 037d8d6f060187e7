package core

import (
	"context"
	"iter"
)

// Repository offers candidate packages and evaluates their dependency
// preconditions.
type Repository interface {
	// FindCandidates returns packages newer than dev.Version that apply to
	// dev, in priority order.
	FindCandidates(ctx context.Context, dev Device) ([]*Package, error)

	// CheckDependencies returns nil when every dependency of pkg holds for
	// dev, a *PendingDependencyError when the remaining ones can only be
	// met by installing repository packages, and an error describing the
	// first unmet one otherwise.
	CheckDependencies(pkg *Package, dev Device) error
}

// Inventory produces the devices of the local system. The sequence is
// finite and may only be ranged over once.
type Inventory interface {
	Devices(ctx context.Context) iter.Seq[Device]
}

// Installer performs the install of one package. Install blocks until
// the operation ends; Progress and Status may be called concurrently
// from another goroutine while it runs.
type Installer interface {
	Install(ctx context.Context) error

	// Progress returns completion in the range [0, 1]. Only meaningful
	// for packages with CapAccurateProgress.
	Progress() float64

	// Status returns a short human readable outcome.
	Status() string
}

// InstallerFactory hands out the installer for a package. It returns an
// error wrapping ErrNoInstaller when none exists for this platform.
type InstallerFactory interface {
	InstallerFor(pkg *Package) (Installer, error)
}
