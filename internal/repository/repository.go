// Package repository offers firmware packages described by package.ini
// manifests, read from a storage directory or an S3 bucket.
package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/autopeer-io/ft/internal/core"
	"github.com/autopeer-io/ft/internal/version"
	"github.com/autopeer-io/ft/pkg/log"
)

// Repository implements core.Repository over a Source. Manifests are read
// once, on the first FindCandidates call.
type Repository struct {
	source   Source
	systemID string

	mu       sync.Mutex
	loaded   bool
	packages []*core.Package
}

var _ core.Repository = (*Repository)(nil)

// New returns a repository reading from source. systemID is used for
// limit_system_support checks on devices that carry no system tag.
func New(source Source, systemID string) *Repository {
	return &Repository{source: source, systemID: systemID}
}

// Packages returns every valid package of the repository.
func (r *Repository) Packages(ctx context.Context) ([]*core.Package, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return r.packages, nil
	}

	manifests, err := r.source.Manifests(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range manifests {
		pkg, err := ParseManifest(m)
		if err != nil {
			log.Warn("Ignoring invalid package manifest", "path", m.Path, "error", err)
			continue
		}
		r.packages = append(r.packages, pkg)
	}
	r.loaded = true

	log.Debug("Loaded repository", "packages", len(r.packages))
	return r.packages, nil
}

// FindCandidates returns the packages for dev newer than its installed
// version, newest first. Equal versions keep manifest path order.
func (r *Repository) FindCandidates(ctx context.Context, dev core.Device) ([]*core.Package, error) {
	pkgs, err := r.Packages(ctx)
	if err != nil {
		return nil, err
	}

	var out []*core.Package
	for _, pkg := range pkgs {
		if pkg.DeviceID != dev.ID {
			continue
		}
		if dev.Version != "" && version.Compare(pkg.Version, dev.Version) <= 0 {
			continue
		}
		out = append(out, pkg)
	}

	slices.SortStableFunc(out, func(a, b *core.Package) int {
		return version.Compare(b.Version, a.Version)
	})
	return out, nil
}

// CheckDependencies checks limit_system_support and every requirement of
// pkg in order. A requirement is met by a device fact satisfying its
// constraint. Without such a fact, repository packages of that name and a
// satisfying version are returned as providers in a
// *core.PendingDependencyError; whether one of them is installed in the
// run is up to the caller.
func (r *Repository) CheckDependencies(pkg *core.Package, dev core.Device) error {
	if pkg.SystemSupport != "" {
		system := dev.System
		if system == "" {
			system = r.systemID
		}
		if !strings.EqualFold(pkg.SystemSupport, system) {
			if system == "" {
				system = "unknown"
			}
			return &core.UnmetDependencyError{
				Reason: fmt.Sprintf("package is limited to system %s, this system is %s", pkg.SystemSupport, system),
			}
		}
	}

	var pending []core.PendingDependency
	for _, dep := range pkg.Dependencies {
		providers, reason := r.unmet(dep, dev)
		if reason != "" {
			return &core.UnmetDependencyError{Dependency: dep, Reason: reason}
		}
		if len(providers) > 0 {
			pending = append(pending, core.PendingDependency{Dependency: dep, Providers: providers})
		}
	}
	if len(pending) > 0 {
		return &core.PendingDependencyError{Pending: pending}
	}
	return nil
}

// unmet returns why dep does not hold, or "" when it does. Providers are
// returned when only repository packages can meet dep.
func (r *Repository) unmet(dep core.Dependency, dev core.Device) ([]*core.Package, string) {
	if have, ok := dev.Fact(dep.Name); ok {
		met, err := version.Satisfies(have, dep.Constraint)
		if err != nil {
			return nil, fmt.Sprintf("invalid requirement %q: %v", dep, err)
		}
		if met {
			return nil, ""
		}
		return nil, fmt.Sprintf("requires %s, found %s %s", dep, dep.Name, have)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var providers []*core.Package
	for _, p := range r.packages {
		if p.Name != dep.Name {
			continue
		}
		if met, err := version.Satisfies(p.Version, dep.Constraint); err == nil && met {
			providers = append(providers, p)
		}
	}
	if len(providers) == 0 {
		return nil, core.MissingPrerequisite(dep)
	}
	return providers, ""
}

// Locate returns where an installer can read the payload of pkg.
func (r *Repository) Locate(ctx context.Context, pkg *core.Package) (string, error) {
	return r.source.Locate(ctx, pkg)
}
