package resolver

import (
	"slices"

	"github.com/autopeer-io/ft/internal/core"
)

// DependencyFailure records why a candidate was excluded from selection.
type DependencyFailure struct {
	Package *core.Package
	// Reason is the most recently recorded reason for this identity.
	Reason string
	// Reasons keeps every distinct reason seen for this identity during
	// the run, in the order they were first recorded.
	Reasons []string
}

// DependencyFailures maps a package identity to its failure, keeping the
// insertion order of identities for stable reporting.
type DependencyFailures struct {
	byID  map[string]*DependencyFailure
	order []string
}

func newDependencyFailures() *DependencyFailures {
	return &DependencyFailures{byID: make(map[string]*DependencyFailure)}
}

// record stores a failure for pkg. A second failure under the same
// identity replaces Reason (last write wins) and reports the reason it
// replaced, if different.
func (f *DependencyFailures) record(pkg *core.Package, reason string) (replaced string) {
	id := pkg.Identity()
	existing, ok := f.byID[id]
	if !ok {
		f.byID[id] = &DependencyFailure{Package: pkg, Reason: reason, Reasons: []string{reason}}
		f.order = append(f.order, id)
		return ""
	}

	if existing.Reason != reason {
		replaced = existing.Reason
	}
	existing.Package = pkg
	existing.Reason = reason
	if !slices.Contains(existing.Reasons, reason) {
		existing.Reasons = append(existing.Reasons, reason)
	}
	return replaced
}

// Get returns the failure recorded for a package identity.
func (f *DependencyFailures) Get(identity string) (*DependencyFailure, bool) {
	df, ok := f.byID[identity]
	return df, ok
}

// Has reports whether pkg has a recorded failure.
func (f *DependencyFailures) Has(pkg *core.Package) bool {
	_, ok := f.byID[pkg.Identity()]
	return ok
}

// Len returns the number of distinct identities recorded.
func (f *DependencyFailures) Len() int {
	return len(f.order)
}

// All returns the failures in the order identities were first recorded.
func (f *DependencyFailures) All() []*DependencyFailure {
	out := make([]*DependencyFailure, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.byID[id])
	}
	return out
}

// DeviceUpdate is the resolution outcome for one device.
type DeviceUpdate struct {
	Device     core.Device
	Candidates []*core.Package
	// Selected is nil when no candidate passed the dependency checks.
	Selected *core.Package

	passed   []check
	selected check
}

// check is a candidate that passed its dependency checks, possibly
// relying on other packages of the run.
type check struct {
	pkg     *core.Package
	pending []core.PendingDependency
}

// UpdateSet is the outcome of one resolution run.
type UpdateSet struct {
	devices  []*DeviceUpdate
	byDevice map[string]*DeviceUpdate
	failures *DependencyFailures
}

func newUpdateSet() *UpdateSet {
	return &UpdateSet{
		byDevice: make(map[string]*DeviceUpdate),
		failures: newDependencyFailures(),
	}
}

// add registers a device. It returns false if the device was already
// present, keeping the first entry.
func (s *UpdateSet) add(dev core.Device) (*DeviceUpdate, bool) {
	if _, ok := s.byDevice[dev.ID]; ok {
		return nil, false
	}
	du := &DeviceUpdate{Device: dev}
	s.devices = append(s.devices, du)
	s.byDevice[dev.ID] = du
	return du, true
}

// Devices returns each device once, in inventory order.
func (s *UpdateSet) Devices() []*DeviceUpdate {
	return s.devices
}

// ForDevice returns the outcome for a device id.
func (s *UpdateSet) ForDevice(id string) (*DeviceUpdate, bool) {
	du, ok := s.byDevice[id]
	return du, ok
}

// Failures returns the dependency failures of the run.
func (s *UpdateSet) Failures() *DependencyFailures {
	return s.failures
}

// Selected returns the chosen package of every device that has one, in
// device order.
func (s *UpdateSet) Selected() []*core.Package {
	var out []*core.Package
	for _, du := range s.devices {
		if du.Selected != nil {
			out = append(out, du.Selected)
		}
	}
	return out
}

// NeedsUpdate reports whether at least one device has a selection.
func (s *UpdateSet) NeedsUpdate() bool {
	for _, du := range s.devices {
		if du.Selected != nil {
			return true
		}
	}
	return false
}
