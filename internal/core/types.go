package core

import (
	"fmt"
	"slices"
)

// Capability is a queryable package predicate.
type Capability string

const (
	// CapAccurateProgress marks packages whose installer reports a real
	// completion percentage instead of an indeterminate spinner.
	CapAccurateProgress Capability = "accurate_update_percentage"
)

// Device is a snapshot of one fleet member taken by an inventory plugin.
// It does not change for the duration of a run.
type Device struct {
	// ID is the unique instance identifier packages are matched against.
	ID string
	// Name is the human readable device name.
	Name string
	// Version is the currently installed firmware version.
	Version string
	// System is the system id tag compared with limit_system_support.
	System string
	// Facts holds versions of installed prerequisites, keyed by name.
	Facts map[string]string
	// Bootstrap lists package names a package manager could install to
	// obtain updates for this device.
	Bootstrap []string
}

func (d Device) String() string {
	if d.Name == "" {
		return d.ID
	}
	return d.Name
}

// Fact returns the named prerequisite version.
func (d Device) Fact(name string) (string, bool) {
	v, ok := d.Facts[name]
	return v, ok
}

// Dependency is a single ordered constraint of a package, such as
// "chipset_driver >= 2.1". Constraint may be empty, meaning any version.
type Dependency struct {
	Name       string
	Constraint string
}

func (d Dependency) String() string {
	if d.Constraint == "" {
		return d.Name
	}
	return d.Name + " " + d.Constraint
}

// Package is a firmware package offered by a repository.
type Package struct {
	Name    string
	Version string
	// DeviceID is the unique instance of the device this package updates.
	DeviceID string
	// Dependencies are evaluated in order; the first failure is reported.
	Dependencies []Dependency
	Capabilities []Capability
	// SystemSupport is the optional limit_system_support qualifier.
	SystemSupport string
	// Path identifies where the package manifest was found.
	Path string
	// Payload is the firmware image, relative to the manifest.
	Payload string
	// InstallCommand is run by the exec installer. Empty means no
	// installer is available for this package.
	InstallCommand string
}

// Identity is the composite key used to deduplicate dependency failures:
// name-version, suffixed with the system support tag when present.
func (p *Package) Identity() string {
	id := fmt.Sprintf("%s-%s", p.Name, p.Version)
	if p.SystemSupport != "" {
		id += "-" + p.SystemSupport
	}
	return id
}

// HasCapability reports whether the package advertises c.
func (p *Package) HasCapability(c Capability) bool {
	return slices.Contains(p.Capabilities, c)
}

func (p *Package) String() string {
	return fmt.Sprintf("%s - %s", p.Name, p.Version)
}
