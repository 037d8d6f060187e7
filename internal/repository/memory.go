package repository

import (
	"context"
	"path"

	"github.com/autopeer-io/ft/internal/core"
)

// MemorySource serves a fixed set of manifests.
type MemorySource []Manifest

var _ Source = MemorySource(nil)

func (s MemorySource) Manifests(context.Context) ([]Manifest, error) {
	return s, nil
}

func (s MemorySource) Locate(_ context.Context, pkg *core.Package) (string, error) {
	return path.Join(path.Dir(pkg.Path), pkg.Payload), nil
}

// Mock returns the repository of fake mode. It matches the devices of
// the mock inventory: one usable update, one update with an unmet
// prerequisite and one for the NIC.
func Mock() MemorySource {
	return MemorySource{
		{
			Path: "mock://bios_a02/" + ManifestName,
			Data: []byte("[package]\nname = mock_system_bios\nversion = A02\ndevice_id = mock_system_bios\n" +
				"capabilities = accurate_update_percentage\nrequires = mock_chipset_driver >= 1.0\n"),
		},
		{
			Path: "mock://bios_a03/" + ManifestName,
			Data: []byte("[package]\nname = mock_system_bios\nversion = A03\ndevice_id = mock_system_bios\n" +
				"requires = mock_chipset_driver >= 2.0\n"),
		},
		{
			Path: "mock://nic_1.1/" + ManifestName,
			Data: []byte("[package]\nname = mock_nic\nversion = 1.1\ndevice_id = mock_nic\n"),
		},
	}
}
