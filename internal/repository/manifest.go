package repository

import (
	"fmt"
	"strings"

	"github.com/autopeer-io/ft/internal/config"
	"github.com/autopeer-io/ft/internal/core"
)

// ManifestName is the file describing one package.
const ManifestName = "package.ini"

const manifestSection = "package"

// Manifest is the raw content of a package manifest.
type Manifest struct {
	// Path identifies the manifest: a file path or an s3:// URL.
	Path string
	Data []byte
}

// ParseManifest reads the [package] section of a manifest:
//
//	[package]
//	name = dell_bios_0x0527
//	version = A07
//	device_id = system_bios(ven_0x1028_dev_0x0527)
//	requires = chipset_driver >= 2.1, bmc_firmware
//	limit_system_support = 0x0527
//	capabilities = accurate_update_percentage
//	payload = bios.hdr
//	install_command = /usr/sbin/flashbios {location}
func ParseManifest(m Manifest) (*core.Package, error) {
	sections, _, err := config.ParseINI(m.Data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", m.Path, err)
	}

	sec, ok := sections[manifestSection]
	if !ok {
		return nil, fmt.Errorf("manifest %s: missing [%s] section", m.Path, manifestSection)
	}
	for _, key := range []string{"name", "version", "device_id"} {
		if strings.TrimSpace(sec[key]) == "" {
			return nil, fmt.Errorf("manifest %s: missing %s", m.Path, key)
		}
	}

	deps, err := ParseDependencies(sec["requires"])
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", m.Path, err)
	}

	pkg := &core.Package{
		Name:           strings.TrimSpace(sec["name"]),
		Version:        strings.TrimSpace(sec["version"]),
		DeviceID:       strings.TrimSpace(sec["device_id"]),
		Dependencies:   deps,
		SystemSupport:  strings.TrimSpace(sec["limit_system_support"]),
		Path:           m.Path,
		Payload:        strings.TrimSpace(sec["payload"]),
		InstallCommand: strings.TrimSpace(sec["install_command"]),
	}
	for _, c := range splitList(sec["capabilities"]) {
		pkg.Capabilities = append(pkg.Capabilities, core.Capability(c))
	}
	return pkg, nil
}

// ParseDependencies parses a comma separated list of "name [op version]"
// entries, keeping their order.
func ParseDependencies(s string) ([]core.Dependency, error) {
	var deps []core.Dependency
	for _, entry := range splitList(s) {
		i := strings.IndexAny(entry, " \t<>=!^~")
		if i == 0 {
			return nil, fmt.Errorf("dependency %q has no name", entry)
		}
		if i < 0 {
			deps = append(deps, core.Dependency{Name: entry})
			continue
		}
		deps = append(deps, core.Dependency{
			Name:       entry[:i],
			Constraint: strings.TrimSpace(entry[i:]),
		})
	}
	return deps, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
