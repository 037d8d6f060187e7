// Package plugins is the catalogue of compiled-in ft plugins and decides
// which of them are active for a run.
package plugins

import (
	"slices"
	"strings"
)

// Type groups plugins by what they contribute.
type Type string

const (
	// TypeCore plugins are part of every run.
	TypeCore Type = "core"
	// TypeInteractive plugins contribute to terminal output.
	TypeInteractive Type = "interactive"
	// TypeInventory plugins report devices.
	TypeInventory Type = "inventory"
	// TypeBootstrap plugins report bootstrap package names.
	TypeBootstrap Type = "bootstrap"
	// TypeInstaller plugins install packages.
	TypeInstaller Type = "installer"
)

// Plugin names of the catalogue.
const (
	ConfigInventory = "config_inventory"
	MockInventory   = "mock_inventory"
	ExecInstaller   = "exec_installer"
	MockInstaller   = "mock_installer"
	MqttStatus      = "mqtt_status"
	Spinner         = "spinner"
	Metrics         = "metrics_textfile"
)

// Plugin describes one catalogue entry.
type Plugin struct {
	Name        string
	Type        Type
	Description string
	// Mock plugins only run in fake mode and replace the real plugins of
	// their type there.
	Mock bool
}

// Catalogue lists every plugin ft knows, in listing order.
var Catalogue = []Plugin{
	{Name: ConfigInventory, Type: TypeInventory, Description: "Devices declared in [device:<id>] config sections"},
	{Name: MockInventory, Type: TypeInventory, Description: "Simulated devices", Mock: true},
	{Name: ExecInstaller, Type: TypeInstaller, Description: "Runs the install_command of a package"},
	{Name: MockInstaller, Type: TypeInstaller, Description: "Simulated installs with progress", Mock: true},
	{Name: MqttStatus, Type: TypeCore, Description: "Publishes install status to an MQTT broker"},
	{Name: Metrics, Type: TypeCore, Description: "Writes run metrics to a Prometheus textfile"},
	{Name: Spinner, Type: TypeInteractive, Description: "Spinner and percentage lines on terminals"},
}

// Reason explains the state of a plugin.
type Reason string

const (
	ReasonEnabled        Reason = "enabled"
	ReasonDisabledCLI    Reason = "disabled (--disableplugin)"
	ReasonDisabledConfig Reason = "disabled (config)"
	ReasonFakeModeOnly   Reason = "disabled (fake mode only)"
	ReasonFakeMode       Reason = "disabled (fake mode)"
)

// Entry is a plugin with its state for a run.
type Entry struct {
	Plugin
	Enabled bool
	Reason  Reason
}

// ConfigSwitch reports the enabled key of a plugin's config section.
type ConfigSwitch func(name string) (enabled, set bool)

// Set is the resolved plugin state of a run.
type Set struct {
	entries []Entry
}

// Resolve decides the state of every catalogue plugin. --disableplugin
// names win over config, config wins over the defaults. In fake mode mock
// plugins run instead of real ones of the same type.
func Resolve(disabled []string, fakeMode bool, configSwitch ConfigSwitch) *Set {
	s := &Set{}
	for _, p := range Catalogue {
		e := Entry{Plugin: p, Enabled: true, Reason: ReasonEnabled}
		switch {
		case matches(disabled, p.Name):
			e.Enabled, e.Reason = false, ReasonDisabledCLI
		case p.Mock && !fakeMode:
			e.Enabled, e.Reason = false, ReasonFakeModeOnly
		case !p.Mock && fakeMode && hasMock(p.Type):
			e.Enabled, e.Reason = false, ReasonFakeMode
		case configSwitch != nil:
			if on, set := configSwitch(p.Name); set && !on {
				e.Enabled, e.Reason = false, ReasonDisabledConfig
			}
		}
		s.entries = append(s.entries, e)
	}
	return s
}

func matches(names []string, name string) bool {
	return slices.ContainsFunc(names, func(n string) bool {
		return strings.EqualFold(strings.TrimSpace(n), name)
	})
}

func hasMock(t Type) bool {
	return slices.ContainsFunc(Catalogue, func(p Plugin) bool {
		return p.Mock && p.Type == t
	})
}

// Enabled reports whether the named plugin is active.
func (s *Set) Enabled(name string) bool {
	for _, e := range s.entries {
		if e.Name == name {
			return e.Enabled
		}
	}
	return false
}

// Entries returns every plugin in catalogue order.
func (s *Set) Entries() []Entry {
	return s.entries
}
