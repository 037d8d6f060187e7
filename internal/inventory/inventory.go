// Package inventory discovers the devices of the local system.
package inventory

import (
	"context"
	"iter"
	"slices"
	"strings"

	"github.com/autopeer-io/ft/internal/config"
	"github.com/autopeer-io/ft/internal/core"
)

const factPrefix = "fact."

// ConfigInventory reports the [device:<id>] sections of the config:
//
//	[device:system_bios]
//	name = System BIOS
//	version = A05
//	system = 0x0527
//	bootstrap = system_bios(ven_0x1028_dev_0x0527)
//	fact.chipset_driver = 2.1
type ConfigInventory struct {
	cfg *config.Config
}

var _ core.Inventory = (*ConfigInventory)(nil)

func NewConfigInventory(cfg *config.Config) *ConfigInventory {
	return &ConfigInventory{cfg: cfg}
}

func (i *ConfigInventory) Devices(ctx context.Context) iter.Seq[core.Device] {
	return func(yield func(core.Device) bool) {
		for _, id := range i.cfg.DeviceSections() {
			if ctx.Err() != nil {
				return
			}
			if !yield(deviceFromSection(id, i.cfg.DeviceSection(id), i.cfg.SystemID())) {
				return
			}
		}
	}
}

func deviceFromSection(id string, sec map[string]string, systemID string) core.Device {
	dev := core.Device{
		ID:      id,
		Name:    sec["name"],
		Version: sec["version"],
		System:  sec["system"],
		Facts:   make(map[string]string),
	}
	if dev.System == "" {
		dev.System = systemID
	}
	for _, b := range strings.Split(sec["bootstrap"], ",") {
		if b = strings.TrimSpace(b); b != "" {
			dev.Bootstrap = append(dev.Bootstrap, b)
		}
	}
	for k, v := range sec {
		if name, ok := strings.CutPrefix(k, factPrefix); ok && name != "" {
			dev.Facts[name] = v
		}
	}
	return dev
}

// Chain yields the devices of every inventory in turn.
func Chain(invs ...core.Inventory) core.Inventory {
	return chain(invs)
}

type chain []core.Inventory

func (c chain) Devices(ctx context.Context) iter.Seq[core.Device] {
	return func(yield func(core.Device) bool) {
		for _, inv := range c {
			for dev := range inv.Devices(ctx) {
				if !yield(dev) {
					return
				}
			}
		}
	}
}

// Static is a fixed device list.
type Static []core.Device

func (s Static) Devices(context.Context) iter.Seq[core.Device] {
	return slices.Values([]core.Device(s))
}

// Mock returns the devices reported in fake mode.
func Mock() Static {
	return Static{
		{
			ID:        "mock_system_bios",
			Name:      "Mock System BIOS",
			Version:   "A01",
			System:    "0x0000",
			Bootstrap: []string{"mock_system_bios(ven_0x0000_dev_0x0000)"},
			Facts:     map[string]string{"mock_chipset_driver": "1.0"},
		},
		{
			ID:        "mock_nic",
			Name:      "Mock NIC",
			Version:   "1.0",
			System:    "0x0000",
			Bootstrap: []string{"mock_nic(pci_0x8086_0x1521)"},
		},
	}
}
