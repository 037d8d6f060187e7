package inventory

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/ft/internal/config"
)

func TestConfigInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "firmware.conf")
	require.NoError(t, os.WriteFile(path, []byte(`
[main]
system_id = 0x0527

[device:system_bios]
name = System BIOS
version = A05
bootstrap = system_bios(ven_0x1028_dev_0x0527), dell_bios
fact.chipset_driver = 2.1

[device:nic0]
name = NIC
version = 1.61
system = 0x0600
`), 0o644))
	cfg, err := config.Load([]config.File{{Path: path}})
	require.NoError(t, err)

	devs := slices.Collect(NewConfigInventory(cfg).Devices(context.Background()))
	require.Len(t, devs, 2)

	assert.Equal(t, "system_bios", devs[0].ID)
	assert.Equal(t, "System BIOS", devs[0].Name)
	assert.Equal(t, "A05", devs[0].Version)
	assert.Equal(t, "0x0527", devs[0].System)
	assert.Equal(t, []string{"system_bios(ven_0x1028_dev_0x0527)", "dell_bios"}, devs[0].Bootstrap)
	v, ok := devs[0].Fact("chipset_driver")
	assert.True(t, ok)
	assert.Equal(t, "2.1", v)

	assert.Equal(t, "0x0600", devs[1].System)
}

func TestChainStopsEarly(t *testing.T) {
	inv := Chain(Static{{ID: "a"}, {ID: "b"}}, Mock())

	var ids []string
	for dev := range inv.Devices(context.Background()) {
		ids = append(ids, dev.ID)
		if len(ids) == 3 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b", "mock_system_bios"}, ids)
}

func TestConfigInventoryStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "firmware.conf")
	require.NoError(t, os.WriteFile(path, []byte("[device:nic0]\nversion = 1.0\n"), 0o644))
	cfg, err := config.Load([]config.File{{Path: path}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Empty(t, slices.Collect(NewConfigInventory(cfg).Devices(ctx)))
}
