package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDefaults(t *testing.T) {
	s := Resolve(nil, false, nil)

	assert.True(t, s.Enabled(ConfigInventory))
	assert.True(t, s.Enabled(ExecInstaller))
	assert.False(t, s.Enabled(MockInventory))
	assert.False(t, s.Enabled(MockInstaller))
	assert.False(t, s.Enabled("unknown"))
	assert.Len(t, s.Entries(), len(Catalogue))
}

func TestResolveFakeMode(t *testing.T) {
	s := Resolve(nil, true, nil)

	assert.True(t, s.Enabled(MockInventory))
	assert.True(t, s.Enabled(MockInstaller))
	assert.False(t, s.Enabled(ConfigInventory))
	assert.False(t, s.Enabled(ExecInstaller))
	assert.True(t, s.Enabled(Spinner), "types without a mock are untouched")
}

func TestResolveDisabling(t *testing.T) {
	configSwitch := func(name string) (bool, bool) {
		switch name {
		case MqttStatus:
			return false, true
		case Spinner:
			return true, true
		}
		return false, false
	}

	s := Resolve([]string{" Spinner ", Metrics}, false, configSwitch)

	reasons := map[string]Reason{}
	for _, e := range s.Entries() {
		reasons[e.Name] = e.Reason
	}
	assert.Equal(t, ReasonDisabledCLI, reasons[Spinner])
	assert.Equal(t, ReasonDisabledCLI, reasons[Metrics])
	assert.Equal(t, ReasonDisabledConfig, reasons[MqttStatus])
	assert.Equal(t, ReasonEnabled, reasons[ConfigInventory])
	assert.Equal(t, ReasonFakeModeOnly, reasons[MockInventory])
}
