package ordering

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/ft/internal/core"
)

func newPkg(name string, deps ...string) *core.Package {
	p := &core.Package{Name: name, Version: "1.0"}
	for _, d := range deps {
		p.Dependencies = append(p.Dependencies, core.Dependency{Name: d})
	}
	return p
}

func assertTopological(t *testing.T, ordered []*core.Package) {
	t.Helper()
	for i, p := range ordered {
		for _, dep := range p.Dependencies {
			j := slices.IndexFunc(ordered, func(q *core.Package) bool { return q.Name == dep.Name })
			if j >= 0 {
				assert.Less(t, j, i, "%s must come before %s", dep.Name, p.Name)
			}
		}
	}
}

func TestOrderNoEdgesIsStable(t *testing.T) {
	in := []*core.Package{newPkg("c"), newPkg("a"), newPkg("b")}
	out, err := Order(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestOrderDependenciesFirst(t *testing.T) {
	bios := newPkg("system_bios", "chipset")
	chipset := newPkg("chipset")
	bmc := newPkg("bmc")
	in := []*core.Package{bios, bmc, chipset}

	out, err := Order(in)
	require.NoError(t, err)
	assert.Equal(t, []*core.Package{bmc, chipset, bios}, out)
	assertTopological(t, out)
}

func TestOrderChain(t *testing.T) {
	a := newPkg("a", "b")
	b := newPkg("b", "c")
	c := newPkg("c")
	d := newPkg("d")

	out, err := Order([]*core.Package{a, d, b, c})
	require.NoError(t, err)
	assert.Equal(t, []*core.Package{d, c, b, a}, out)
	assertTopological(t, out)
}

func TestOrderIgnoresDependenciesOutsideSelection(t *testing.T) {
	in := []*core.Package{newPkg("nic", "driver_not_selected"), newPkg("bios")}
	out, err := Order(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestOrderMutualDependencyFails(t *testing.T) {
	a := newPkg("a", "b")
	b := newPkg("b", "a")

	for range 3 {
		out, err := Order([]*core.Package{a, b})
		require.ErrorIs(t, err, ErrCycle)
		assert.Nil(t, out)

		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []*core.Package{a, b}, cycle.Packages)
		assert.Contains(t, err.Error(), "a-1.0, b-1.0")
	}
}

func TestOrderSelfDependencyIgnored(t *testing.T) {
	in := []*core.Package{newPkg("a", "a")}
	out, err := Order(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestOrderEmpty(t *testing.T) {
	out, err := Order(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
