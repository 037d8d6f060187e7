package resolver

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/ft/internal/core"
)

type fakeRepo struct {
	candidates map[string][]*core.Package
	// failing maps "deviceID/identity" to a failure reason.
	failing map[string]string
	// pending maps an identity to requirements only repository packages meet.
	pending map[string][]core.PendingDependency
	findErr error
}

func (r *fakeRepo) FindCandidates(_ context.Context, dev core.Device) ([]*core.Package, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.candidates[dev.ID], nil
}

func (r *fakeRepo) CheckDependencies(pkg *core.Package, dev core.Device) error {
	if reason, ok := r.failing[dev.ID+"/"+pkg.Identity()]; ok {
		return &core.UnmetDependencyError{Reason: reason}
	}
	if pending, ok := r.pending[pkg.Identity()]; ok {
		return &core.PendingDependencyError{Pending: pending}
	}
	return nil
}

func requires(name, constraint string, providers ...*core.Package) []core.PendingDependency {
	return []core.PendingDependency{{Dependency: core.Dependency{Name: name, Constraint: constraint}, Providers: providers}}
}

func pkg(name, version string) *core.Package {
	return &core.Package{Name: name, Version: version, Path: "/repo/" + name + "-" + version + "/package.ini"}
}

func TestResolveSelectsFirstPassingCandidate(t *testing.T) {
	v11 := pkg("d1_bios", "1.1")
	v12 := pkg("d1_bios", "1.2")
	const reason = "missing prerequisite chipset driver"

	for _, order := range [][]*core.Package{{v12, v11}, {v11, v12}} {
		repo := &fakeRepo{
			candidates: map[string][]*core.Package{"D1": order},
			failing:    map[string]string{"D1/d1_bios-1.2": reason},
		}
		devices := slices.Values([]core.Device{{ID: "D1", Version: "1.0"}})

		set, err := Resolve(context.Background(), repo, devices, nil)
		require.NoError(t, err)

		du, ok := set.ForDevice("D1")
		require.True(t, ok)
		assert.Same(t, v11, du.Selected)
		assert.Equal(t, order, du.Candidates)

		require.Equal(t, 1, set.Failures().Len())
		df, ok := set.Failures().Get("d1_bios-1.2")
		require.True(t, ok)
		assert.Equal(t, reason, df.Reason)
		assert.Same(t, v12, df.Package)
	}
}

func TestResolveRepositoryOrderIsPriority(t *testing.T) {
	first, second := pkg("bios", "2.0"), pkg("bios", "3.0")
	repo := &fakeRepo{candidates: map[string][]*core.Package{"D1": {first, second}}}

	set, err := Resolve(context.Background(), repo, slices.Values([]core.Device{{ID: "D1", Version: "1.0"}}), nil)
	require.NoError(t, err)
	assert.Equal(t, []*core.Package{first}, set.Selected())
}

func TestResolveNoCandidates(t *testing.T) {
	repo := &fakeRepo{}
	devices := slices.Values([]core.Device{{ID: "D1", Version: "1.0"}, {ID: "D2", Version: "2.0"}})

	set, err := Resolve(context.Background(), repo, devices, nil)
	require.NoError(t, err)

	require.Len(t, set.Devices(), 2)
	for _, du := range set.Devices() {
		assert.Nil(t, du.Selected)
		assert.Empty(t, du.Candidates)
	}
	assert.False(t, set.NeedsUpdate())
	assert.Zero(t, set.Failures().Len())
}

func TestResolveFailedPackageNeverSelected(t *testing.T) {
	only := pkg("nic", "5.0")
	repo := &fakeRepo{
		candidates: map[string][]*core.Package{"D1": {only}},
		failing:    map[string]string{"D1/nic-5.0": "requires system_bios >= A05"},
	}

	set, err := Resolve(context.Background(), repo, slices.Values([]core.Device{{ID: "D1"}}), nil)
	require.NoError(t, err)
	du, _ := set.ForDevice("D1")
	assert.Nil(t, du.Selected)
	assert.True(t, set.Failures().Has(only))
}

func TestResolveIdentityFailingElsewhereIsNotSelected(t *testing.T) {
	shared := pkg("raid", "4.1")
	fallback := pkg("raid", "4.0")
	repo := &fakeRepo{
		candidates: map[string][]*core.Package{
			"D1": {shared, fallback},
			"D2": {shared},
		},
		failing: map[string]string{"D2/raid-4.1": "unsupported controller"},
	}
	devices := slices.Values([]core.Device{{ID: "D1"}, {ID: "D2"}})

	set, err := Resolve(context.Background(), repo, devices, nil)
	require.NoError(t, err)

	d1, _ := set.ForDevice("D1")
	assert.Same(t, fallback, d1.Selected)
	d2, _ := set.ForDevice("D2")
	assert.Nil(t, d2.Selected)
	for _, sel := range set.Selected() {
		assert.False(t, set.Failures().Has(sel))
	}
}

func TestResolveDuplicateFailureLastReasonWins(t *testing.T) {
	a := &core.Package{Name: "bmc", Version: "2.0", SystemSupport: "0x1"}
	b := &core.Package{Name: "bmc", Version: "2.0", SystemSupport: "0x1"}
	repo := &fakeRepo{
		candidates: map[string][]*core.Package{"D1": {a}, "D2": {b}},
		failing: map[string]string{
			"D1/bmc-2.0-0x1": "first reason",
			"D2/bmc-2.0-0x1": "second reason",
		},
	}

	set, err := Resolve(context.Background(), repo, slices.Values([]core.Device{{ID: "D1"}, {ID: "D2"}}), nil)
	require.NoError(t, err)

	require.Equal(t, 1, set.Failures().Len())
	df, ok := set.Failures().Get("bmc-2.0-0x1")
	require.True(t, ok)
	assert.Equal(t, "second reason", df.Reason)
	assert.Equal(t, []string{"first reason", "second reason"}, df.Reasons)
}

func TestResolveDeviceAppearsOnce(t *testing.T) {
	repo := &fakeRepo{candidates: map[string][]*core.Package{"D1": {pkg("bios", "2")}}}
	devices := slices.Values([]core.Device{{ID: "D1", Version: "1"}, {ID: "D1", Version: "9"}})

	set, err := Resolve(context.Background(), repo, devices, nil)
	require.NoError(t, err)
	require.Len(t, set.Devices(), 1)
	assert.Equal(t, "1", set.Devices()[0].Device.Version)
}

func TestResolveObserverEvents(t *testing.T) {
	ok, bad := pkg("bios", "1.1"), pkg("bios", "1.2")
	repo := &fakeRepo{
		candidates: map[string][]*core.Package{"D1": {bad, ok}},
		failing:    map[string]string{"D1/bios-1.2": "nope"},
	}

	var events []Event
	observe := func(e Event) {
		events = append(events, e)
		// Mutating the event copy must not leak into resolution.
		e.Package.Version = "mutated"
	}

	set, err := Resolve(context.Background(), repo, slices.Values([]core.Device{{ID: "D1"}}), observe)
	require.NoError(t, err)
	assert.Equal(t, "1.1", set.Selected()[0].Version)

	require.Len(t, events, 3)
	assert.Equal(t, EventCandidateFound, events[0].Kind)
	assert.Equal(t, bad.Path, events[0].Path)
	assert.Equal(t, EventCandidateFound, events[1].Kind)
	assert.Equal(t, EventDependencyFailed, events[2].Kind)
	assert.Equal(t, "nope", events[2].Reason)
}

func TestResolveRepositoryError(t *testing.T) {
	boom := errors.New("storage unavailable")
	repo := &fakeRepo{findErr: boom}

	_, err := Resolve(context.Background(), repo, slices.Values([]core.Device{{ID: "D1"}}), nil)
	assert.ErrorIs(t, err, boom)
}

func TestResolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Resolve(ctx, &fakeRepo{}, slices.Values([]core.Device{{ID: "D1"}}), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveRepositoryPrerequisiteSelected(t *testing.T) {
	bios, chipset := pkg("bios", "1.1"), pkg("chipset", "2.0")
	repo := &fakeRepo{
		candidates: map[string][]*core.Package{"D1": {bios}, "chip": {chipset}},
		pending:    map[string][]core.PendingDependency{"bios-1.1": requires("chipset", ">= 2.0", chipset)},
	}
	devices := slices.Values([]core.Device{{ID: "D1", Version: "1.0"}, {ID: "chip", Version: "1.0"}})

	set, err := Resolve(context.Background(), repo, devices, nil)
	require.NoError(t, err)
	assert.Equal(t, []*core.Package{bios, chipset}, set.Selected())
	assert.Zero(t, set.Failures().Len())
}

func TestResolveRepositoryPrerequisiteNotInstalled(t *testing.T) {
	bios, chipset := pkg("bios", "1.1"), pkg("chipset", "2.0")
	repo := &fakeRepo{
		candidates: map[string][]*core.Package{"D1": {bios}, "chip": {chipset}},
		failing:    map[string]string{"chip/chipset-2.0": "missing prerequisite missing_tool >= 1.0"},
		pending:    map[string][]core.PendingDependency{"bios-1.1": requires("chipset", ">= 2.0", chipset)},
	}
	devices := slices.Values([]core.Device{{ID: "D1", Version: "1.0"}, {ID: "chip", Version: "1.0"}})

	var failed []string
	set, err := Resolve(context.Background(), repo, devices, func(e Event) {
		if e.Kind == EventDependencyFailed {
			failed = append(failed, e.Device.ID+"/"+e.Package.Identity())
		}
	})
	require.NoError(t, err)

	assert.Empty(t, set.Selected())
	assert.False(t, set.NeedsUpdate())
	df, ok := set.Failures().Get("bios-1.1")
	require.True(t, ok)
	assert.Equal(t, "missing prerequisite chipset >= 2.0", df.Reason)
	assert.Equal(t, []string{"chip/chipset-2.0", "D1/bios-1.1"}, failed)
}

func TestResolveRepositoryPrerequisiteFallsBack(t *testing.T) {
	bios12, bios11 := pkg("bios", "1.2"), pkg("bios", "1.1")
	nic, tool := pkg("nic", "3.0"), pkg("tool", "1.0")
	repo := &fakeRepo{
		candidates: map[string][]*core.Package{"D1": {bios12, bios11}, "N1": {nic}, "T1": {tool}},
		failing:    map[string]string{"T1/tool-1.0": "unsupported"},
		pending: map[string][]core.PendingDependency{
			"bios-1.2": requires("nic", ">= 3.0", nic),
			"nic-3.0":  requires("tool", ">= 1.0", tool),
		},
	}
	devices := slices.Values([]core.Device{{ID: "D1"}, {ID: "N1"}, {ID: "T1"}})

	set, err := Resolve(context.Background(), repo, devices, nil)
	require.NoError(t, err)

	// tool fails, so nic loses its prerequisite and bios 1.2 loses nic.
	assert.Equal(t, []*core.Package{bios11}, set.Selected())
	assert.True(t, set.Failures().Has(nic))
	assert.True(t, set.Failures().Has(bios12))
}
