// Package resolver selects at most one firmware package per device.
//
// Candidates are taken in repository order, which is also priority order:
// the first candidate whose dependencies hold for the device is selected.
// Candidates failing their dependency checks are recorded in the update
// set, keyed by package identity, and no package whose identity carries
// a recorded failure is ever selected. A requirement only repository
// packages can meet holds when one of them is selected in the same run.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/autopeer-io/ft/internal/core"
	"github.com/autopeer-io/ft/pkg/log"
)

// EventKind identifies a resolution progress event.
type EventKind string

const (
	// EventCandidateFound is emitted for every candidate offered for a device.
	EventCandidateFound EventKind = "found_package"
	// EventDependencyFailed is emitted when a candidate fails its checks.
	EventDependencyFailed EventKind = "fail_dependency_check"
)

// Event is passed to an Observer. Path is set for EventCandidateFound,
// Reason for EventDependencyFailed.
type Event struct {
	Kind    EventKind
	Device  core.Device
	Package core.Package
	Path    string
	Reason  string
}

// Observer receives progress events. It is a side channel only: nothing
// it does changes the resolution outcome.
type Observer func(Event)

// Resolve builds the UpdateSet for devices against repo. devices is
// consumed exactly once. observe may be nil.
func Resolve(ctx context.Context, repo core.Repository, devices iter.Seq[core.Device], observe Observer) (*UpdateSet, error) {
	if observe == nil {
		observe = func(Event) {}
	}

	set := newUpdateSet()
	for dev := range devices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		du, ok := set.add(dev)
		if !ok {
			log.Debug("Device reported twice by inventory, keeping first", "device", dev.ID)
			continue
		}

		candidates, err := repo.FindCandidates(ctx, dev)
		if err != nil {
			return nil, fmt.Errorf("failed to find candidates for device %s: %w", dev.ID, err)
		}
		du.Candidates = candidates

		for _, pkg := range candidates {
			observe(Event{Kind: EventCandidateFound, Device: dev, Package: *pkg, Path: pkg.Path})
		}

		du.passed = checkCandidates(set.failures, dev, candidates, repo, observe)
	}

	// Selection happens once every failure is known, so that a package
	// identity that failed for any device is never selected. Dropping a
	// selection can strand packages that relied on it, so repeat until
	// no selection is dropped.
	for {
		set.selectPassed()
		if !set.dropUnprovided(observe) {
			break
		}
	}

	for _, du := range set.devices {
		du.passed, du.selected = nil, check{}
		log.Debug("Resolved device", "device", du.Device.ID, "candidates", len(du.Candidates), "selected", du.Selected != nil)
	}
	return set, nil
}

// selectPassed picks for every device the first passed candidate without
// a recorded failure.
func (s *UpdateSet) selectPassed() {
	for _, du := range s.devices {
		du.Selected, du.selected = nil, check{}
		for _, c := range du.passed {
			if s.failures.Has(c.pkg) {
				log.Debug("Skipping candidate with a recorded dependency failure",
					"device", du.Device.ID, "identity", c.pkg.Identity())
				continue
			}
			du.Selected, du.selected = c.pkg, c
			break
		}
	}
}

// dropUnprovided records a failure for every selection with a pending
// requirement that no selected package provides. It reports whether any
// failure was recorded.
func (s *UpdateSet) dropUnprovided(observe Observer) bool {
	selected := make(map[string]bool)
	for _, pkg := range s.Selected() {
		selected[pkg.Identity()] = true
	}

	dropped := false
	for _, du := range s.devices {
		for _, p := range du.selected.pending {
			if slices.ContainsFunc(p.Providers, func(pkg *core.Package) bool { return selected[pkg.Identity()] }) {
				continue
			}
			pkg, reason := du.selected.pkg, core.MissingPrerequisite(p.Dependency)
			log.Debug("Prerequisite is not installed in this run", "device", du.Device.ID,
				"identity", pkg.Identity(), "requires", p.Dependency.String())
			s.failures.record(pkg, reason)
			observe(Event{Kind: EventDependencyFailed, Device: du.Device, Package: *pkg, Reason: reason})
			dropped = true
			break
		}
	}
	return dropped
}

// checkCandidates evaluates every candidate so all failures get recorded,
// and returns those that passed, in order.
func checkCandidates(failures *DependencyFailures, dev core.Device, candidates []*core.Package, repo core.Repository, observe Observer) []check {
	var passed []check
	for _, pkg := range candidates {
		err := repo.CheckDependencies(pkg, dev)
		if err == nil {
			passed = append(passed, check{pkg: pkg})
			continue
		}
		var pending *core.PendingDependencyError
		if errors.As(err, &pending) {
			passed = append(passed, check{pkg: pkg, pending: pending.Pending})
			continue
		}

		reason := failureReason(err)
		if replaced := failures.record(pkg, reason); replaced != "" {
			log.Debug("Dependency failure reason replaced for identical package identity",
				"identity", pkg.Identity(), "previous", replaced, "reason", reason)
		}
		observe(Event{Kind: EventDependencyFailed, Device: dev, Package: *pkg, Reason: reason})
	}
	return passed
}

func failureReason(err error) string {
	var unmet *core.UnmetDependencyError
	if errors.As(err, &unmet) {
		return unmet.Reason
	}
	return err.Error()
}
