package orchestrator

import (
	"context"
	"errors"

	"github.com/looplab/fsm"

	"github.com/autopeer-io/ft/internal/core"
)

// enterEvaluating prints the per-device outcome and the dependency
// failure listing.
func (r *run) enterEvaluating(_ context.Context, _ *fsm.Event) error {
	set := r.result.Updates
	for _, du := range set.Devices() {
		r.p.Printf("Checking %s - %s", du.Device, du.Device.Version)
		for _, pkg := range du.Candidates {
			r.p.Printf("\tAvailable: %s - %s", pkg.Name, pkg.Version)
		}
		if du.Selected == nil {
			r.p.Printf("\tDid not find a newer package to install that meets all installation checks.")
		} else {
			r.p.Good("\tFound Update: %s - %s", du.Selected.Name, du.Selected.Version)
		}
	}

	failures := set.Failures()
	if failures.Len() > 0 {
		r.p.Println()
		r.p.Println("Following packages could apply, but have dependency failures:")
	}
	for _, df := range failures.All() {
		r.p.Printf("\t%s - %s", df.Package.Name, df.Package.Version)
		r.p.Printf("\t\t REASON: %s", df.Reason)
	}

	if set.NeedsUpdate() {
		r.p.Println()
		r.p.Println("Found firmware which needs to be updated.")
		r.p.Println()
	}
	return nil
}

func (r *run) enterNoUpdates(_ context.Context, _ *fsm.Event) error {
	r.p.Println()
	r.p.Println("This system does not appear to have any updates available.")
	r.p.Println("No action necessary.")
	r.p.Println()
	return nil
}

func (r *run) enterDryRun(_ context.Context, _ *fsm.Event) error {
	r.p.Println()
	r.p.Println("Test mode complete.")
	r.p.Println()
	return nil
}

func (r *run) enterConfirmRequired(_ context.Context, _ *fsm.Event) error {
	r.p.Println()
	r.p.Println("Please run the program with the '--yes' switch to enable BIOS update.")
	r.p.Warn("   UPDATE NOT COMPLETED!")
	r.p.Println()
	return nil
}

func (r *run) enterInstalling(_ context.Context, _ *fsm.Event) error {
	r.p.Println("Running updates...")
	return nil
}

// enterAborted prints the diagnostic of the error carried by the abort
// event.
func (r *run) enterAborted(_ context.Context, e *fsm.Event) error {
	var err error
	if len(e.Args) > 0 {
		err, _ = e.Args[0].(error)
	}

	var installErr *core.InstallError
	switch {
	case errors.As(err, &installErr):
		r.p.Bad("Installation failed for package: %s - %s", installErr.Package.Name, installErr.Package.Version)
		r.p.Println("aborting update...")
		r.p.Println()
		r.p.Println("The error message from the low-level command was:")
		r.p.Println()
		if installErr.Detail != "" {
			r.p.Println(installErr.Detail)
		} else {
			r.p.Println(installErr.Error())
		}
	case err != nil:
		r.p.Bad("Update aborted: %v", err)
	}
	return nil
}
