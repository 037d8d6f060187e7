package orchestrator

import (
	"context"

	"github.com/looplab/fsm"

	fsmutil "github.com/autopeer-io/ft/internal/pkg/util/fsm"
	"github.com/autopeer-io/ft/pkg/log"
)

// Run states.
const (
	StateCollecting      = "collecting"
	StateEvaluating      = "evaluating"
	StateNoUpdates       = "no_updates"
	StateDryRun          = "dry_run"
	StateConfirmRequired = "confirm_required"
	StateInstalling      = "installing"
	StateDone            = "done"
	StateAborted         = "aborted"
)

// TerminalStates lists every state a run can end in.
var TerminalStates = []string{
	StateNoUpdates,
	StateDryRun,
	StateConfirmRequired,
	StateDone,
	StateAborted,
}

const (
	// EventCollected (Active) hands the resolved update set to evaluation.
	EventCollected = "collected"
	// EventNothingToDo ends a run without any selected package.
	EventNothingToDo = "nothing_to_do"
	// EventTest ends a run after reporting, without installing.
	EventTest = "test"
	// EventConfirm ends a run asking the operator for confirmation.
	EventConfirm = "confirm"
	// EventInstall starts installing the selected packages.
	EventInstall = "install"
	// EventFinish marks an exhausted install queue.
	EventFinish = "finish"
	// EventAbort stops the install queue on a fatal error.
	EventAbort = "abort"
)

func newStateMachine(r *run) *fsm.FSM {
	events := fsm.Events{
		{Name: EventCollected, Src: []string{StateCollecting}, Dst: StateEvaluating},

		{Name: EventNothingToDo, Src: []string{StateEvaluating}, Dst: StateNoUpdates},
		{Name: EventTest, Src: []string{StateEvaluating}, Dst: StateDryRun},
		{Name: EventConfirm, Src: []string{StateEvaluating}, Dst: StateConfirmRequired},
		{Name: EventInstall, Src: []string{StateEvaluating}, Dst: StateInstalling},

		{Name: EventFinish, Src: []string{StateInstalling}, Dst: StateDone},
		{Name: EventAbort, Src: []string{StateInstalling}, Dst: StateAborted},
	}

	callbacks := fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			log.Debug("Update run changed state", "event", e.Event, "from", e.Src, "to", e.Dst)
		},

		"enter_" + StateEvaluating:      fsmutil.WrapEvent(r.enterEvaluating),
		"enter_" + StateNoUpdates:       fsmutil.WrapEvent(r.enterNoUpdates),
		"enter_" + StateDryRun:          fsmutil.WrapEvent(r.enterDryRun),
		"enter_" + StateConfirmRequired: fsmutil.WrapEvent(r.enterConfirmRequired),
		"enter_" + StateInstalling:      fsmutil.WrapEvent(r.enterInstalling),
		"enter_" + StateAborted:         fsmutil.WrapEvent(r.enterAborted),
	}

	return fsm.NewFSM(StateCollecting, events, callbacks)
}
