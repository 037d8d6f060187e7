// Package orchestrator drives an update run: resolve the update set,
// report it, then stop, ask for confirmation or install the selected
// packages one at a time in dependency order.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"

	"github.com/autopeer-io/ft/internal/core"
	"github.com/autopeer-io/ft/internal/notify"
	"github.com/autopeer-io/ft/internal/pkg/metrics"
	fsmutil "github.com/autopeer-io/ft/internal/pkg/util/fsm"
	"github.com/autopeer-io/ft/internal/progress"
	"github.com/autopeer-io/ft/internal/resolver"
	"github.com/autopeer-io/ft/pkg/log"
)

// DefaultPollInterval is how often install progress is redrawn.
const DefaultPollInterval = 200 * time.Millisecond

// Level is the interactivity level of a run.
type Level int

const (
	// LevelInstall installs without asking.
	LevelInstall Level = iota
	// LevelConfirm reports and asks to re-run with confirmation.
	LevelConfirm
	// LevelTest reports only.
	LevelTest
)

func (l Level) String() string {
	switch l {
	case LevelInstall:
		return "install"
	case LevelConfirm:
		return "confirm"
	case LevelTest:
		return "test"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Orchestrator runs updates against its collaborators. Notifier,
// PollInterval and MetricsTextfile are optional.
type Orchestrator struct {
	Repository core.Repository
	Inventory  core.Inventory
	Installers core.InstallerFactory
	Printer    *progress.Printer

	Notifier        notify.Notifier
	PollInterval    time.Duration
	MetricsTextfile string
}

// New returns an Orchestrator with the default poll interval and no
// notifications.
func New(repo core.Repository, inv core.Inventory, installers core.InstallerFactory, printer *progress.Printer) *Orchestrator {
	return &Orchestrator{
		Repository:   repo,
		Inventory:    inv,
		Installers:   installers,
		Printer:      printer,
		Notifier:     notify.Nop{},
		PollInterval: DefaultPollInterval,
	}
}

// Result is the outcome of a run.
type Result struct {
	// State is the terminal state reached.
	State string
	// Updates is the resolved update set.
	Updates *resolver.UpdateSet
	// Attempts counts packages an install was attempted for.
	Attempts  int
	Installed []*core.Package
	Skipped   []*core.Package
	// Failed is the package whose install aborted the run, if any.
	Failed *core.Package
	// Err is the cause of an aborted run.
	Err error
}

// ExitCode maps the terminal state to the process exit status.
func (r *Result) ExitCode() int {
	switch r.State {
	case StateDryRun, StateConfirmRequired, StateDone:
		return 0
	case StateNoUpdates:
		return 1
	default:
		return 2
	}
}

// run is the state of a single Run call.
type run struct {
	o      *Orchestrator
	p      *progress.Printer
	level  Level
	result *Result
}

// Run resolves and, depending on level, installs updates. An error is
// returned only when the run could not get past resolution; install
// failures end the run in StateAborted instead.
func (o *Orchestrator) Run(ctx context.Context, level Level) (*Result, error) {
	if level < LevelInstall || level > LevelTest {
		return nil, fmt.Errorf("invalid interactivity level %d", int(level))
	}

	r := &run{o: o, p: o.Printer, level: level, result: &Result{}}
	f := newStateMachine(r)

	r.p.Println()
	r.p.Println("Searching storage directory for available BIOS updates...")
	set, err := resolver.Resolve(ctx, o.Repository, o.Inventory.Devices(ctx), r.observe)
	r.p.Clear()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve updates: %w", err)
	}
	r.result.Updates = set

	if err := r.fire(ctx, f, EventCollected); err != nil {
		return nil, err
	}
	if err := r.fire(ctx, f, r.decide()); err != nil {
		return nil, err
	}

	if f.Is(StateInstalling) {
		next, args := EventFinish, []any(nil)
		if err := r.installAll(ctx); err != nil {
			r.result.Err = err
			next, args = EventAbort, []any{err}
		}
		if err := r.fire(ctx, f, next, args...); err != nil {
			return nil, err
		}
	}

	r.result.State = f.Current()
	r.finish(ctx)
	return r.result, nil
}

func (r *run) fire(ctx context.Context, f *fsm.FSM, event string, args ...any) error {
	if err := f.Event(ctx, event, args...); fsmutil.IsRealError(err) {
		return fmt.Errorf("update run failed in state %s on %s: %w", f.Current(), event, err)
	}
	return nil
}

// decide picks the event leaving StateEvaluating.
func (r *run) decide() string {
	switch {
	case !r.result.Updates.NeedsUpdate():
		return EventNothingToDo
	case r.level == LevelTest:
		return EventTest
	case r.level == LevelConfirm:
		return EventConfirm
	default:
		return EventInstall
	}
}

// observe draws the resolution spinner.
func (r *run) observe(e resolver.Event) {
	switch e.Kind {
	case resolver.EventCandidateFound:
		r.p.Spin("Checking: %s", progress.Tail(e.Path, 50))
	case resolver.EventDependencyFailed:
		log.Info("Candidate failed dependency check", "device", e.Device.ID, "package", e.Package.Identity(), "reason", e.Reason)
	}
}

// finish records metrics and sends the run report.
func (r *run) finish(ctx context.Context) {
	res := r.result
	metrics.DependencyFailures.Set(float64(res.Updates.Failures().Len()))
	metrics.PendingUpdates.Set(float64(len(res.Updates.Selected())))
	metrics.RecordRun(res.State, TerminalStates, time.Now())
	if r.o.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(r.o.MetricsTextfile); err != nil {
			log.Warn("Failed to write run metrics", "path", r.o.MetricsTextfile, "error", err)
		}
	}

	report := notify.Report{State: res.State, Time: time.Now()}
	for _, pkg := range res.Installed {
		report.Installed = append(report.Installed, pkg.Identity())
	}
	for _, pkg := range res.Skipped {
		report.Skipped = append(report.Skipped, pkg.Identity())
	}
	if res.Failed != nil {
		report.Failed = res.Failed.Identity()
	}
	r.notifier().RunReport(ctx, report)
}

func (r *run) notifier() notify.Notifier {
	if r.o.Notifier == nil {
		return notify.Nop{}
	}
	return r.o.Notifier
}
