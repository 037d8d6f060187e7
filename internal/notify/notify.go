// Package notify publishes install progress of an update run to the fleet.
package notify

import (
	"context"
	"time"
)

// Package install states reported in Status.State.
const (
	StateInstalling = "installing"
	StateInstalled  = "installed"
	StateSkipped    = "skipped"
	StateFailed     = "failed"
)

// Status describes one step of a package install.
type Status struct {
	Host    string    `json:"host"`
	Package string    `json:"package"`
	Version string    `json:"version"`
	State   string    `json:"state"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// Report is the outcome of a whole update run.
type Report struct {
	Host      string    `json:"host"`
	State     string    `json:"state"`
	Installed []string  `json:"installed,omitempty"`
	Skipped   []string  `json:"skipped,omitempty"`
	Failed    string    `json:"failed,omitempty"`
	Time      time.Time `json:"time"`
}

// Notifier receives install progress. Implementations must not fail the
// run: delivery errors are logged and dropped.
type Notifier interface {
	PackageStatus(ctx context.Context, s Status)
	RunReport(ctx context.Context, r Report)
	Close(ctx context.Context)
}

// Nop discards everything.
type Nop struct{}

func (Nop) PackageStatus(context.Context, Status) {}
func (Nop) RunReport(context.Context, Report)     {}
func (Nop) Close(context.Context)                 {}
