package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every ft metric. ft is a one-shot CLI, so instead of
// serving /metrics the registry is written to a node_exporter textfile
// at the end of an update run.
var Registry = prometheus.NewRegistry()

var (
	// InstallsTotal counts install attempts by outcome: installed, skipped
	// (no installer) or failed.
	InstallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ft_package_installs_total",
			Help: "Total number of firmware package install attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// InstallDuration records how long each install worker ran.
	InstallDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ft_package_install_duration_seconds",
			Help:    "Duration of firmware package installs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)

	// DependencyFailures is the number of distinct packages excluded by
	// dependency checks in the last run.
	DependencyFailures = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ft_dependency_failures",
			Help: "Distinct candidate packages excluded by dependency checks in the last run.",
		},
	)

	// PendingUpdates is the number of devices with a selected package in
	// the last run.
	PendingUpdates = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ft_pending_updates",
			Help: "Devices with a selected firmware update in the last run.",
		},
	)

	// LastRun records the terminal state of the last run (1 for the
	// state reached, 0 for the others) and is stamped with the time.
	LastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ft_last_run_state",
			Help: "Terminal state of the last update run (1 = reached).",
		},
		[]string{"state"},
	)

	LastRunTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ft_last_run_timestamp_seconds",
			Help: "Unix time the last update run finished.",
		},
	)
)

// Outcome labels for InstallsTotal.
const (
	OutcomeInstalled = "installed"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

func init() {
	Registry.MustRegister(InstallsTotal)
	Registry.MustRegister(InstallDuration)
	Registry.MustRegister(DependencyFailures)
	Registry.MustRegister(PendingUpdates)
	Registry.MustRegister(LastRun)
	Registry.MustRegister(LastRunTimestamp)
}

// RecordRun marks state as the terminal state of the run. states lists
// every terminal state so the others are reset to 0.
func RecordRun(state string, states []string, now time.Time) {
	for _, s := range states {
		LastRun.WithLabelValues(s).Set(0)
	}
	LastRun.WithLabelValues(state).Set(1)
	LastRunTimestamp.Set(float64(now.Unix()))
}

// WriteTextfile writes the registry to path in the text exposition
// format. The write is atomic.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}
