package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autopeer-io/ft/internal/core"
	"github.com/autopeer-io/ft/internal/notify"
	"github.com/autopeer-io/ft/internal/ordering"
	"github.com/autopeer-io/ft/internal/pkg/metrics"
	"github.com/autopeer-io/ft/pkg/log"
)

// installAll installs the selected packages in dependency order. It stops
// at the first failed install; packages without an installer are skipped.
func (r *run) installAll(ctx context.Context) error {
	queue, err := ordering.Order(r.result.Updates.Selected())
	if err != nil {
		return fmt.Errorf("failed to order installation: %w", err)
	}

	for _, pkg := range queue {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("update interrupted before %s: %w", pkg, err)
		}

		r.result.Attempts++
		err := r.installOne(ctx, pkg)
		switch {
		case err == nil:
			r.result.Installed = append(r.result.Installed, pkg)
			metrics.InstallsTotal.WithLabelValues(metrics.OutcomeInstalled).Inc()
			r.status(ctx, pkg, notify.StateInstalled, "")

		case errors.Is(err, core.ErrNoInstaller):
			log.Info("Skipping package without installer", "package", pkg.Identity(), "error", err)
			r.p.Warn("package %s - %s does not have an installer available.", pkg.Name, pkg.Version)
			r.p.Println("skipping this package for now.")
			r.result.Skipped = append(r.result.Skipped, pkg)
			metrics.InstallsTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()
			r.status(ctx, pkg, notify.StateSkipped, err.Error())

		default:
			var installErr *core.InstallError
			if !errors.As(err, &installErr) {
				installErr = &core.InstallError{Package: pkg, Err: err}
				err = installErr
			}
			if installErr.Package == nil {
				installErr.Package = pkg
			}
			log.Error(err, "Package install failed", "package", pkg.Identity())
			r.result.Failed = pkg
			metrics.InstallsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
			r.status(ctx, pkg, notify.StateFailed, err.Error())
			return err
		}
	}
	return nil
}

// installOne runs the install of pkg in a worker goroutine and redraws
// progress every poll interval until the worker returns. Nothing else
// is installed while it runs.
func (r *run) installOne(ctx context.Context, pkg *core.Package) error {
	inst, err := r.o.Installers.InstallerFor(pkg)
	if err != nil {
		return err
	}

	r.status(ctx, pkg, notify.StateInstalling, "")

	done := make(chan error, 1)
	start := time.Now()
	go func() {
		done <- inst.Install(ctx)
	}()

	interval := r.o.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r.drawProgress(pkg, inst)
		select {
		case err := <-done:
			metrics.InstallDuration.Observe(time.Since(start).Seconds())
			r.p.Clear()
			if err != nil {
				return err
			}
			r.p.Printf("100%% Installing %s - %s", pkg.Name, pkg.Version)
			r.p.Good("Done: %s", inst.Status())
			r.p.Println()
			return nil
		case <-ticker.C:
		}
	}
}

func (r *run) drawProgress(pkg *core.Package, inst core.Installer) {
	if pkg.HasCapability(core.CapAccurateProgress) {
		r.p.Spin("%d%% Installing %s - %s", int(inst.Progress()*100), pkg.Name, pkg.Version)
		return
	}
	r.p.Spin("Installing %s - %s", pkg.Name, pkg.Version)
}

func (r *run) status(ctx context.Context, pkg *core.Package, state, msg string) {
	r.notifier().PackageStatus(ctx, notify.Status{
		Package: pkg.Name,
		Version: pkg.Version,
		State:   state,
		Message: msg,
		Time:    time.Now(),
	})
}
