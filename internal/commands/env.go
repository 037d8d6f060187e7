// Package commands implements the ft modes: update, inventory, bootstrap
// and listplugins.
package commands

import (
	"context"
	"os"

	"github.com/autopeer-io/ft/internal/cli"
	"github.com/autopeer-io/ft/internal/core"
	"github.com/autopeer-io/ft/internal/installer"
	"github.com/autopeer-io/ft/internal/inventory"
	"github.com/autopeer-io/ft/internal/notify"
	"github.com/autopeer-io/ft/internal/plugins"
	"github.com/autopeer-io/ft/internal/progress"
	"github.com/autopeer-io/ft/internal/repository"
	"github.com/autopeer-io/ft/pkg/log"
)

// env holds the collaborators of a run, built from the config and the
// enabled plugins.
type env struct {
	rt *cli.Runtime
}

func newEnv(rt *cli.Runtime) *env {
	return &env{rt: rt}
}

func (e *env) enabled(name string) bool {
	return e.rt.Plugins.Enabled(name)
}

// inventory chains the enabled inventory plugins.
func (e *env) inventory() core.Inventory {
	var invs []core.Inventory
	if e.enabled(plugins.ConfigInventory) {
		invs = append(invs, inventory.NewConfigInventory(e.rt.Config))
	}
	if e.enabled(plugins.MockInventory) {
		invs = append(invs, inventory.Mock())
	}
	return inventory.Chain(invs...)
}

func (e *env) repository() (*repository.Repository, error) {
	cfg := e.rt.Config
	if e.rt.First.Options.FakeMode {
		return repository.New(repository.Mock(), cfg.SystemID()), nil
	}

	switch kind := cfg.RepositoryKind(); kind {
	case "fs":
		return repository.New(repository.NewDirSource(cfg.StorageTopdir()), cfg.SystemID()), nil
	case "s3":
		opts, err := cfg.S3()
		if err != nil {
			return nil, err
		}
		if !opts.Enabled() {
			return nil, core.NewConfigError("[s3]", "repository = s3 needs an endpoint")
		}
		src, err := repository.NewS3Source(opts)
		if err != nil {
			return nil, &core.ConfigError{Source: "[s3]", Err: err}
		}
		return repository.New(src, cfg.SystemID()), nil
	default:
		return nil, core.NewConfigError("[main]", "unknown repository %q, want fs or s3", kind)
	}
}

func (e *env) installers(locator installer.Locator) core.InstallerFactory {
	switch {
	case e.enabled(plugins.MockInstaller):
		return &installer.MockFactory{}
	case e.enabled(plugins.ExecInstaller):
		return installer.NewExecFactory(locator)
	default:
		return installer.None{}
	}
}

func (e *env) printer() *progress.Printer {
	if !e.enabled(plugins.Spinner) {
		return progress.NewPlainPrinter(e.rt.Stdout)
	}
	return progress.NewPrinter(e.rt.Stdout)
}

// notifier connects to the configured broker. A broker that cannot be
// reached only costs the status messages, never the run.
func (e *env) notifier(ctx context.Context) notify.Notifier {
	if !e.enabled(plugins.MqttStatus) {
		return notify.Nop{}
	}
	opts, err := e.rt.Config.Mqtt()
	if err != nil {
		log.Warn("Ignoring invalid mqtt config", "error", err)
		return notify.Nop{}
	}
	if !opts.Enabled() {
		return notify.Nop{}
	}

	n, err := notify.NewMQTTNotifier(ctx, opts, e.hostID())
	if err != nil {
		log.Warn("Install status will not be published", "broker", opts.Broker, "error", err)
		return notify.Nop{}
	}
	return n
}

func (e *env) hostID() string {
	if id := e.rt.Config.SystemID(); id != "" {
		if host, err := os.Hostname(); err == nil {
			return host + "-" + id
		}
		return id
	}
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}

func (e *env) metricsTextfile() string {
	if !e.enabled(plugins.Metrics) {
		return ""
	}
	return e.rt.Config.MetricsTextfile()
}
