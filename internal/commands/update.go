package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/autopeer-io/ft/internal/cli"
	"github.com/autopeer-io/ft/internal/core"
	"github.com/autopeer-io/ft/internal/orchestrator"
)

// Update runs the update workflow.
type Update struct {
	yes  bool
	test bool
}

var _ cli.Command = (*Update)(nil)

func NewUpdate() *Update {
	return &Update{}
}

func (c *Update) Modes() []string {
	return []string{cli.ModeUpdate}
}

func (c *Update) DoCheck(rt *cli.Runtime, _ string, _ []string) error {
	rt.AddFlags("Update", func(fs *pflag.FlagSet) {
		fs.BoolVarP(&c.yes, "yes", "y", false, "Install the updates without asking for confirmation.")
		fs.BoolVar(&c.test, "test", false, "Only report the updates that would be installed.")
	})
	return nil
}

func (c *Update) level() (orchestrator.Level, error) {
	switch {
	case c.yes && c.test:
		return 0, &core.OptionsError{Err: fmt.Errorf("options --yes and --test are mutually exclusive")}
	case c.yes:
		return orchestrator.LevelInstall, nil
	case c.test:
		return orchestrator.LevelTest, nil
	default:
		return orchestrator.LevelConfirm, nil
	}
}

func (c *Update) DoCommand(ctx context.Context, rt *cli.Runtime, _ string, _ *cli.Parsed) (int, error) {
	level, err := c.level()
	if err != nil {
		return 1, err
	}

	e := newEnv(rt)
	repo, err := e.repository()
	if err != nil {
		return 1, err
	}

	o := orchestrator.New(repo, e.inventory(), e.installers(repo), e.printer())
	o.MetricsTextfile = e.metricsTextfile()
	if level == orchestrator.LevelInstall {
		n := e.notifier(ctx)
		defer n.Close(context.WithoutCancel(ctx))
		o.Notifier = n
	}

	res, err := o.Run(ctx, level)
	if err != nil {
		return 1, err
	}
	return res.ExitCode(), nil
}
