package commands

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/autopeer-io/ft/internal/cli"
)

// Bootstrap lists the package names a package manager would install to
// get updates for this system.
type Bootstrap struct {
	up2date bool
}

var _ cli.Command = (*Bootstrap)(nil)

func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

func (c *Bootstrap) Modes() []string {
	return []string{cli.ModeBootstrap}
}

func (c *Bootstrap) DoCheck(rt *cli.Runtime, _ string, _ []string) error {
	rt.AddFlags("Bootstrap", func(fs *pflag.FlagSet) {
		fs.BoolVar(&c.up2date, "up2date_mode", false, "Only print package names, one per line.")
	})
	return nil
}

func (c *Bootstrap) DoCommand(ctx context.Context, rt *cli.Runtime, _ string, _ *cli.Parsed) (int, error) {
	e := newEnv(rt)
	p := e.printer()

	if !c.up2date {
		p.Println("Bootstrap packages for this system:")
	}
	seen := make(map[string]bool)
	for dev := range e.inventory().Devices(ctx) {
		names := dev.Bootstrap
		if len(names) == 0 {
			names = []string{dev.ID}
		}
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			if c.up2date {
				p.Println(name)
			} else {
				p.Printf("\t%s\t(%s)", name, dev)
			}
		}
	}
	return 0, ctx.Err()
}
