package commands

import (
	"context"

	"github.com/gosuri/uitable"

	"github.com/autopeer-io/ft/internal/cli"
)

// ListPlugins shows the plugin catalogue and what is enabled.
type ListPlugins struct{}

var _ cli.Command = ListPlugins{}

func (ListPlugins) Modes() []string {
	return []string{cli.ModeListPlugins}
}

func (ListPlugins) DoCheck(*cli.Runtime, string, []string) error {
	return nil
}

func (ListPlugins) DoCommand(_ context.Context, rt *cli.Runtime, _ string, _ *cli.Parsed) (int, error) {
	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	table.AddRow("NAME", "TYPE", "STATE", "DESCRIPTION")
	for _, e := range rt.Plugins.Entries() {
		table.AddRow(e.Name, e.Type, e.Reason, e.Description)
	}

	p := newEnv(rt).printer()
	p.Println("Available Plugins:")
	p.Println(table)
	return 0, nil
}

// Register binds every ft command to reg.
func Register(reg *cli.Registry) error {
	for _, cmd := range []cli.Command{NewUpdate(), NewInventory(), NewBootstrap(), ListPlugins{}} {
		if err := reg.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}
