package commands

import (
	"context"
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/pflag"

	"github.com/autopeer-io/ft/internal/cli"
	"github.com/autopeer-io/ft/internal/core"
)

const (
	outputTable = "table"
	outputPlain = "plain"
)

// Inventory lists the devices of the system.
type Inventory struct {
	output string
}

var _ cli.Command = (*Inventory)(nil)

func NewInventory() *Inventory {
	return &Inventory{output: outputTable}
}

func (c *Inventory) Modes() []string {
	return []string{cli.ModeInventory}
}

func (c *Inventory) DoCheck(rt *cli.Runtime, _ string, _ []string) error {
	rt.AddFlags("Inventory", func(fs *pflag.FlagSet) {
		fs.StringVar(&c.output, "output", c.output, "Output format, table or plain.")
	})
	return nil
}

func (c *Inventory) DoCommand(ctx context.Context, rt *cli.Runtime, _ string, _ *cli.Parsed) (int, error) {
	if c.output != outputTable && c.output != outputPlain {
		return 1, &core.OptionsError{Err: fmt.Errorf("invalid --output %q, want %s or %s", c.output, outputTable, outputPlain)}
	}

	e := newEnv(rt)
	p := e.printer()
	p.Println("Wait while we inventory system:")

	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("ID", "NAME", "VERSION")

	count := 0
	for dev := range e.inventory().Devices(ctx) {
		if c.output == outputPlain {
			if count == 0 {
				p.Println("System inventory:")
			}
			p.Printf("\t%s = %s", dev, dev.Version)
		} else {
			table.AddRow(dev.ID, dev.Name, dev.Version)
		}
		count++
	}

	if count == 0 {
		p.Println("No devices found.")
		return 0, ctx.Err()
	}
	if c.output == outputTable {
		p.Println(table)
	}
	return 0, ctx.Err()
}
