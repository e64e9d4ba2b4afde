package builtin

import (
	"slices"
	"strings"

	"github.com/vxlcore/server/server/cmd"
)

type worldListCommand struct {
	host Host
}

func newWorldListCommand(host Host) cmd.Command { return worldListCommand{host: host} }

func (worldListCommand) Name() string        { return "world" }
func (worldListCommand) Aliases() []string   { return nil }
func (worldListCommand) Description() string { return "Lists the worlds currently active on the server." }

func (c worldListCommand) Run(_ cmd.Source, o *cmd.Output, args []string) {
	if len(args) == 0 || args[0] != "list" {
		o.Errorf("usage: world list")
		return
	}
	slugs := c.host.WorldSlugs()
	slices.Sort(slugs)
	o.Printf("There are %d world(s) active.", len(slugs))
	if len(slugs) != 0 {
		o.Print(strings.Join(slugs, ", "))
	}
}
