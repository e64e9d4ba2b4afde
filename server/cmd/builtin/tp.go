package builtin

import (
	"strconv"

	"github.com/vxlcore/server/server/cmd"
)

type tpCommand struct {
	host Host
}

func newTPCommand(host Host) cmd.Command { return tpCommand{host: host} }

func (tpCommand) Name() string        { return "tp" }
func (tpCommand) Aliases() []string   { return []string{"teleport"} }
func (tpCommand) Description() string { return "Teleports the sender to the given coordinates." }

func (c tpCommand) Run(src cmd.Source, o *cmd.Output, args []string) {
	if len(args) != 3 {
		o.Errorf("usage: tp <x> <y> <z>")
		return
	}
	x, errX := strconv.ParseFloat(args[0], 64)
	y, errY := strconv.ParseFloat(args[1], 64)
	z, errZ := strconv.ParseFloat(args[2], 64)
	if errX != nil || errY != nil || errZ != nil {
		o.Errorf("coordinates must be numbers")
		return
	}
	if err := c.host.Teleport(src.Name(), x, y, z); err != nil {
		o.Error(err)
		return
	}
	o.Printf("Teleported to %.2f, %.2f, %.2f", x, y, z)
}
