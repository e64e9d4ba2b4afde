package builtin

import "github.com/vxlcore/server/server/cmd"

type tpsCommand struct {
	host Host
}

func newTPSCommand(host Host) cmd.Command { return tpsCommand{host: host} }

func (tpsCommand) Name() string        { return "tps" }
func (tpsCommand) Aliases() []string   { return nil }
func (tpsCommand) Description() string { return "Reports the server's current ticks per second." }

func (c tpsCommand) Run(_ cmd.Source, o *cmd.Output, _ []string) {
	o.Printf("TPS: %.1f", c.host.TPS())
}
