package builtin

import "github.com/vxlcore/server/server/cmd"

type stopCommand struct {
	host Host
}

func newStopCommand(host Host) cmd.Command { return stopCommand{host: host} }

func (stopCommand) Name() string        { return "stop" }
func (stopCommand) Aliases() []string   { return nil }
func (stopCommand) Description() string { return "Stops the server." }

func (c stopCommand) Run(_ cmd.Source, o *cmd.Output, _ []string) {
	o.Print("Stopping server...")
	c.host.Stop()
}
