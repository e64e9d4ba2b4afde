package builtin

import "github.com/vxlcore/server/server/cmd"

const defaultKickReason = "Kicked by an operator."

type kickCommand struct {
	host Host
}

func newKickCommand(host Host) cmd.Command { return kickCommand{host: host} }

func (kickCommand) Name() string        { return "kick" }
func (kickCommand) Aliases() []string   { return nil }
func (kickCommand) Description() string { return "Removes a player from the server." }

func (c kickCommand) Run(_ cmd.Source, o *cmd.Output, args []string) {
	if len(args) == 0 {
		o.Errorf("usage: kick <login> [reason]")
		return
	}
	login := args[0]
	reason := defaultKickReason
	if len(args) > 1 {
		reason = joinArgs(args[1:])
	}
	if !c.host.Kick(login, reason) {
		o.Errorf("no connected player named %q", login)
		return
	}
	o.Printf("Kicked %s (%s)", login, reason)
}
