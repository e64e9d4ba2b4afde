package builtin

import "github.com/vxlcore/server/server/cmd"

// Register installs the full built-in command set against host.
func Register(host Host) {
	cmd.Register(newTPSCommand(host))
	cmd.Register(newKickCommand(host))
	cmd.Register(newWorldListCommand(host))
	cmd.Register(newTPCommand(host))
	cmd.Register(newStopCommand(host))
	cmd.Register(newHelpCommand())
	cmd.Register(newAboutCommand(host))
}
