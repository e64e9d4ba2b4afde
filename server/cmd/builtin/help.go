package builtin

import (
	"sort"

	"github.com/vxlcore/server/server/cmd"
)

type helpCommand struct{}

func newHelpCommand() cmd.Command { return helpCommand{} }

func (helpCommand) Name() string        { return "help" }
func (helpCommand) Aliases() []string   { return []string{"?"} }
func (helpCommand) Description() string { return "Shows available commands." }

func (helpCommand) Run(_ cmd.Source, o *cmd.Output, args []string) {
	if len(args) > 0 {
		c, ok := cmd.ByAlias(args[0])
		if !ok {
			o.Errorf("unknown command: %s", args[0])
			return
		}
		o.Print("/" + c.Name() + " - " + c.Description())
		return
	}

	commands := cmd.Commands()
	names := make([]string, 0, len(commands))
	byName := make(map[string]cmd.Command, len(commands))
	for _, c := range commands {
		names = append(names, c.Name())
		byName[c.Name()] = c
	}
	sort.Strings(names)

	o.Printf("Available commands (%d):", len(names))
	for _, name := range names {
		c := byName[name]
		line := "/" + name
		if desc := c.Description(); desc != "" {
			line += " - " + desc
		}
		o.Print(line)
	}
}
