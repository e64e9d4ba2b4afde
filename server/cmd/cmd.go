// Package cmd implements the console command pipeline: a small registry of
// named Commands executed against a Source as (sender, line) pairs inside
// the tick loop. The server feeds it stdin lines only: in-game
// ConsoleInput frames are emitted as network.ConsoleCommand events on the
// Drain's Console bus, which has no reader, so commands sent by clients
// are not executed.
package cmd

import (
	"fmt"
	"strings"
	"sync"
)

// Source is anything a command can run on behalf of: the interactive
// console or a connected client.
type Source interface {
	// Name identifies the source in log lines and broadcast messages
	// ("CONSOLE" for stdin, the client's login otherwise).
	Name() string
	// SendCommandOutput delivers o back to the source.
	SendCommandOutput(o *Output)
}

// Output accumulates the lines (and first error) produced by a command run.
type Output struct {
	lines []string
	err   error
}

// Print appends a line to the output.
func (o *Output) Print(line string) {
	o.lines = append(o.lines, line)
}

// Printf appends a formatted line to the output.
func (o *Output) Printf(format string, args ...any) {
	o.Print(fmt.Sprintf(format, args...))
}

// Error records err as the output's failure and appends its message as a
// line.
func (o *Output) Error(err error) {
	if o.err == nil {
		o.err = err
	}
	o.Print(err.Error())
}

// Errorf records a formatted error.
func (o *Output) Errorf(format string, args ...any) {
	o.Error(fmt.Errorf(format, args...))
}

// Lines returns every line printed to the output, in order.
func (o *Output) Lines() []string { return o.lines }

// Err returns the error recorded by Error/Errorf, if any.
func (o *Output) Err() error { return o.err }

// Command is one named console command.
type Command interface {
	// Name is the primary invocation keyword, lowercase, no leading slash.
	Name() string
	// Aliases are additional keywords that resolve to the same Command.
	Aliases() []string
	// Description is a one-line summary shown by the help command.
	Description() string
	// Run executes the command. args is the line's remaining whitespace-
	// separated tokens after the command name.
	Run(src Source, o *Output, args []string)
}

var registry = struct {
	mu    sync.RWMutex
	names map[string]Command
	order []string
}{names: make(map[string]Command)}

// Register installs c under its name and every alias. A later Register call
// for the same name replaces the earlier one, matching the teacher's
// last-registration-wins convention for builtin overrides.
func Register(c Command) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, exists := registry.names[c.Name()]; !exists {
		registry.order = append(registry.order, c.Name())
	}
	registry.names[c.Name()] = c
	for _, alias := range c.Aliases() {
		registry.names[alias] = c
	}
}

// ByAlias looks up a command by its name or any of its aliases.
func ByAlias(name string) (Command, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	c, ok := registry.names[strings.ToLower(name)]
	return c, ok
}

// Commands returns every distinct registered command, in registration
// order.
func Commands() []Command {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	out := make([]Command, 0, len(registry.order))
	for _, name := range registry.order {
		out = append(out, registry.names[name])
	}
	return out
}

// ExecuteLine splits line into a command name and arguments and runs the
// matching Command against src. Unknown commands and blank lines report an
// error/no-op to src respectively. The leading slash conventional for
// in-game chat commands is optional and stripped if present.
func ExecuteLine(src Source, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	fields := strings.Fields(line)
	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if name == "" {
		return
	}

	c, ok := ByAlias(name)
	if !ok {
		o := &Output{}
		o.Errorf("unknown command: %s", name)
		src.SendCommandOutput(o)
		return
	}
	o := &Output{}
	c.Run(src, o, fields[1:])
	src.SendCommandOutput(o)
}
