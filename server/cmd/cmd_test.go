package cmd

import "testing"

type fakeSource struct {
	name string
	out  *Output
}

func (f *fakeSource) Name() string { return f.name }
func (f *fakeSource) SendCommandOutput(o *Output) { f.out = o }

type echoCommand struct{}

func (echoCommand) Name() string        { return "echo" }
func (echoCommand) Aliases() []string   { return []string{"say"} }
func (echoCommand) Description() string { return "Echoes its arguments." }
func (echoCommand) Run(src Source, o *Output, args []string) {
	for _, a := range args {
		o.Print(a)
	}
}

func TestRegisterAndByAlias(t *testing.T) {
	Register(echoCommand{})

	if _, ok := ByAlias("echo"); !ok {
		t.Fatal("expected echo to be registered under its name")
	}
	if _, ok := ByAlias("say"); !ok {
		t.Fatal("expected echo to be registered under its alias")
	}
	if _, ok := ByAlias("nonexistent"); ok {
		t.Fatal("expected unregistered name to be absent")
	}
}

func TestExecuteLineRunsMatchedCommand(t *testing.T) {
	Register(echoCommand{})
	src := &fakeSource{name: "tester"}

	ExecuteLine(src, "echo hello world")

	if src.out == nil {
		t.Fatal("expected output to be delivered to the source")
	}
	lines := src.out.Lines()
	if len(lines) != 2 || lines[0] != "hello" || lines[1] != "world" {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestExecuteLineStripsLeadingSlash(t *testing.T) {
	Register(echoCommand{})
	src := &fakeSource{name: "tester"}

	ExecuteLine(src, "/say hi")

	if len(src.out.Lines()) != 1 || src.out.Lines()[0] != "hi" {
		t.Fatalf("unexpected output: %v", src.out.Lines())
	}
}

func TestExecuteLineReportsUnknownCommand(t *testing.T) {
	src := &fakeSource{name: "tester"}

	ExecuteLine(src, "definitelynotacommand")

	if src.out == nil || src.out.Err() == nil {
		t.Fatal("expected an error to be recorded for an unknown command")
	}
}

func TestExecuteLineIgnoresBlankInput(t *testing.T) {
	src := &fakeSource{name: "tester"}

	ExecuteLine(src, "   ")

	if src.out != nil {
		t.Fatal("expected blank input to produce no output at all")
	}
}
