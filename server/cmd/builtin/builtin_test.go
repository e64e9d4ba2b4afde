package builtin

import (
	"errors"
	"testing"
	"time"

	"github.com/vxlcore/server/server/cmd"
)

type fakeSource struct{ name string }

func (f fakeSource) Name() string                  { return f.name }
func (f fakeSource) SendCommandOutput(*cmd.Output) {}

type fakeHost struct {
	tps        float64
	kicked     map[string]string
	worlds     []string
	teleported map[string][3]float64
	teleportErr error
	stopped    bool
	startTime  time.Time
}

func newFakeHost() *fakeHost {
	return &fakeHost{kicked: make(map[string]string), teleported: make(map[string][3]float64)}
}

func (h *fakeHost) TPS() float64 { return h.tps }

func (h *fakeHost) Kick(login, reason string) bool {
	if login != "steve" {
		return false
	}
	h.kicked[login] = reason
	return true
}

func (h *fakeHost) WorldSlugs() []string { return h.worlds }

func (h *fakeHost) Teleport(login string, x, y, z float64) error {
	if h.teleportErr != nil {
		return h.teleportErr
	}
	h.teleported[login] = [3]float64{x, y, z}
	return nil
}

func (h *fakeHost) StartTime() time.Time { return h.startTime }

func (h *fakeHost) Stop() { h.stopped = true }

func run(t *testing.T, c cmd.Command, src cmd.Source, args []string) *cmd.Output {
	t.Helper()
	o := &cmd.Output{}
	c.Run(src, o, args)
	return o
}

func TestTPSCommandReportsHostValue(t *testing.T) {
	host := newFakeHost()
	host.tps = 59.8
	o := run(t, newTPSCommand(host), fakeSource{}, nil)
	if len(o.Lines()) != 1 || o.Lines()[0] != "TPS: 59.8" {
		t.Fatalf("unexpected output: %v", o.Lines())
	}
}

func TestKickCommandRequiresLogin(t *testing.T) {
	host := newFakeHost()
	o := run(t, newKickCommand(host), fakeSource{}, nil)
	if o.Err() == nil {
		t.Fatal("expected usage error with no arguments")
	}
}

func TestKickCommandUsesDefaultReason(t *testing.T) {
	host := newFakeHost()
	run(t, newKickCommand(host), fakeSource{}, []string{"steve"})
	if host.kicked["steve"] != defaultKickReason {
		t.Fatalf("expected default reason, got %q", host.kicked["steve"])
	}
}

func TestKickCommandJoinsReasonWords(t *testing.T) {
	host := newFakeHost()
	run(t, newKickCommand(host), fakeSource{}, []string{"steve", "being", "disruptive"})
	if host.kicked["steve"] != "being disruptive" {
		t.Fatalf("expected joined reason, got %q", host.kicked["steve"])
	}
}

func TestKickCommandReportsUnknownPlayer(t *testing.T) {
	host := newFakeHost()
	o := run(t, newKickCommand(host), fakeSource{}, []string{"ghost"})
	if o.Err() == nil {
		t.Fatal("expected an error for an unknown login")
	}
}

func TestWorldListCommandRequiresListSubcommand(t *testing.T) {
	host := newFakeHost()
	o := run(t, newWorldListCommand(host), fakeSource{}, nil)
	if o.Err() == nil {
		t.Fatal("expected usage error without the list subcommand")
	}
}

func TestWorldListCommandSortsSlugs(t *testing.T) {
	host := newFakeHost()
	host.worlds = []string{"nether", "overworld"}
	o := run(t, newWorldListCommand(host), fakeSource{}, []string{"list"})
	if len(o.Lines()) != 2 || o.Lines()[1] != "nether, overworld" {
		t.Fatalf("unexpected output: %v", o.Lines())
	}
}

func TestTPCommandRequiresThreeCoordinates(t *testing.T) {
	host := newFakeHost()
	o := run(t, newTPCommand(host), fakeSource{name: "steve"}, []string{"1", "2"})
	if o.Err() == nil {
		t.Fatal("expected usage error for the wrong argument count")
	}
}

func TestTPCommandTeleportsSender(t *testing.T) {
	host := newFakeHost()
	run(t, newTPCommand(host), fakeSource{name: "steve"}, []string{"1", "2", "3"})
	if host.teleported["steve"] != [3]float64{1, 2, 3} {
		t.Fatalf("unexpected teleport target: %v", host.teleported["steve"])
	}
}

func TestTPCommandPropagatesHostError(t *testing.T) {
	host := newFakeHost()
	host.teleportErr = errors.New("target chunk not loaded")
	o := run(t, newTPCommand(host), fakeSource{name: "steve"}, []string{"1", "2", "3"})
	if o.Err() == nil {
		t.Fatal("expected the host's teleport error to propagate")
	}
}

func TestStopCommandStopsHost(t *testing.T) {
	host := newFakeHost()
	run(t, newStopCommand(host), fakeSource{}, nil)
	if !host.stopped {
		t.Fatal("expected stop command to stop the host")
	}
}

func TestAboutCommandReportsUptimeWhenStarted(t *testing.T) {
	host := newFakeHost()
	host.startTime = time.Now().Add(-time.Minute)
	o := run(t, newAboutCommand(host), fakeSource{}, nil)
	found := false
	for _, l := range o.Lines() {
		if len(l) >= 7 && l[:7] == "Uptime:" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an uptime line, got %v", o.Lines())
	}
}

func TestHelpCommandListsRegisteredCommands(t *testing.T) {
	host := newFakeHost()
	Register(host)
	o := run(t, helpCommand{}, fakeSource{}, nil)
	if len(o.Lines()) == 0 {
		t.Fatal("expected at least one line listing commands")
	}
}
