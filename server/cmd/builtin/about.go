package builtin

import (
	"runtime"
	"runtime/debug"
	"time"

	"github.com/vxlcore/server/server/cmd"
)

type aboutCommand struct {
	host Host
}

func newAboutCommand(host Host) cmd.Command { return aboutCommand{host: host} }

func (aboutCommand) Name() string        { return "about" }
func (aboutCommand) Aliases() []string   { return nil }
func (aboutCommand) Description() string { return "Displays server build information." }

func (c aboutCommand) Run(_ cmd.Source, o *cmd.Output, _ []string) {
	o.Print("vxlcore")

	goVersion := runtime.Version()
	var revision string
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.GoVersion != "" {
			goVersion = info.GoVersion
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				revision = setting.Value
				break
			}
		}
	}
	o.Printf("Go runtime: %s", goVersion)
	if revision != "" {
		o.Printf("Commit: %s", revision)
	}
	if started := c.host.StartTime(); !started.IsZero() {
		o.Printf("Uptime: %s", time.Since(started).Round(time.Second))
	}
}
