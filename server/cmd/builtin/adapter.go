// Package builtin implements the server's first-class console commands:
// tps, kick, world list, tp, stop, help and about.
package builtin

import "time"

// Host is the slice of the Server a builtin command needs, kept narrow so
// this package never imports the top-level server package directly.
type Host interface {
	TPS() float64
	Kick(login, reason string) bool
	WorldSlugs() []string
	Teleport(login string, x, y, z float64) error
	StartTime() time.Time
	Stop()
}
