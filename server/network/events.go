// Package network implements the Network Drain, the per-event handlers it
// feeds, and the Chunk Sender. Together they form the per-tick bridge
// between the transport and the world/session state.
package network

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vxlcore/server/server/protocol"
	"github.com/vxlcore/server/server/session"
	"github.com/vxlcore/server/server/world"
)

// ConnectionEvent fires when a new transport connection is accepted.
type ConnectionEvent struct {
	Session *session.Session
}

// DisconnectEvent fires when a transport connection reports closed.
type DisconnectEvent struct {
	Session *session.Session
	Reason  string
}

// ConnectionInfoEvent carries a client's ConnectionInfo frame.
type ConnectionInfoEvent struct {
	Session *session.Session
	Info    session.ClientInfo
}

// ResourcesHasCacheEvent carries a client's cache-presence report.
type ResourcesHasCacheEvent struct {
	Session *session.Session
	Exists  bool
}

// MediaLoadedEvent carries acknowledgement of one resource part. LastIndex
// is nil-equivalent (-1) when the client has no resources to stream.
type MediaLoadedEvent struct {
	Session   *session.Session
	LastIndex int
}

// SettingsLoadedEvent fires once a client finishes the handshake and is
// ready to be spawned.
type SettingsLoadedEvent struct {
	Session *session.Session
}

// MoveEvent carries one player's latest reported position and rotation.
type MoveEvent struct {
	Session  *session.Session
	Position mgl64.Vec3
	Rotation protocol.Rotation
	Anim     string
}

// EditBlockEvent carries a requested block change.
type EditBlockEvent struct {
	Session   *session.Session
	WorldSlug string
	Position  world.BlockPos
	Info      world.BlockInfo
}

// ConsoleCommand carries one command line sent by an in-game client in a
// ConsoleInput frame. It is emitted on the Drain's Console bus; nothing in
// the server reads that bus, so these lines are not executed. Lines typed
// at the server console do not pass through this event.
type ConsoleCommand struct {
	Session *session.Session
	Line    string
}
