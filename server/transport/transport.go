// Package transport defines the UDP connection contract Network Drain and
// Client Session depend on, and a concrete RakNet-backed implementation.
package transport

import (
	"net"

	"github.com/vxlcore/server/server/protocol"
)

// Notice is a connection-lifecycle event produced by a Listener: either a
// new Conn arriving or an existing one closing.
type Notice struct {
	Conn   Conn
	Closed bool
	ID     uint64
	Reason string
}

// Listener accepts incoming client connections and reports lifecycle
// notices. Network Drain consumes Notices() once per tick.
type Listener interface {
	// Notices returns connect/disconnect notices accumulated since the
	// last call. Non-blocking; returns nil if none are pending.
	Notices() []Notice
	// Errors returns transport-level errors accumulated since the last
	// call (accept failures).
	Errors() []error
	Close() error
}

// Conn is one client's reliable byte-stream connection. The reliability
// class is not written into the frame: go-raknet itself provides a single
// reliable-ordered channel per connection, so
// Unreliable and ReliableUnordered sends pay the same delivery cost as
// ReliableOrdered but are documented as tolerating loss/reorder from the
// caller's perspective, matching the reliability classes the rest of the
// core reasons about.
type Conn interface {
	ID() uint64
	RemoteAddr() net.Addr
	// Send writes one Envelope at the given reliability class.
	Send(e protocol.Envelope, r protocol.Reliability) error
	// Recv returns envelopes decoded from data received since the last
	// call. Non-blocking; returns nil if none are pending.
	Recv() ([]protocol.Envelope, error)
	Close(reason string) error
}
