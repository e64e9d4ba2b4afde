// Package protocol defines the wire envelope contract between the server
// and clients. The exact byte format is treated as an uninteresting detail
// (spec: "serialization of wire messages, treated as a tagged envelope");
// what matters to the rest of the core is the set of envelope kinds, their
// fields, and the reliability class each is sent at.
package protocol

// Reliability labels the delivery class of an outbound Envelope. The
// transport package does not map the classes onto separate channels:
// every class is sent over the connection's single reliable-ordered
// stream.
type Reliability uint8

const (
	// Unreliable frames may be dropped or arrive out of order. Used for
	// high-frequency position sync and the TPS broadcast.
	Unreliable Reliability = iota
	// ReliableUnordered frames always arrive but may be reordered relative
	// to each other. Used for resource pack parts.
	ReliableUnordered
	// ReliableOrdered frames always arrive in the order they were sent.
	// Used for control frames and console output.
	ReliableOrdered
	// WorldInfo frames guarantee eventual delivery but not global order
	// relative to other WorldInfo frames. Used for chunk data.
	WorldInfo
)

func (r Reliability) String() string {
	switch r {
	case Unreliable:
		return "unreliable"
	case ReliableUnordered:
		return "reliable-unordered"
	case ReliableOrdered:
		return "reliable-ordered"
	case WorldInfo:
		return "world-info"
	default:
		return "unknown"
	}
}
