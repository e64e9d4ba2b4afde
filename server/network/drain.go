package network

import (
	"log/slog"

	"github.com/vxlcore/server/server/internal/eventbus"
	"github.com/vxlcore/server/server/protocol"
	"github.com/vxlcore/server/server/session"
	"github.com/vxlcore/server/server/transport"
)

// Drain is the Network Drain: a single system run once per tick, before
// any event handlers, that turns transport-level notices and decoded
// client messages into typed events.
type Drain struct {
	listener transport.Listener
	sessions *session.Registry
	log      *slog.Logger

	queueLimit int

	Connection        *eventbus.Bus[ConnectionEvent]
	Disconnect        *eventbus.Bus[DisconnectEvent]
	ConnectionInfo    *eventbus.Bus[ConnectionInfoEvent]
	ResourcesHasCache *eventbus.Bus[ResourcesHasCacheEvent]
	MediaLoaded       *eventbus.Bus[MediaLoadedEvent]
	SettingsLoaded    *eventbus.Bus[SettingsLoadedEvent]
	Move              *eventbus.Bus[MoveEvent]
	EditBlock         *eventbus.Bus[EditBlockEvent]
	Console           *eventbus.Bus[ConsoleCommand]
}

// NewDrain constructs a Drain reading from listener and writing into
// sessions. queueLimit is the per-client send queue bound given to every
// newly connected Session.
func NewDrain(listener transport.Listener, sessions *session.Registry, queueLimit int, log *slog.Logger) *Drain {
	return &Drain{
		listener:          listener,
		sessions:          sessions,
		log:               log,
		queueLimit:        queueLimit,
		Connection:        eventbus.New[ConnectionEvent](),
		Disconnect:        eventbus.New[DisconnectEvent](),
		ConnectionInfo:    eventbus.New[ConnectionInfoEvent](),
		ResourcesHasCache: eventbus.New[ResourcesHasCacheEvent](),
		MediaLoaded:       eventbus.New[MediaLoadedEvent](),
		SettingsLoaded:    eventbus.New[SettingsLoadedEvent](),
		Move:              eventbus.New[MoveEvent](),
		EditBlock:         eventbus.New[EditBlockEvent](),
		Console:           eventbus.New[ConsoleCommand](),
	}
}

// Run executes one tick's worth of draining: transport errors, connection
// notices, then each registered client's decoded inbound messages, in that
// fixed order.
func (d *Drain) Run() {
	for _, err := range d.listener.Errors() {
		d.log.Error("transport error", "err", err)
	}

	for _, n := range d.listener.Notices() {
		if n.Closed {
			if s, ok := d.sessions.Get(n.ID); ok {
				d.Disconnect.Emit(DisconnectEvent{Session: s, Reason: n.Reason})
			}
			continue
		}
		s := session.New(n.ID, n.Conn, d.queueLimit)
		d.sessions.Add(s)
		d.Connection.Emit(ConnectionEvent{Session: s})
	}

	for _, s := range d.sessions.All() {
		envelopes, err := s.Conn.Recv()
		if err != nil {
			d.log.Debug("connection recv error", "client", s.ID, "err", err)
		}
		for _, e := range envelopes {
			d.dispatch(s, e)
		}
	}
}

func (d *Drain) dispatch(s *session.Session, e protocol.Envelope) {
	switch msg := e.(type) {
	case *protocol.ConnectionInfo:
		d.ConnectionInfo.Emit(ConnectionInfoEvent{Session: s, Info: session.ClientInfo{
			Login:           msg.Login,
			Version:         msg.Version,
			Architecture:    msg.Architecture,
			RenderingDevice: msg.RenderingDevice,
		}})
	case *protocol.ResourcesHasCache:
		d.ResourcesHasCache.Emit(ResourcesHasCacheEvent{Session: s, Exists: msg.Exists})
	case *protocol.ResourcesLoaded:
		d.MediaLoaded.Emit(MediaLoadedEvent{Session: s, LastIndex: msg.LastIndex})
	case *protocol.SettingsLoaded:
		d.SettingsLoaded.Emit(SettingsLoadedEvent{Session: s})
	case *protocol.PlayerMove:
		d.Move.Emit(MoveEvent{Session: s, Position: msg.Position, Rotation: msg.Rotation, Anim: msg.Anim})
	case *protocol.EditBlockRequest:
		d.EditBlock.Emit(EditBlockEvent{
			Session:   s,
			WorldSlug: msg.WorldSlug,
			Position:  toBlockPos(msg.Position),
			Info:      blockInfoFromRuntimeID(msg.RuntimeID),
		})
	case *protocol.ChunkReceived:
		s.MarkDelivered(chunkPositions(msg.Positions))
	case *protocol.ConsoleInput:
		d.Console.Emit(ConsoleCommand{Session: s, Line: msg.Command})
	default:
		d.log.Warn("unhandled envelope kind", "client", s.ID, "kind", e.Kind())
	}
}
