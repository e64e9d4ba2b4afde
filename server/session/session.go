// Package session implements the Client Session: the per-connection state
// that tracks a client's identity, its world/entity attachment, which
// chunks it has already been sent, and its bounded in-flight send queue.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/vxlcore/server/server/protocol"
	"github.com/vxlcore/server/server/transport"
	"github.com/vxlcore/server/server/world"
)

// ClientInfo identifies a connected client once it has sent its
// ConnectionInfo frame.
type ClientInfo struct {
	Login           string
	Version         string
	Architecture    string
	RenderingDevice string
}

// WorldEntity is the (world, entity) pair a session is attached to once it
// has been spawned, set on the Media / Settings Handshake's SettingsLoaded
// transition.
type WorldEntity struct {
	WorldSlug string
	EntityID  world.EntityID
}

// Session is one connected client's authoritative server-side state.
type Session struct {
	ID         uint64
	UUID       uuid.UUID
	Conn       transport.Conn
	QueueLimit int

	mu            sync.RWMutex
	info          *ClientInfo
	attachment    *WorldEntity
	alreadySent   map[world.ChunkPos]struct{}
	inFlightCount int
}

// New returns a freshly connected session with no ClientInfo and no world
// attachment yet. UUID is generated once here and used as the session's
// stable wire identity for entity sync frames, independent of the
// per-process client id.
func New(id uint64, conn transport.Conn, queueLimit int) *Session {
	return &Session{
		ID:          id,
		UUID:        uuid.New(),
		Conn:        conn,
		QueueLimit:  queueLimit,
		alreadySent: make(map[world.ChunkPos]struct{}),
	}
}

// Info returns the session's ClientInfo, if ConnectionInfo has been
// processed yet.
func (s *Session) Info() (ClientInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info == nil {
		return ClientInfo{}, false
	}
	return *s.info, true
}

// SetInfo promotes the session to "known" on first ConnectionInfo.
func (s *Session) SetInfo(info ClientInfo) {
	s.mu.Lock()
	s.info = &info
	s.mu.Unlock()
}

// Attachment returns the session's current world/entity attachment, if
// any.
func (s *Session) Attachment() (WorldEntity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.attachment == nil {
		return WorldEntity{}, false
	}
	return *s.attachment, true
}

// Attach binds the session to a world and entity on SettingsLoaded.
func (s *Session) Attach(we WorldEntity) {
	s.mu.Lock()
	s.attachment = &we
	s.mu.Unlock()
}

// Detach clears the session's world attachment and, per the spec's
// clear-on-detach assumption for already_sent, resets its sent-chunk set so
// a later re-attachment starts fresh.
func (s *Session) Detach() {
	s.mu.Lock()
	s.attachment = nil
	s.alreadySent = make(map[world.ChunkPos]struct{})
	s.inFlightCount = 0
	s.mu.Unlock()
}

// MarkSending adds pos to already_sent and increments in_flight_count. It
// must be called before submitting compression work for pos.
func (s *Session) MarkSending(pos world.ChunkPos) {
	s.mu.Lock()
	s.alreadySent[pos] = struct{}{}
	s.inFlightCount++
	s.mu.Unlock()
}

// MarkDelivered decrements in_flight_count by len(positions). It never
// removes entries from already_sent.
func (s *Session) MarkDelivered(positions []world.ChunkPos) {
	s.mu.Lock()
	s.inFlightCount -= len(positions)
	if s.inFlightCount < 0 {
		s.inFlightCount = 0
	}
	s.mu.Unlock()
}

// Forget removes positions from already_sent, called when they leave the
// player's watch set so they can be re-sent if re-watched.
func (s *Session) Forget(positions []world.ChunkPos) {
	s.mu.Lock()
	for _, pos := range positions {
		delete(s.alreadySent, pos)
	}
	s.mu.Unlock()
}

// AlreadySent reports whether pos has been marked sending or delivered
// since the last Detach.
func (s *Session) AlreadySent(pos world.ChunkPos) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.alreadySent[pos]
	return ok
}

// IsQueueFull reports whether in_flight_count has reached QueueLimit.
func (s *Session) IsQueueFull() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlightCount >= s.QueueLimit
}

// InFlightCount returns the current in-flight send count.
func (s *Session) InFlightCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlightCount
}

// Send hands a typed envelope to the transport at the given reliability
// class.
func (s *Session) Send(e protocol.Envelope, r protocol.Reliability) error {
	return s.Conn.Send(e, r)
}

// Disconnect closes the underlying connection with an optional human
// reason.
func (s *Session) Disconnect(reason string) error {
	return s.Conn.Close(reason)
}
