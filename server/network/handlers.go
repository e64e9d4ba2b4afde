package network

import (
	"log/slog"
	"sync"

	"github.com/vxlcore/server/server/internal/eventbus"
	"github.com/vxlcore/server/server/protocol"
	"github.com/vxlcore/server/server/session"
	"github.com/vxlcore/server/server/world"
	"github.com/vxlcore/server/server/worlds"
)

// SpawnPoint is where a newly spawned player's entity and chunk watch
// window are centered.
type SpawnPoint struct {
	WorldSlug         string
	ChunkPos          world.ChunkPos
	GeneratorSettings world.GeneratorSettings
}

// Handlers wires the Drain's event buses to the world/session state,
// implementing spec §4.4 connection handling, §4.8 player move and §4.9
// edit block, and the Media / Settings Handshake of §4.10.
type Handlers struct {
	worldsReg  *worlds.Registry
	sessions   *session.Registry
	spawn      SpawnPoint
	viewRadius int32
	archive    *ResourcesArchive
	log        *slog.Logger

	connReader     *eventbus.Reader[ConnectionEvent]
	discReader     *eventbus.Reader[DisconnectEvent]
	infoReader     *eventbus.Reader[ConnectionInfoEvent]
	cacheReader    *eventbus.Reader[ResourcesHasCacheEvent]
	mediaReader    *eventbus.Reader[MediaLoadedEvent]
	settingsReader *eventbus.Reader[SettingsLoadedEvent]
	moveReader     *eventbus.Reader[MoveEvent]
	editReader     *eventbus.Reader[EditBlockEvent]

	mu       sync.Mutex
	progress map[uint64]*handshakeProgress
}

// NewHandlers constructs Handlers reading from d's event buses. archive may
// be nil to select the no-resources handshake path.
func NewHandlers(d *Drain, worldsReg *worlds.Registry, sessions *session.Registry, spawn SpawnPoint, viewRadius int32, archive *ResourcesArchive, log *slog.Logger) *Handlers {
	return &Handlers{
		worldsReg:      worldsReg,
		sessions:       sessions,
		spawn:          spawn,
		viewRadius:     viewRadius,
		archive:        archive,
		log:            log,
		connReader:     d.Connection.NewReader(),
		discReader:     d.Disconnect.NewReader(),
		infoReader:     d.ConnectionInfo.NewReader(),
		cacheReader:    d.ResourcesHasCache.NewReader(),
		mediaReader:    d.MediaLoaded.NewReader(),
		settingsReader: d.SettingsLoaded.NewReader(),
		moveReader:     d.Move.NewReader(),
		editReader:     d.EditBlock.NewReader(),
		progress:       make(map[uint64]*handshakeProgress),
	}
}

// Run drains every event bus and dispatches handlers in the fixed order:
// connect, disconnect, connection info, resource handshake steps, settings
// loaded, merged player move, edit block.
func (h *Handlers) Run() {
	for _, e := range h.connReader.Drain() {
		h.onConnect(e)
	}
	for _, e := range h.discReader.Drain() {
		h.onDisconnect(e)
	}
	for _, e := range h.infoReader.Drain() {
		h.onConnectionInfo(e)
	}
	for _, e := range h.cacheReader.Drain() {
		h.onResourcesHasCache(e)
	}
	for _, e := range h.mediaReader.Drain() {
		h.onMediaLoaded(e)
	}
	for _, e := range h.settingsReader.Drain() {
		h.onSettingsLoaded(e)
	}
	h.onMoveBatch(h.moveReader.Drain())
	for _, e := range h.editReader.Drain() {
		h.onEditBlock(e)
	}
}

func (h *Handlers) onConnect(e ConnectionEvent) {
	h.log.Debug("client connected", "client", e.Session.ID)
	e.Session.Send(&protocol.AllowConnection{ClientID: e.Session.ID}, protocol.ReliableOrdered)
}

func (h *Handlers) onDisconnect(e DisconnectEvent) {
	h.log.Info("client disconnected", "client", e.Session.ID, "reason", e.Reason)
	if we, ok := e.Session.Attachment(); ok {
		if wm, ok := h.worldsReg.Lookup(we.WorldSlug); ok {
			wm.DespawnEntity(we.EntityID)
		}
	}
	h.mu.Lock()
	delete(h.progress, e.Session.ID)
	h.mu.Unlock()
	h.sessions.Remove(e.Session.ID)
}

func (h *Handlers) onConnectionInfo(e ConnectionInfoEvent) {
	if other, ok := h.sessions.ByLogin(e.Info.Login); ok && other.ID != e.Session.ID {
		e.Session.Disconnect("already logged in")
		return
	}
	e.Session.SetInfo(e.Info)

	if h.archive == nil {
		e.Session.Send(&protocol.ServerSettings{}, protocol.ReliableOrdered)
		return
	}
	e.Session.Send(&protocol.ResourcesScheme{
		Parts:       h.archive.Parts(),
		ArchiveHash: h.archive.ArchiveHash,
	}, protocol.ReliableOrdered)
}

func (h *Handlers) onResourcesHasCache(e ResourcesHasCacheEvent) {
	if h.archive == nil {
		return
	}
	if e.Exists {
		e.Session.Send(&protocol.ServerSettings{}, protocol.ReliableOrdered)
		return
	}
	h.mu.Lock()
	h.progress[e.Session.ID] = &handshakeProgress{streaming: true, nextPart: 0, totalParts: h.archive.Parts()}
	h.mu.Unlock()
	e.Session.Send(&protocol.ResourcesPart{Index: 0, Total: h.archive.Parts(), Data: make([]byte, h.archive.PartSize)}, protocol.ReliableUnordered)
}

func (h *Handlers) onMediaLoaded(e MediaLoadedEvent) {
	h.mu.Lock()
	p, ok := h.progress[e.Session.ID]
	h.mu.Unlock()
	if !ok || !p.streaming {
		return
	}
	next := e.LastIndex + 1
	if next < p.totalParts {
		p.nextPart = next
		e.Session.Send(&protocol.ResourcesPart{Index: next, Total: p.totalParts, Data: make([]byte, h.archive.PartSize)}, protocol.ReliableUnordered)
		return
	}
	p.streaming = false
	e.Session.Send(&protocol.ServerSettings{}, protocol.ReliableOrdered)
}

func (h *Handlers) onSettingsLoaded(e SettingsLoadedEvent) {
	wm := h.worldsReg.Get(h.spawn.WorldSlug, h.spawn.GeneratorSettings)
	entityID, _ := wm.SpawnEntity(h.spawn.ChunkPos, h.viewRadius)
	e.Session.Attach(session.WorldEntity{WorldSlug: h.spawn.WorldSlug, EntityID: entityID})
}

// onMoveBatch merges multiple PlayerMoveEvents per session into the last
// one drained this tick before processing, per spec §4.8 and §9's explicit
// move-event-coalescing requirement.
func (h *Handlers) onMoveBatch(events []MoveEvent) {
	last := make(map[uint64]MoveEvent, len(events))
	order := make([]uint64, 0, len(events))
	for _, e := range events {
		if _, seen := last[e.Session.ID]; !seen {
			order = append(order, e.Session.ID)
		}
		last[e.Session.ID] = e
	}
	for _, id := range order {
		h.onMove(last[id])
	}
}

func (h *Handlers) onMove(e MoveEvent) {
	we, ok := e.Session.Attachment()
	if !ok {
		return
	}
	wm, ok := h.worldsReg.Lookup(we.WorldSlug)
	if !ok {
		return
	}
	targetChunk := blockPosAt(e.Position).ChunkPos()
	if !wm.Chunks().IsLoaded(targetChunk) {
		return
	}

	oldChunk, _ := wm.ECS().ChunkOf(we.EntityID)
	if oldChunk == targetChunk {
		h.broadcastMove(wm, we, e, targetChunk, targetChunk)
		return
	}

	delta := wm.MoveEntity(we.EntityID, targetChunk, h.viewRadius)
	if len(delta.Abandoned) > 0 {
		e.Session.Forget(delta.Abandoned)
		e.Session.Send(&protocol.UnloadChunks{Positions: protocolChunkPositions(delta.Abandoned)}, protocol.ReliableOrdered)
	}
	h.broadcastMove(wm, we, e, oldChunk, targetChunk)
}

func (h *Handlers) broadcastMove(wm *world.WorldManager, we session.WorldEntity, e MoveEvent, oldChunk, newChunk world.ChunkPos) {
	seen := make(map[uint64]struct{})
	frame := &protocol.SyncPlayerMove{EntityID: e.Session.UUID, Position: e.Position, Rotation: e.Rotation}
	for _, pos := range []world.ChunkPos{oldChunk, newChunk} {
		for _, watcher := range wm.Chunks().GetWatchers(pos) {
			s, ok := h.sessionForEntity(we.WorldSlug, watcher)
			if !ok || s.ID == e.Session.ID {
				continue
			}
			if _, dup := seen[s.ID]; dup {
				continue
			}
			seen[s.ID] = struct{}{}
			s.Send(frame, protocol.Unreliable)
		}
	}
}

// sessionForEntity finds the session attached to (worldSlug, entity). The
// Clients Registry has no entity index, so this is a linear scan; the
// watcher sets it is called against are bounded by a player's view radius.
func (h *Handlers) sessionForEntity(worldSlug string, entity world.EntityID) (*session.Session, bool) {
	for _, s := range h.sessions.All() {
		if we, ok := s.Attachment(); ok && we.WorldSlug == worldSlug && we.EntityID == entity {
			return s, true
		}
	}
	return nil, false
}

func (h *Handlers) onEditBlock(e EditBlockEvent) {
	we, ok := e.Session.Attachment()
	if !ok || we.WorldSlug != e.WorldSlug {
		h.log.Warn("edit block rejected: world mismatch", "client", e.Session.ID, "attached", we.WorldSlug, "requested", e.WorldSlug)
		return
	}
	wm, ok := h.worldsReg.Lookup(e.WorldSlug)
	if !ok {
		return
	}
	if err := wm.Chunks().EditBlock(e.Position, e.Info); err != nil {
		e.Session.Send(&protocol.ConsoleOutput{Message: err.Error()}, protocol.ReliableOrdered)
		return
	}

	frame := &protocol.BlockChanged{WorldSlug: e.WorldSlug, Position: fromBlockPos(e.Position), RuntimeID: e.Info.RuntimeID}
	for _, watcher := range wm.Chunks().GetWatchers(e.Position.ChunkPos()) {
		if s, ok := h.sessionForEntity(e.WorldSlug, watcher); ok {
			s.Send(frame, protocol.ReliableOrdered)
		}
	}
}
