package protocol

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// EnvelopeKind tags the concrete type carried by an Envelope so the codec
// can decode the right Go value without reflection over the payload bytes
// themselves.
type EnvelopeKind uint8

const (
	KindConnectionInfo EnvelopeKind = iota
	KindConsoleInput
	KindPlayerMove
	KindChunkReceived
	KindEditBlockRequest
	KindResourcesHasCache
	KindResourcesLoaded
	KindSettingsLoaded

	KindAllowConnection
	KindResourcesScheme
	KindResourcesPart
	KindServerSettings
	KindChunkSectionInfoEncoded
	KindServerStatus
	KindConsoleOutput
	KindSyncPlayerMove
	KindUnloadChunks
	KindBlockChanged
)

// Envelope is any wire message. Kind identifies which concrete type the
// payload decodes to; the codec looks the kind up in a small registry
// rather than relying on Go's interface reflection.
type Envelope interface {
	Kind() EnvelopeKind
}

// Rotation is a player or entity's yaw/pitch, in degrees.
type Rotation struct {
	Yaw, Pitch float64
}

// --- Client -> Server ---

// ConnectionInfo identifies a freshly connected client. It is the first
// frame the state machine in the Media / Settings Handshake expects.
type ConnectionInfo struct {
	Login           string
	Version         string
	Architecture    string
	RenderingDevice string
}

func (ConnectionInfo) Kind() EnvelopeKind { return KindConnectionInfo }

// ConsoleInput is a command line typed by a connected player.
type ConsoleInput struct {
	Command string
}

func (ConsoleInput) Kind() EnvelopeKind { return KindConsoleInput }

// PlayerMove reports a player's latest position, rotation and active
// animation state.
type PlayerMove struct {
	Position mgl64.Vec3
	Rotation Rotation
	Anim     string
}

func (PlayerMove) Kind() EnvelopeKind { return KindPlayerMove }

// ChunkReceived acknowledges delivery of one or more chunk frames.
type ChunkReceived struct {
	Positions []ChunkPosition
}

func (ChunkReceived) Kind() EnvelopeKind { return KindChunkReceived }

// EditBlockRequest asks the server to change one block.
type EditBlockRequest struct {
	WorldSlug string
	Position  BlockPosition
	RuntimeID uint32
}

func (EditBlockRequest) Kind() EnvelopeKind { return KindEditBlockRequest }

// ResourcesHasCache reports whether the client already holds a matching
// resource archive by hash.
type ResourcesHasCache struct {
	Exists bool
}

func (ResourcesHasCache) Kind() EnvelopeKind { return KindResourcesHasCache }

// ResourcesLoaded acknowledges receipt of one resource part.
type ResourcesLoaded struct {
	LastIndex int
}

func (ResourcesLoaded) Kind() EnvelopeKind { return KindResourcesLoaded }

// SettingsLoaded signals the client finished applying ServerSettings and is
// ready to be spawned into the default world.
type SettingsLoaded struct{}

func (SettingsLoaded) Kind() EnvelopeKind { return KindSettingsLoaded }

// --- Server -> Client ---

// AllowConnection tells a newly connected client it may proceed through
// the handshake.
type AllowConnection struct {
	ClientID uint64
}

func (AllowConnection) Kind() EnvelopeKind { return KindAllowConnection }

// ResourcesScheme describes the resource archive a client must load,
// alongside its content hash so the client can detect staleness.
type ResourcesScheme struct {
	Parts       int
	ArchiveHash uint64
}

func (ResourcesScheme) Kind() EnvelopeKind { return KindResourcesScheme }

// ResourcesPart carries one fixed-size chunk of the resource archive.
type ResourcesPart struct {
	Index int
	Total int
	Data  []byte
}

func (ResourcesPart) Kind() EnvelopeKind { return KindResourcesPart }

// ServerSettings is sent once the handshake reaches MediaLoaded.
type ServerSettings struct {
	TickRate int
}

func (ServerSettings) Kind() EnvelopeKind { return KindServerSettings }

// ChunkSectionInfoEncoded carries one compressed chunk column.
type ChunkSectionInfoEncoded struct {
	WorldSlug     string
	ChunkPosition ChunkPosition
	Encoded       []byte
}

func (ChunkSectionInfoEncoded) Kind() EnvelopeKind { return KindChunkSectionInfoEncoded }

// ServerStatus broadcasts the current measured ticks-per-second.
type ServerStatus struct {
	TPS float64
}

func (ServerStatus) Kind() EnvelopeKind { return KindServerStatus }

// ConsoleOutput is a line of text sent back to one client (command
// results, error reports).
type ConsoleOutput struct {
	Message string
}

func (ConsoleOutput) Kind() EnvelopeKind { return KindConsoleOutput }

// SyncPlayerMove relays another player's new position/rotation.
type SyncPlayerMove struct {
	EntityID uuid.UUID
	Position mgl64.Vec3
	Rotation Rotation
}

func (SyncPlayerMove) Kind() EnvelopeKind { return KindSyncPlayerMove }

// UnloadChunks tells the client to free the listed positions; they have
// left the server's watch window for that player.
type UnloadChunks struct {
	Positions []ChunkPosition
}

func (UnloadChunks) Kind() EnvelopeKind { return KindUnloadChunks }

// BlockChanged relays a successful edit_block to a watching client.
type BlockChanged struct {
	WorldSlug string
	Position  BlockPosition
	RuntimeID uint32
}

func (BlockChanged) Kind() EnvelopeKind { return KindBlockChanged }

// ChunkPosition is the wire form of world.ChunkPos; the protocol package
// does not import world to keep the wire format independent of the
// in-memory chunk representation.
type ChunkPosition struct {
	X, Z int32
}

// BlockPosition is the wire form of world.BlockPos.
type BlockPosition struct {
	X, Y, Z int32
}
