package world

import (
	"log/slog"

	"github.com/vxlcore/server/server/internal/runtime"
)

// WorldManager owns one named world: its Chunk Map and its entity store. It
// is the unit the Worlds Registry keys by slug.
type WorldManager struct {
	Slug string

	chunks *ChunkMap
	ecs    *ECS
}

// NewWorldManager constructs a WorldManager backed by storage and generator,
// ready to accept watchers.
func NewWorldManager(slug string, storage Storage, generator GeneratorService, settings GeneratorSettings, cfg ChunkMapConfig, rt *runtime.State, log *slog.Logger) *WorldManager {
	return &WorldManager{
		Slug:   slug,
		chunks: NewChunkMap(slug, storage, generator, settings, cfg, rt, log),
		ecs:    NewECS(),
	}
}

// Chunks returns the world's Chunk Map.
func (w *WorldManager) Chunks() *ChunkMap { return w.chunks }

// ECS returns the world's entity store.
func (w *WorldManager) ECS() *ECS { return w.ecs }

// SpawnEntity registers a new entity at pos and starts watching the chunks
// around it at the given radius, returning both the entity ID and the
// chunks it now watches.
func (w *WorldManager) SpawnEntity(pos ChunkPos, viewRadius int32) (EntityID, []ChunkPos) {
	id := w.ecs.Spawn(pos)
	watched := w.chunks.StartWatching(id, pos, viewRadius)
	return id, watched
}

// MoveEntity updates an entity's chunk index and watch window after it
// crosses into newPos, returning the watch delta.
func (w *WorldManager) MoveEntity(id EntityID, newPos ChunkPos, viewRadius int32) WatchDelta {
	old, ok := w.ecs.ChunkOf(id)
	if !ok {
		old = newPos
	}
	w.ecs.MoveChunk(id, newPos)
	if old == newPos {
		return WatchDelta{}
	}
	return w.chunks.UpdateWatching(id, old, newPos, viewRadius)
}

// DespawnEntity removes an entity from both the ECS and the Chunk Map's
// watcher bookkeeping.
func (w *WorldManager) DespawnEntity(id EntityID) {
	w.ecs.Despawn(id)
	w.chunks.StopWatching(id)
}

// Close releases the world's background resources.
func (w *WorldManager) Close() error {
	return w.chunks.Close()
}
