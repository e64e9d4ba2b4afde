package world

import (
	"testing"
	"time"

	"github.com/vxlcore/server/server/internal/runtime"
)

func TestSpawnEntityWatchesSurroundingChunks(t *testing.T) {
	rt := &runtime.State{}
	wm := NewWorldManager("overworld", newMemStorage(), flatGenerator{fill: 1}, nil, ChunkMapConfig{LoadWorkers: 2}, rt, testLogger())
	defer wm.Close()

	id, watched := wm.SpawnEntity(ChunkPos{0, 0}, 1)
	if len(watched) != 9 {
		t.Fatalf("expected 9 watched chunks, got %d", len(watched))
	}
	if pos, ok := wm.ECS().ChunkOf(id); !ok || pos != (ChunkPos{0, 0}) {
		t.Fatalf("expected entity indexed at origin, got %v (%v)", pos, ok)
	}
}

func TestMoveEntityUpdatesWatchWindow(t *testing.T) {
	rt := &runtime.State{}
	wm := NewWorldManager("overworld", newMemStorage(), flatGenerator{fill: 1}, nil, ChunkMapConfig{LoadWorkers: 2}, rt, testLogger())
	defer wm.Close()

	id, _ := wm.SpawnEntity(ChunkPos{0, 0}, 1)
	delta := wm.MoveEntity(id, ChunkPos{20, 20}, 1)
	if len(delta.Abandoned) == 0 || len(delta.Acquired) == 0 {
		t.Fatalf("expected both abandoned and acquired chunks, got %+v", delta)
	}
	if pos, _ := wm.ECS().ChunkOf(id); pos != (ChunkPos{20, 20}) {
		t.Fatalf("expected entity relocated to new chunk, got %v", pos)
	}
}

func TestMoveEntityWithinSameChunkIsNoop(t *testing.T) {
	rt := &runtime.State{}
	wm := NewWorldManager("overworld", newMemStorage(), flatGenerator{fill: 1}, nil, ChunkMapConfig{LoadWorkers: 1}, rt, testLogger())
	defer wm.Close()

	id, _ := wm.SpawnEntity(ChunkPos{0, 0}, 0)
	delta := wm.MoveEntity(id, ChunkPos{0, 0}, 0)
	if len(delta.Abandoned) != 0 || len(delta.Acquired) != 0 {
		t.Fatalf("expected no-op watch delta, got %+v", delta)
	}
}

func TestDespawnEntityStopsWatching(t *testing.T) {
	rt := &runtime.State{}
	wm := NewWorldManager("overworld", newMemStorage(), flatGenerator{fill: 1}, nil, ChunkMapConfig{LoadWorkers: 1, DespawnThreshold: 5 * time.Millisecond}, rt, testLogger())
	defer wm.Close()

	id, watched := wm.SpawnEntity(ChunkPos{0, 0}, 0)
	waitForLoaded(t, wm.Chunks(), watched[0])
	wm.DespawnEntity(id)

	wm.Chunks().Tick(10 * time.Millisecond)
	if _, ok := wm.Chunks().GetColumn(watched[0]); ok {
		t.Fatal("expected column to despawn after entity left")
	}
	if _, ok := wm.ECS().ChunkOf(id); ok {
		t.Fatal("expected entity removed from ECS")
	}
}
