package storage

import (
	"errors"
	"testing"

	"github.com/vxlcore/server/server/world"
)

func TestLevelDBLoadMissingReturnsErrBlobNotFound(t *testing.T) {
	s := NewLevelDBStore(t.TempDir())
	defer s.Close()

	_, err := s.Load("overworld", world.ChunkPos{X: 1, Z: 2})
	if !errors.Is(err, world.ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestLevelDBStoreThenLoadRoundTrips(t *testing.T) {
	s := NewLevelDBStore(t.TempDir())
	defer s.Close()

	pos := world.ChunkPos{X: -3, Z: 7}
	want := []byte{1, 2, 3, 4, 5}
	if err := s.Store("overworld", pos, want); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got, err := s.Load("overworld", pos)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLevelDBKeepsWorldsIsolated(t *testing.T) {
	s := NewLevelDBStore(t.TempDir())
	defer s.Close()

	pos := world.ChunkPos{X: 0, Z: 0}
	if err := s.Store("overworld", pos, []byte("over")); err != nil {
		t.Fatalf("Store overworld: %v", err)
	}
	if err := s.Store("nether", pos, []byte("nether")); err != nil {
		t.Fatalf("Store nether: %v", err)
	}
	got, err := s.Load("nether", pos)
	if err != nil {
		t.Fatalf("Load nether: %v", err)
	}
	if string(got) != "nether" {
		t.Fatalf("expected nether-scoped blob, got %q", got)
	}
}
