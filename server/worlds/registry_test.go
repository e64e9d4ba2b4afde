package worlds

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/vxlcore/server/server/internal/runtime"
	"github.com/vxlcore/server/server/world"
)

type stubStorage struct {
	mu   sync.Mutex
	blob map[world.ChunkPos][]byte
}

func newStubStorage() *stubStorage { return &stubStorage{blob: make(map[world.ChunkPos][]byte)} }

func (s *stubStorage) Load(slug string, pos world.ChunkPos) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blob[pos]
	if !ok {
		return nil, world.ErrBlobNotFound
	}
	return b, nil
}

func (s *stubStorage) Store(slug string, pos world.ChunkPos, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob[pos] = blob
	return nil
}

func (s *stubStorage) Close() error { return nil }

type stubGenerator struct{}

func (stubGenerator) Generate(pos world.ChunkPos, settings world.GeneratorSettings) ([]*world.Section, error) {
	return []*world.Section{world.NewSection(0)}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetCreatesWorldOnce(t *testing.T) {
	r := NewRegistry(newStubStorage(), stubGenerator{}, world.ChunkMapConfig{}, &runtime.State{}, testLogger())
	defer r.Close()

	a := r.Get("overworld", nil)
	b := r.Get("overworld", nil)
	if a != b {
		t.Fatal("expected the same WorldManager instance across calls")
	}
}

func TestLookupReportsAbsence(t *testing.T) {
	r := NewRegistry(newStubStorage(), stubGenerator{}, world.ChunkMapConfig{}, &runtime.State{}, testLogger())
	defer r.Close()

	if _, ok := r.Lookup("nether"); ok {
		t.Fatal("expected no world registered yet")
	}
	r.Get("nether", nil)
	if _, ok := r.Lookup("nether"); !ok {
		t.Fatal("expected nether to be registered after Get")
	}
}

func TestSlugsListsEveryCreatedWorld(t *testing.T) {
	r := NewRegistry(newStubStorage(), stubGenerator{}, world.ChunkMapConfig{}, &runtime.State{}, testLogger())
	defer r.Close()

	r.Get("overworld", nil)
	r.Get("nether", nil)
	slugs := r.Slugs()
	if len(slugs) != 2 {
		t.Fatalf("expected 2 slugs, got %v", slugs)
	}
}

func TestConcurrentGetCreatesExactlyOneWorld(t *testing.T) {
	r := NewRegistry(newStubStorage(), stubGenerator{}, world.ChunkMapConfig{}, &runtime.State{}, testLogger())
	defer r.Close()

	var wg sync.WaitGroup
	results := make([]*world.WorldManager, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Get("overworld", nil)
		}(i)
	}
	wg.Wait()

	first := results[0]
	for _, wm := range results[1:] {
		if wm != first {
			t.Fatal("expected all concurrent Get calls to observe the same world")
		}
	}
	if len(r.Slugs()) != 1 {
		t.Fatal("expected exactly one world to have been created")
	}
}
