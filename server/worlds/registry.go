// Package worlds implements the Worlds Registry: the slug-keyed directory
// of every WorldManager the server hosts.
package worlds

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vxlcore/server/server/internal/runtime"
	"github.com/vxlcore/server/server/world"
)

// Registry maps world slugs to their WorldManager. A world is created once,
// lazily, on first reference and lives for the remainder of the process.
type Registry struct {
	mu     sync.RWMutex
	worlds map[string]*world.WorldManager

	storage   world.Storage
	generator world.GeneratorService
	cfg       world.ChunkMapConfig
	rt        *runtime.State
	log       *slog.Logger
}

// NewRegistry returns an empty registry. storage and generator are shared by
// every world it creates; cfg configures each world's Chunk Map.
func NewRegistry(storage world.Storage, generator world.GeneratorService, cfg world.ChunkMapConfig, rt *runtime.State, log *slog.Logger) *Registry {
	return &Registry{
		worlds:    make(map[string]*world.WorldManager),
		storage:   storage,
		generator: generator,
		cfg:       cfg,
		rt:        rt,
		log:       log,
	}
}

// Get returns the WorldManager for slug, creating it with the given
// generator settings if it does not already exist.
func (r *Registry) Get(slug string, settings world.GeneratorSettings) *world.WorldManager {
	r.mu.RLock()
	wm, ok := r.worlds[slug]
	r.mu.RUnlock()
	if ok {
		return wm
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if wm, ok := r.worlds[slug]; ok {
		return wm
	}
	wm = world.NewWorldManager(slug, r.storage, r.generator, settings, r.cfg, r.rt, r.log)
	r.worlds[slug] = wm
	return wm
}

// Lookup returns the WorldManager for slug without creating one.
func (r *Registry) Lookup(slug string) (*world.WorldManager, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wm, ok := r.worlds[slug]
	return wm, ok
}

// Slugs returns every world slug currently registered.
func (r *Registry) Slugs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.worlds))
	for slug := range r.worlds {
		out = append(out, slug)
	}
	return out
}

// Tick advances every registered world's Chunk Map by delta, dispatching
// load jobs for newly watched positions and draining any that finished.
func (r *Registry) Tick(delta time.Duration) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, wm := range r.worlds {
		wm.Chunks().Tick(delta)
		wm.Chunks().DrainLoadedChunks()
	}
}

// Close shuts down every registered world's Chunk Map.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for slug, wm := range r.worlds {
		if err := wm.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("worlds: close %q: %w", slug, err)
		}
	}
	return firstErr
}
