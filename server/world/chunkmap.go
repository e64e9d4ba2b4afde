package world

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/brentp/intintmap"
	"golang.org/x/sync/errgroup"

	"github.com/vxlcore/server/server/internal/runtime"
)

// ChunkMap is the per-world keyed container of Chunk Columns. It owns the
// worker-dispatched load/generate pipeline, tracks which entities are
// watching which chunks, and drives eviction of columns nobody is watching.
type ChunkMap struct {
	worldSlug string
	cfg       ChunkMapConfig
	storage   Storage
	generator GeneratorService
	settings  GeneratorSettings
	rt        *runtime.State
	log       *slog.Logger

	mu        sync.RWMutex
	columns   map[ChunkPos]*Column
	watchedBy map[ChunkPos]map[EntityID]struct{}
	watching  map[EntityID]map[ChunkPos]struct{}

	loadingMu sync.Mutex
	loading   *intintmap.Map

	loadJobs chan ChunkPos
	loadedCh chan ChunkPos

	closeOnce sync.Once
	closed    chan struct{}
	workers   errgroup.Group
}

// NewChunkMap constructs a ChunkMap for one world and starts its background
// load/generate worker pool. Close must be called to stop the workers.
func NewChunkMap(worldSlug string, storage Storage, generator GeneratorService, settings GeneratorSettings, cfg ChunkMapConfig, rt *runtime.State, log *slog.Logger) *ChunkMap {
	cfg = cfg.withDefaults()
	if log == nil {
		log = slog.Default()
	}
	m := &ChunkMap{
		worldSlug:  worldSlug,
		cfg:        cfg,
		storage:    storage,
		generator:  generator,
		settings:   settings,
		rt:         rt,
		log:        log.With("world", worldSlug),
		columns:   make(map[ChunkPos]*Column),
		watchedBy: make(map[ChunkPos]map[EntityID]struct{}),
		watching:  make(map[EntityID]map[ChunkPos]struct{}),
		loading:   intintmap.New(64, 0.6),
		loadJobs:  make(chan ChunkPos, cfg.LoadedChunkQueueSize),
		loadedCh:  make(chan ChunkPos, cfg.LoadedChunkQueueSize),
		closed:    make(chan struct{}),
	}
	for i := 0; i < cfg.LoadWorkers; i++ {
		m.workers.Go(m.loadWorker)
	}
	return m
}

// StartWatching makes entity watch every chunk within Chebyshev distance
// radius of center, creating empty columns and enqueuing load jobs where
// needed. It returns the set of positions now watched by the entity.
func (m *ChunkMap) StartWatching(entity EntityID, center ChunkPos, radius int32) []ChunkPos {
	positions := withinRadius(center, radius)

	m.mu.Lock()
	set, ok := m.watching[entity]
	if !ok {
		set = make(map[ChunkPos]struct{}, len(positions))
		m.watching[entity] = set
	}
	for _, pos := range positions {
		set[pos] = struct{}{}
		m.addWatcherLocked(pos, entity)
	}
	m.mu.Unlock()

	for _, pos := range positions {
		m.ensureColumnAndLoad(pos)
	}
	return positions
}

// WatchDelta describes the result of UpdateWatching.
type WatchDelta struct {
	Abandoned []ChunkPos
	Acquired  []ChunkPos
}

// UpdateWatching recomputes an entity's watch window after it moves from
// oldCenter to newCenter. Abandoned positions have their despawn timer
// restarted (if they end up with no other watchers); acquired positions are
// load-requested as needed.
func (m *ChunkMap) UpdateWatching(entity EntityID, oldCenter, newCenter ChunkPos, radius int32) WatchDelta {
	newSet := withinRadius(newCenter, radius)
	newLookup := make(map[ChunkPos]struct{}, len(newSet))
	for _, p := range newSet {
		newLookup[p] = struct{}{}
	}

	m.mu.Lock()
	oldLookup := m.watching[entity]
	var abandoned, acquired []ChunkPos
	for pos := range oldLookup {
		if _, stillWatched := newLookup[pos]; !stillWatched {
			abandoned = append(abandoned, pos)
			m.removeWatcherLocked(pos, entity)
		}
	}
	for pos := range newLookup {
		if _, alreadyWatched := oldLookup[pos]; !alreadyWatched {
			acquired = append(acquired, pos)
			m.addWatcherLocked(pos, entity)
		}
	}
	m.watching[entity] = newLookup
	m.mu.Unlock()

	for _, pos := range acquired {
		m.ensureColumnAndLoad(pos)
	}
	return WatchDelta{Abandoned: abandoned, Acquired: acquired}
}

// StopWatching removes entity from every chunk's watcher set. Any column
// that loses its last watcher as a result starts its despawn countdown
// (implicitly, since AdvanceTimer only runs on columns with zero watchers).
func (m *ChunkMap) StopWatching(entity EntityID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for pos := range m.watching[entity] {
		m.removeWatcherLocked(pos, entity)
	}
	delete(m.watching, entity)
}

func (m *ChunkMap) addWatcherLocked(pos ChunkPos, entity EntityID) {
	set, ok := m.watchedBy[pos]
	if !ok {
		set = make(map[EntityID]struct{})
		m.watchedBy[pos] = set
	}
	set[entity] = struct{}{}
	if c, ok := m.columns[pos]; ok {
		c.ResetTimer()
	}
}

func (m *ChunkMap) removeWatcherLocked(pos ChunkPos, entity EntityID) {
	set, ok := m.watchedBy[pos]
	if !ok {
		return
	}
	delete(set, entity)
	if len(set) == 0 {
		delete(m.watchedBy, pos)
	}
}

// ensureColumnAndLoad creates an empty column for pos if one doesn't exist
// yet and, if no load job is already in flight for that position, submits
// one. This preserves the exactly-one-in-flight-per-position invariant.
func (m *ChunkMap) ensureColumnAndLoad(pos ChunkPos) {
	m.mu.Lock()
	c, ok := m.columns[pos]
	if !ok {
		c = NewColumn(m.worldSlug, pos)
		m.columns[pos] = c
	}
	m.mu.Unlock()

	if !c.Loaded() && c.MarkLoadDispatched() {
		m.loadingMu.Lock()
		m.loading.Put(pos.pack(), 1)
		m.loadingMu.Unlock()
		select {
		case m.loadJobs <- pos:
		case <-m.closed:
		}
	}
}

// IsLoadPending reports whether pos currently has a load/generate job
// dispatched and not yet finished. Backed by intintmap rather than a
// map[ChunkPos]struct{} so the check stays a single int64 lookup on the hot
// chunk-request path.
func (m *ChunkMap) IsLoadPending(pos ChunkPos) bool {
	m.loadingMu.Lock()
	defer m.loadingMu.Unlock()
	_, ok := m.loading.Get(pos.pack())
	return ok
}

// EditBlock mutates the block at pos. It fails if the containing chunk is
// not loaded.
func (m *ChunkMap) EditBlock(pos BlockPos, info BlockInfo) error {
	cp := pos.ChunkPos()
	m.mu.RLock()
	c, ok := m.columns[cp]
	m.mu.RUnlock()
	if !ok {
		return ErrNotLoaded
	}
	return c.ChangeBlockAt(pos, info)
}

// Tick advances despawn timers on unwatched columns, evicts columns whose
// timer has exceeded the configured threshold (persisting dirty ones
// first), and submits load jobs for any column whose section data is
// missing and whose load has not yet been dispatched.
func (m *ChunkMap) Tick(delta time.Duration) {
	m.mu.Lock()
	type evictCandidate struct {
		pos ChunkPos
		col *Column
	}
	var toEvict []evictCandidate
	var toLoad []ChunkPos
	for pos, c := range m.columns {
		if _, watched := m.watchedBy[pos]; watched {
			continue
		}
		if c.AdvanceTimer(delta) >= m.cfg.DespawnThreshold {
			toEvict = append(toEvict, evictCandidate{pos, c})
		}
	}
	for _, ec := range toEvict {
		delete(m.columns, ec.pos)
	}
	m.mu.Unlock()

	for _, ec := range toEvict {
		m.evict(ec.pos, ec.col)
	}

	m.mu.RLock()
	for pos, c := range m.columns {
		if !c.Loaded() && c.MarkLoadDispatched() {
			toLoad = append(toLoad, pos)
		}
	}
	m.mu.RUnlock()

	if len(toLoad) > 0 {
		m.loadingMu.Lock()
		for _, pos := range toLoad {
			m.loading.Put(pos.pack(), 1)
		}
		m.loadingMu.Unlock()
	}
	for _, pos := range toLoad {
		select {
		case m.loadJobs <- pos:
		case <-m.closed:
			return
		}
	}
}

func (m *ChunkMap) evict(pos ChunkPos, c *Column) {
	if c.Loaded() && c.Dirty() {
		blob, err := c.BuildNetworkFormat()
		if err != nil {
			m.log.Error("encode column for eviction", "x", pos.X, "z", pos.Z, "err", err)
			return
		}
		if err := m.storage.Store(m.worldSlug, pos, blob); err != nil {
			m.log.Error("store evicted column", "x", pos.X, "z", pos.Z, "err", err)
			m.rt.Stop()
			return
		}
		c.ClearDirty()
	}
}

// DrainLoadedChunks consumes every position that has finished loading since
// the last call.
func (m *ChunkMap) DrainLoadedChunks() []ChunkPos {
	var out []ChunkPos
	for {
		select {
		case pos := <-m.loadedCh:
			out = append(out, pos)
		default:
			return out
		}
	}
}

// GetColumn returns the column at pos, if one exists (loaded or not).
func (m *ChunkMap) GetColumn(pos ChunkPos) (*Column, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.columns[pos]
	return c, ok
}

// GetWatchers returns the entities currently watching pos.
func (m *ChunkMap) GetWatchers(pos ChunkPos) []EntityID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set := m.watchedBy[pos]
	if len(set) == 0 {
		return nil
	}
	out := make([]EntityID, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	return out
}

// GetWatchedChunks returns every chunk position entity currently watches.
func (m *ChunkMap) GetWatchedChunks(entity EntityID) []ChunkPos {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set := m.watching[entity]
	if len(set) == 0 {
		return nil
	}
	out := make([]ChunkPos, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}

// IsLoaded reports whether the column at pos exists and has finished
// loading.
func (m *ChunkMap) IsLoaded(pos ChunkPos) bool {
	c, ok := m.GetColumn(pos)
	return ok && c.Loaded()
}

// loadWorker runs chunk load jobs pulled from the job queue until the map
// is closed. It always returns nil; job-level failures stop the runtime via
// rt.Stop() rather than propagating through the errgroup.
func (m *ChunkMap) loadWorker() error {
	for {
		select {
		case pos := <-m.loadJobs:
			m.runLoadJob(pos)
		case <-m.closed:
			return nil
		}
	}
}

// runLoadJob implements the Chunk Load Job contract from the spec: check
// storage, decompress on hit, generate on miss, populate the column and
// notify the tick loop.
func (m *ChunkMap) runLoadJob(pos ChunkPos) {
	if m.rt.IsStopped() {
		return
	}
	m.mu.RLock()
	c, ok := m.columns[pos]
	m.mu.RUnlock()
	if !ok {
		return
	}
	defer func() {
		m.loadingMu.Lock()
		m.loading.Del(pos.pack())
		m.loadingMu.Unlock()
	}()

	blob, err := m.storage.Load(m.worldSlug, pos)
	switch {
	case err == nil:
		sections, decErr := DecodeSections(blob)
		if decErr != nil {
			m.log.Error("decompress stored chunk", "x", pos.X, "z", pos.Z, "err", decErr)
			m.rt.Stop()
			return
		}
		if popErr := c.Populate(sections); popErr != nil {
			m.log.Error("populate loaded chunk", "x", pos.X, "z", pos.Z, "err", popErr)
			m.rt.Stop()
			return
		}
	case errors.Is(err, ErrBlobNotFound):
		sections, genErr := m.generator.Generate(pos, m.settings)
		if genErr != nil {
			m.log.Error("generate chunk", "x", pos.X, "z", pos.Z, "err", genErr)
			m.rt.Stop()
			return
		}
		if popErr := c.Populate(sections); popErr != nil {
			m.log.Error("populate generated chunk", "x", pos.X, "z", pos.Z, "err", popErr)
			m.rt.Stop()
			return
		}
	default:
		m.log.Error("load stored chunk", "x", pos.X, "z", pos.Z, "err", err)
		m.rt.Stop()
		return
	}

	select {
	case m.loadedCh <- pos:
	case <-m.closed:
	}
}

// Close stops the worker pool and waits for in-flight jobs to finish,
// returning the first worker error if any occurred.
func (m *ChunkMap) Close() error {
	m.closeOnce.Do(func() {
		close(m.closed)
	})
	return m.workers.Wait()
}
