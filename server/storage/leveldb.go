// Package storage provides the on-disk Storage implementation used by the
// server, keyed by world slug and chunk position and backed by one LevelDB
// database per world.
package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"

	"github.com/vxlcore/server/server/world"
)

// LevelDBStore is a world.Storage implementation that keeps one LevelDB
// database per world slug under a shared root directory, opening databases
// lazily on first use.
type LevelDBStore struct {
	root string

	mu  sync.Mutex
	dbs map[string]*leveldb.DB
}

// NewLevelDBStore returns a Storage rooted at dir. Each world slug gets its
// own subdirectory, opened on first Load or Store call for that slug.
func NewLevelDBStore(dir string) *LevelDBStore {
	return &LevelDBStore{root: dir, dbs: make(map[string]*leveldb.DB)}
}

func (s *LevelDBStore) open(worldSlug string) (*leveldb.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if db, ok := s.dbs[worldSlug]; ok {
		return db, nil
	}
	db, err := leveldb.OpenFile(filepath.Join(s.root, worldSlug), &opt.Options{
		Compression: opt.NoCompression,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: open world %q: %w", worldSlug, err)
	}
	s.dbs[worldSlug] = db
	return db, nil
}

func chunkKey(pos world.ChunkPos) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint32(key[0:4], uint32(pos.X))
	binary.BigEndian.PutUint32(key[4:8], uint32(pos.Z))
	return key
}

// Load returns the blob stored for pos, or world.ErrBlobNotFound if the
// world has never stored a chunk there.
func (s *LevelDBStore) Load(worldSlug string, pos world.ChunkPos) ([]byte, error) {
	db, err := s.open(worldSlug)
	if err != nil {
		return nil, err
	}
	blob, err := db.Get(chunkKey(pos), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, world.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: load %v/%v: %w", worldSlug, pos, err)
	}
	return blob, nil
}

// Store writes (or overwrites) the blob for pos.
func (s *LevelDBStore) Store(worldSlug string, pos world.ChunkPos, blob []byte) error {
	db, err := s.open(worldSlug)
	if err != nil {
		return err
	}
	if err := db.Put(chunkKey(pos), blob, nil); err != nil {
		return fmt.Errorf("storage: store %v/%v: %w", worldSlug, pos, err)
	}
	return nil
}

// Close closes every opened world database.
func (s *LevelDBStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for slug, db := range s.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("storage: close world %q: %w", slug, err)
		}
	}
	s.dbs = make(map[string]*leveldb.DB)
	return firstErr
}
