package network

import (
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/vxlcore/server/server/protocol"
	"github.com/vxlcore/server/server/session"
	"github.com/vxlcore/server/server/world"
	"github.com/vxlcore/server/server/worlds"
)

// compressionJob carries one column through the worker pool to the
// compressed-chunks channel that FlushCompressed drains.
type compressionJob struct {
	clientID  uint64
	worldSlug string
	pos       world.ChunkPos
	column    *world.Column
}

type compressedResult struct {
	clientID uint64
	envelope *protocol.ChunkSectionInfoEncoded
}

// Sender is the Chunk Sender: it walks each client's watched chunks in
// spiral order, submits compression work for missing ones, and forwards
// finished frames back to the transport.
type Sender struct {
	worldsReg *worlds.Registry
	sessions  *session.Registry
	log       *slog.Logger

	jobs    chan compressionJob
	results chan compressedResult
	closed  chan struct{}
	workers errgroup.Group
}

// NewSender starts a Sender with workerCount background compression
// workers.
func NewSender(worldsReg *worlds.Registry, sessions *session.Registry, workerCount int, log *slog.Logger) *Sender {
	if workerCount <= 0 {
		workerCount = 1
	}
	s := &Sender{
		worldsReg: worldsReg,
		sessions:  sessions,
		log:       log,
		jobs:      make(chan compressionJob, 1024),
		results:   make(chan compressedResult, 1024),
		closed:    make(chan struct{}),
	}
	for i := 0; i < workerCount; i++ {
		s.workers.Go(s.compressWorker)
	}
	return s
}

// SendChunks runs one send_chunks pass over every connected, attached
// client: compute missing watched chunks in spiral order and submit
// compression jobs up to each client's remaining queue capacity.
func (s *Sender) SendChunks() {
	for _, c := range s.sessions.All() {
		s.sendChunksTo(c)
	}
}

func (s *Sender) sendChunksTo(c *session.Session) {
	if c.IsQueueFull() {
		return
	}
	we, ok := c.Attachment()
	if !ok {
		return
	}
	wm, ok := s.worldsReg.Lookup(we.WorldSlug)
	if !ok {
		return
	}
	watched := wm.Chunks().GetWatchedChunks(we.EntityID)
	if len(watched) == 0 {
		return
	}
	watchedSet := make(map[world.ChunkPos]struct{}, len(watched))
	allSent := true
	for _, pos := range watched {
		watchedSet[pos] = struct{}{}
		if !c.AlreadySent(pos) {
			allSent = false
		}
	}
	if allSent {
		return
	}

	center, _ := wm.ECS().ChunkOf(we.EntityID)
	radius := spiralRadius(watched, center)
	for _, pos := range world.SpiralOrder(center, radius) {
		if c.IsQueueFull() {
			return
		}
		if _, watching := watchedSet[pos]; !watching {
			continue
		}
		if c.AlreadySent(pos) {
			continue
		}
		col, ok := wm.Chunks().GetColumn(pos)
		if !ok || !col.Loaded() {
			continue
		}
		c.MarkSending(pos)
		select {
		case s.jobs <- compressionJob{clientID: c.ID, worldSlug: we.WorldSlug, pos: pos, column: col}:
		case <-s.closed:
			return
		}
	}
}

// spiralRadius picks a walk radius large enough to cover every watched
// position, so SendChunks's spiral walk never has to special-case a
// caller-supplied CHUNKS_DISTANCE smaller than the actual watch window.
func spiralRadius(watched []world.ChunkPos, center world.ChunkPos) int32 {
	var max int32
	for _, pos := range watched {
		if d := chebyshevDistance(pos, center); d > max {
			max = d
		}
	}
	return max
}

func chebyshevDistance(a, b world.ChunkPos) int32 {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dz := a.Z - b.Z
	if dz < 0 {
		dz = -dz
	}
	if dx > dz {
		return dx
	}
	return dz
}

func (s *Sender) compressWorker() error {
	for {
		select {
		case job := <-s.jobs:
			s.runCompressionJob(job)
		case <-s.closed:
			return nil
		}
	}
}

func (s *Sender) runCompressionJob(job compressionJob) {
	blob, err := job.column.BuildNetworkFormat()
	if err != nil {
		s.log.Error("build network format", "world", job.worldSlug, "x", job.pos.X, "z", job.pos.Z, "err", err)
		return
	}
	envelope := &protocol.ChunkSectionInfoEncoded{
		WorldSlug:     job.worldSlug,
		ChunkPosition: fromChunkPos(job.pos),
		Encoded:       blob,
	}
	select {
	case s.results <- compressedResult{clientID: job.clientID, envelope: envelope}:
	case <-s.closed:
	}
}

// FlushCompressed drains finished compression jobs and forwards each
// envelope to its client at WorldInfo reliability. Envelopes for clients
// that have since disconnected are silently dropped.
func (s *Sender) FlushCompressed() {
	for {
		select {
		case res := <-s.results:
			c, ok := s.sessions.Get(res.clientID)
			if !ok {
				continue
			}
			if err := c.Send(res.envelope, protocol.WorldInfo); err != nil {
				s.log.Debug("send chunk frame", "client", res.clientID, "err", err)
			}
		default:
			return
		}
	}
}

// Close stops the compression worker pool and waits for in-flight jobs to
// finish.
func (s *Sender) Close() {
	close(s.closed)
	_ = s.workers.Wait()
}
