// Package server wires together the Chunk Map, Worlds Registry, Client
// Session registry, Network Drain, Chunk Sender, Precise Scheduler, console
// command pipeline and plugin loader into one running vxlcore server,
// mirroring the teacher's top-level Server composition root.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vxlcore/server/server/cmd"
	"github.com/vxlcore/server/server/cmd/builtin"
	"github.com/vxlcore/server/server/console"
	"github.com/vxlcore/server/server/internal/runtime"
	"github.com/vxlcore/server/server/network"
	"github.com/vxlcore/server/server/plugin"
	"github.com/vxlcore/server/server/protocol"
	"github.com/vxlcore/server/server/scheduler"
	"github.com/vxlcore/server/server/session"
	"github.com/vxlcore/server/server/storage"
	"github.com/vxlcore/server/server/transport"
	"github.com/vxlcore/server/server/world"
	"github.com/vxlcore/server/server/worlds"
)

// Server runs the fixed-rate tick loop driving every subsystem spec.md
// assigns to the tick-owning transaction.
type Server struct {
	conf      Config
	log       *slog.Logger
	rt        *runtime.State
	startTime time.Time

	listener  transport.Listener
	sessions  *session.Registry
	worldsReg *worlds.Registry
	drain     *network.Drain
	handlers  *network.Handlers
	sender    *network.Sender
	console   *console.Console
	sched     *scheduler.Scheduler
	plugins   *plugin.Manager[*Server, Config]
	store     *storage.LevelDBStore

	tps                 atomic.Uint64 // math.Float64bits of the last measured ticks-per-second
	lastTick            time.Time
	lastStatusBroadcast time.Time
}

func newServer(conf Config) (*Server, error) {
	rt := &runtime.State{}
	store := storage.NewLevelDBStore(conf.DataPath)
	cfg := world.ChunkMapConfig{LoadWorkers: conf.LoadWorkers}

	s := &Server{
		conf:      conf,
		log:       conf.Log,
		rt:        rt,
		startTime: time.Now(),
		store:     store,
		sessions:  session.NewRegistry(),
		worldsReg: worlds.NewRegistry(store, conf.Generator, cfg, rt, conf.Log),
	}

	s.plugins = plugin.NewManager[*Server, Config](s, plugin.Config{
		Enabled:       conf.Plugins.Enabled,
		Directory:     conf.Plugins.Directory,
		DataDirectory: conf.Plugins.DataDirectory,
		Files:         conf.Plugins.Files,
	})
	if err := s.plugins.LoadConfigured(); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	s.sched = scheduler.New(scheduler.Config{Rate: conf.TickRate, Rt: rt, Log: conf.Log})
	s.console = console.New(conf.Log)

	builtin.Register(s)

	return s, nil
}

// Listen binds the server's RakNet listener on Config.Address.
func (s *Server) Listen() error {
	ln, err := transport.ListenRakNet(s.conf.Address)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	s.listener = ln
	s.drain = network.NewDrain(ln, s.sessions, s.conf.QueueLimit, s.log)
	s.handlers = network.NewHandlers(s.drain, s.worldsReg, s.sessions, network.SpawnPoint{
		WorldSlug:         s.conf.SpawnWorld,
		ChunkPos:          s.conf.SpawnPos,
		GeneratorSettings: s.conf.GeneratorSettings,
	}, s.conf.ViewRadius, s.conf.Resources, s.log)
	s.sender = network.NewSender(s.worldsReg, s.sessions, s.conf.SendWorkers, s.log)
	return nil
}

// Accept runs the server's tick loop until the runtime is stopped or an
// update callback requests shutdown. It blocks the calling goroutine.
func (s *Server) Accept() {
	go s.console.Run(context.Background())
	s.sched.Run(s.tick)
	s.shutdown()
}

func (s *Server) tick(tickNum int64, delta time.Duration) (shutdown bool) {
	now := time.Now()
	if !s.lastTick.IsZero() {
		if elapsed := now.Sub(s.lastTick).Seconds(); elapsed > 0 {
			s.tps.Store(float64bits(1 / elapsed))
		}
	}
	s.lastTick = now

	s.drain.Run()
	s.handlers.Run()
	s.worldsReg.Tick(delta)
	s.sender.SendChunks()
	s.sender.FlushCompressed()

	if s.conf.SendTPS && now.Sub(s.lastStatusBroadcast) >= time.Second {
		s.lastStatusBroadcast = now
		s.broadcastStatus()
	}

	for _, line := range s.console.Drain() {
		cmd.ExecuteLine(s.console.Source(), line)
	}

	return s.rt.IsStopped()
}

// broadcastStatus sends ServerStatus, the measured ticks-per-second, to
// every connected client at Unreliable.
func (s *Server) broadcastStatus() {
	status := &protocol.ServerStatus{TPS: s.TPS()}
	for _, sess := range s.sessions.All() {
		sess.Send(status, protocol.Unreliable)
	}
}

func (s *Server) shutdown() {
	if s.sender != nil {
		s.sender.Close()
	}
	if err := s.worldsReg.Close(); err != nil {
		s.log.Error("close worlds", "err", err)
	}
	if err := s.store.Close(); err != nil {
		s.log.Error("close storage", "err", err)
	}
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.log.Error("close listener", "err", err)
		}
	}
}

// --- builtin.Host ---

// TPS reports the most recently measured ticks-per-second.
func (s *Server) TPS() float64 {
	return float64frombits(s.tps.Load())
}

// Kick disconnects the session logged in as login, returning false if no
// such session exists.
func (s *Server) Kick(login, reason string) bool {
	sess, ok := s.sessions.ByLogin(login)
	if !ok {
		return false
	}
	sess.Disconnect(reason)
	return true
}

// WorldSlugs lists every world currently loaded.
func (s *Server) WorldSlugs() []string {
	return s.worldsReg.Slugs()
}

// Teleport moves the entity attached to login's session to the chunk
// containing (x, y, z) and notifies its session of the new position. It
// does not broadcast the move to other watchers; a player reappearing after
// a teleport is resynced on their next regular move.
func (s *Server) Teleport(login string, x, y, z float64) error {
	sess, ok := s.sessions.ByLogin(login)
	if !ok {
		return fmt.Errorf("server: no session for %q", login)
	}
	we, ok := sess.Attachment()
	if !ok {
		return fmt.Errorf("server: %q has not spawned yet", login)
	}
	wm, ok := s.worldsReg.Lookup(we.WorldSlug)
	if !ok {
		return fmt.Errorf("server: world %q not found", we.WorldSlug)
	}
	target := world.BlockPos{X: int32(math.Floor(x)), Y: int32(math.Floor(y)), Z: int32(math.Floor(z))}.ChunkPos()
	delta := wm.MoveEntity(we.EntityID, target, s.conf.ViewRadius)
	if len(delta.Abandoned) > 0 {
		sess.Forget(delta.Abandoned)
	}
	return sess.Send(&protocol.SyncPlayerMove{
		EntityID: sess.UUID,
		Position: mgl64.Vec3{x, y, z},
	}, protocol.ReliableOrdered)
}

// StartTime returns when the server process started.
func (s *Server) StartTime() time.Time { return s.startTime }

// Stop requests the tick loop shut down after the current tick.
func (s *Server) Stop() { s.rt.Stop() }

// --- plugin.Host[*Server, Config] ---

// Instance returns the server itself, handed to plugins via plugin.API.
func (s *Server) Instance() *Server { return s }

// Config returns the server's configuration snapshot.
func (s *Server) Config() Config { return s.conf }

// Logger returns the server's structured logger.
func (s *Server) Logger() *slog.Logger { return s.log }

func float64bits(f float64) uint64    { return math.Float64bits(f) }
func float64frombits(b uint64) float64 { return math.Float64frombits(b) }
