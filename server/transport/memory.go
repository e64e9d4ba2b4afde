package transport

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/vxlcore/server/server/protocol"
)

// MemoryListener is an in-process Listener used by tests to drive Network
// Drain without a real UDP socket.
type MemoryListener struct {
	nextID atomic.Uint64

	mu      sync.Mutex
	notices []Notice
	errs    []error
}

// NewMemoryListener returns an empty listener. Use Connect to simulate an
// incoming client connection.
func NewMemoryListener() *MemoryListener {
	return &MemoryListener{}
}

// Connect simulates a client connecting and returns the server-side and
// client-side handles to the same in-memory pipe.
func (l *MemoryListener) Connect() (server *MemoryConn, client *MemoryConn) {
	id := l.nextID.Add(1)
	server, client = newMemoryPipe(id)
	l.mu.Lock()
	l.notices = append(l.notices, Notice{Conn: server, ID: id})
	l.mu.Unlock()
	return server, client
}

func (l *MemoryListener) Notices() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.notices) == 0 {
		return nil
	}
	out := l.notices
	l.notices = nil
	return out
}

func (l *MemoryListener) Errors() []error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.errs) == 0 {
		return nil
	}
	out := l.errs
	l.errs = nil
	return out
}

func (l *MemoryListener) InjectError(err error) {
	l.mu.Lock()
	l.errs = append(l.errs, err)
	l.mu.Unlock()
}

func (l *MemoryListener) Close() error { return nil }

// MemoryConn is a Conn backed by a pair of in-memory Envelope queues
// instead of a real socket.
type MemoryConn struct {
	id   uint64
	peer *MemoryConn

	mu     sync.Mutex
	inbox  []protocol.Envelope
	closed bool
}

func newMemoryPipe(id uint64) (a, b *MemoryConn) {
	a = &MemoryConn{id: id}
	b = &MemoryConn{id: id}
	a.peer = b
	b.peer = a
	return a, b
}

func (c *MemoryConn) ID() uint64 { return c.id }

// Closed reports whether Close has been called on this end of the pipe.
func (c *MemoryConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *MemoryConn) RemoteAddr() net.Addr { return memAddr{} }

func (c *MemoryConn) Send(e protocol.Envelope, r protocol.Reliability) error {
	c.peer.mu.Lock()
	defer c.peer.mu.Unlock()
	if c.peer.closed {
		return nil
	}
	c.peer.inbox = append(c.peer.inbox, e)
	return nil
}

func (c *MemoryConn) Recv() ([]protocol.Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.inbox) == 0 {
		return nil, nil
	}
	out := c.inbox
	c.inbox = nil
	return out, nil
}

func (c *MemoryConn) Close(reason string) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

type memAddr struct{}

func (memAddr) Network() string { return "memory" }
func (memAddr) String() string  { return "memory" }
