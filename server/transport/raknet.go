package transport

import (
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/sandertv/go-raknet"

	"github.com/vxlcore/server/server/protocol"
)

// RakNetListener is a Listener backed by github.com/sandertv/go-raknet. It
// accepts connections in a background goroutine and hands each one its own
// read loop so Network Drain only ever deals with already-decoded
// Envelopes.
type RakNetListener struct {
	ln *raknet.Listener

	nextID atomic.Uint64

	mu      sync.Mutex
	notices []Notice
	errs    []error

	closed chan struct{}
}

// ListenRakNet binds a RakNet listener on address (host:port) and starts
// accepting connections.
func ListenRakNet(address string) (*RakNetListener, error) {
	ln, err := raknet.Listen(address)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", address, err)
	}
	l := &RakNetListener{ln: ln, closed: make(chan struct{})}
	go l.acceptLoop()
	return l, nil
}

func (l *RakNetListener) acceptLoop() {
	for {
		c, err := l.ln.Accept()
		if err != nil {
			select {
			case <-l.closed:
				return
			default:
			}
			l.pushErr(fmt.Errorf("transport: accept: %w", err))
			continue
		}
		id := l.nextID.Add(1)
		conn := newRakConn(id, c, l)
		l.pushNotice(Notice{Conn: conn, ID: id})
	}
}

func (l *RakNetListener) pushNotice(n Notice) {
	l.mu.Lock()
	l.notices = append(l.notices, n)
	l.mu.Unlock()
}

func (l *RakNetListener) pushErr(err error) {
	l.mu.Lock()
	l.errs = append(l.errs, err)
	l.mu.Unlock()
}

// Notices returns and clears the pending connect/disconnect notices.
func (l *RakNetListener) Notices() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.notices) == 0 {
		return nil
	}
	out := l.notices
	l.notices = nil
	return out
}

// Errors returns and clears pending transport-level errors.
func (l *RakNetListener) Errors() []error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.errs) == 0 {
		return nil
	}
	out := l.errs
	l.errs = nil
	return out
}

// Close stops accepting new connections.
func (l *RakNetListener) Close() error {
	close(l.closed)
	return l.ln.Close()
}

// rakConn adapts a raknet net.Conn to the Conn interface, running its own
// background read loop that accumulates bytes and decodes complete
// Envelopes as they become available.
type rakConn struct {
	id       uint64
	conn     net.Conn
	listener *RakNetListener

	mu      sync.Mutex
	pending []protocol.Envelope
	readErr error

	closeOnce sync.Once
}

func newRakConn(id uint64, c net.Conn, l *RakNetListener) *rakConn {
	rc := &rakConn{id: id, conn: c, listener: l}
	go rc.readLoop()
	return rc
}

func (c *rakConn) readLoop() {
	buf := make([]byte, 0, 4096)
	tmp := make([]byte, 4096)
	for {
		n, err := c.conn.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			for {
				e, consumed, decErr := protocol.Decode(buf)
				if decErr != nil {
					break
				}
				c.mu.Lock()
				c.pending = append(c.pending, e)
				c.mu.Unlock()
				buf = buf[consumed:]
			}
		}
		if err != nil {
			reason := err.Error()
			if err == io.EOF {
				reason = "connection closed"
			}
			c.listener.pushNotice(Notice{Closed: true, ID: c.id, Reason: reason})
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()
			return
		}
	}
}

func (c *rakConn) ID() uint64 { return c.id }

func (c *rakConn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *rakConn) Send(e protocol.Envelope, r protocol.Reliability) error {
	buf, err := protocol.Encode(e)
	if err != nil {
		return err
	}
	_, err = c.conn.Write(buf)
	return err
}

func (c *rakConn) Recv() ([]protocol.Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []protocol.Envelope
	if len(c.pending) > 0 {
		out = c.pending
		c.pending = nil
	}
	return out, c.readErr
}

func (c *rakConn) Close(reason string) error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}
