// Package runtime holds the process-wide active/stopped flag consulted by
// the scheduler loop and every background worker. There is exactly one
// instance per server process; it is never reset once stopped.
package runtime

import "sync/atomic"

// State is a process-wide monotonic lifecycle flag. The zero value is
// Active. A State is safe for concurrent use and must not be copied after
// first use.
type State struct {
	stopped atomic.Bool
}

// IsActive reports whether the runtime has not yet been stopped.
func (s *State) IsActive() bool {
	return !s.stopped.Load()
}

// IsStopped reports whether Stop has been called.
func (s *State) IsStopped() bool {
	return s.stopped.Load()
}

// Stop transitions the runtime to the Stopped state. It is idempotent and
// safe to call from any goroutine, including from within a worker job that
// detected a fatal error. Once stopped, a State can never become active
// again.
func (s *State) Stop() {
	s.stopped.Store(true)
}
