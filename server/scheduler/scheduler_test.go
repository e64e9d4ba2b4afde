package scheduler

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vxlcore/server/server/internal/runtime"
)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRunStopsOnUpdateShutdownSignal(t *testing.T) {
	s := New(Config{Rate: 1000, Log: testLogger()})

	var ticks int64
	done := make(chan struct{})
	go func() {
		s.Run(func(tick int64, delta time.Duration) bool {
			n := atomic.AddInt64(&ticks, 1)
			return n >= 5
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after update signalled shutdown")
	}
	if got := atomic.LoadInt64(&ticks); got != 5 {
		t.Fatalf("expected exactly 5 ticks, got %d", got)
	}
}

func TestRunStopsWhenRuntimeStopped(t *testing.T) {
	rt := &runtime.State{}
	s := New(Config{Rate: 1000, Rt: rt, Log: testLogger()})

	var ticks int64
	done := make(chan struct{})
	go func() {
		s.Run(func(tick int64, delta time.Duration) bool {
			if atomic.AddInt64(&ticks, 1) == 3 {
				rt.Stop()
			}
			return false
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after runtime was stopped")
	}
	if got := atomic.LoadInt64(&ticks); got < 3 {
		t.Fatalf("expected at least 3 ticks before stop, got %d", got)
	}
}

func TestRunPassesIncrementingTickAndFixedDelta(t *testing.T) {
	s := New(Config{Rate: 500, Log: testLogger()})

	var lastTick int64 = -1
	var deltas []time.Duration
	s.Run(func(tick int64, delta time.Duration) bool {
		if tick != lastTick+1 {
			t.Fatalf("expected tick %d, got %d", lastTick+1, tick)
		}
		lastTick = tick
		deltas = append(deltas, delta)
		return tick >= 2
	})

	if len(deltas) != 3 {
		t.Fatalf("expected 3 recorded deltas, got %d", len(deltas))
	}
	for _, d := range deltas {
		if d != s.interval {
			t.Fatalf("expected delta to equal the configured interval, got %v", d)
		}
	}
}
