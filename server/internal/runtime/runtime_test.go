package runtime_test

import (
	"sync"
	"testing"

	"github.com/vxlcore/server/server/internal/runtime"
)

func TestStateStartsActive(t *testing.T) {
	var s runtime.State
	if !s.IsActive() {
		t.Fatal("new State should start active")
	}
	if s.IsStopped() {
		t.Fatal("new State should not report stopped")
	}
}

func TestStateStopIsMonotonic(t *testing.T) {
	var s runtime.State
	s.Stop()
	if s.IsActive() {
		t.Fatal("State should not be active after Stop")
	}
	// Calling Stop again must not panic or un-stop the state.
	s.Stop()
	if !s.IsStopped() {
		t.Fatal("State should remain stopped")
	}
}

func TestStateStopConcurrent(t *testing.T) {
	var s runtime.State
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Stop()
		}()
	}
	wg.Wait()
	if !s.IsStopped() {
		t.Fatal("expected stopped after concurrent Stop calls")
	}
}
