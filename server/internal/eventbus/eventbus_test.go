package eventbus_test

import (
	"sync"
	"testing"

	"github.com/vxlcore/server/server/internal/eventbus"
)

func TestDrainReturnsAllPendingInOrder(t *testing.T) {
	b := eventbus.New[int]()
	r := b.NewReader()

	for i := 0; i < 5; i++ {
		b.Emit(i)
	}
	got := r.Drain()
	want := []int{0, 1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("got %d items, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}

	// A second drain with nothing new emitted must be empty, not a replay.
	if got := r.Drain(); got != nil {
		t.Fatalf("expected empty drain, got %v", got)
	}
}

func TestMultipleReadersEachSeeAllEvents(t *testing.T) {
	b := eventbus.New[string]()
	r1 := b.NewReader()
	b.Emit("before-r2")
	r2 := b.NewReader()

	b.Emit("after-r2")

	if got := r1.Drain(); len(got) != 2 {
		t.Fatalf("r1: got %v, want 2 items", got)
	}
	if got := r2.Drain(); len(got) != 1 || got[0] != "after-r2" {
		t.Fatalf("r2: got %v, want [after-r2]", got)
	}
}

func TestEmitDuringDrainIsObservedNextDrain(t *testing.T) {
	// Models a handler that emits a follow-up event (e.g. MediaLoaded ->
	// SettingsLoaded) while processing a drain: the follow-up must be
	// returned by the same reader's next Drain.
	b := eventbus.New[int]()
	r := b.NewReader()

	b.Emit(1)
	items := r.Drain()
	for _, v := range items {
		b.Emit(v + 1)
	}
	got := r.Drain()
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("got %v, want [2]", got)
	}
}

func TestConcurrentEmitIsRaceFree(t *testing.T) {
	b := eventbus.New[int]()
	r := b.NewReader()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			b.Emit(v)
		}(i)
	}
	wg.Wait()

	if got := len(r.Drain()); got != 50 {
		t.Fatalf("got %d items, want 50", got)
	}
}
