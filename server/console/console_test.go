package console

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRunScannerQueuesNonBlankLines(t *testing.T) {
	c := New(testLogger()).WithReader(strings.NewReader("tps\n\n  \nworld list\n"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return at EOF")
	}
	cancel()

	got := c.Drain()
	if len(got) != 2 || got[0] != "tps" || got[1] != "world list" {
		t.Fatalf("unexpected queued lines: %v", got)
	}
}

func TestDrainClearsTheQueue(t *testing.T) {
	c := New(testLogger()).WithReader(strings.NewReader("stop\n"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Run(ctx)

	first := c.Drain()
	if len(first) != 1 {
		t.Fatalf("expected one queued line, got %v", first)
	}
	if second := c.Drain(); second != nil {
		t.Fatalf("expected an empty drain after the first, got %v", second)
	}
}

func TestSourceNameIsConsole(t *testing.T) {
	c := New(testLogger())
	if got := c.Source().Name(); got != "CONSOLE" {
		t.Fatalf("expected CONSOLE, got %q", got)
	}
}
