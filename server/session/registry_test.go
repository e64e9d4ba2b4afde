package session

import (
	"testing"

	"github.com/vxlcore/server/server/transport"
)

func TestAddGetRemove(t *testing.T) {
	r := NewRegistry()
	ln := transport.NewMemoryListener()
	server, _ := ln.Connect()
	s := New(server.ID(), server, 4)

	r.Add(s)
	if got, ok := r.Get(s.ID); !ok || got != s {
		t.Fatal("expected to retrieve the added session")
	}

	r.Remove(s.ID)
	if _, ok := r.Get(s.ID); ok {
		t.Fatal("expected session removed")
	}
}

func TestByLoginFindsKnownSession(t *testing.T) {
	r := NewRegistry()
	ln := transport.NewMemoryListener()
	server, _ := ln.Connect()
	s := New(server.ID(), server, 4)
	s.SetInfo(ClientInfo{Login: "steve"})
	r.Add(s)

	got, ok := r.ByLogin("steve")
	if !ok || got != s {
		t.Fatal("expected to find session by login")
	}
	if _, ok := r.ByLogin("alex"); ok {
		t.Fatal("expected no match for unknown login")
	}
}

func TestAllReturnsSnapshot(t *testing.T) {
	r := NewRegistry()
	ln := transport.NewMemoryListener()
	for i := 0; i < 3; i++ {
		server, _ := ln.Connect()
		r.Add(New(server.ID(), server, 4))
	}
	if r.Len() != 3 {
		t.Fatalf("expected 3 sessions, got %d", r.Len())
	}
	if len(r.All()) != 3 {
		t.Fatalf("expected snapshot of 3, got %d", len(r.All()))
	}
}
