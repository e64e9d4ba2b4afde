package protocol

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestEncodeDecodeRoundTrips(t *testing.T) {
	cases := []Envelope{
		&ConnectionInfo{Login: "steve", Version: "1.0", Architecture: "x64", RenderingDevice: "gpu"},
		&PlayerMove{Position: mgl64.Vec3{1, 2, 3}, Rotation: Rotation{Yaw: 90, Pitch: 0}, Anim: "walk"},
		&ChunkReceived{Positions: []ChunkPosition{{X: 1, Z: 2}, {X: -1, Z: -2}}},
		&ServerSettings{TickRate: 60},
		&ChunkSectionInfoEncoded{WorldSlug: "overworld", ChunkPosition: ChunkPosition{X: 3, Z: 4}, Encoded: []byte{9, 9, 9}},
	}

	for _, want := range cases {
		buf, err := Encode(want)
		if err != nil {
			t.Fatalf("Encode(%T): %v", want, err)
		}
		got, n, err := Decode(buf)
		if err != nil {
			t.Fatalf("Decode(%T): %v", want, err)
		}
		if n != len(buf) {
			t.Fatalf("Decode consumed %d bytes, want %d", n, len(buf))
		}
		if got.Kind() != want.Kind() {
			t.Fatalf("kind mismatch: got %v want %v", got.Kind(), want.Kind())
		}
	}
}

func TestDecodeMultipleEnvelopesFromOneBuffer(t *testing.T) {
	a, _ := Encode(&ConsoleInput{Command: "tps"})
	b, _ := Encode(&SettingsLoaded{})
	buf := append(a, b...)

	first, n1, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if first.Kind() != KindConsoleInput {
		t.Fatalf("expected ConsoleInput first, got %v", first.Kind())
	}
	second, _, err := Decode(buf[n1:])
	if err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if second.Kind() != KindSettingsLoaded {
		t.Fatalf("expected SettingsLoaded second, got %v", second.Kind())
	}
}

func TestDecodeShortBufferErrors(t *testing.T) {
	if _, _, err := Decode([]byte{1, 2}); err == nil {
		t.Fatal("expected error decoding truncated header")
	}
}
