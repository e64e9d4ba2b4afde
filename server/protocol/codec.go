package protocol

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
)

// factories maps each EnvelopeKind to a constructor for its zero value, so
// Decode can allocate the right concrete type before handing it to gob.
var factories = map[EnvelopeKind]func() Envelope{
	KindConnectionInfo:          func() Envelope { return &ConnectionInfo{} },
	KindConsoleInput:            func() Envelope { return &ConsoleInput{} },
	KindPlayerMove:              func() Envelope { return &PlayerMove{} },
	KindChunkReceived:           func() Envelope { return &ChunkReceived{} },
	KindEditBlockRequest:        func() Envelope { return &EditBlockRequest{} },
	KindResourcesHasCache:       func() Envelope { return &ResourcesHasCache{} },
	KindResourcesLoaded:         func() Envelope { return &ResourcesLoaded{} },
	KindSettingsLoaded:          func() Envelope { return &SettingsLoaded{} },
	KindAllowConnection:         func() Envelope { return &AllowConnection{} },
	KindResourcesScheme:         func() Envelope { return &ResourcesScheme{} },
	KindResourcesPart:           func() Envelope { return &ResourcesPart{} },
	KindServerSettings:          func() Envelope { return &ServerSettings{} },
	KindChunkSectionInfoEncoded: func() Envelope { return &ChunkSectionInfoEncoded{} },
	KindServerStatus:            func() Envelope { return &ServerStatus{} },
	KindConsoleOutput:           func() Envelope { return &ConsoleOutput{} },
	KindSyncPlayerMove:          func() Envelope { return &SyncPlayerMove{} },
	KindUnloadChunks:            func() Envelope { return &UnloadChunks{} },
	KindBlockChanged:            func() Envelope { return &BlockChanged{} },
}

// Encode writes a tagged header (kind byte + uint32 length) followed by the
// gob-encoded payload. The format is an implementation detail; the rest of
// the core only depends on Envelope and Reliability.
func Encode(e Envelope) ([]byte, error) {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(e); err != nil {
		return nil, fmt.Errorf("protocol: encode %T: %w", e, err)
	}

	out := make([]byte, 0, 5+payload.Len())
	out = append(out, byte(e.Kind()))
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(payload.Len()))
	out = append(out, lenBuf[:]...)
	out = append(out, payload.Bytes()...)
	return out, nil
}

// Decode reads one tagged envelope from the front of buf and returns it
// along with the number of bytes consumed.
func Decode(buf []byte) (Envelope, int, error) {
	if len(buf) < 5 {
		return nil, 0, fmt.Errorf("protocol: short header (%d bytes)", len(buf))
	}
	kind := EnvelopeKind(buf[0])
	length := binary.BigEndian.Uint32(buf[1:5])
	total := 5 + int(length)
	if len(buf) < total {
		return nil, 0, fmt.Errorf("protocol: short payload, want %d have %d", length, len(buf)-5)
	}

	factory, ok := factories[kind]
	if !ok {
		return nil, 0, fmt.Errorf("protocol: unknown envelope kind %d", kind)
	}
	e := factory()
	if err := gob.NewDecoder(bytes.NewReader(buf[5:total])).Decode(e); err != nil {
		return nil, 0, fmt.Errorf("protocol: decode %T: %w", e, err)
	}
	return e, total, nil
}
