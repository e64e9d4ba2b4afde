package world

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/flate"
)

// EncodeSections compresses the given sections into the blob format used
// both for network transmission and for persistence. Out-of-scope note:
// the spec treats wire serialisation as an opaque tagged envelope and the
// on-disk format as an opaque blob store; this single compact format
// satisfies both without inventing two incompatible encodings.
func EncodeSections(sections []*Section) ([]byte, error) {
	var raw bytes.Buffer
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(len(sections)))
	raw.Write(buf[:])
	for _, s := range sections {
		for _, rid := range s.blocks {
			binary.BigEndian.PutUint32(buf[:], rid)
			raw.Write(buf[:])
		}
	}

	var out bytes.Buffer
	w, err := flate.NewWriter(&out, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw.Bytes()); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DecodeSections reverses EncodeSections.
func DecodeSections(blob []byte) ([]*Section, error) {
	r := flate.NewReader(bytes.NewReader(blob))
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw) < 4 {
		return nil, io.ErrUnexpectedEOF
	}
	count := binary.BigEndian.Uint32(raw[:4])
	raw = raw[4:]

	sections := make([]*Section, count)
	for i := range sections {
		s := &Section{}
		for j := range s.blocks {
			off := j * 4
			if off+4 > len(raw) {
				return nil, io.ErrUnexpectedEOF
			}
			s.blocks[j] = binary.BigEndian.Uint32(raw[off : off+4])
		}
		raw = raw[sectionBlockCount*4:]
		sections[i] = s
	}
	return sections, nil
}
