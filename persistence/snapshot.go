package persistence

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/seqgraph/graph"
)

// Snapshot is the decoded content of a snapshot blob.
type Snapshot struct {
	Records     []graph.VertexRecord
	NextPattern graph.PatternID
}

// FromStore captures the current state of s.
func FromStore(s *graph.Store) *Snapshot {
	records, next := s.Export()
	return &Snapshot{Records: records, NextPattern: next}
}

// ToStore rebuilds a validated store from the snapshot.
func (snap *Snapshot) ToStore() (*graph.Store, error) {
	return graph.Load(snap.Records, snap.NextPattern)
}

// encodeBody writes the raw, uncompressed body.
func (snap *Snapshot) encodeBody() ([]byte, error) {
	var w bodyWriter
	for _, rec := range snap.Records {
		if rec.Width < 1 || uint64(rec.Width) > math.MaxUint32 {
			return nil, fmt.Errorf("persistence: vertex %d has width %d", rec.ID, rec.Width)
		}
		w.uint32(uint32(rec.Width))
		w.string(rec.Token)
		w.uint32(uint32(len(rec.Patterns)))
		for _, p := range rec.Patterns {
			w.uint32(uint32(p.ID))
			if err := w.ids(p.Children); err != nil {
				return nil, err
			}
		}
	}
	return w.Bytes(), nil
}

func decodeBody(raw []byte, vertexCount uint32) ([]graph.VertexRecord, error) {
	r := bodyReader{data: raw}
	// Every vertex takes at least 12 bytes.
	if uint64(vertexCount)*12 > uint64(len(raw)) {
		return nil, r.fail("vertex count %d exceeds body", vertexCount)
	}
	records := make([]graph.VertexRecord, vertexCount)
	for i := range records {
		width, err := r.uint32()
		if err != nil {
			return nil, err
		}
		token, err := r.string()
		if err != nil {
			return nil, err
		}
		// pattern id and child count
		n, err := r.count(8)
		if err != nil {
			return nil, err
		}
		rec := graph.VertexRecord{ID: graph.VertexID(i), Width: int(width), Token: token}
		if n > 0 {
			rec.Patterns = make([]graph.PatternRecord, n)
		}
		for j := range rec.Patterns {
			pid, err := r.uint32()
			if err != nil {
				return nil, err
			}
			children, err := r.ids()
			if err != nil {
				return nil, err
			}
			rec.Patterns[j] = graph.PatternRecord{ID: graph.PatternID(pid), Children: children}
		}
		records[i] = rec
	}
	if r.remaining() != 0 {
		return nil, r.fail("%d trailing bytes", r.remaining())
	}
	return records, nil
}

// Encode serializes the snapshot into a blob. The returned header describes
// the blob; its Compression may be CompressionNone when c did not pay off.
func Encode(snap *Snapshot, c Compression) ([]byte, Header, error) {
	if !c.Valid() {
		return nil, Header{}, fmt.Errorf("persistence: unknown compression %d", c)
	}
	if uint64(len(snap.Records)) > math.MaxUint32 {
		return nil, Header{}, fmt.Errorf("persistence: too many vertices: %d", len(snap.Records))
	}
	raw, err := snap.encodeBody()
	if err != nil {
		return nil, Header{}, err
	}
	payload, used, err := compress(raw, c)
	if err != nil {
		return nil, Header{}, err
	}

	h := Header{
		Magic:       MagicNumber,
		Version:     Version,
		Compression: used,
		VertexCount: uint32(len(snap.Records)),
		NextPattern: uint32(snap.NextPattern),
		RawSize:     uint64(len(raw)),
		Checksum:    Checksum(payload),
	}
	out := make([]byte, HeaderSize, HeaderSize+len(payload))
	h.put(out)
	out = append(out, payload...)
	return out, h, nil
}

// DecodeHeader parses and validates the header at the start of data.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, &CorruptError{Offset: 0, Reason: fmt.Sprintf("blob has %d bytes, header needs %d", len(data), HeaderSize)}
	}
	var h Header
	h.get(data)
	if err := h.validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Decode parses a blob produced by Encode. The payload checksum is verified
// before decompression.
func Decode(data []byte) (*Snapshot, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	payload := data[HeaderSize:]
	if err := verifyChecksum(payload, h.Checksum); err != nil {
		return nil, err
	}
	raw, err := decompress(payload, h.Compression, h.RawSize)
	if err != nil {
		return nil, err
	}
	records, err := decodeBody(raw, h.VertexCount)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Records: records, NextPattern: graph.PatternID(h.NextPattern)}, nil
}

func (h *Header) put(b []byte) {
	le := binary.LittleEndian
	le.PutUint32(b[0:], h.Magic)
	le.PutUint16(b[4:], h.Version)
	b[6] = byte(h.Compression)
	b[7] = h.Flags
	le.PutUint32(b[8:], h.VertexCount)
	le.PutUint32(b[12:], h.NextPattern)
	le.PutUint64(b[16:], h.RawSize)
	le.PutUint32(b[24:], h.Checksum)
	le.PutUint32(b[28:], h.Reserved)
}

func (h *Header) get(b []byte) {
	le := binary.LittleEndian
	h.Magic = le.Uint32(b[0:])
	h.Version = le.Uint16(b[4:])
	h.Compression = Compression(b[6])
	h.Flags = b[7]
	h.VertexCount = le.Uint32(b[8:])
	h.NextPattern = le.Uint32(b[12:])
	h.RawSize = le.Uint64(b[16:])
	h.Checksum = le.Uint32(b[24:])
	h.Reserved = le.Uint32(b[28:])
}
