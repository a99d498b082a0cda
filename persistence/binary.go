package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/seqgraph/graph"
)

// maxRawSize bounds the decompressed body accepted from a header.
const maxRawSize = 1 << 34

// bodyWriter appends little-endian fields to a buffer.
type bodyWriter struct {
	buf bytes.Buffer
	tmp [4]byte
}

func (w *bodyWriter) uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.tmp[:], v)
	w.buf.Write(w.tmp[:])
}

func (w *bodyWriter) string(s string) {
	w.uint32(uint32(len(s)))
	w.buf.WriteString(s)
}

// ids writes the slice length followed by the ids.
func (w *bodyWriter) ids(ids []graph.VertexID) error {
	w.uint32(uint32(len(ids)))
	if len(ids) == 0 {
		return nil
	}
	if nativeLittleEndian {
		raw, err := idBytes(ids)
		if err != nil {
			return err
		}
		w.buf.Write(raw)
		return nil
	}
	for _, id := range ids {
		w.uint32(uint32(id))
	}
	return nil
}

func (w *bodyWriter) Bytes() []byte { return w.buf.Bytes() }

// bodyReader decodes fields written by bodyWriter with bounds checks.
type bodyReader struct {
	data []byte
	off  int
}

func (r *bodyReader) remaining() int { return len(r.data) - r.off }

func (r *bodyReader) fail(format string, args ...any) error {
	return &CorruptError{Offset: int64(r.off), Reason: fmt.Sprintf(format, args...)}
}

func (r *bodyReader) uint32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, r.fail("truncated uint32")
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

// count reads a length prefix and checks that at least n*elemSize bytes
// remain.
func (r *bodyReader) count(elemSize int) (int, error) {
	n, err := r.uint32()
	if err != nil {
		return 0, err
	}
	if elemSize > 0 && uint64(n)*uint64(elemSize) > uint64(r.remaining()) {
		return 0, r.fail("count %d exceeds remaining %d bytes", n, r.remaining())
	}
	if uint64(n) > math.MaxInt32 {
		return 0, r.fail("count %d too large", n)
	}
	return int(n), nil
}

func (r *bodyReader) string() (string, error) {
	n, err := r.count(1)
	if err != nil {
		return "", err
	}
	s := string(r.data[r.off : r.off+n])
	r.off += n
	return s, nil
}

func (r *bodyReader) ids() ([]graph.VertexID, error) {
	n, err := r.count(4)
	if err != nil {
		return nil, err
	}
	out := make([]graph.VertexID, n)
	for i := range out {
		out[i] = graph.VertexID(binary.LittleEndian.Uint32(r.data[r.off:]))
		r.off += 4
	}
	return out, nil
}
