package graph

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// VertexID is the dense arena index of a vertex.
type VertexID uint32

// PatternID identifies a pattern. IDs are allocated from a single counter per
// store, so a PatternID is unique within its vertex and across the graph.
type PatternID uint32

// Child is a reference to a vertex inside a pattern.
// Width is cached and always equals the referenced vertex's width.
type Child struct {
	ID    VertexID
	Width int
}

func (c Child) String() string {
	return fmt.Sprintf("%d(w%d)", c.ID, c.Width)
}

// Pattern is one ordered decomposition of a vertex into narrower children.
type Pattern []Child

// Width returns the sum of child widths.
func (p Pattern) Width() int {
	w := 0
	for _, c := range p {
		w += c.Width
	}
	return w
}

// Equal reports whether both patterns reference the same children in order.
func (p Pattern) Equal(o Pattern) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i].ID != o[i].ID {
			return false
		}
	}
	return true
}

// Clone returns a copy that does not share backing storage.
func (p Pattern) Clone() Pattern {
	if p == nil {
		return nil
	}
	out := make(Pattern, len(p))
	copy(out, p)
	return out
}

// Offset returns the start offset of the child at index i.
func (p Pattern) Offset(i int) int {
	off := 0
	for j := 0; j < i; j++ {
		off += p[j].Width
	}
	return off
}

// Locate returns the index of the child containing offset and the offset
// inside that child. ok is false when offset is outside [0, Width()).
func (p Pattern) Locate(offset int) (index, inner int, ok bool) {
	if offset < 0 {
		return 0, 0, false
	}
	pos := 0
	for i, c := range p {
		if offset < pos+c.Width {
			return i, offset - pos, true
		}
		pos += c.Width
	}
	return 0, 0, false
}

// LocateEnd returns the index of the child containing the position just
// before end, and the end offset relative to that child (in (0, width]).
func (p Pattern) LocateEnd(end int) (index, inner int, ok bool) {
	if end <= 0 {
		return 0, 0, false
	}
	i, in, ok := p.Locate(end - 1)
	if !ok {
		return 0, 0, false
	}
	return i, in + 1, true
}

func (p Pattern) String() string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// key encodes the child ids for the pattern index.
func (p Pattern) key() string {
	buf := make([]byte, 4*len(p))
	for i, c := range p {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(c.ID))
	}
	return string(buf)
}

// SubLocation is a position inside one specific pattern.
type SubLocation struct {
	Pattern PatternID
	Index   int
}

// PatternLocation addresses one pattern of one vertex.
type PatternLocation struct {
	Vertex  VertexID
	Pattern PatternID
}

// Sub returns the location of the child at index i of this pattern.
func (l PatternLocation) Sub(i int) ChildLocation {
	return ChildLocation{Vertex: l.Vertex, Sub: SubLocation{Pattern: l.Pattern, Index: i}}
}

// ChildLocation addresses a single child slot in the graph.
type ChildLocation struct {
	Vertex VertexID
	Sub    SubLocation
}

// PatternLocation drops the sub-index.
func (l ChildLocation) PatternLocation() PatternLocation {
	return PatternLocation{Vertex: l.Vertex, Pattern: l.Sub.Pattern}
}
