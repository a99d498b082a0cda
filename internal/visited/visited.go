// Package visited tracks vertex membership for a single operation.
package visited

import "github.com/hupe1980/seqgraph/graph"

// Set tracks visited vertices using a bitset and a dirty list for fast reset.
// The dirty list also preserves first-visit order.
type Set struct {
	bits  []uint64
	dirty []graph.VertexID
}

// New creates a set sized for capacity vertices.
func New(capacity int) *Set {
	return &Set{
		bits:  make([]uint64, (capacity+63)/64),
		dirty: make([]graph.VertexID, 0, 64),
	}
}

// Visit marks a vertex and reports whether it was not visited before.
func (s *Set) Visit(id graph.VertexID) bool {
	wordIdx := int(id >> 6)
	bitMask := uint64(1) << (id & 63)

	if wordIdx >= len(s.bits) {
		s.grow(wordIdx + 1)
	}
	if s.bits[wordIdx]&bitMask != 0 {
		return false
	}
	s.bits[wordIdx] |= bitMask
	s.dirty = append(s.dirty, id)
	return true
}

// Visited reports whether the vertex has been visited.
func (s *Set) Visited(id graph.VertexID) bool {
	wordIdx := int(id >> 6)
	if wordIdx >= len(s.bits) {
		return false
	}
	return s.bits[wordIdx]&(uint64(1)<<(id&63)) != 0
}

// Len returns the number of visited vertices.
func (s *Set) Len() int { return len(s.dirty) }

// Order returns the visited vertices in first-visit order.
func (s *Set) Order() []graph.VertexID {
	out := make([]graph.VertexID, len(s.dirty))
	copy(out, s.dirty)
	return out
}

// Reset clears every vertex visited since the last reset.
func (s *Set) Reset() {
	for _, id := range s.dirty {
		s.bits[int(id>>6)] &^= uint64(1) << (id & 63)
	}
	s.dirty = s.dirty[:0]
}

func (s *Set) grow(newLen int) {
	newCap := len(s.bits) * 2
	if newCap < newLen {
		newCap = newLen
	}
	newBits := make([]uint64, newCap)
	copy(newBits, s.bits)
	s.bits = newBits
}
