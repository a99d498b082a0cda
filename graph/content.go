package graph

import (
	"fmt"
	"math/bits"
	"slices"
)

// Content fingerprints are polynomial hashes of a vertex's leaf ids modulo
// the Mersenne prime 2^61-1. The fingerprint of a concatenation ab is
// h(a)*base^width(b) + h(b), so the fingerprint of a vertex follows from any
// one of its patterns without expanding it.
const (
	fpMod  uint64 = 1<<61 - 1
	fpBase uint64 = 0x1f3d5b79a2c4e687 % fpMod
)

// contentKey buckets vertices in the content index. Buckets are verified by
// leaf expansion, so fingerprint collisions never merge distinct content.
type contentKey struct {
	fp    uint64
	width int
}

func fpMul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	// 2^64 = 8 * 2^61, which is 8 modulo 2^61-1
	r := (lo & fpMod) + (lo >> 61) + (hi << 3)
	r = (r & fpMod) + (r >> 61)
	if r >= fpMod {
		r -= fpMod
	}
	return r
}

func fpAdd(a, b uint64) uint64 {
	s := a + b
	if s >= fpMod {
		s -= fpMod
	}
	return s
}

func fpPow(w int) uint64 {
	out, b := uint64(1), fpBase
	for e := uint(w); e > 0; e >>= 1 {
		if e&1 == 1 {
			out = fpMul(out, b)
		}
		b = fpMul(b, b)
	}
	return out
}

func fpConcat(a, b uint64, widthB int) uint64 {
	return fpAdd(fpMul(a, fpPow(widthB)), b)
}

// leafFingerprint mixes a leaf id into [1, fpMod).
func leafFingerprint(id VertexID) uint64 {
	z := uint64(id) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return z%(fpMod-1) + 1
}

func (s *Store) fingerprint(seq Pattern) uint64 {
	var h uint64
	for _, c := range seq {
		h = fpConcat(h, s.ExpectVertex(c.ID).fp, c.Width)
	}
	return h
}

func (v *Vertex) contentKey() contentKey {
	return contentKey{fp: v.fp, width: v.Width}
}

func (s *Store) indexContent(v *Vertex) {
	k := v.contentKey()
	s.contents[k] = append(s.contents[k], v.ID)
}

func (s *Store) unindexContent(v *Vertex) {
	k := v.contentKey()
	ids := slices.DeleteFunc(s.contents[k], func(id VertexID) bool { return id == v.ID })
	if len(ids) == 0 {
		delete(s.contents, k)
		return
	}
	s.contents[k] = ids
}

// leafIDs expands seq into the ids of its leaves, following the first
// pattern of every inner vertex.
func (s *Store) leafIDs(seq Pattern) []VertexID {
	out := make([]VertexID, 0, seq.Width())
	stack := make([]VertexID, 0, len(seq))
	for i := len(seq) - 1; i >= 0; i-- {
		stack = append(stack, seq[i].ID)
	}
	for len(stack) > 0 {
		v := s.ExpectVertex(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		if v.IsLeaf() {
			out = append(out, v.ID)
			continue
		}
		_, p, ok := v.FirstPattern()
		if !ok {
			continue
		}
		for i := len(p) - 1; i >= 0; i-- {
			stack = append(stack, p[i].ID)
		}
	}
	return out
}

// lookupContent returns the indexed vertex whose leaves equal those of seq.
func (s *Store) lookupContent(key contentKey, seq Pattern) (Child, bool) {
	ids := s.contents[key]
	if len(ids) == 0 {
		return Child{}, false
	}
	want := s.leafIDs(seq)
	for _, id := range ids {
		c := s.ExpectChild(id)
		if slices.Equal(s.leafIDs(Pattern{c}), want) {
			return c, true
		}
	}
	return Child{}, false
}

// FindContent returns the vertex whose content is the concatenation of seq,
// whatever its decomposition. A single element is its own content.
func (s *Store) FindContent(seq Pattern) (Child, bool) {
	switch len(seq) {
	case 0:
		return Child{}, false
	case 1:
		return seq[0], true
	}
	if loc, ok := s.FindPatternOwner(seq); ok {
		return s.ExpectChild(loc.Vertex), true
	}
	return s.lookupContent(contentKey{fp: s.fingerprint(seq), width: seq.Width()}, seq)
}

// SameContent reports whether a and b expand to the same leaves.
func (s *Store) SameContent(a, b Pattern) bool {
	if a.Width() != b.Width() || s.fingerprint(a) != s.fingerprint(b) {
		return false
	}
	return slices.Equal(s.leafIDs(a), s.leafIDs(b))
}

// validateContent checks that every inner vertex is indexed under its own
// key and that no two vertices share content.
func (s *Store) validateContent() error {
	for _, v := range s.vertices {
		if v.IsLeaf() {
			continue
		}
		if !slices.Contains(s.contents[v.contentKey()], v.ID) {
			return &ValidationError{Vertex: v.ID, Reason: "missing from content index"}
		}
	}
	for key, ids := range s.contents {
		leaves := make([][]VertexID, len(ids))
		for i, id := range ids {
			v, ok := s.Vertex(id)
			if !ok || v.contentKey() != key {
				return &ValidationError{Vertex: id, Reason: "stale content index entry"}
			}
			leaves[i] = s.leafIDs(Pattern{v.Child()})
			for j := range i {
				if slices.Equal(leaves[i], leaves[j]) {
					return &ValidationError{Vertex: id, Reason: fmt.Sprintf("duplicate content of vertex %d", ids[j])}
				}
			}
		}
	}
	return nil
}
