package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// PatternSet returns every pattern of a vertex in pattern-id order.
func (s *Store) PatternSet(id VertexID) []Pattern {
	v := s.ExpectVertex(id)
	out := make([]Pattern, 0, len(v.Children))
	for _, pid := range v.PatternIDs() {
		out = append(out, v.Children[pid].Clone())
	}
	return out
}

// Roots returns the ids of all vertices without parents.
func (s *Store) Roots() *roaring.Bitmap {
	bm := roaring.New()
	for _, v := range s.vertices {
		if len(v.Parents) == 0 {
			bm.Add(uint32(v.ID))
		}
	}
	return bm
}

// Leaves returns the ids of all token vertices.
func (s *Store) Leaves() *roaring.Bitmap {
	bm := roaring.New()
	for _, id := range s.tokens {
		bm.Add(uint32(id))
	}
	return bm
}

// IsDescendant reports whether desc occurs somewhere below anc.
func (s *Store) IsDescendant(anc, desc VertexID) bool {
	if anc == desc {
		return false
	}
	target := s.ExpectVertex(desc)
	root := s.ExpectVertex(anc)
	if target.Width >= root.Width {
		return false
	}
	seen := roaring.New()
	stack := []VertexID{desc}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for pid, p := range s.ExpectVertex(id).Parents {
			if pid == anc {
				return true
			}
			if p.Width >= root.Width || seen.Contains(uint32(pid)) {
				continue
			}
			seen.Add(uint32(pid))
			stack = append(stack, pid)
		}
	}
	return false
}

// Content expands a vertex into its tokens.
func (s *Store) Content(id VertexID) []string {
	out := make([]string, 0, s.ExpectVertex(id).Width)
	stack := []VertexID{id}
	for len(stack) > 0 {
		cur := s.ExpectVertex(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		if cur.IsLeaf() {
			out = append(out, cur.Token)
			continue
		}
		_, p, ok := cur.FirstPattern()
		if !ok {
			continue
		}
		for i := len(p) - 1; i >= 0; i-- {
			stack = append(stack, p[i].ID)
		}
	}
	return out
}

// ContentOf concatenates the token content of a sequence of children.
func (s *Store) ContentOf(seq Pattern) []string {
	var out []string
	for _, c := range seq {
		out = append(out, s.Content(c.ID)...)
	}
	return out
}

// Label returns a printable form of a vertex's content.
func (s *Store) Label(id VertexID) string {
	return strings.Join(s.Content(id), "")
}

// Stats summarizes the store.
type Stats struct {
	Vertices int `json:"vertices" yaml:"vertices"`
	Leaves   int `json:"leaves" yaml:"leaves"`
	Patterns int `json:"patterns" yaml:"patterns"`
	Roots    int `json:"roots" yaml:"roots"`
	MaxWidth int `json:"max_width" yaml:"max_width"`
}

// Stats returns counters describing the store.
func (s *Store) Stats() Stats {
	st := Stats{Vertices: len(s.vertices), Leaves: len(s.tokens)}
	for _, v := range s.vertices {
		st.Patterns += len(v.Children)
		if len(v.Parents) == 0 {
			st.Roots++
		}
		st.MaxWidth = max(st.MaxWidth, v.Width)
	}
	return st
}

// Validate checks width conservation, acyclicity by width, back-link
// symmetry and content uniqueness for every vertex.
func (s *Store) Validate() error {
	for _, v := range s.vertices {
		if v.IsLeaf() {
			if len(v.Children) != 0 {
				return &ValidationError{Vertex: v.ID, Reason: "leaf owns patterns"}
			}
			if v.fp != leafFingerprint(v.ID) {
				return &ValidationError{Vertex: v.ID, Reason: "stale leaf fingerprint"}
			}
		} else if len(v.Children) == 0 {
			return &ValidationError{Vertex: v.ID, Reason: "inner vertex without patterns"}
		}
		for _, pid := range v.PatternIDs() {
			p := v.Children[pid]
			if len(p) < 2 {
				return &ValidationError{Vertex: v.ID, Reason: fmt.Sprintf("pattern %d has %d children", pid, len(p))}
			}
			if w := p.Width(); w != v.Width {
				return &ValidationError{Vertex: v.ID, Reason: fmt.Sprintf("pattern %d width %d != %d", pid, w, v.Width)}
			}
			for i, c := range p {
				child, ok := s.Vertex(c.ID)
				if !ok {
					return &ValidationError{Vertex: v.ID, Reason: fmt.Sprintf("pattern %d references missing vertex %d", pid, c.ID)}
				}
				if child.Width != c.Width {
					return &ValidationError{Vertex: v.ID, Reason: fmt.Sprintf("stale width for child %d", c.ID)}
				}
				if child.Width >= v.Width {
					return &ValidationError{Vertex: v.ID, Reason: fmt.Sprintf("child %d not narrower", c.ID)}
				}
				parent, ok := child.Parents[v.ID]
				if !ok || !slices.Contains(parent.Patterns[pid], i) {
					return &ValidationError{Vertex: c.ID, Reason: fmt.Sprintf("missing back-link to %d pattern %d index %d", v.ID, pid, i)}
				}
			}
			if s.fingerprint(p) != v.fp {
				return &ValidationError{Vertex: v.ID, Reason: fmt.Sprintf("pattern %d differs in content", pid)}
			}
		}
		for pid, parent := range v.Parents {
			pv, ok := s.Vertex(pid)
			if !ok {
				return &ValidationError{Vertex: v.ID, Reason: fmt.Sprintf("parent %d missing", pid)}
			}
			if parent.Width != pv.Width {
				return &ValidationError{Vertex: v.ID, Reason: fmt.Sprintf("stale parent width for %d", pid)}
			}
			for patID, idx := range parent.Patterns {
				p, ok := pv.Children[patID]
				if !ok {
					return &ValidationError{Vertex: v.ID, Reason: fmt.Sprintf("parent %d has no pattern %d", pid, patID)}
				}
				for _, i := range idx {
					if i >= len(p) || p[i].ID != v.ID {
						return &ValidationError{Vertex: v.ID, Reason: fmt.Sprintf("dangling back-link %d/%d/%d", pid, patID, i)}
					}
				}
			}
		}
	}
	return s.validateContent()
}
