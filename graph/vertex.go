package graph

import (
	"slices"
)

// Parent records where a vertex occurs inside one wider vertex.
type Parent struct {
	// Width of the parent vertex.
	Width int
	// Patterns maps each pattern of the parent to the sorted sub-indices at
	// which the child occurs.
	Patterns map[PatternID][]int
}

// Occurrences returns all sub-locations in pattern-id order.
func (p *Parent) Occurrences() []SubLocation {
	ids := make([]PatternID, 0, len(p.Patterns))
	for pid := range p.Patterns {
		ids = append(ids, pid)
	}
	slices.Sort(ids)

	var out []SubLocation
	for _, pid := range ids {
		for _, i := range p.Patterns[pid] {
			out = append(out, SubLocation{Pattern: pid, Index: i})
		}
	}
	return out
}

func (p *Parent) add(pid PatternID, index int) {
	idx := p.Patterns[pid]
	pos, found := slices.BinarySearch(idx, index)
	if found {
		return
	}
	p.Patterns[pid] = slices.Insert(idx, pos, index)
}

func (p *Parent) clone() *Parent {
	out := &Parent{Width: p.Width, Patterns: make(map[PatternID][]int, len(p.Patterns))}
	for pid, idx := range p.Patterns {
		out.Patterns[pid] = slices.Clone(idx)
	}
	return out
}

// Vertex is a node of the hypergraph. A vertex of width 1 is a leaf token and
// owns no patterns.
type Vertex struct {
	ID       VertexID
	Width    int
	Token    string
	Parents  map[VertexID]*Parent
	Children map[PatternID]Pattern

	fp uint64
}

// Child returns a reference to this vertex.
func (v *Vertex) Child() Child {
	return Child{ID: v.ID, Width: v.Width}
}

// IsLeaf reports whether the vertex is a token.
func (v *Vertex) IsLeaf() bool {
	return v.Width == 1
}

// PatternIDs returns the ids of all patterns in ascending order.
func (v *Vertex) PatternIDs() []PatternID {
	ids := make([]PatternID, 0, len(v.Children))
	for pid := range v.Children {
		ids = append(ids, pid)
	}
	slices.Sort(ids)
	return ids
}

// ParentIDs returns the ids of all parents in ascending order.
func (v *Vertex) ParentIDs() []VertexID {
	ids := make([]VertexID, 0, len(v.Parents))
	for id := range v.Parents {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ExpectPattern returns the pattern with the given id or panics.
func (v *Vertex) ExpectPattern(pid PatternID) Pattern {
	p, ok := v.Children[pid]
	if !ok {
		invariant("expect_pattern", "vertex %d has no pattern %d", v.ID, pid)
	}
	return p
}

// ExpectChildAt returns the child at a sub-location or panics.
func (v *Vertex) ExpectChildAt(sub SubLocation) Child {
	p := v.ExpectPattern(sub.Pattern)
	if sub.Index < 0 || sub.Index >= len(p) {
		invariant("expect_child_at", "vertex %d pattern %d has no index %d", v.ID, sub.Pattern, sub.Index)
	}
	return p[sub.Index]
}

// FirstPattern returns the pattern with the lowest id.
func (v *Vertex) FirstPattern() (PatternID, Pattern, bool) {
	if len(v.Children) == 0 {
		return 0, nil, false
	}
	ids := v.PatternIDs()
	return ids[0], v.Children[ids[0]], true
}

// FindPattern returns the id of a pattern equal to p.
func (v *Vertex) FindPattern(p Pattern) (PatternID, bool) {
	for _, pid := range v.PatternIDs() {
		if v.Children[pid].Equal(p) {
			return pid, true
		}
	}
	return 0, false
}

// PatternCount returns the number of alternative decompositions.
func (v *Vertex) PatternCount() int {
	return len(v.Children)
}
