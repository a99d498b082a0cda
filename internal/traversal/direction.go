package traversal

import (
	"cmp"
	"slices"

	"github.com/hupe1980/seqgraph/graph"
	"github.com/hupe1980/seqgraph/internal/visited"
)

// Direction selects which border of a pattern an operation works on.
type Direction uint8

const (
	// Right reads patterns front to back; its border is the first child.
	Right Direction = iota
	// Left reads patterns back to front; its border is the last child.
	Left
)

func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Left {
		return Right
	}
	return Left
}

// BorderIndex returns the index of the border child of p.
func (d Direction) BorderIndex(p graph.Pattern) int {
	if d == Left {
		return len(p) - 1
	}
	return 0
}

// Border returns the border child of p.
func (d Direction) Border(p graph.Pattern) graph.Child {
	return p[d.BorderIndex(p)]
}

// Inner returns the children of p after the border in reading order.
func (d Direction) Inner(p graph.Pattern) graph.Pattern {
	if d == Left {
		return p[:len(p)-1]
	}
	return p[1:]
}

// Concat joins inner children of a decomposed element with the elements
// that followed it, in reading order.
func (d Direction) Concat(inner, rest graph.Pattern) graph.Pattern {
	out := make(graph.Pattern, 0, len(inner)+len(rest))
	if d == Left {
		out = append(out, rest...)
		return append(out, inner...)
	}
	out = append(out, inner...)
	return append(out, rest...)
}

// orderedPatterns returns the patterns of v ordered by decreasing width of
// the border child on side d. A pattern whose border is prefer comes first.
// Ties keep pattern-id order.
func orderedPatterns(v *graph.Vertex, d Direction, prefer graph.VertexID, hasPrefer bool) []graph.PatternID {
	ids := v.PatternIDs()
	slices.SortStableFunc(ids, func(a, b graph.PatternID) int {
		ba, bb := d.Border(v.Children[a]), d.Border(v.Children[b])
		if hasPrefer {
			pa, pb := ba.ID == prefer, bb.ID == prefer
			if pa != pb {
				if pa {
					return -1
				}
				return 1
			}
		}
		return cmp.Compare(bb.Width, ba.Width)
	})
	return ids
}

// EdgeDescendant is a vertex reachable through border children together with
// the rest of the content on the far side of the border, in reading order.
type EdgeDescendant struct {
	Child graph.Child
	Rest  graph.Pattern
}

// EdgeDescendants returns every vertex reachable from root by repeatedly
// taking border children on side d, root excluded, widest first. For Right
// these are the vertices the root starts with, for Left the ones it ends with.
func EdgeDescendants(store *graph.Store, root graph.VertexID, d Direction) []EdgeDescendant {
	seen := visited.New(store.Len())
	seen.Visit(root)

	var out []EdgeDescendant
	frontier := []EdgeDescendant{{Child: store.ExpectChild(root)}}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		v := store.ExpectVertex(cur.Child.ID)
		for _, pid := range orderedPatterns(v, d, 0, false) {
			p := v.Children[pid]
			b := d.Border(p)
			if !seen.Visit(b.ID) {
				continue
			}
			next := EdgeDescendant{Child: b, Rest: d.Concat(d.Inner(p), cur.Rest)}
			out = append(out, next)
			frontier = append(frontier, next)
		}
	}
	slices.SortStableFunc(out, func(a, b EdgeDescendant) int {
		return cmp.Compare(b.Child.Width, a.Child.Width)
	})
	return out
}
