// Package trace records the positions a traversal passed through, per vertex,
// separately for the upward (bottom-up) and downward (top-down) legs.
package trace

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/seqgraph/graph"
)

// Edge links a position to the child slot it was reached from (bottom-up) or
// descended into (top-down).
type Edge struct {
	Sub   graph.SubLocation
	Child graph.VertexID
}

func compareEdges(a, b Edge) int {
	if c := cmp.Compare(a.Sub.Pattern, b.Sub.Pattern); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Sub.Index, b.Sub.Index); c != 0 {
		return c
	}
	return cmp.Compare(a.Child, b.Child)
}

// Position is one offset inside a vertex with its edges.
type Position struct {
	Offset int
	Edges  []Edge
}

func (p *Position) add(e Edge) {
	i, found := slices.BinarySearchFunc(p.Edges, e, compareEdges)
	if found {
		return
	}
	p.Edges = slices.Insert(p.Edges, i, e)
}

// VertexCache holds the bottom-up and top-down positions of one vertex.
// Bottom-up positions are keyed by the query start offset inside the vertex,
// top-down positions by the match end offset.
type VertexCache struct {
	Index    graph.Child
	BottomUp map[int]*Position
	TopDown  map[int]*Position
}

func newVertexCache(index graph.Child) *VertexCache {
	return &VertexCache{
		Index:    index,
		BottomUp: make(map[int]*Position),
		TopDown:  make(map[int]*Position),
	}
}

// BottomUpOffsets returns the sorted bottom-up keys.
func (vc *VertexCache) BottomUpOffsets() []int { return sortedKeys(vc.BottomUp) }

// TopDownOffsets returns the sorted top-down keys.
func (vc *VertexCache) TopDownOffsets() []int { return sortedKeys(vc.TopDown) }

// Cache maps every visited vertex to its positions.
type Cache struct {
	Root    graph.Child
	Entries map[graph.VertexID]*VertexCache
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{Entries: make(map[graph.VertexID]*VertexCache)}
}

// Synthesize builds the minimal cache for a match of [start, end) in root.
func Synthesize(root graph.Child, start, end int) *Cache {
	c := New()
	c.Root = root
	c.AddBottomUp(root, start, nil)
	c.AddTopDown(root, end, nil)
	return c
}

func (c *Cache) entry(index graph.Child) *VertexCache {
	vc, ok := c.Entries[index.ID]
	if !ok {
		vc = newVertexCache(index)
		c.Entries[index.ID] = vc
	}
	return vc
}

// AddBottomUp records a bottom-up position. edge may be nil for the vertex
// the traversal started in.
func (c *Cache) AddBottomUp(index graph.Child, offset int, edge *Edge) {
	vc := c.entry(index)
	pos, ok := vc.BottomUp[offset]
	if !ok {
		pos = &Position{Offset: offset}
		vc.BottomUp[offset] = pos
	}
	if edge != nil {
		pos.add(*edge)
	}
}

// AddTopDown records a top-down position. edge may be nil for the vertex the
// match ended in.
func (c *Cache) AddTopDown(index graph.Child, offset int, edge *Edge) {
	vc := c.entry(index)
	pos, ok := vc.TopDown[offset]
	if !ok {
		pos = &Position{Offset: offset}
		vc.TopDown[offset] = pos
	}
	if edge != nil {
		pos.add(*edge)
	}
}

// Entry returns the cache of one vertex.
func (c *Cache) Entry(id graph.VertexID) (*VertexCache, bool) {
	vc, ok := c.Entries[id]
	return vc, ok
}

// Len returns the number of vertices in the cache.
func (c *Cache) Len() int { return len(c.Entries) }

// Vertices returns the cached vertex ids in ascending order.
func (c *Cache) Vertices() []graph.VertexID {
	ids := make([]graph.VertexID, 0, len(c.Entries))
	for id := range c.Entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// RootStart returns the query start offset inside the root.
func (c *Cache) RootStart() (int, bool) {
	vc, ok := c.Entries[c.Root.ID]
	if !ok || len(vc.BottomUp) == 0 {
		return 0, false
	}
	return vc.BottomUpOffsets()[0], true
}

// RootEnd returns the match end offset inside the root.
func (c *Cache) RootEnd() (int, bool) {
	vc, ok := c.Entries[c.Root.ID]
	if !ok || len(vc.TopDown) == 0 {
		return 0, false
	}
	offs := vc.TopDownOffsets()
	return offs[len(offs)-1], true
}

// String renders the cache deterministically, one position per line.
func (c *Cache) String() string {
	var b strings.Builder
	for _, id := range c.Vertices() {
		vc := c.Entries[id]
		for _, off := range vc.BottomUpOffsets() {
			fmt.Fprintf(&b, "%d bu@%d %v\n", id, off, vc.BottomUp[off].Edges)
		}
		for _, off := range vc.TopDownOffsets() {
			fmt.Fprintf(&b, "%d td@%d %v\n", id, off, vc.TopDown[off].Edges)
		}
	}
	return b.String()
}

func sortedKeys(m map[int]*Position) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
