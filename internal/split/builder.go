package split

import (
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/seqgraph/graph"
	"github.com/hupe1980/seqgraph/internal/queue"
	"github.com/hupe1980/seqgraph/internal/visited"
)

// Cache is the split cache of one operation.
type Cache struct {
	Root    graph.Child
	Mode    RootMode
	Start   int
	End     int
	Entries map[graph.VertexID]*VertexSplits

	discovery []graph.VertexID
	order     []graph.VertexID
}

// Entry returns the splits of one vertex.
func (c *Cache) Entry(id graph.VertexID) (*VertexSplits, bool) {
	vs, ok := c.Entries[id]
	return vs, ok
}

// RootSplits returns the splits of the root.
func (c *Cache) RootSplits() *VertexSplits {
	return c.Entries[c.Root.ID]
}

// Order returns the vertices in finalization order, narrowest first.
func (c *Cache) Order() []graph.VertexID {
	return slices.Clone(c.order)
}

// Discovery returns the vertices in discovery order, widest first.
func (c *Cache) Discovery() []graph.VertexID {
	return slices.Clone(c.discovery)
}

// Touched returns the ids of all vertices in the cache.
func (c *Cache) Touched() *roaring.Bitmap {
	bm := roaring.New()
	for id := range c.Entries {
		bm.Add(uint32(id))
	}
	return bm
}

// Len returns the number of vertices in the cache.
func (c *Cache) Len() int { return len(c.Entries) }

type builder struct {
	store    *graph.Store
	cache    *Cache
	frontier *queue.PriorityQueue[graph.VertexID]
	popped   *visited.Set
}

// Build computes the split cache for an interval.
func Build(store *graph.Store, ii InitInterval) (*Cache, error) {
	mode, offsets, err := ii.Mode()
	if err != nil {
		return nil, err
	}
	b := &builder{
		store: store,
		cache: &Cache{
			Root:    store.ExpectChild(ii.Root.ID),
			Mode:    mode,
			Start:   ii.Start(),
			End:     ii.End(),
			Entries: make(map[graph.VertexID]*VertexSplits),
		},
		frontier: queue.NewMax[graph.VertexID](16),
		popped:   visited.New(store.Len()),
	}
	for _, off := range offsets {
		b.request(SplitKey{Vertex: ii.Root.ID, Offset: off}, nil)
	}
	b.discover()
	b.finalize()
	return b.cache, nil
}

// request registers an offset of a vertex, enqueueing the vertex on first
// sight. top is the position that needs it, nil for the root.
func (b *builder) request(key SplitKey, top *SplitKey) {
	vs, ok := b.cache.Entries[key.Vertex]
	if !ok {
		vs = &VertexSplits{
			Index:     b.store.ExpectChild(key.Vertex),
			Positions: make(map[int]*PositionCache),
		}
		b.cache.Entries[key.Vertex] = vs
		b.frontier.Push(key.Vertex, vs.Index.Width, uint64(key.Vertex))
	} else if b.popped.Visited(key.Vertex) {
		panic(&InvariantError{Op: "request", Msg: fmt.Sprintf("vertex %d requested after it was classified", key.Vertex)})
	}
	if key.Offset <= 0 || key.Offset >= vs.Index.Width {
		panic(&InvariantError{Op: "request", Msg: fmt.Sprintf("offset %d outside vertex %d of width %d", key.Offset, key.Vertex, vs.Index.Width)})
	}
	pos, ok := vs.Positions[key.Offset]
	if !ok {
		pos = newPositionCache(key.Offset)
		vs.Positions[key.Offset] = pos
	}
	if top != nil {
		pos.addTop(*top)
	}
}

// discover classifies vertices widest first. A vertex is only requested by
// wider vertices, so it is complete when popped.
func (b *builder) discover() {
	for {
		item, ok := b.frontier.PopItem()
		if !ok {
			return
		}
		id := item.Value
		b.popped.Visit(id)
		b.cache.discovery = append(b.cache.discovery, id)

		vs := b.cache.Entries[id]
		v := b.store.ExpectVertex(id)
		vs.Patterns = v.PatternIDs()
		for _, off := range sortedOffsets(vs.Positions) {
			pos := vs.Positions[off]
			for _, ss := range CleanedPositionSplits(v, off) {
				pos.Splits[ss.Sub.Pattern] = ss
				if ss.Clean() {
					continue
				}
				child := v.ExpectChildAt(ss.Sub)
				b.request(SplitKey{Vertex: child.ID, Offset: ss.Inner}, &SplitKey{Vertex: id, Offset: off})
			}
		}
	}
}

// finalize derives offsets and partitions narrowest first. Every vertex is
// enqueued before the first pop.
func (b *builder) finalize() {
	pq := queue.NewMin[graph.VertexID](len(b.cache.Entries))
	for _, id := range b.cache.discovery {
		pq.Push(id, b.cache.Entries[id].Index.Width, uint64(id))
	}
	for {
		item, ok := pq.PopItem()
		if !ok {
			break
		}
		vs := b.cache.Entries[item.Value]
		vs.Offsets = sortedOffsets(vs.Positions)
		vs.Partitions = partitions(b.store.ExpectVertex(item.Value), vs)
		b.cache.order = append(b.cache.order, item.Value)
	}
}

// CleanedPositionSplits locates offset inside every pattern of v, in
// pattern-id order.
func CleanedPositionSplits(v *graph.Vertex, offset int) []SubSplit {
	ids := v.PatternIDs()
	out := make([]SubSplit, 0, len(ids))
	for _, pid := range ids {
		idx, inner, ok := v.Children[pid].Locate(offset)
		if !ok {
			panic(&InvariantError{Op: "cleaned_position_splits", Msg: fmt.Sprintf("offset %d outside vertex %d", offset, v.ID)})
		}
		out = append(out, SubSplit{Sub: graph.SubLocation{Pattern: pid, Index: idx}, Inner: inner})
	}
	return out
}

func partitions(v *graph.Vertex, vs *VertexSplits) []Partition {
	all := vs.Patterns
	borders := vs.Borders()
	out := make([]Partition, 0, len(borders)-1)
	for i := 0; i+1 < len(borders); i++ {
		p := Partition{Start: borders[i], End: borders[i+1]}
		if i == 0 {
			p.Left = all
		} else {
			p.Left = vs.Positions[p.Start].CleanPatterns()
		}
		if i+2 == len(borders) {
			p.Right = all
		} else {
			p.Right = vs.Positions[p.End].CleanPatterns()
		}
		out = append(out, p)
	}
	width := 0
	for _, p := range out {
		width += p.Width()
	}
	if width != v.Width || len(out) != len(vs.Offsets)+1 {
		panic(&InvariantError{Op: "partitions", Msg: fmt.Sprintf("vertex %d: %d partitions of width %d", v.ID, len(out), width)})
	}
	return out
}

func sortedOffsets(m map[int]*PositionCache) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// InvariantError is the panic value raised for an inconsistent split cache.
type InvariantError struct {
	Op  string
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("split: %s: %s", e.Op, e.Msg)
}
