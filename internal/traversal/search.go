package traversal

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/seqgraph/graph"
	"github.com/hupe1980/seqgraph/internal/queue"
	"github.com/hupe1980/seqgraph/internal/trace"
)

// Searcher runs read-only searches against a store.
type Searcher struct {
	store *graph.Store
}

// NewSearcher returns a searcher over store.
func NewSearcher(store *graph.Store) *Searcher {
	return &Searcher{store: store}
}

// parentState is a candidate root entered from one of its children.
// matched is the query width consumed when entering the root, rest the query
// elements still to compare. prev links the state the root was reached from.
type parentState struct {
	root    graph.Child
	start   int
	entry   graph.SubLocation
	matched int
	rest    graph.Pattern
	prev    int
	from    graph.VertexID
}

type candidate struct {
	state int
	cmp   comparison
}

// FindAncestor returns the longest alignment of query with the graph,
// preferring the narrowest root among equally long ones.
func (s *Searcher) FindAncestor(query graph.Pattern) (*FinishedState, error) {
	switch len(query) {
	case 0:
		return nil, ErrEmptyPatterns
	case 1:
		return nil, &ErrSingleIndex{Child: query[0]}
	}

	var (
		states   []parentState
		frontier = queue.NewMin[int](16)
		seen     = roaring64.New()
		seeds    = s.seeds(query)
	)
	for _, sd := range seeds {
		s.pushParents(&states, frontier, sd.Child, 0, sd.Child.Width, sd.Rest, -1)
	}

	var best *candidate
	for frontier.Len() > 0 {
		item, _ := frontier.PopItem()
		st := &states[item.Value]
		key := queue.VertexKey(uint32(st.root.ID), st.start)
		if seen.Contains(key) {
			continue
		}
		seen.Add(key)

		c := s.compare(st)
		if best == nil || c.matched > best.cmp.matched {
			best = &candidate{state: item.Value, cmp: c}
		}
		switch c.outcome {
		case outcomeQueryEnd:
			return s.finish(query, states, best), nil
		case outcomeRootEnd:
			s.pushParents(&states, frontier, st.root, st.start, c.matched, c.rest, item.Value)
		}
	}

	if best == nil || best.cmp.matched <= query[0].Width {
		return nil, ErrNoMatchingParent
	}
	return s.finish(query, states, best), nil
}

// seeds returns the query's first element and every vertex it starts with,
// each paired with the query content following it.
func (s *Searcher) seeds(query graph.Pattern) []EdgeDescendant {
	first := query[0]
	rest := query[1:].Clone()
	out := []EdgeDescendant{{Child: first, Rest: rest}}
	for _, d := range EdgeDescendants(s.store, first.ID, Right) {
		out = append(out, EdgeDescendant{Child: d.Child, Rest: Right.Concat(d.Rest, rest)})
	}
	return out
}

func (s *Searcher) pushParents(states *[]parentState, frontier *queue.PriorityQueue[int], from graph.Child, start, matched int, rest graph.Pattern, prev int) {
	v := s.store.ExpectVertex(from.ID)
	for _, pid := range v.ParentIDs() {
		parent := v.Parents[pid]
		pv := s.store.ExpectVertex(pid)
		for _, sub := range parent.Occurrences() {
			off := pv.ExpectPattern(sub.Pattern).Offset(sub.Index)
			*states = append(*states, parentState{
				root:    pv.Child(),
				start:   off + start,
				entry:   sub,
				matched: matched,
				rest:    rest,
				prev:    prev,
				from:    from.ID,
			})
			idx := len(*states) - 1
			frontier.Push(idx, pv.Width, queue.VertexKey(uint32(pid), off+start))
		}
	}
}

// finish turns the winning candidate into a FinishedState and builds its
// trace cache.
func (s *Searcher) finish(query graph.Pattern, states []parentState, c *candidate) *FinishedState {
	st := states[c.state]
	end := st.start + c.cmp.matched
	fs := &FinishedState{
		Kind:      KindOf(st.start, end, st.root.Width),
		Reason:    Mismatch,
		Root:      st.root,
		Start:     st.start,
		End:       end,
		Query:     query.Clone(),
		Remaining: c.cmp.rest,
		Cache:     trace.New(),
	}
	if c.cmp.outcome == outcomeQueryEnd {
		fs.Reason = QueryEnd
		fs.Remaining = nil
	}
	fs.Cache.Root = st.root

	// bottom-up leg: from the root back to the seed
	i := c.state
	for i >= 0 {
		cur := states[i]
		fs.Cache.AddBottomUp(cur.root, cur.start, &trace.Edge{Sub: cur.entry, Child: cur.from})
		if cur.prev < 0 {
			fs.Cache.AddBottomUp(s.store.ExpectChild(cur.from), 0, nil)
		}
		i = cur.prev
	}

	// top-down leg: from the root down to the last matched element
	owner := st.root
	ownerOffset := 0
	for _, f := range c.cmp.path {
		fs.Cache.AddTopDown(owner, end-ownerOffset, &trace.Edge{Sub: f.sub, Child: f.child.ID})
		owner = f.child
		ownerOffset = f.offset
	}
	fs.Cache.AddTopDown(owner, end-ownerOffset, nil)
	return fs
}

// FindParent matches the query against the direct parents of its first
// element only. The query must end inside the parent.
func (s *Searcher) FindParent(query graph.Pattern) (*FinishedState, error) {
	switch len(query) {
	case 0:
		return nil, ErrEmptyPatterns
	case 1:
		return nil, &ErrSingleIndex{Child: query[0]}
	}

	var states []parentState
	frontier := queue.NewMin[int](8)
	first := query[0]
	s.pushParents(&states, frontier, first, 0, first.Width, query[1:].Clone(), -1)

	partial := false
	for frontier.Len() > 0 {
		item, _ := frontier.PopItem()
		c := s.compare(&states[item.Value])
		if c.outcome == outcomeQueryEnd {
			return s.finish(query, states, &candidate{state: item.Value, cmp: c}), nil
		}
		if c.matched > first.Width {
			partial = true
		}
	}
	if partial {
		return nil, ErrMismatch
	}
	return nil, ErrNoMatchingParent
}
