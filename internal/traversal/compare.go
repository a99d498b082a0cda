package traversal

import (
	"github.com/hupe1980/seqgraph/graph"
)

type outcome uint8

const (
	outcomeQueryEnd outcome = iota
	outcomeRootEnd
	outcomeMismatch
)

// frame is a graph element pushed while comparing inside a root. owner is the
// index of the frame it was decomposed from, or -1 for children of the root
// pattern itself.
type frame struct {
	child  graph.Child
	offset int
	owner  int
	sub    graph.SubLocation
}

// childState compares the root pattern after the entry point with the rest
// of the query, element by element.
type childState struct {
	store  *graph.Store
	frames []frame
	graphs []int
	query  graph.Pattern
	last   int
}

// comparison is the result of walking one root.
type comparison struct {
	outcome outcome
	matched int
	rest    graph.Pattern
	path    []frame
}

func (s *Searcher) compare(st *parentState) comparison {
	root := s.store.ExpectVertex(st.root.ID)
	p := root.ExpectPattern(st.entry.Pattern)

	cs := &childState{store: s.store, last: -1}
	off := p.Offset(st.entry.Index)
	entry := frame{child: p[st.entry.Index], offset: off, owner: -1, sub: st.entry}
	cs.frames = append(cs.frames, entry)

	offsets := make([]int, len(p))
	pos := 0
	for i, c := range p {
		offsets[i] = pos
		pos += c.Width
	}
	for i := len(p) - 1; i > st.entry.Index; i-- {
		cs.frames = append(cs.frames, frame{
			child:  p[i],
			offset: offsets[i],
			owner:  -1,
			sub:    graph.SubLocation{Pattern: st.entry.Pattern, Index: i},
		})
		cs.graphs = append(cs.graphs, len(cs.frames)-1)
	}
	for i := len(st.rest) - 1; i >= 0; i-- {
		cs.query = append(cs.query, st.rest[i])
	}

	matched := st.matched
	cs.last = 0
	result := outcomeMismatch
	for {
		if len(cs.query) == 0 {
			result = outcomeQueryEnd
			break
		}
		if len(cs.graphs) == 0 {
			result = outcomeRootEnd
			break
		}
		gi := cs.graphs[len(cs.graphs)-1]
		g := cs.frames[gi].child
		q := cs.query[len(cs.query)-1]

		switch {
		case g.ID == q.ID:
			cs.graphs = cs.graphs[:len(cs.graphs)-1]
			cs.query = cs.query[:len(cs.query)-1]
			matched += g.Width
			cs.last = gi
			continue
		case g.Width > q.Width || (g.Width == q.Width && g.Width > 1):
			cs.decomposeGraph(gi, q)
			continue
		case q.Width > g.Width:
			cs.decomposeQuery(q, g)
			continue
		}
		break
	}

	cmpRes := comparison{outcome: result, matched: matched}
	for i := len(cs.query) - 1; i >= 0; i-- {
		cmpRes.rest = append(cmpRes.rest, cs.query[i])
	}
	cmpRes.path = cs.pathTo(cs.last)
	return cmpRes
}

// decomposeGraph replaces the graph element on top of the stack by the
// children of one of its patterns.
func (cs *childState) decomposeGraph(gi int, q graph.Child) {
	cs.graphs = cs.graphs[:len(cs.graphs)-1]
	f := cs.frames[gi]
	v := cs.store.ExpectVertex(f.child.ID)
	pid := orderedPatterns(v, Right, q.ID, true)[0]
	p := v.Children[pid]

	offsets := make([]int, len(p))
	pos := f.offset
	for i, c := range p {
		offsets[i] = pos
		pos += c.Width
	}
	for i := len(p) - 1; i >= 0; i-- {
		cs.frames = append(cs.frames, frame{
			child:  p[i],
			offset: offsets[i],
			owner:  gi,
			sub:    graph.SubLocation{Pattern: pid, Index: i},
		})
		cs.graphs = append(cs.graphs, len(cs.frames)-1)
	}
}

// decomposeQuery replaces the query element on top of the stack by the
// children of one of its patterns.
func (cs *childState) decomposeQuery(q, g graph.Child) {
	cs.query = cs.query[:len(cs.query)-1]
	v := cs.store.ExpectVertex(q.ID)
	pid := orderedPatterns(v, Right, g.ID, true)[0]
	p := v.Children[pid]
	for i := len(p) - 1; i >= 0; i-- {
		cs.query = append(cs.query, p[i])
	}
}

// pathTo returns the chain of frames from the root pattern down to frame i.
func (cs *childState) pathTo(i int) []frame {
	var rev []frame
	for i >= 0 {
		f := cs.frames[i]
		rev = append(rev, f)
		i = f.owner
	}
	out := make([]frame, len(rev))
	for j := range rev {
		out[j] = rev[len(rev)-1-j]
	}
	return out
}
