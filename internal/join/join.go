// Package join materializes the cuts computed by the split builder and
// merges the resulting partitions back into the graph.
//
// Vertices are processed narrowest first. Each partition is built from the
// whole children it spans plus the already joined partitions of the children
// its borders cut through, and memoized per (vertex, start offset). Inner
// vertices gain their partition list as a pattern (or have a clean pattern
// spliced); the root is linked last according to its mode.
package join

import (
	"fmt"
	"slices"

	"github.com/hupe1980/seqgraph/graph"
	"github.com/hupe1980/seqgraph/internal/split"
)

// InvariantError is the panic value raised for inconsistent partitions.
type InvariantError struct {
	Op  string
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("join: %s: %s", e.Op, e.Msg)
}

func invariant(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

// Stats counts the work done by one join.
type Stats struct {
	Partitions int
	Created    int
	Spliced    int
	Added      int
	Wrappers   int
	// Reused counts partitions and wrappers resolved to an existing vertex
	// with the same content.
	Reused int
}

type joiner struct {
	store *graph.Store
	cache *split.Cache
	final map[split.SplitKey]graph.Child
	stats Stats
}

func newJoiner(store *graph.Store, cache *split.Cache) *joiner {
	return &joiner{
		store: store,
		cache: cache,
		final: make(map[split.SplitKey]graph.Child),
	}
}

// Join performs all cuts of the cache and returns the vertex representing
// the matched region of the root.
func Join(store *graph.Store, cache *split.Cache) (graph.Child, Stats) {
	j := newJoiner(store, cache)
	j.joinInner()
	target := j.joinRoot()
	return target, j.stats
}

// JoinAll performs all cuts of the cache, materializes every partition of
// the root and links them as a root pattern.
func JoinAll(store *graph.Store, cache *split.Cache) ([]graph.Child, Stats) {
	j := newJoiner(store, cache)
	j.joinInner()
	vs := cache.RootSplits()
	parts := j.materialize(vs)
	j.linkInner(vs, parts)
	return parts, j.stats
}

func (j *joiner) joinInner() {
	for _, id := range j.cache.Order() {
		if id == j.cache.Root.ID {
			continue
		}
		vs, _ := j.cache.Entry(id)
		parts := j.materialize(vs)
		j.linkInner(vs, parts)
	}
}

// materialize returns one child per partition of vs.
func (j *joiner) materialize(vs *split.VertexSplits) []graph.Child {
	out := make([]graph.Child, len(vs.Partitions))
	for i, p := range vs.Partitions {
		out[i] = j.partition(vs, p.Start, p.End)
	}
	return out
}

// partition returns the vertex representing [start, end) of vs, creating it
// from every pattern's view of the range when needed.
func (j *joiner) partition(vs *split.VertexSplits, start, end int) graph.Child {
	if start == 0 && end == vs.Index.Width {
		return vs.Index
	}
	key := split.SplitKey{Vertex: vs.Index.ID, Offset: start}
	if c, ok := j.final[key]; ok {
		if c.Width != end-start {
			invariant("partition", "vertex %d: memoized partition at %d has width %d, want %d", key.Vertex, start, c.Width, end-start)
		}
		return c
	}

	v := j.store.ExpectVertex(vs.Index.ID)
	pids := j.patterns(vs, v)
	if len(pids) == 0 {
		invariant("partition", "vertex %d has no classified pattern left", v.ID)
	}
	var (
		seqs    []graph.Pattern
		perfect *graph.Child
	)
	for _, pid := range pids {
		seq := j.segment(v.Children[pid], start, end)
		if w := seq.Width(); w != end-start {
			invariant("partition", "vertex %d pattern %d: segment [%d,%d) has width %d", v.ID, pid, start, end, w)
		}
		if len(seq) == 1 {
			c := seq[0]
			perfect = &c
			break
		}
		seqs = append(seqs, seq)
	}

	var child graph.Child
	if perfect != nil {
		child = *perfect
	} else {
		var created bool
		child, created = j.store.InsertPatterns(seqs)
		if created {
			j.stats.Created++
		} else {
			j.stats.Reused++
		}
	}
	j.final[key] = child
	j.stats.Partitions++
	return child
}

// patterns returns the patterns of v classified by the split builder that v
// still holds, in id order. Patterns gained from content reuse during this
// join are left as they are.
func (j *joiner) patterns(vs *split.VertexSplits, v *graph.Vertex) []graph.PatternID {
	out := make([]graph.PatternID, 0, len(vs.Patterns))
	for _, pid := range vs.Patterns {
		if _, ok := v.Children[pid]; ok {
			out = append(out, pid)
		}
	}
	return out
}

// segment returns the children of p covering [start, end), cutting border
// children into their joined partitions.
func (j *joiner) segment(p graph.Pattern, start, end int) graph.Pattern {
	i, ri, ok := p.Locate(start)
	if !ok {
		invariant("segment", "start %d outside pattern %s", start, p)
	}
	k, rk, ok := p.LocateEnd(end)
	if !ok {
		invariant("segment", "end %d outside pattern %s", end, p)
	}

	if i == k {
		c := p[i]
		if ri == 0 && rk == c.Width {
			return graph.Pattern{c}
		}
		return j.inner(c, ri, rk)
	}

	var out graph.Pattern
	if ri == 0 {
		out = append(out, p[i])
	} else {
		out = append(out, j.inner(p[i], ri, p[i].Width)...)
	}
	out = append(out, p[i+1:k]...)
	if rk == p[k].Width {
		out = append(out, p[k])
	} else {
		out = append(out, j.inner(p[k], 0, rk)...)
	}
	return out
}

// inner returns the joined partitions of c covering [a, b).
func (j *joiner) inner(c graph.Child, a, b int) graph.Pattern {
	vs, ok := j.cache.Entry(c.ID)
	if !ok {
		invariant("inner", "vertex %d cut at [%d,%d) but not in split cache", c.ID, a, b)
	}
	from, to, ok := vs.PartitionsIn(a, b)
	if !ok {
		invariant("inner", "vertex %d has no partitions covering [%d,%d)", c.ID, a, b)
	}
	out := make(graph.Pattern, 0, to-from)
	for _, p := range vs.Partitions[from:to] {
		out = append(out, j.partition(vs, p.Start, p.End))
	}
	return out
}

// linkInner makes parts a decomposition of the vertex: an equal pattern is
// kept, a pattern clean at every offset is spliced, otherwise parts is added.
func (j *joiner) linkInner(vs *split.VertexSplits, parts []graph.Child) {
	v := j.store.ExpectVertex(vs.Index.ID)
	if _, ok := v.FindPattern(parts); ok {
		return
	}
	for _, pid := range j.patterns(vs, v) {
		if !j.cleanAt(vs, pid, vs.Offsets...) {
			continue
		}
		if j.splicePartitions(v, pid, vs, parts) {
			return
		}
		break
	}
	j.addPattern(v, parts)
}

// addPattern adds parts to v unless v or another vertex already owns it.
func (j *joiner) addPattern(v *graph.Vertex, parts graph.Pattern) {
	if _, ok := v.FindPattern(parts); ok {
		return
	}
	if _, ok := j.store.FindPatternOwner(parts); ok {
		return
	}
	j.store.AddPattern(v.ID, parts)
	j.stats.Added++
}

// splicePartitions replaces, right to left, every multi-child range of
// pattern pid by its partition. A partition covering a single child keeps
// that child. It reports false if the pattern collapsed into a duplicate
// before all ranges were spliced.
func (j *joiner) splicePartitions(v *graph.Vertex, pid graph.PatternID, vs *split.VertexSplits, parts []graph.Child) bool {
	loc := graph.PatternLocation{Vertex: v.ID, Pattern: pid}
	for idx := len(vs.Partitions) - 1; idx >= 0; idx-- {
		p, ok := v.Children[pid]
		if !ok {
			return false
		}
		part := vs.Partitions[idx]
		i, k := cleanRange(p, part.Start, part.End)
		if k == i {
			if p[i].Width != parts[idx].Width {
				invariant("splice", "vertex %d: partition %d has width %d, pattern holds %v", v.ID, idx, parts[idx].Width, p[i])
			}
			continue
		}
		j.store.ReplaceInPattern(loc, i, k+1, graph.Pattern{parts[idx]})
		j.stats.Spliced++
	}
	_, ok := v.Children[pid]
	return ok
}

// cleanAt reports whether every offset is a boundary of pattern pid.
func (j *joiner) cleanAt(vs *split.VertexSplits, pid graph.PatternID, offsets ...int) bool {
	for _, off := range offsets {
		if off == 0 || off == vs.Index.Width {
			continue
		}
		pos, ok := vs.Position(off)
		if !ok || !pos.Clean(pid) {
			return false
		}
	}
	return true
}

// cleanRange returns the first and last child index of p covering
// [start, end), where both borders fall between children.
func cleanRange(p graph.Pattern, start, end int) (int, int) {
	i, ri, ok := p.Locate(start)
	if !ok || ri != 0 {
		invariant("clean_range", "start %d is not a boundary of %s", start, p)
	}
	k, rk, ok := p.LocateEnd(end)
	if !ok || rk != p[k].Width {
		invariant("clean_range", "end %d is not a boundary of %s", end, p)
	}
	return i, k
}

// joinRoot links the target partition into the root and returns it.
func (j *joiner) joinRoot() graph.Child {
	vs := j.cache.RootSplits()
	ti := 0
	if j.cache.Mode != split.Prefix {
		ti = 1
	}
	tp := vs.Partitions[ti]
	ts, te := tp.Start, tp.End
	target := j.partition(vs, ts, te)

	v := j.store.ExpectVertex(vs.Index.ID)
	pids := j.patterns(vs, v)

	// both borders clean in one pattern
	for _, pid := range pids {
		if !j.cleanAt(vs, pid, ts, te) {
			continue
		}
		i, k := cleanRange(v.Children[pid], ts, te)
		if k > i {
			j.store.ReplaceInPattern(graph.PatternLocation{Vertex: v.ID, Pattern: pid}, i, k+1, graph.Pattern{target})
			j.stats.Spliced++
		}
		return target
	}

	// exactly one border clean: wrap the imperfect side
	for _, pid := range pids {
		if j.wrap(vs, v, pid, target, ts, te) {
			return target
		}
	}

	// no usable border: add the full partition list
	j.addPattern(v, j.materialize(vs))
	return target
}

// wrap builds a vertex covering the children of pattern pid that overlap
// the target, decomposed both as those children and as the target plus the
// joined remainder of the cut child, and splices it into the pattern.
func (j *joiner) wrap(vs *split.VertexSplits, v *graph.Vertex, pid graph.PatternID, target graph.Child, ts, te int) bool {
	leftClean := j.cleanAt(vs, pid, ts)
	rightClean := j.cleanAt(vs, pid, te)
	if leftClean == rightClean {
		return false
	}
	p := v.Children[pid]
	i, ri, _ := p.Locate(ts)
	k, rk, _ := p.LocateEnd(te)
	if i == 0 && k == len(p)-1 {
		return false
	}
	if i == k {
		return true
	}

	var alt graph.Pattern
	if leftClean {
		alt = append(graph.Pattern{target}, j.inner(p[k], rk, p[k].Width)...)
	} else {
		alt = append(j.inner(p[i], 0, ri), target)
	}
	span := slices.Clone(p[i : k+1])
	w, created := j.store.InsertPatterns([]graph.Pattern{span, alt})
	if created {
		j.stats.Created++
	} else {
		j.stats.Reused++
	}
	j.stats.Wrappers++
	j.store.ReplaceInPattern(graph.PatternLocation{Vertex: v.ID, Pattern: pid}, i, k+1, graph.Pattern{w})
	j.stats.Spliced++
	return true
}
