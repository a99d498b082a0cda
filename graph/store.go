// Package graph implements the vertex store of the sequence hypergraph.
//
// Every distinct subsequence is represented by one vertex. A vertex owns one
// or more patterns (alternative decompositions into narrower vertices) and
// records back-links to every wider vertex it occurs in. All structural
// mutation goes through InsertPattern, InsertPatterns, AddPattern and
// ReplaceInPattern so that width conservation, acyclicity, back-link
// symmetry and content uniqueness hold after every call.
//
// The store is not safe for concurrent use; callers serialize access.
package graph

import (
	"slices"
)

// Store is an arena of vertices addressed by VertexID.
type Store struct {
	vertices    []*Vertex
	tokens      map[string]VertexID
	patterns    map[string]PatternLocation
	contents    map[contentKey][]VertexID
	nextPattern PatternID
}

// New creates an empty store.
func New() *Store {
	return &Store{
		tokens:   make(map[string]VertexID),
		patterns: make(map[string]PatternLocation),
		contents: make(map[contentKey][]VertexID),
	}
}

// Len returns the number of vertices.
func (s *Store) Len() int { return len(s.vertices) }

// PatternCount returns the number of patterns across all vertices.
func (s *Store) PatternCount() int { return len(s.patterns) }

// Vertex returns the vertex with the given id.
func (s *Store) Vertex(id VertexID) (*Vertex, bool) {
	if int(id) >= len(s.vertices) {
		return nil, false
	}
	return s.vertices[id], true
}

// ExpectVertex returns the vertex with the given id or panics.
func (s *Store) ExpectVertex(id VertexID) *Vertex {
	v, ok := s.Vertex(id)
	if !ok {
		invariant("expect_vertex", "no vertex %d", id)
	}
	return v
}

// ExpectChild returns a fresh reference to the vertex with the given id.
func (s *Store) ExpectChild(id VertexID) Child {
	return s.ExpectVertex(id).Child()
}

// Leaf returns the leaf vertex for a token.
func (s *Store) Leaf(token string) (Child, bool) {
	id, ok := s.tokens[token]
	if !ok {
		return Child{}, false
	}
	return Child{ID: id, Width: 1}, true
}

// InsertToken returns the leaf for token, creating it on first use.
func (s *Store) InsertToken(token string) Child {
	if id, ok := s.tokens[token]; ok {
		return Child{ID: id, Width: 1}
	}
	v := s.newVertex(1)
	v.Token = token
	v.fp = leafFingerprint(v.ID)
	s.tokens[token] = v.ID
	return v.Child()
}

// InsertTokens maps every token to its leaf.
func (s *Store) InsertTokens(tokens []string) []Child {
	out := make([]Child, len(tokens))
	for i, t := range tokens {
		out[i] = s.InsertToken(t)
	}
	return out
}

// FindPatternOwner returns the vertex that owns a pattern with exactly the
// given children.
func (s *Store) FindPatternOwner(p Pattern) (PatternLocation, bool) {
	loc, ok := s.patterns[p.key()]
	return loc, ok
}

// InsertPattern returns the vertex represented by seq. A single element is
// returned as is and an existing owner of the exact pattern is reused. A
// vertex with the same content but other decompositions gains seq as a
// pattern; otherwise a new vertex is created.
func (s *Store) InsertPattern(seq Pattern) Child {
	switch len(seq) {
	case 0:
		invariant("insert_pattern", "empty pattern")
	case 1:
		return seq[0]
	}
	if loc, ok := s.FindPatternOwner(seq); ok {
		return s.ExpectChild(loc.Vertex)
	}
	if c, ok := s.lookupContent(contentKey{fp: s.fingerprint(seq), width: seq.Width()}, seq); ok {
		s.addPattern(s.ExpectVertex(c.ID), seq.Clone())
		return c
	}
	return s.newInner(seq).Child()
}

// InsertPatterns unions alternative decompositions of the same content into
// one vertex. A single-element decomposition, an existing owner of any
// decomposition or a vertex with the same content is reused and receives the
// missing alternatives. created reports whether a new vertex was allocated.
func (s *Store) InsertPatterns(seqs []Pattern) (child Child, created bool) {
	if len(seqs) == 0 {
		invariant("insert_patterns", "no patterns")
	}
	width := seqs[0].Width()
	var distinct []Pattern
	seen := make(map[string]struct{}, len(seqs))
	for _, seq := range seqs {
		if len(seq) == 0 {
			invariant("insert_patterns", "empty pattern")
		}
		if w := seq.Width(); w != width {
			invariant("insert_patterns", "width mismatch: %d != %d", w, width)
		}
		k := seq.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		distinct = append(distinct, seq)
	}

	var target *Vertex
	for _, seq := range distinct {
		if len(seq) == 1 {
			target = s.ExpectVertex(seq[0].ID)
			break
		}
	}
	if target == nil {
		for _, seq := range distinct {
			if loc, ok := s.FindPatternOwner(seq); ok {
				target = s.ExpectVertex(loc.Vertex)
				break
			}
		}
	}
	if target == nil {
		if c, ok := s.lookupContent(contentKey{fp: s.fingerprint(distinct[0]), width: width}, distinct[0]); ok {
			target = s.ExpectVertex(c.ID)
		}
	}
	if target == nil {
		target = s.newInner(distinct[0])
		created = true
	}
	if target.IsLeaf() {
		return target.Child(), created
	}
	for _, seq := range distinct {
		if len(seq) < 2 {
			continue
		}
		if _, ok := s.FindPatternOwner(seq); ok {
			continue
		}
		s.addPattern(target, seq.Clone())
	}
	return target.Child(), created
}

// AddPattern adds an alternative decomposition to an existing vertex and
// returns its id. An identical pattern of the vertex is reused.
func (s *Store) AddPattern(id VertexID, seq Pattern) PatternID {
	v := s.ExpectVertex(id)
	if len(seq) < 2 {
		invariant("add_pattern", "vertex %d: pattern needs at least two children", id)
	}
	if w := seq.Width(); w != v.Width {
		invariant("add_pattern", "vertex %d: width %d != %d", id, w, v.Width)
	}
	if pid, ok := v.FindPattern(seq); ok {
		return pid
	}
	if loc, ok := s.FindPatternOwner(seq); ok {
		invariant("add_pattern", "pattern %s already owned by vertex %d", seq, loc.Vertex)
	}
	return s.addPattern(v, seq.Clone())
}

// ReplaceInPattern splices children [start, end) of the pattern at loc with
// repl. Back-links on both sides are updated. If the result duplicates another
// pattern of the same vertex the spliced pattern is dropped.
func (s *Store) ReplaceInPattern(loc PatternLocation, start, end int, repl Pattern) {
	v := s.ExpectVertex(loc.Vertex)
	old := v.ExpectPattern(loc.Pattern)
	if start < 0 || end > len(old) || start >= end {
		invariant("replace_in_pattern", "vertex %d pattern %d: bad range [%d,%d) of %d", v.ID, loc.Pattern, start, end, len(old))
	}
	if len(repl) == 0 {
		invariant("replace_in_pattern", "empty replacement")
	}
	if Pattern(old[start:end]).Width() != repl.Width() {
		invariant("replace_in_pattern", "vertex %d: replacement width %d != %d", v.ID, repl.Width(), Pattern(old[start:end]).Width())
	}
	if s.fingerprint(old[start:end]) != s.fingerprint(repl) {
		invariant("replace_in_pattern", "vertex %d: replacement %s changes content of %s", v.ID, repl, Pattern(old[start:end]))
	}
	next := make(Pattern, 0, len(old)-(end-start)+len(repl))
	next = append(next, old[:start]...)
	next = append(next, repl...)
	next = append(next, old[end:]...)
	if len(next) < 2 {
		invariant("replace_in_pattern", "vertex %d: pattern would collapse to a single child", v.ID)
	}
	for _, c := range repl {
		if c.Width >= v.Width {
			invariant("replace_in_pattern", "vertex %d: child %d is not narrower", v.ID, c.ID)
		}
	}

	s.unlinkPattern(v, loc.Pattern)
	if _, dup := v.FindPattern(next); dup {
		return
	}
	s.linkPattern(v, loc.Pattern, next)
}

// AppendToPattern extends the only pattern of a parentless vertex. The vertex
// width grows by the width of seq. The extended content must not be
// represented yet.
func (s *Store) AppendToPattern(loc PatternLocation, seq Pattern) {
	v := s.ExpectVertex(loc.Vertex)
	if len(v.Parents) > 0 {
		invariant("append_to_pattern", "vertex %d has parents", v.ID)
	}
	if len(v.Children) != 1 {
		invariant("append_to_pattern", "vertex %d has %d patterns", v.ID, len(v.Children))
	}
	old := v.ExpectPattern(loc.Pattern)
	next := make(Pattern, 0, len(old)+len(seq))
	next = append(next, old...)
	next = append(next, seq...)
	if owner, ok := s.FindPatternOwner(next); ok {
		invariant("append_to_pattern", "pattern %s already owned by vertex %d", next, owner.Vertex)
	}
	for _, c := range seq {
		if c.ID == v.ID {
			invariant("append_to_pattern", "vertex %d appended to itself", v.ID)
		}
	}
	fp := fpConcat(v.fp, s.fingerprint(seq), seq.Width())
	if c, ok := s.lookupContent(contentKey{fp: fp, width: v.Width + seq.Width()}, next); ok {
		invariant("append_to_pattern", "content of %s already represented by vertex %d", next, c.ID)
	}
	s.unindexContent(v)
	s.unlinkPattern(v, loc.Pattern)
	v.Width += seq.Width()
	v.fp = fp
	s.linkPattern(v, loc.Pattern, next)
	s.indexContent(v)
}

func (s *Store) newVertex(width int) *Vertex {
	v := &Vertex{
		ID:       VertexID(len(s.vertices)),
		Width:    width,
		Parents:  make(map[VertexID]*Parent),
		Children: make(map[PatternID]Pattern),
	}
	s.vertices = append(s.vertices, v)
	return v
}

// newInner allocates a vertex with seq as its first pattern and indexes its
// content.
func (s *Store) newInner(seq Pattern) *Vertex {
	v := s.newVertex(seq.Width())
	v.fp = s.fingerprint(seq)
	s.indexContent(v)
	s.addPattern(v, seq.Clone())
	return v
}

func (s *Store) addPattern(v *Vertex, seq Pattern) PatternID {
	if len(seq) < 2 {
		invariant("add_pattern", "vertex %d: pattern needs at least two children", v.ID)
	}
	if s.fingerprint(seq) != v.fp {
		invariant("add_pattern", "vertex %d: pattern %s has different content", v.ID, seq)
	}
	pid := s.nextPattern
	s.nextPattern++
	s.linkPattern(v, pid, seq)
	return pid
}

func (s *Store) linkPattern(v *Vertex, pid PatternID, seq Pattern) {
	for i, c := range seq {
		child := s.ExpectVertex(c.ID)
		if child.Width != c.Width {
			invariant("link_pattern", "child %d cached width %d != %d", c.ID, c.Width, child.Width)
		}
		if child.Width >= v.Width {
			invariant("link_pattern", "child %d (w%d) not narrower than %d (w%d)", c.ID, c.Width, v.ID, v.Width)
		}
		p, ok := child.Parents[v.ID]
		if !ok {
			p = &Parent{Width: v.Width, Patterns: make(map[PatternID][]int)}
			child.Parents[v.ID] = p
		}
		p.Width = v.Width
		p.add(pid, i)
	}
	v.Children[pid] = seq
	if _, ok := s.patterns[seq.key()]; !ok {
		s.patterns[seq.key()] = PatternLocation{Vertex: v.ID, Pattern: pid}
	}
}

func (s *Store) unlinkPattern(v *Vertex, pid PatternID) {
	seq := v.ExpectPattern(pid)
	for _, c := range seq {
		child := s.ExpectVertex(c.ID)
		p, ok := child.Parents[v.ID]
		if !ok {
			continue
		}
		delete(p.Patterns, pid)
		if len(p.Patterns) == 0 {
			delete(child.Parents, v.ID)
		}
	}
	if loc, ok := s.patterns[seq.key()]; ok && loc.Vertex == v.ID && loc.Pattern == pid {
		delete(s.patterns, seq.key())
	}
	delete(v.Children, pid)
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	out := &Store{
		vertices:    make([]*Vertex, len(s.vertices)),
		tokens:      make(map[string]VertexID, len(s.tokens)),
		patterns:    make(map[string]PatternLocation, len(s.patterns)),
		contents:    make(map[contentKey][]VertexID, len(s.contents)),
		nextPattern: s.nextPattern,
	}
	for i, v := range s.vertices {
		nv := &Vertex{
			ID:       v.ID,
			Width:    v.Width,
			Token:    v.Token,
			Parents:  make(map[VertexID]*Parent, len(v.Parents)),
			Children: make(map[PatternID]Pattern, len(v.Children)),
			fp:       v.fp,
		}
		for id, p := range v.Parents {
			nv.Parents[id] = p.clone()
		}
		for pid, p := range v.Children {
			nv.Children[pid] = slices.Clone(p)
		}
		out.vertices[i] = nv
	}
	for k, v := range s.tokens {
		out.tokens[k] = v
	}
	for k, v := range s.patterns {
		out.patterns[k] = v
	}
	for k, ids := range s.contents {
		out.contents[k] = slices.Clone(ids)
	}
	return out
}
