package graph

import (
	"fmt"
	"slices"
)

// PatternRecord is the serialized form of one pattern.
type PatternRecord struct {
	ID       PatternID
	Children []VertexID
}

// VertexRecord is the serialized form of one vertex. Parents are derived.
type VertexRecord struct {
	ID       VertexID
	Width    int
	Token    string
	Patterns []PatternRecord
}

// Export returns the store as records in id order.
func (s *Store) Export() ([]VertexRecord, PatternID) {
	out := make([]VertexRecord, len(s.vertices))
	for i, v := range s.vertices {
		rec := VertexRecord{ID: v.ID, Width: v.Width, Token: v.Token}
		for _, pid := range v.PatternIDs() {
			p := v.Children[pid]
			ids := make([]VertexID, len(p))
			for j, c := range p {
				ids[j] = c.ID
			}
			rec.Patterns = append(rec.Patterns, PatternRecord{ID: pid, Children: ids})
		}
		out[i] = rec
	}
	return out, s.nextPattern
}

// Load rebuilds a store from records produced by Export. Parent links, the
// pattern index and the content index are reconstructed; the result is
// validated.
func Load(records []VertexRecord, nextPattern PatternID) (*Store, error) {
	s := New()
	for i, rec := range records {
		if rec.ID != VertexID(i) {
			return nil, fmt.Errorf("%w: record %d has id %d", ErrInvalidGraph, i, rec.ID)
		}
		if rec.Width < 1 {
			return nil, fmt.Errorf("%w: vertex %d has width %d", ErrInvalidGraph, rec.ID, rec.Width)
		}
		v := s.newVertex(rec.Width)
		if rec.Width == 1 {
			if _, dup := s.tokens[rec.Token]; dup {
				return nil, fmt.Errorf("%w: duplicate token %q", ErrInvalidGraph, rec.Token)
			}
			v.Token = rec.Token
			s.tokens[rec.Token] = v.ID
		}
	}
	for _, rec := range records {
		v := s.vertices[rec.ID]
		for _, pr := range rec.Patterns {
			if pr.ID >= nextPattern {
				return nil, fmt.Errorf("%w: pattern id %d out of range", ErrInvalidGraph, pr.ID)
			}
			seq := make(Pattern, len(pr.Children))
			for j, cid := range pr.Children {
				if int(cid) >= len(s.vertices) {
					return nil, fmt.Errorf("%w: vertex %d references missing child %d", ErrInvalidGraph, rec.ID, cid)
				}
				seq[j] = s.vertices[cid].Child()
			}
			if err := s.safeLink(v, pr.ID, seq); err != nil {
				return nil, err
			}
		}
	}
	s.nextPattern = nextPattern
	if err := s.indexAll(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// indexAll fingerprints every vertex narrowest first and fills the content
// index. Duplicate content is rejected.
func (s *Store) indexAll() error {
	order := slices.Clone(s.vertices)
	slices.SortStableFunc(order, func(a, b *Vertex) int { return a.Width - b.Width })
	for _, v := range order {
		if v.IsLeaf() {
			v.fp = leafFingerprint(v.ID)
			continue
		}
		_, p, ok := v.FirstPattern()
		if !ok {
			continue
		}
		v.fp = s.fingerprint(p)
		if c, dup := s.lookupContent(v.contentKey(), p); dup {
			return fmt.Errorf("%w: vertex %d duplicates content of vertex %d", ErrInvalidGraph, v.ID, c.ID)
		}
		s.indexContent(v)
	}
	return nil
}

func (s *Store) safeLink(v *Vertex, pid PatternID, seq Pattern) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*InvariantError); ok {
				err = fmt.Errorf("%w: %s", ErrInvalidGraph, ie.Msg)
				return
			}
			panic(r)
		}
	}()
	if _, dup := v.Children[pid]; dup {
		return fmt.Errorf("%w: vertex %d has duplicate pattern %d", ErrInvalidGraph, v.ID, pid)
	}
	s.linkPattern(v, pid, seq)
	return nil
}
