// Package insert turns arbitrary sequences of known children into vertices.
//
// A query is aligned with the graph piece by piece. A piece that matches a
// whole vertex is reused directly; a partial match is cut out of its root by
// the split and join engines. Pieces without any known container are kept as
// they are, and several pieces are combined into one new pattern.
package insert

import (
	"errors"
	"fmt"

	"github.com/hupe1980/seqgraph/graph"
	"github.com/hupe1980/seqgraph/internal/join"
	"github.com/hupe1980/seqgraph/internal/split"
	"github.com/hupe1980/seqgraph/internal/traversal"
)

// ErrPatternMismatch is returned when alternative decompositions passed to
// InsertPatterns differ in width or content.
var ErrPatternMismatch = errors.New("patterns differ")

// Counters accumulates the work done by an Inserter.
type Counters struct {
	Searches   int
	Splits     int
	Partitions int
	Created    int
	Reused     int
}

// Inserter mutates a store. It is not safe for concurrent use.
type Inserter struct {
	store    *graph.Store
	searcher *traversal.Searcher
	counters Counters
}

// New returns an inserter over store.
func New(store *graph.Store) *Inserter {
	return &Inserter{store: store, searcher: traversal.NewSearcher(store)}
}

// Store returns the underlying store.
func (in *Inserter) Store() *graph.Store { return in.store }

// Searcher returns the searcher used for alignment.
func (in *Inserter) Searcher() *traversal.Searcher { return in.searcher }

// Counters returns the accumulated counters.
func (in *Inserter) Counters() Counters { return in.counters }

// Insert returns the vertex representing query, creating it if needed.
func (in *Inserter) Insert(query graph.Pattern) (graph.Child, error) {
	switch len(query) {
	case 0:
		return graph.Child{}, traversal.ErrEmptyPatterns
	case 1:
		return query[0], nil
	}

	var pieces graph.Pattern
	rest := query
	for len(rest) > 0 {
		if len(rest) == 1 {
			pieces = append(pieces, rest[0])
			break
		}
		in.counters.Searches++
		fs, err := in.searcher.FindAncestor(rest)
		if errors.Is(err, traversal.ErrNoMatchingParent) {
			pieces = append(pieces, rest[0])
			rest = rest[1:]
			continue
		}
		if err != nil {
			return graph.Child{}, err
		}
		c, err := in.Materialize(fs)
		if err != nil {
			return graph.Child{}, err
		}
		pieces = append(pieces, c)
		rest = fs.Remaining
	}

	if len(pieces) == 1 {
		return pieces[0], nil
	}
	return in.insertPattern(pieces), nil
}

// InsertTokens inserts the tokens as leaves and then the sequence they
// form.
func (in *Inserter) InsertTokens(tokens []string) (graph.Child, error) {
	if len(tokens) == 0 {
		return graph.Child{}, traversal.ErrEmptyPatterns
	}
	return in.Insert(in.store.InsertTokens(tokens))
}

// InsertPatterns returns the vertex decomposed as every sequence in seqs,
// creating it if needed. All sequences must have the same content.
func (in *Inserter) InsertPatterns(seqs []graph.Pattern) (graph.Child, error) {
	if len(seqs) == 0 {
		return graph.Child{}, traversal.ErrEmptyPatterns
	}
	for i, s := range seqs {
		if len(s) == 0 {
			return graph.Child{}, traversal.ErrEmptyPatterns
		}
		if i == 0 {
			continue
		}
		if w, want := s.Width(), seqs[0].Width(); w != want {
			return graph.Child{}, fmt.Errorf("%w: pattern %d has width %d, want %d", ErrPatternMismatch, i, w, want)
		}
		if !in.store.SameContent(seqs[0], s) {
			return graph.Child{}, fmt.Errorf("%w: pattern %d differs in content from pattern 0", ErrPatternMismatch, i)
		}
	}
	c, created := in.store.InsertPatterns(seqs)
	if created {
		in.counters.Created++
	}
	return c, nil
}

// Materialize returns the vertex for the matched region of a search result.
func (in *Inserter) Materialize(fs *traversal.FinishedState) (graph.Child, error) {
	if fs.IsComplete() {
		return fs.Root, nil
	}
	ii, err := split.FromFinished(fs)
	if err != nil {
		return graph.Child{}, err
	}
	cache, err := split.Build(in.store, ii)
	if err != nil {
		return graph.Child{}, err
	}
	target, stats := join.Join(in.store, cache)
	in.record(stats)
	return target, nil
}

// SplitAt cuts v at offset k and returns the vertices for [0, k) and
// [k, width). v gains the pair as a pattern unless it already had one.
func (in *Inserter) SplitAt(v graph.Child, k int) (graph.Child, graph.Child, error) {
	ii, err := split.NewInterval(v, 0, k)
	if err != nil {
		return graph.Child{}, graph.Child{}, err
	}
	cache, err := split.Build(in.store, ii)
	if err != nil {
		return graph.Child{}, graph.Child{}, err
	}
	parts, stats := join.JoinAll(in.store, cache)
	in.record(stats)
	return parts[0], parts[1], nil
}

// Prefix returns the vertex for the first n positions of v.
func (in *Inserter) Prefix(v graph.Child, n int) (graph.Child, error) {
	if n == v.Width {
		return v, nil
	}
	pre, _, err := in.SplitAt(v, n)
	return pre, err
}

// Postfix returns the vertex for the last n positions of v.
func (in *Inserter) Postfix(v graph.Child, n int) (graph.Child, error) {
	if n == v.Width {
		return v, nil
	}
	_, post, err := in.SplitAt(v, v.Width-n)
	return post, err
}

func (in *Inserter) insertPattern(seq graph.Pattern) graph.Child {
	before := in.store.Len()
	c := in.store.InsertPattern(seq)
	if in.store.Len() > before {
		in.counters.Created++
	}
	return c
}

func (in *Inserter) record(stats join.Stats) {
	in.counters.Splits++
	in.counters.Partitions += stats.Partitions
	in.counters.Created += stats.Created
	in.counters.Reused += stats.Reused
}
