// Package read builds the vertex for a raw token sequence incrementally.
//
// The input is consumed in blocks. Each block starts with the longest known
// index at the cursor and is extended by overlaps: a postfix of the furthest
// reaching index that, together with the following input, forms a longer
// known index. Overlapping indices are kept as open bands and bundled into
// one vertex with one pattern per band. Every finished block is appended to
// the running root.
package read

import (
	"errors"

	"github.com/hupe1980/seqgraph/graph"
	"github.com/hupe1980/seqgraph/internal/insert"
	"github.com/hupe1980/seqgraph/internal/traversal"
)

// Counters accumulates the work done by a Reader.
type Counters struct {
	Blocks   int
	Bands    int
	Bundles  int
	Appends  int
	Wrapped  int
	Fallback int
}

// Reader reads token sequences into a store. It is not safe for concurrent
// use.
type Reader struct {
	in       *insert.Inserter
	store    *graph.Store
	searcher *traversal.Searcher
	counters Counters

	root  *graph.Child
	owned bool
}

// New returns a reader inserting through in.
func New(in *insert.Inserter) *Reader {
	return &Reader{in: in, store: in.Store(), searcher: in.Searcher()}
}

// Counters returns the accumulated counters.
func (r *Reader) Counters() Counters { return r.counters }

// ReadSequence inserts the tokens and returns the vertex representing the
// whole sequence.
func (r *Reader) ReadSequence(tokens []string) (graph.Child, error) {
	if len(tokens) == 0 {
		return graph.Child{}, traversal.ErrEmptyPatterns
	}
	r.root, r.owned = nil, false

	rest := graph.Pattern(r.store.InsertTokens(tokens))
	for len(rest) > 0 {
		index, next, err := r.readBlock(rest)
		if err != nil {
			return graph.Child{}, err
		}
		r.counters.Blocks++
		r.appendIndex(index)
		rest = next
	}
	return *r.root, nil
}

// readBlock reads the next index and extends it by overlaps for as long as
// possible.
func (r *Reader) readBlock(rest graph.Pattern) (graph.Child, graph.Pattern, error) {
	first, rest, err := r.readNext(rest)
	if err != nil {
		return graph.Child{}, nil, err
	}
	r.counters.Bands++
	chain := newChain(Band{Index: first, Start: 0, End: first.Width})

	for len(rest) > 0 {
		last := chain.Last()
		band, next, ok, err := r.expand(last, rest)
		if err != nil {
			return graph.Child{}, nil, err
		}
		if !ok {
			break
		}
		if chain.closedBy(band.Start) {
			bundled, err := r.bundle(chain)
			if err != nil {
				return graph.Child{}, nil, err
			}
			chain.reset(bundled)
		}
		chain.push(band)
		r.counters.Bands++
		rest = next
	}

	closed, err := r.bundle(chain)
	if err != nil {
		return graph.Child{}, nil, err
	}
	return closed.Index, rest, nil
}

// readNext returns the longest known index at the start of rest, or the
// first token when nothing longer is known.
func (r *Reader) readNext(rest graph.Pattern) (graph.Child, graph.Pattern, error) {
	if len(rest) == 1 {
		return rest[0], nil, nil
	}
	fs, err := r.searcher.FindAncestor(rest)
	if errors.Is(err, traversal.ErrNoMatchingParent) {
		r.counters.Fallback++
		return rest[0], rest[1:], nil
	}
	if err != nil {
		return graph.Child{}, nil, err
	}
	c, err := r.in.Materialize(fs)
	if err != nil {
		return graph.Child{}, nil, err
	}
	return c, fs.Remaining, nil
}

// expand looks for the widest postfix of last that starts a known index
// reaching past the end of last.
func (r *Reader) expand(last Band, rest graph.Pattern) (Band, graph.Pattern, bool, error) {
	for _, d := range traversal.EdgeDescendants(r.store, last.Index.ID, traversal.Left) {
		query := make(graph.Pattern, 0, len(rest)+1)
		query = append(query, d.Child)
		query = append(query, rest...)

		fs, err := r.searcher.FindAncestor(query)
		if err != nil {
			continue
		}
		if fs.Matched() <= d.Child.Width {
			continue
		}
		c, err := r.in.Materialize(fs)
		if err != nil {
			return Band{}, nil, false, err
		}
		start := last.End - d.Child.Width
		return Band{Index: c, Start: start, End: start + c.Width}, fs.Remaining, true, nil
	}
	return Band{}, nil, false, nil
}

// bundle turns the open bands into one band covering all of them. Each band
// contributes one pattern: the prefix of the first band before it, its
// index, and the postfix of the furthest band after it.
func (r *Reader) bundle(chain *OverlapChain) (Band, error) {
	bands := chain.Bands()
	if len(bands) == 1 {
		return bands[0], nil
	}
	first, last := bands[0], chain.Last()
	start, end := first.Start, last.End

	seqs := make([]graph.Pattern, 0, len(bands))
	for _, b := range bands {
		var seq graph.Pattern
		if n := b.Start - start; n > 0 {
			back, err := r.in.Prefix(first.Index, n)
			if err != nil {
				return Band{}, err
			}
			seq = append(seq, back)
		}
		seq = append(seq, b.Index)
		if n := end - b.End; n > 0 {
			front, err := r.in.Postfix(last.Index, n)
			if err != nil {
				return Band{}, err
			}
			seq = append(seq, front)
		}
		seqs = append(seqs, seq)
	}

	c, err := r.in.InsertPatterns(seqs)
	if err != nil {
		return Band{}, err
	}
	r.counters.Bundles++
	return Band{Index: c, Start: start, End: end}, nil
}

// appendIndex appends index to the running root. A root created by this
// reader with a single pattern and no parents is extended in place unless
// the extended content is already represented.
func (r *Reader) appendIndex(index graph.Child) {
	if r.root == nil {
		r.root = &index
		return
	}
	root := r.store.ExpectChild(r.root.ID)
	v := r.store.ExpectVertex(root.ID)

	if r.owned && len(v.Parents) == 0 && v.PatternCount() == 1 && index.ID != root.ID &&
		!r.store.IsDescendant(index.ID, root.ID) {
		pid, p, _ := v.FirstPattern()
		next := append(p.Clone(), index)
		if _, taken := r.store.FindContent(next); !taken {
			r.store.AppendToPattern(graph.PatternLocation{Vertex: v.ID, Pattern: pid}, graph.Pattern{index})
			r.counters.Appends++
			c := r.store.ExpectChild(v.ID)
			r.root = &c
			return
		}
	}

	c, created := r.store.InsertPatterns([]graph.Pattern{{root, index}})
	r.counters.Wrapped++
	r.root, r.owned = &c, created
}
