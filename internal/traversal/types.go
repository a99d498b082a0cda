// Package traversal aligns a query sequence with the existing graph.
//
// The search climbs from the query's first element through parent vertices
// (narrowest container first) and, inside each candidate root, compares the
// root's pattern with the rest of the query, decomposing whichever side is
// wider. The longest alignment is returned as a FinishedState together with a
// trace cache of the visited positions.
package traversal

import (
	"fmt"

	"github.com/hupe1980/seqgraph/graph"
	"github.com/hupe1980/seqgraph/internal/trace"
)

// Kind classifies where the matched region lies inside the root.
type Kind uint8

const (
	// Complete means the match covers the whole root.
	Complete Kind = iota
	// Prefix means the match starts at the root's start and ends inside it.
	Prefix
	// Postfix means the match starts inside the root and ends at its end.
	Postfix
	// Range means the match lies strictly inside the root.
	Range
)

func (k Kind) String() string {
	switch k {
	case Complete:
		return "complete"
	case Prefix:
		return "prefix"
	case Postfix:
		return "postfix"
	case Range:
		return "range"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// KindOf classifies the region [start, end) of a vertex of the given width.
func KindOf(start, end, width int) Kind {
	switch {
	case start == 0 && end == width:
		return Complete
	case start == 0:
		return Prefix
	case end == width:
		return Postfix
	default:
		return Range
	}
}

// Reason tells why the search stopped.
type Reason uint8

const (
	// QueryEnd means the whole query was matched.
	QueryEnd Reason = iota
	// Mismatch means the query diverged from the graph or no wider
	// container continued the match.
	Mismatch
)

func (r Reason) String() string {
	if r == QueryEnd {
		return "query_end"
	}
	return "mismatch"
}

// FinishedState is the result of a search.
type FinishedState struct {
	Kind   Kind
	Reason Reason
	// Root is the vertex containing the match.
	Root graph.Child
	// Start and End delimit the matched region inside Root.
	Start, End int
	// Query is the searched sequence.
	Query graph.Pattern
	// Remaining is the unmatched rest of the query.
	Remaining graph.Pattern
	// Cache traces the positions of the winning alignment.
	Cache *trace.Cache
}

// Matched returns the width of the matched region.
func (f *FinishedState) Matched() int { return f.End - f.Start }

// EndBound returns the matched query width.
func (f *FinishedState) EndBound() int { return f.Matched() }

// IsComplete reports whether the whole root was matched.
func (f *FinishedState) IsComplete() bool { return f.Kind == Complete }

// QueryExhausted reports whether nothing of the query is left.
func (f *FinishedState) QueryExhausted() bool { return f.Reason == QueryEnd }

func (f *FinishedState) String() string {
	return fmt.Sprintf("%s(%s) root=%v [%d,%d) rest=%v", f.Kind, f.Reason, f.Root, f.Start, f.End, f.Remaining)
}
