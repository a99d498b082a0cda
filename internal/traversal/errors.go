package traversal

import (
	"errors"
	"fmt"

	"github.com/hupe1980/seqgraph/graph"
)

var (
	// ErrEmptyPatterns is returned for an empty query.
	ErrEmptyPatterns = errors.New("empty patterns")

	// ErrNoMatchingParent is returned when no container extends the match
	// beyond the query's first element.
	ErrNoMatchingParent = errors.New("no matching parent")

	// ErrMismatch is returned by FindParent when a direct parent matched
	// only part of the query.
	ErrMismatch = errors.New("mismatch")
)

// ErrSingleIndex is returned when the query is a single known element.
type ErrSingleIndex struct {
	Child graph.Child
}

func (e *ErrSingleIndex) Error() string {
	return fmt.Sprintf("single index %v", e.Child)
}

// AsSingleIndex extracts the element of an ErrSingleIndex.
func AsSingleIndex(err error) (graph.Child, bool) {
	var si *ErrSingleIndex
	if errors.As(err, &si) {
		return si.Child, true
	}
	return graph.Child{}, false
}
