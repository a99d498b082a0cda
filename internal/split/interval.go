package split

import (
	"errors"
	"fmt"

	"github.com/hupe1980/seqgraph/graph"
	"github.com/hupe1980/seqgraph/internal/trace"
	"github.com/hupe1980/seqgraph/internal/traversal"
)

var (
	// ErrCompleteInterval is returned for an interval covering its whole
	// root; there is nothing to split.
	ErrCompleteInterval = errors.New("interval covers the whole root")

	// ErrInvalidInterval is returned for an interval outside its root.
	ErrInvalidInterval = errors.New("invalid interval")
)

// InitInterval is the input of the split-cache builder.
type InitInterval struct {
	Root     graph.Child
	Cache    *trace.Cache
	EndBound int
}

// FromFinished converts a partial traversal result into an interval.
func FromFinished(fs *traversal.FinishedState) (InitInterval, error) {
	if fs.IsComplete() {
		return InitInterval{}, ErrCompleteInterval
	}
	return InitInterval{Root: fs.Root, Cache: fs.Cache, EndBound: fs.EndBound()}, nil
}

// NewInterval synthesizes the interval [start, end) of root.
func NewInterval(root graph.Child, start, end int) (InitInterval, error) {
	if start < 0 || end > root.Width || start >= end {
		return InitInterval{}, fmt.Errorf("%w: [%d,%d) of width %d", ErrInvalidInterval, start, end, root.Width)
	}
	if start == 0 && end == root.Width {
		return InitInterval{}, ErrCompleteInterval
	}
	return InitInterval{Root: root, Cache: trace.Synthesize(root, start, end), EndBound: end - start}, nil
}

// Start returns the match start inside the root.
func (ii InitInterval) Start() int {
	if ii.Cache == nil {
		return 0
	}
	s, _ := ii.Cache.RootStart()
	return s
}

// End returns the match end inside the root.
func (ii InitInterval) End() int {
	return ii.Start() + ii.EndBound
}

// Mode derives the root mode and the offsets to expose in the root.
func (ii InitInterval) Mode() (RootMode, []int, error) {
	start, end, w := ii.Start(), ii.End(), ii.Root.Width
	switch {
	case start < 0 || end > w || start >= end:
		return 0, nil, fmt.Errorf("%w: [%d,%d) of width %d", ErrInvalidInterval, start, end, w)
	case start == 0 && end == w:
		return 0, nil, ErrCompleteInterval
	case start == 0:
		return Prefix, []int{end}, nil
	case end == w:
		return Postfix, []int{start}, nil
	default:
		return Infix, []int{start, end}, nil
	}
}
