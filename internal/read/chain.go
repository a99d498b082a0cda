package read

import (
	"fmt"
	"slices"

	"github.com/hupe1980/seqgraph/graph"
)

// Band is an index placed at [Start, End) relative to the start of the
// current block.
type Band struct {
	Index graph.Child
	Start int
	End   int
}

func (b Band) String() string {
	return fmt.Sprintf("%v@[%d,%d)", b.Index, b.Start, b.End)
}

// OverlapChain holds the open bands of a block ordered by start.
type OverlapChain struct {
	bands []Band
}

func newChain(first Band) *OverlapChain {
	return &OverlapChain{bands: []Band{first}}
}

// Len returns the number of open bands.
func (c *OverlapChain) Len() int { return len(c.bands) }

// Bands returns a copy of the open bands.
func (c *OverlapChain) Bands() []Band { return slices.Clone(c.bands) }

// Start returns the start of the first band.
func (c *OverlapChain) Start() int { return c.bands[0].Start }

// End returns the largest end of all open bands.
func (c *OverlapChain) End() int { return c.Last().End }

// Last returns the band reaching furthest.
func (c *OverlapChain) Last() Band {
	last := c.bands[0]
	for _, b := range c.bands[1:] {
		if b.End > last.End {
			last = b
		}
	}
	return last
}

// closedBy reports whether some open band ends at or before start.
func (c *OverlapChain) closedBy(start int) bool {
	for _, b := range c.bands {
		if b.End <= start {
			return true
		}
	}
	return false
}

func (c *OverlapChain) push(b Band) {
	i, _ := slices.BinarySearchFunc(c.bands, b, func(x, y Band) int {
		if x.Start != y.Start {
			return x.Start - y.Start
		}
		return x.End - y.End
	})
	c.bands = slices.Insert(c.bands, i, b)
}

func (c *OverlapChain) reset(b Band) {
	c.bands = append(c.bands[:0], b)
}
