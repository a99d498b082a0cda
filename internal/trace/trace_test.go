package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqgraph/graph"
)

func TestSynthesize(t *testing.T) {
	root := graph.Child{ID: 7, Width: 5}
	c := Synthesize(root, 1, 4)

	start, ok := c.RootStart()
	require.True(t, ok)
	assert.Equal(t, 1, start)
	end, ok := c.RootEnd()
	require.True(t, ok)
	assert.Equal(t, 4, end)
	assert.Equal(t, 1, c.Len())
}

func TestEdgesAreSortedAndDeduplicated(t *testing.T) {
	c := New()
	v := graph.Child{ID: 3, Width: 4}
	c.AddTopDown(v, 2, &Edge{Sub: graph.SubLocation{Pattern: 2, Index: 1}, Child: 9})
	c.AddTopDown(v, 2, &Edge{Sub: graph.SubLocation{Pattern: 1, Index: 0}, Child: 8})
	c.AddTopDown(v, 2, &Edge{Sub: graph.SubLocation{Pattern: 2, Index: 1}, Child: 9})

	vc, ok := c.Entry(3)
	require.True(t, ok)
	require.Len(t, vc.TopDown[2].Edges, 2)
	assert.Equal(t, graph.PatternID(1), vc.TopDown[2].Edges[0].Sub.Pattern)
	assert.Empty(t, vc.BottomUp)
}

func TestMissingRoot(t *testing.T) {
	c := New()
	_, ok := c.RootStart()
	assert.False(t, ok)
	_, ok = c.RootEnd()
	assert.False(t, ok)
	assert.Equal(t, "", c.String())
}
