package traversal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqgraph/graph"
	"github.com/hupe1980/seqgraph/internal/trace"
	"github.com/hupe1980/seqgraph/testutil"
)

func firstPattern(t *testing.T, s *graph.Store, id graph.VertexID) graph.PatternID {
	t.Helper()
	pid, _, ok := s.ExpectVertex(id).FirstPattern()
	require.True(t, ok)
	return pid
}

func TestFindAncestorQueryErrors(t *testing.T) {
	fx := testutil.NewXabyz()
	s := NewSearcher(fx.Store)

	_, err := s.FindAncestor(nil)
	assert.ErrorIs(t, err, ErrEmptyPatterns)

	_, err = s.FindAncestor(graph.Pattern{fx.AB})
	child, ok := AsSingleIndex(err)
	require.True(t, ok)
	assert.Equal(t, fx.AB, child)

	_, err = s.FindAncestor(graph.Pattern{fx.Z, fx.X})
	assert.ErrorIs(t, err, ErrNoMatchingParent)
}

func TestFindAncestorComplete(t *testing.T) {
	fx := testutil.NewXabyz()
	s := NewSearcher(fx.Store)

	res, err := s.FindAncestor(graph.Pattern{fx.A, fx.B})
	require.NoError(t, err)
	assert.Equal(t, Complete, res.Kind)
	assert.Equal(t, QueryEnd, res.Reason)
	assert.Equal(t, fx.AB, res.Root)

	res, err = s.FindAncestor(graph.Pattern{fx.XAB, fx.YZ})
	require.NoError(t, err)
	assert.True(t, res.IsComplete())
	assert.Equal(t, fx.XABYZ, res.Root)
	assert.Empty(t, res.Remaining)

	res, err = s.FindAncestor(graph.Pattern{fx.X, fx.A, fx.B, fx.Y, fx.Z})
	require.NoError(t, err)
	assert.True(t, res.IsComplete())
	assert.Equal(t, fx.XABYZ, res.Root)
	assert.Equal(t, 5, res.EndBound())
}

func TestFindAncestorPostfix(t *testing.T) {
	fx := testutil.NewXabyz()
	s := NewSearcher(fx.Store)

	res, err := s.FindAncestor(graph.Pattern{fx.BY, fx.Z})
	require.NoError(t, err)
	assert.Equal(t, Postfix, res.Kind)
	assert.Equal(t, QueryEnd, res.Reason)
	assert.Equal(t, fx.XABYZ, res.Root)
	assert.Equal(t, 2, res.Start)
	assert.Equal(t, 5, res.End)

	start, ok := res.Cache.RootStart()
	require.True(t, ok)
	assert.Equal(t, 2, start)
	end, ok := res.Cache.RootEnd()
	require.True(t, ok)
	assert.Equal(t, 5, end)

	res, err = s.FindAncestor(graph.Pattern{fx.AB, fx.Y})
	require.NoError(t, err)
	assert.Equal(t, Postfix, res.Kind)
	assert.Equal(t, fx.XABY, res.Root)
	assert.Equal(t, 1, res.Start)
	assert.Equal(t, 4, res.End)
}

func TestFindAncestorRange(t *testing.T) {
	fx := testutil.NewHeldld()
	s := NewSearcher(fx.Store)

	res, err := s.FindAncestor(graph.Pattern{fx.E, fx.L})
	require.NoError(t, err)
	assert.Equal(t, Range, res.Kind)
	assert.Equal(t, fx.HELDLD, res.Root)
	assert.Equal(t, 1, res.Start)
	assert.Equal(t, 3, res.End)
}

func TestFindAncestorHeldldTrace(t *testing.T) {
	fx := testutil.NewHeldld()
	s := NewSearcher(fx.Store)

	res, err := s.FindAncestor(graph.Pattern{fx.H, fx.E, fx.L, fx.L})
	require.NoError(t, err)
	assert.Equal(t, Prefix, res.Kind)
	assert.Equal(t, Mismatch, res.Reason)
	assert.Equal(t, fx.HELDLD, res.Root)
	assert.Equal(t, 3, res.EndBound())
	assert.Equal(t, graph.Pattern{fx.L}, res.Remaining)

	heldldPID := firstPattern(t, fx.Store, fx.HELDLD.ID)
	ldPID := firstPattern(t, fx.Store, fx.LD.ID)

	c := res.Cache
	assert.Equal(t, fx.HELDLD, c.Root)
	assert.ElementsMatch(t, []graph.VertexID{fx.H.ID, fx.L.ID, fx.LD.ID, fx.HELDLD.ID}, c.Vertices())

	root, ok := c.Entry(fx.HELDLD.ID)
	require.True(t, ok)
	assert.Equal(t, []int{0}, root.BottomUpOffsets())
	assert.Equal(t, []trace.Edge{{Sub: graph.SubLocation{Pattern: heldldPID, Index: 0}, Child: fx.H.ID}}, root.BottomUp[0].Edges)
	assert.Equal(t, []int{3}, root.TopDownOffsets())
	assert.Equal(t, []trace.Edge{{Sub: graph.SubLocation{Pattern: heldldPID, Index: 2}, Child: fx.LD.ID}}, root.TopDown[3].Edges)

	ld, ok := c.Entry(fx.LD.ID)
	require.True(t, ok)
	assert.Empty(t, ld.BottomUp)
	assert.Equal(t, []int{1}, ld.TopDownOffsets())
	assert.Equal(t, []trace.Edge{{Sub: graph.SubLocation{Pattern: ldPID, Index: 0}, Child: fx.L.ID}}, ld.TopDown[1].Edges)

	h, ok := c.Entry(fx.H.ID)
	require.True(t, ok)
	assert.Equal(t, []int{0}, h.BottomUpOffsets())
	assert.Empty(t, h.BottomUp[0].Edges)
	assert.Empty(t, h.TopDown)

	l, ok := c.Entry(fx.L.ID)
	require.True(t, ok)
	assert.Empty(t, l.BottomUp)
	assert.Equal(t, []int{1}, l.TopDownOffsets())
	assert.Empty(t, l.TopDown[1].Edges)
}

func TestFindAncestorIsDeterministic(t *testing.T) {
	a := testutil.NewXabyz()
	b := testutil.NewXabyz()

	ra, err := NewSearcher(a.Store).FindAncestor(graph.Pattern{a.BY, a.Z})
	require.NoError(t, err)
	rb, err := NewSearcher(b.Store).FindAncestor(graph.Pattern{b.BY, b.Z})
	require.NoError(t, err)
	assert.Equal(t, ra.Cache.String(), rb.Cache.String())
}

func TestFindParent(t *testing.T) {
	fx := testutil.NewHeldld()
	s := NewSearcher(fx.Store)

	res, err := s.FindParent(graph.Pattern{fx.H, fx.E})
	require.NoError(t, err)
	assert.Equal(t, Prefix, res.Kind)
	assert.Equal(t, fx.HELDLD, res.Root)
	assert.Equal(t, 2, res.End)

	_, err = s.FindParent(graph.Pattern{fx.E, fx.L, fx.L})
	assert.ErrorIs(t, err, ErrMismatch)

	_, err = s.FindParent(graph.Pattern{fx.D, fx.H})
	assert.ErrorIs(t, err, ErrNoMatchingParent)

	_, err = s.FindParent(graph.Pattern{fx.D})
	_, ok := AsSingleIndex(err)
	assert.True(t, ok)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Complete, KindOf(0, 4, 4))
	assert.Equal(t, Prefix, KindOf(0, 3, 4))
	assert.Equal(t, Postfix, KindOf(1, 4, 4))
	assert.Equal(t, Range, KindOf(1, 3, 4))
	assert.Equal(t, "range", Range.String())
	assert.Equal(t, "query_end", QueryEnd.String())
}
