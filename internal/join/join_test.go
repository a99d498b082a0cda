package join

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqgraph/graph"
	"github.com/hupe1980/seqgraph/internal/split"
	"github.com/hupe1980/seqgraph/internal/traversal"
	"github.com/hupe1980/seqgraph/testutil"
)

func buildInterval(t *testing.T, s *graph.Store, root graph.Child, start, end int) *split.Cache {
	t.Helper()
	ii, err := split.NewInterval(root, start, end)
	require.NoError(t, err)
	c, err := split.Build(s, ii)
	require.NoError(t, err)
	return c
}

func TestJoinHeldldWrapsPrefix(t *testing.T) {
	fx := testutil.NewHeldld()
	res, err := traversal.NewSearcher(fx.Store).FindAncestor(graph.Pattern{fx.H, fx.E, fx.L, fx.L})
	require.NoError(t, err)
	ii, err := split.FromFinished(res)
	require.NoError(t, err)
	c, err := split.Build(fx.Store, ii)
	require.NoError(t, err)

	target, stats := Join(fx.Store, c)
	assert.Equal(t, "hel", fx.Store.Label(target.ID))
	assert.Equal(t, 3, target.Width)
	assert.Equal(t, []string{"h|e|l"}, testutil.PatternLabels(fx.Store, target.ID))

	held, ok := testutil.FindLabel(fx.Store, "held")
	require.True(t, ok)
	assert.Equal(t, []string{"h|e|ld", "hel|d"}, testutil.PatternLabels(fx.Store, held.ID))
	assert.Equal(t, []string{"held|ld"}, testutil.PatternLabels(fx.Store, fx.HELDLD.ID))

	assert.Equal(t, 2, stats.Created)
	assert.Equal(t, 1, stats.Wrappers)
	require.NoError(t, fx.Store.Validate())
}

func TestJoinReusesVertexWithSameContent(t *testing.T) {
	fx := testutil.NewHeldld()
	el := fx.Store.InsertPattern(graph.Pattern{fx.E, fx.L})
	hel := fx.Store.InsertPattern(graph.Pattern{fx.H, el})
	n := fx.Store.Len()

	c := buildInterval(t, fx.Store, fx.HELDLD, 0, 3)
	target, stats := Join(fx.Store, c)
	assert.Equal(t, hel, target)
	assert.Equal(t, []string{"h|e|l", "h|el"}, testutil.PatternLabels(fx.Store, hel.ID))
	assert.Equal(t, 1, stats.Reused)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, n+1, fx.Store.Len(), "only the wrapper is new")

	held, ok := testutil.FindLabel(fx.Store, "held")
	require.True(t, ok)
	assert.Equal(t, []string{"h|e|ld", "hel|d"}, testutil.PatternLabels(fx.Store, held.ID))
	assert.Empty(t, testutil.DuplicateLabels(fx.Store))
	require.NoError(t, fx.Store.Validate())
}

func TestJoinXabyzPostfix(t *testing.T) {
	fx := testutil.NewXabyz()
	c := buildInterval(t, fx.Store, fx.XABYZ, 2, 5)

	target, _ := Join(fx.Store, c)
	assert.Equal(t, "byz", fx.Store.Label(target.ID))
	assert.Equal(t, []string{"b|yz", "by|z"}, testutil.PatternLabels(fx.Store, target.ID))
	assert.Equal(t, []string{"xa|byz", "xab|yz", "xaby|z"}, testutil.PatternLabels(fx.Store, fx.XABYZ.ID))

	// inner vertices already had their partitions as patterns
	assert.Equal(t, []string{"x|ab", "xa|b"}, testutil.PatternLabels(fx.Store, fx.XAB.ID))
	assert.Equal(t, []string{"xa|by", "xab|y"}, testutil.PatternLabels(fx.Store, fx.XABY.ID))
	require.NoError(t, fx.Store.Validate())

	res, err := traversal.NewSearcher(fx.Store).FindAncestor(graph.Pattern{fx.B, fx.Y, fx.Z})
	require.NoError(t, err)
	assert.True(t, res.IsComplete())
	assert.Equal(t, target, res.Root)
}

func TestJoinXabyPostfix(t *testing.T) {
	fx := testutil.NewXabyz()
	c := buildInterval(t, fx.Store, fx.XABY, 1, 4)

	target, _ := Join(fx.Store, c)
	assert.Equal(t, "aby", fx.Store.Label(target.ID))
	assert.Equal(t, []string{"a|by", "ab|y"}, testutil.PatternLabels(fx.Store, target.ID))
	assert.Equal(t, []string{"x|aby", "xa|by", "xab|y"}, testutil.PatternLabels(fx.Store, fx.XABY.ID))
	require.NoError(t, fx.Store.Validate())
}

func TestJoinInfix(t *testing.T) {
	fx := testutil.NewXabyz()
	before := fx.Store.Content(fx.XABYZ.ID)
	c := buildInterval(t, fx.Store, fx.XABYZ, 1, 4)

	target, stats := Join(fx.Store, c)
	assert.Equal(t, "aby", fx.Store.Label(target.ID))
	assert.Equal(t, 3, target.Width)
	assert.Positive(t, stats.Partitions)
	assert.Equal(t, before, fx.Store.Content(fx.XABYZ.ID))
	assert.True(t, fx.Store.IsDescendant(target.ID, fx.XABYZ.ID))
	require.NoError(t, fx.Store.Validate())
}

func TestJoinAllSplitsRoot(t *testing.T) {
	fx := testutil.NewXabyz()
	c := buildInterval(t, fx.Store, fx.XABYZ, 0, 2)

	parts, _ := JoinAll(fx.Store, c)
	require.Len(t, parts, 2)
	assert.Equal(t, fx.XA, parts[0])
	assert.Equal(t, "byz", fx.Store.Label(parts[1].ID))
	assert.Contains(t, testutil.PatternLabels(fx.Store, fx.XABYZ.ID), "xa|byz")
	require.NoError(t, fx.Store.Validate())
}

func TestJoinIsDeterministic(t *testing.T) {
	run := func() []string {
		fx := testutil.NewXabyz()
		c := buildInterval(t, fx.Store, fx.XABYZ, 1, 4)
		Join(fx.Store, c)
		return testutil.Canonical(fx.Store)
	}
	assert.Equal(t, run(), run())
}
