package graph

import (
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintArithmetic(t *testing.T) {
	mod := new(big.Int).SetUint64(fpMod)
	rng := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		a, b := rng.Uint64N(fpMod), rng.Uint64N(fpMod)
		want := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
		want.Mod(want, mod)
		require.Equal(t, want.Uint64(), fpMul(a, b), "%d * %d", a, b)
	}
	assert.Equal(t, uint64(1), fpPow(0))
	assert.Equal(t, fpBase, fpPow(1))
	assert.Equal(t, fpMul(fpPow(7), fpPow(5)), fpPow(12))
	assert.Equal(t, uint64(0), fpAdd(fpMod-1, 1))
}

func TestFingerprintFollowsContent(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b", "c")
	ab := s.InsertPattern(Pattern{l["a"], l["b"]})
	bc := s.InsertPattern(Pattern{l["b"], l["c"]})

	flat := s.fingerprint(Pattern{l["a"], l["b"], l["c"]})
	assert.Equal(t, flat, s.fingerprint(Pattern{ab, l["c"]}))
	assert.Equal(t, flat, s.fingerprint(Pattern{l["a"], bc}))
	assert.NotEqual(t, flat, s.fingerprint(Pattern{l["c"], ab}))

	assert.True(t, s.SameContent(Pattern{ab, l["c"]}, Pattern{l["a"], bc}))
	assert.False(t, s.SameContent(Pattern{ab, l["c"]}, Pattern{l["c"], ab}))
	assert.False(t, s.SameContent(Pattern{ab}, Pattern{l["a"], bc}))
}

func TestFindContent(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b", "c")
	ab := s.InsertPattern(Pattern{l["a"], l["b"]})
	abc := s.InsertPattern(Pattern{ab, l["c"]})

	c, ok := s.FindContent(Pattern{l["a"], l["b"], l["c"]})
	require.True(t, ok)
	assert.Equal(t, abc, c)
	c, ok = s.FindContent(Pattern{ab, l["c"]})
	require.True(t, ok)
	assert.Equal(t, abc, c)
	c, ok = s.FindContent(Pattern{l["b"]})
	require.True(t, ok)
	assert.Equal(t, l["b"], c)

	_, ok = s.FindContent(Pattern{l["b"], l["c"]})
	assert.False(t, ok)
	_, ok = s.FindContent(nil)
	assert.False(t, ok)
}

func TestInsertPatternReusesContentOwner(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b", "c")
	ab := s.InsertPattern(Pattern{l["a"], l["b"]})
	bc := s.InsertPattern(Pattern{l["b"], l["c"]})
	abc := s.InsertPattern(Pattern{ab, l["c"]})
	n := s.Len()

	flat, created := s.InsertPatterns([]Pattern{{l["a"], l["b"], l["c"]}})
	assert.False(t, created)
	assert.Equal(t, abc, flat)

	again := s.InsertPattern(Pattern{l["a"], bc})
	assert.Equal(t, abc, again)

	assert.Equal(t, n, s.Len())
	assert.Len(t, s.PatternSet(abc.ID), 3, "every decomposition lands on the one vertex")
	require.NoError(t, s.Validate())
}

func TestAddPatternRejectsOtherContent(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b", "c")
	ab := s.InsertPattern(Pattern{l["a"], l["b"]})
	abc := s.InsertPattern(Pattern{ab, l["c"]})

	assert.Panics(t, func() { s.AddPattern(abc.ID, Pattern{l["c"], ab}) })
	pid, _, _ := s.ExpectVertex(abc.ID).FirstPattern()
	assert.Panics(t, func() {
		s.ReplaceInPattern(PatternLocation{Vertex: abc.ID, Pattern: pid}, 0, 2, Pattern{l["c"], l["a"], l["b"]})
	})
	require.NoError(t, s.Validate())
}

func TestAppendToPatternKeepsContentUnique(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b", "c")
	ab := s.InsertPattern(Pattern{l["a"], l["b"]})
	bc := s.InsertPattern(Pattern{l["b"], l["c"]})
	s.InsertPattern(Pattern{l["a"], bc})
	pid, _, _ := s.ExpectVertex(ab.ID).FirstPattern()

	assert.Panics(t, func() {
		s.AppendToPattern(PatternLocation{Vertex: ab.ID, Pattern: pid}, Pattern{l["c"]})
	})

	s.AppendToPattern(PatternLocation{Vertex: ab.ID, Pattern: pid}, Pattern{l["a"]})
	c, ok := s.FindContent(Pattern{l["a"], l["b"], l["a"]})
	require.True(t, ok)
	assert.Equal(t, ab.ID, c.ID)
	_, ok = s.FindContent(Pattern{l["a"], l["b"]})
	assert.False(t, ok, "the old content is no longer indexed")
	require.NoError(t, s.Validate())
}

func TestValidateDetectsSharedContent(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b")
	s.InsertPattern(Pattern{l["a"], l["b"]})
	require.NoError(t, s.Validate())

	dup := s.newVertex(2)
	dup.fp = s.fingerprint(Pattern{l["a"], l["b"]})
	s.indexContent(dup)
	s.linkPattern(dup, s.nextPattern, Pattern{l["a"], l["b"]})
	s.nextPattern++

	err := s.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidGraph)
	assert.Contains(t, err.Error(), "duplicate content")
}

func TestLoadRejectsDuplicateContent(t *testing.T) {
	records := []VertexRecord{
		{ID: 0, Width: 1, Token: "a"},
		{ID: 1, Width: 1, Token: "b"},
		{ID: 2, Width: 2, Patterns: []PatternRecord{{ID: 0, Children: []VertexID{0, 1}}}},
		{ID: 3, Width: 2, Patterns: []PatternRecord{{ID: 1, Children: []VertexID{0, 1}}}},
	}
	_, err := Load(records, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidGraph)
}

func TestCloneCopiesContentIndex(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b", "c")
	abc := s.InsertPattern(Pattern{l["a"], l["b"], l["c"]})

	c := s.Clone()
	ab := c.InsertPattern(Pattern{l["a"], l["b"]})
	got := c.InsertPattern(Pattern{ab, l["c"]})
	assert.Equal(t, abc, got)
	require.NoError(t, c.Validate())

	_, ok := s.FindContent(Pattern{l["a"], l["b"]})
	assert.False(t, ok)
}
