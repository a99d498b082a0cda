package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaves(s *Store, tokens ...string) map[string]Child {
	out := make(map[string]Child, len(tokens))
	for _, t := range tokens {
		out[t] = s.InsertToken(t)
	}
	return out
}

func TestInsertTokenDedup(t *testing.T) {
	s := New()
	a := s.InsertToken("a")
	b := s.InsertToken("b")
	again := s.InsertToken("a")

	assert.Equal(t, a, again)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 1, a.Width)
	assert.Equal(t, 2, s.Len())

	leaf, ok := s.Leaf("b")
	require.True(t, ok)
	assert.Equal(t, b, leaf)
	_, ok = s.Leaf("z")
	assert.False(t, ok)
}

func TestInsertPattern(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b", "c")

	ab := s.InsertPattern(Pattern{l["a"], l["b"]})
	assert.Equal(t, 2, ab.Width)
	assert.Equal(t, ab, s.InsertPattern(Pattern{l["a"], l["b"]}), "exact pattern is reused")
	assert.Equal(t, l["c"], s.InsertPattern(Pattern{l["c"]}), "single element is returned as is")

	abc := s.InsertPattern(Pattern{ab, l["c"]})
	assert.Equal(t, 3, abc.Width)

	v := s.ExpectVertex(ab.ID)
	require.Contains(t, v.Parents, abc.ID)
	assert.Equal(t, 3, v.Parents[abc.ID].Width)
	assert.Equal(t, []string{"a", "b", "c"}, s.Content(abc.ID))
	assert.Equal(t, "abc", s.Label(abc.ID))
	require.NoError(t, s.Validate())
}

func TestInsertPatternsUnion(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b", "c")
	ab := s.InsertPattern(Pattern{l["a"], l["b"]})
	bc := s.InsertPattern(Pattern{l["b"], l["c"]})

	abc, created := s.InsertPatterns([]Pattern{{ab, l["c"]}, {l["a"], bc}, {ab, l["c"]}})
	require.True(t, created)
	assert.Len(t, s.PatternSet(abc.ID), 2)

	again, created := s.InsertPatterns([]Pattern{{l["a"], bc}})
	assert.False(t, created)
	assert.Equal(t, abc, again)

	abc2, created := s.InsertPatterns([]Pattern{{l["a"], l["b"], l["c"]}, {ab, l["c"]}})
	assert.False(t, created)
	assert.Equal(t, abc, abc2)
	assert.Len(t, s.PatternSet(abc.ID), 3, "missing alternative is added to the existing owner")

	single, created := s.InsertPatterns([]Pattern{{ab}, {l["a"], l["b"]}})
	assert.False(t, created)
	assert.Equal(t, ab, single)
	require.NoError(t, s.Validate())
}

func TestInsertPatternsWidthMismatchPanics(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b", "c")
	assert.Panics(t, func() {
		s.InsertPatterns([]Pattern{{l["a"], l["b"]}, {l["a"], l["b"], l["c"]}})
	})
}

func TestReplaceInPattern(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b", "c", "d")
	abcd := s.InsertPattern(Pattern{l["a"], l["b"], l["c"], l["d"]})
	bc := s.InsertPattern(Pattern{l["b"], l["c"]})

	v := s.ExpectVertex(abcd.ID)
	pid, _, ok := v.FirstPattern()
	require.True(t, ok)

	s.ReplaceInPattern(PatternLocation{Vertex: abcd.ID, Pattern: pid}, 1, 3, Pattern{bc})

	assert.Equal(t, Pattern{l["a"], bc, l["d"]}, v.Children[pid])
	assert.NotContains(t, s.ExpectVertex(l["b"].ID).Parents, abcd.ID)
	assert.NotContains(t, s.ExpectVertex(l["c"].ID).Parents, abcd.ID)
	require.Contains(t, s.ExpectVertex(l["d"].ID).Parents, abcd.ID)
	assert.Equal(t, []int{2}, s.ExpectVertex(l["d"].ID).Parents[abcd.ID].Patterns[pid])
	assert.Equal(t, []int{1}, s.ExpectVertex(bc.ID).Parents[abcd.ID].Patterns[pid])

	loc, ok := s.FindPatternOwner(Pattern{l["a"], bc, l["d"]})
	require.True(t, ok)
	assert.Equal(t, abcd.ID, loc.Vertex)
	_, ok = s.FindPatternOwner(Pattern{l["a"], l["b"], l["c"], l["d"]})
	assert.False(t, ok)
	require.NoError(t, s.Validate())
}

func TestReplaceInPatternCollapsesDuplicate(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b", "c")
	bc := s.InsertPattern(Pattern{l["b"], l["c"]})
	abc, _ := s.InsertPatterns([]Pattern{{l["a"], l["b"], l["c"]}, {l["a"], bc}})

	v := s.ExpectVertex(abc.ID)
	pid, ok := v.FindPattern(Pattern{l["a"], l["b"], l["c"]})
	require.True(t, ok)
	s.ReplaceInPattern(PatternLocation{Vertex: abc.ID, Pattern: pid}, 1, 3, Pattern{bc})

	assert.Equal(t, 1, v.PatternCount())
	require.NoError(t, s.Validate())
}

func TestReplaceInPatternInvalid(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b", "c")
	abc := s.InsertPattern(Pattern{l["a"], l["b"], l["c"]})
	pid, _, _ := s.ExpectVertex(abc.ID).FirstPattern()
	loc := PatternLocation{Vertex: abc.ID, Pattern: pid}

	assert.Panics(t, func() { s.ReplaceInPattern(loc, 0, 4, Pattern{abc}) })
	assert.Panics(t, func() { s.ReplaceInPattern(loc, 0, 2, Pattern{l["a"]}) })
	assert.Panics(t, func() { s.ReplaceInPattern(PatternLocation{Vertex: abc.ID, Pattern: 99}, 0, 1, Pattern{l["a"]}) })

	var ie *InvariantError
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r)
			err, ok := r.(error)
			require.True(t, ok)
			assert.True(t, errors.As(err, &ie))
		}()
		s.ExpectVertex(1000)
	}()
	assert.Equal(t, "expect_vertex", ie.Op)
}

func TestAppendToPattern(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b", "c")
	ab := s.InsertPattern(Pattern{l["a"], l["b"]})
	pid, _, _ := s.ExpectVertex(ab.ID).FirstPattern()

	s.AppendToPattern(PatternLocation{Vertex: ab.ID, Pattern: pid}, Pattern{l["c"]})

	v := s.ExpectVertex(ab.ID)
	assert.Equal(t, 3, v.Width)
	assert.Equal(t, "abc", s.Label(ab.ID))
	require.NoError(t, s.Validate())

	abcab := s.InsertPattern(Pattern{v.Child(), l["a"]})
	assert.Panics(t, func() {
		s.AppendToPattern(PatternLocation{Vertex: ab.ID, Pattern: pid}, Pattern{l["a"]})
	}, "vertex with parents cannot grow")
	_ = abcab
}

func TestAddPattern(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b", "c")
	abc := s.InsertPattern(Pattern{l["a"], l["b"], l["c"]})
	ab := s.InsertPattern(Pattern{l["a"], l["b"]})

	pid := s.AddPattern(abc.ID, Pattern{ab, l["c"]})
	assert.Equal(t, pid, s.AddPattern(abc.ID, Pattern{ab, l["c"]}))
	assert.Len(t, s.PatternSet(abc.ID), 2)
	assert.Panics(t, func() { s.AddPattern(abc.ID, Pattern{ab}) })
	assert.Panics(t, func() { s.AddPattern(abc.ID, Pattern{ab, ab}) })
	require.NoError(t, s.Validate())
}

func TestIsDescendantAndRoots(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b", "c")
	ab := s.InsertPattern(Pattern{l["a"], l["b"]})
	abc := s.InsertPattern(Pattern{ab, l["c"]})

	assert.True(t, s.IsDescendant(abc.ID, l["a"].ID))
	assert.True(t, s.IsDescendant(abc.ID, ab.ID))
	assert.False(t, s.IsDescendant(ab.ID, abc.ID))
	assert.False(t, s.IsDescendant(ab.ID, l["c"].ID))
	assert.False(t, s.IsDescendant(ab.ID, ab.ID))

	roots := s.Roots()
	assert.True(t, roots.Contains(uint32(abc.ID)))
	assert.False(t, roots.Contains(uint32(ab.ID)))
	assert.Equal(t, uint64(3), s.Leaves().GetCardinality())
}

func TestExportLoad(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b", "c")
	ab := s.InsertPattern(Pattern{l["a"], l["b"]})
	bc := s.InsertPattern(Pattern{l["b"], l["c"]})
	abc, _ := s.InsertPatterns([]Pattern{{ab, l["c"]}, {l["a"], bc}})

	records, next := s.Export()
	loaded, err := Load(records, next)
	require.NoError(t, err)

	assert.Equal(t, s.Stats(), loaded.Stats())
	assert.Equal(t, s.PatternSet(abc.ID), loaded.PatternSet(abc.ID))
	leaf, ok := loaded.Leaf("b")
	require.True(t, ok)
	assert.Equal(t, l["b"], leaf)

	x := loaded.InsertPattern(Pattern{abc, l["a"]})
	assert.Equal(t, VertexID(len(records)), x.ID)
}

func TestLoadRejectsCorruptRecords(t *testing.T) {
	_, err := Load([]VertexRecord{{ID: 0, Width: 1, Token: "a"}, {ID: 1, Width: 2, Patterns: []PatternRecord{{ID: 0, Children: []VertexID{0}}}}}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidGraph)

	_, err = Load([]VertexRecord{{ID: 0, Width: 1, Token: "a"}, {ID: 1, Width: 2, Patterns: []PatternRecord{{ID: 0, Children: []VertexID{0, 7}}}}}, 1)
	assert.ErrorIs(t, err, ErrInvalidGraph)
}

func TestCloneIsIndependent(t *testing.T) {
	s := New()
	l := leaves(s, "a", "b")
	s.InsertPattern(Pattern{l["a"], l["b"]})

	c := s.Clone()
	c.InsertPattern(Pattern{l["b"], l["a"]})

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 4, c.Len())
	require.NoError(t, c.Validate())
}
