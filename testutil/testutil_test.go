package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqgraph/graph"
)

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"h", "é", "l"}, Tokens("hél"))

	rng := NewRNG(4711)
	a := rng.Tokens(32, "ab")
	assert.Len(t, a, 32)
	for _, tok := range a {
		assert.Contains(t, []string{"a", "b"}, tok)
	}

	rng.Reset()
	assert.Equal(t, a, rng.Tokens(32, "ab"), "reset replays the stream")
}

func TestZipfTokensSkew(t *testing.T) {
	rng := NewRNG(7)
	counts := map[string]int{}
	for _, tok := range rng.ZipfTokens(2000, "abcdefgh", 1.5) {
		counts[tok]++
	}
	assert.Greater(t, counts["a"], counts["h"])
}

func TestFixtures(t *testing.T) {
	x := NewXabyz()
	require.NoError(t, x.Store.Validate())
	assert.Equal(t, 5, x.XABYZ.Width)
	assert.Equal(t, []string{"xab|yz", "xaby|z"}, PatternLabels(x.Store, x.XABYZ.ID))

	h := NewHeldld()
	require.NoError(t, h.Store.Validate())
	assert.Equal(t, "heldld", h.Store.Label(h.HELDLD.ID))

	c, ok := FindLabel(h.Store, "ld")
	require.True(t, ok)
	assert.Equal(t, h.LD, c)
}

func TestCanonicalIgnoresIDs(t *testing.T) {
	a := NewHeldld()
	b := NewHeldld()
	assert.Equal(t, Canonical(a.Store), Canonical(b.Store))

	b.Store.InsertToken("z")
	assert.NotEqual(t, Canonical(a.Store), Canonical(b.Store))
}

func TestDuplicateLabels(t *testing.T) {
	x := NewXabyz()
	assert.Empty(t, DuplicateLabels(x.Store))

	// a multi-rune token renders like the pair of its runes
	ab := x.Store.InsertToken("ab")
	dups := DuplicateLabels(x.Store)
	require.Contains(t, dups, "ab")
	assert.Equal(t, []graph.VertexID{x.AB.ID, ab.ID}, dups["ab"])
}
