package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqgraph/graph"
	"github.com/hupe1980/seqgraph/internal/insert"
	"github.com/hupe1980/seqgraph/testutil"
)

func buildStore(t *testing.T, n int) *graph.Store {
	t.Helper()
	rng := testutil.NewRNG(7)
	in := insert.New(graph.New())
	for i := 0; i < n; i++ {
		_, err := in.InsertTokens(rng.Tokens(3+rng.Intn(6), "abcdef"))
		require.NoError(t, err)
	}
	return in.Store()
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := buildStore(t, 60)
	want, next := s.Export()

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD, CompressionXZ} {
		t.Run(c.String(), func(t *testing.T) {
			data, h, err := Encode(FromStore(s), c)
			require.NoError(t, err)
			assert.Equal(t, uint32(len(want)), h.VertexCount)
			assert.Equal(t, uint32(next), h.NextPattern)

			snap, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, want, snap.Records)
			assert.Equal(t, next, snap.NextPattern)

			restored, err := snap.ToStore()
			require.NoError(t, err)
			assert.Equal(t, testutil.Canonical(s), testutil.Canonical(restored))
			assert.Equal(t, s.Stats(), restored.Stats())
		})
	}
}

func TestSnapshotFixture(t *testing.T) {
	fx := testutil.NewXabyz()
	data, _, err := Encode(FromStore(fx.Store), CompressionZSTD)
	require.NoError(t, err)

	snap, err := Decode(data)
	require.NoError(t, err)
	s, err := snap.ToStore()
	require.NoError(t, err)
	assert.Equal(t, "xabyz", s.Label(fx.XABYZ.ID))
	assert.Equal(t, testutil.PatternLabels(fx.Store, fx.XABYZ.ID), testutil.PatternLabels(s, fx.XABYZ.ID))
}

func TestSnapshotEmptyStore(t *testing.T) {
	data, h, err := Encode(FromStore(graph.New()), CompressionLZ4)
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, h.Compression)
	assert.Len(t, data, HeaderSize)

	snap, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, snap.Records)
}

func TestSnapshotIncompressibleFallsBack(t *testing.T) {
	s := graph.New()
	s.InsertToken("q")
	_, h, err := Encode(FromStore(s), CompressionXZ)
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, h.Compression)
}

func TestDecodeCorruption(t *testing.T) {
	data, _, err := Encode(FromStore(buildStore(t, 20)), CompressionLZ4)
	require.NoError(t, err)

	t.Run("payload", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[len(bad)-1] ^= 0xff
		_, err := Decode(bad)
		var mismatch *ChecksumMismatchError
		assert.ErrorAs(t, err, &mismatch)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("magic", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[0] = 'X'
		_, err := Decode(bad)
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("version", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[4] = 9
		_, err := Decode(bad)
		assert.ErrorIs(t, err, ErrInvalidVersion)
	})

	t.Run("compression", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[6] = 42
		_, err := Decode(bad)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := Decode(data[:HeaderSize-1])
		var ce *CorruptError
		assert.ErrorAs(t, err, &ce)

		_, err = Decode(data[:len(data)-3])
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestDecodeBodyBounds(t *testing.T) {
	var w bodyWriter
	w.uint32(1)
	w.string("a")
	w.uint32(1 << 30) // pattern count far beyond the body
	_, err := decodeBody(w.Bytes(), 1)
	var ce *CorruptError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, int64(13), ce.Offset)

	_, err = decodeBody(w.Bytes(), 5)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDecodeInvalidGraph(t *testing.T) {
	// A pattern pointing at a vertex that does not exist decodes but does
	// not load.
	snap := &Snapshot{
		Records: []graph.VertexRecord{
			{ID: 0, Width: 1, Token: "a"},
			{ID: 1, Width: 2, Patterns: []graph.PatternRecord{{ID: 0, Children: []graph.VertexID{0, 7}}}},
		},
		NextPattern: 1,
	}
	data, _, err := Encode(snap, CompressionNone)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	_, err = decoded.ToStore()
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD, CompressionXZ} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	got, err := ParseCompression("ZSTD")
	require.NoError(t, err)
	assert.Equal(t, CompressionZSTD, got)

	_, err = ParseCompression("brotli")
	assert.Error(t, err)
	assert.False(t, Compression(9).Valid())
	assert.Equal(t, "compression(9)", Compression(9).String())
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, uint32(0xe3069283), Checksum([]byte("123456789")))
	assert.NoError(t, verifyChecksum([]byte("abc"), Checksum([]byte("abc"))))
	assert.ErrorIs(t, verifyChecksum([]byte("abc"), 1), ErrCorrupt)
}
