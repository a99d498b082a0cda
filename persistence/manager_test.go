package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqgraph/blobstore"
	"github.com/hupe1980/seqgraph/codec"
	"github.com/hupe1980/seqgraph/internal/resource"
	"github.com/hupe1980/seqgraph/manifest"
	"github.com/hupe1980/seqgraph/testutil"
)

func TestManagerSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := buildStore(t, 30)

	stores := map[string]blobstore.BlobStore{
		"memory": blobstore.NewMemoryStore(),
	}
	stores["local"] = blobstore.NewLocalStore(t.TempDir())

	for name, bs := range stores {
		t.Run(name, func(t *testing.T) {
			m := NewManager(bs, codec.YAML{}, WithCompression(CompressionZSTD))
			mf, err := m.Save(ctx, "g", s)
			require.NoError(t, err)
			assert.Equal(t, uint64(1), mf.Seq)
			assert.Equal(t, s.Stats(), mf.Stats)

			loaded, lm, err := m.Load(ctx, "g")
			require.NoError(t, err)
			assert.Equal(t, mf.ID, lm.ID)
			assert.Equal(t, testutil.Canonical(s), testutil.Canonical(loaded))
		})
	}
}

func TestManagerVersions(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	m := NewManager(bs, nil)

	small := testutil.NewHeldld().Store
	big := buildStore(t, 10)

	_, err := m.Save(ctx, "g", small)
	require.NoError(t, err)
	_, err = m.Save(ctx, "g", big)
	require.NoError(t, err)
	_, err = m.Save(ctx, "g", small)
	require.NoError(t, err)

	history, err := m.History(ctx, "g")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, history[0].ID, history[1].Parent)

	v2, mf, err := m.LoadVersion(ctx, "g", 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), mf.Seq)
	assert.Equal(t, testutil.Canonical(big), testutil.Canonical(v2))

	deleted, err := m.Prune(ctx, "g", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	history, err = m.History(ctx, "g")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, uint64(3), history[0].Seq)

	snaps, err := bs.List(ctx, "g/snapshots/")
	require.NoError(t, err)
	assert.Equal(t, []string{history[0].Snapshot.Path}, snaps)

	latest, _, err := m.Load(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, testutil.Canonical(small), testutil.Canonical(latest))
}

func TestManagerLoadMissing(t *testing.T) {
	_, _, err := NewManager(blobstore.NewMemoryStore(), nil).Load(context.Background(), "nope")
	assert.ErrorIs(t, err, manifest.ErrNotFound)
}

func TestManagerDetectsCorruption(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	m := NewManager(bs, nil, WithCompression(CompressionNone))
	mf, err := m.Save(ctx, "g", buildStore(t, 5))
	require.NoError(t, err)

	data, err := blobstore.ReadAll(ctx, bs, mf.Snapshot.Path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0x01
	require.NoError(t, bs.Put(ctx, mf.Snapshot.Path, data))

	_, _, err = m.Load(ctx, "g")
	assert.ErrorIs(t, err, ErrCorrupt)

	require.NoError(t, bs.Put(ctx, mf.Snapshot.Path, data[:len(data)-1]))
	_, _, err = m.Load(ctx, "g")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestManagerResourceLimits(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64})
	m := NewManager(blobstore.NewMemoryStore(), nil, WithResourceController(rc))

	s := buildStore(t, 10)
	_, err := m.Save(ctx, "g", s)
	require.NoError(t, err)
	_, _, err = m.Load(ctx, "g")
	require.NoError(t, err)
	assert.Zero(t, rc.MemoryUsage())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.NoError(t, rc.TryAcquireMemory(64))
	_, _, err = m.Load(cancelled, "g")
	assert.ErrorIs(t, err, context.Canceled)
	rc.ReleaseMemory(64)
}

func TestManagerInvalidName(t *testing.T) {
	_, err := NewManager(blobstore.NewMemoryStore(), nil).Save(context.Background(), "../x", testutil.NewHeldld().Store)
	assert.ErrorIs(t, err, blobstore.ErrInvalidName)
}
