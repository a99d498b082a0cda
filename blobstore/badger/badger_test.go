package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqgraph/blobstore"
	"github.com/hupe1980/seqgraph/blobstore/blobtest"
)

func TestStoreInMemory(t *testing.T) {
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer s.Close()

	blobtest.Run(t, s)
}

func TestStoreOnDiskReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "g/CURRENT", []byte("g/0001.json")))
	require.NoError(t, s.Close())

	s, err = Open(DefaultConfig(dir))
	require.NoError(t, err)
	defer s.Close()

	data, err := blobstore.ReadAll(ctx, s, "g/CURRENT")
	require.NoError(t, err)
	assert.Equal(t, "g/0001.json", string(data))
}

func TestStoreKeyPrefix(t *testing.T) {
	ctx := context.Background()
	cfg := InMemoryConfig()
	cfg.KeyPrefix = "tenant-a/"
	a, err := Open(cfg)
	require.NoError(t, err)
	defer a.Close()

	shared := NewStore(a.db, "tenant-b/")
	require.NoError(t, a.Put(ctx, "x", []byte("a")))
	require.NoError(t, shared.Put(ctx, "x", []byte("b")))
	require.NoError(t, shared.Close())

	names, err := a.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, names)

	got, err := blobstore.ReadAll(ctx, shared, "x")
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))
	assert.NoError(t, a.RunGC(0.5))
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}
