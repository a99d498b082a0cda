// Package blobtest checks BlobStore implementations against the behaviour
// the snapshot manager relies on.
package blobtest

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqgraph/blobstore"
)

// Run exercises Put, Open, ReadAt, List and Delete on an empty store.
func Run(t *testing.T, store blobstore.BlobStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("PutOpen", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "g/a.snap", []byte("hello seqgraph")))

		b, err := store.Open(ctx, "g/a.snap")
		require.NoError(t, err)
		defer b.Close()
		assert.Equal(t, int64(14), b.Size())

		buf := make([]byte, 8)
		n, err := b.ReadAt(ctx, buf, 6)
		require.NoError(t, err)
		assert.Equal(t, 8, n)
		assert.Equal(t, "seqgraph", string(buf))

		n, err = b.ReadAt(ctx, make([]byte, 4), 12)
		assert.Equal(t, 2, n)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "g/CURRENT", []byte("one")))
		require.NoError(t, store.Put(ctx, "g/CURRENT", []byte("two!")))

		data, err := blobstore.ReadAll(ctx, store, "g/CURRENT")
		require.NoError(t, err)
		assert.Equal(t, "two!", string(data))
	})

	t.Run("Empty", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "g/empty", nil))
		data, err := blobstore.ReadAll(ctx, store, "g/empty")
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "h/b.snap", []byte("b")))
		names, err := store.List(ctx, "g/")
		require.NoError(t, err)
		assert.Equal(t, []string{"g/CURRENT", "g/a.snap", "g/empty"}, names)

		all, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "h/b.snap"))
		require.NoError(t, store.Delete(ctx, "h/b.snap"))

		_, err := store.Open(ctx, "h/b.snap")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := blobstore.ReadAll(ctx, store, "missing")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}
