package minio

import (
	"context"
	"os"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqgraph/blobstore"
	"github.com/hupe1980/seqgraph/blobstore/blobtest"
)

// TestStoreIntegration needs a MinIO server. It runs against
// SEQGRAPH_MINIO_ENDPOINT (default localhost:9000) and skips when the server
// is unreachable.
func TestStoreIntegration(t *testing.T) {
	endpoint := os.Getenv("SEQGRAPH_MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	bucket := "seqgraph-test"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	prefix := "run-" + t.Name() + "/"
	store := NewStore(client, bucket, prefix)
	t.Cleanup(func() {
		names, _ := store.List(ctx, "")
		for _, n := range names {
			_ = store.Delete(ctx, n)
		}
	})

	blobtest.Run(t, store)
}

func TestStoreKey(t *testing.T) {
	s := NewStore(nil, "b", "corpus/")
	assert.Equal(t, "corpus/g/0001.snap", s.key("g/0001.snap"))
	assert.Equal(t, "g/CURRENT", NewStore(nil, "b", "").key("g/CURRENT"))
}

func TestStoreName(t *testing.T) {
	s := NewStore(nil, "b", "/corpus/")
	assert.Equal(t, "g/CURRENT", s.name(s.key("g/CURRENT")))
	assert.Equal(t, "g/CURRENT", NewStore(nil, "b", "").name("g/CURRENT"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/octet-stream", contentType("g/snapshots/x.snap"))
	assert.Equal(t, "application/json", contentType("g/manifests/MANIFEST-000001.json"))
	assert.Equal(t, "application/yaml", contentType("g/manifests/MANIFEST-000001.yaml"))
	assert.Equal(t, "text/plain", contentType("g/CURRENT"))
}

func TestStoreRejectsInvalidNames(t *testing.T) {
	s := NewStore(nil, "b", "")
	ctx := context.Background()
	_, err := s.Open(ctx, "../x")
	assert.ErrorIs(t, err, blobstore.ErrInvalidName)
	assert.ErrorIs(t, s.Put(ctx, "/abs", nil), blobstore.ErrInvalidName)
	assert.ErrorIs(t, s.Delete(ctx, ""), blobstore.ErrInvalidName)
}
