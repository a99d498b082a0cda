package seqgraph

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/hupe1980/seqgraph/blobstore"
	"github.com/hupe1980/seqgraph/codec"
	"github.com/hupe1980/seqgraph/manifest"
	"github.com/hupe1980/seqgraph/persistence"
)

// Manifest describes one saved version of a graph.
type Manifest = manifest.Manifest

func (g *Graph) manager(store blobstore.BlobStore) *persistence.Manager {
	return persistence.NewManager(store, g.codec,
		persistence.WithCompression(g.compression),
		persistence.WithResourceController(g.rc),
	)
}

// Snapshot saves the graph as a new version of name in store.
//
// The graph is copied under the read lock; encoding and upload run without
// blocking writers.
func (g *Graph) Snapshot(ctx context.Context, store blobstore.BlobStore, name string) (*Manifest, error) {
	ctx, span := g.tel.start(ctx, "Snapshot", attribute.String("graph.name", name))
	start := time.Now()

	g.mu.RLock()
	copied := g.store.Clone()
	g.mu.RUnlock()

	m, err := g.manager(store).Save(ctx, name, copied)
	err = translateError(err)

	var size int64
	if err == nil {
		size = m.Snapshot.Size
		span.SetAttributes(
			attribute.Int64("snapshot.size", size),
			attribute.String("snapshot.id", m.ID),
		)
	}
	g.tel.end(ctx, span, "Snapshot", start, 0, err)
	g.metrics.RecordSnapshot("save", size, time.Since(start), err)
	g.logger.LogSnapshot(ctx, name, copied.Len(), err)
	return m, err
}

// Restore loads the current version of name from store into a new graph
// configured by optFns.
func Restore(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Graph, error) {
	return RestoreVersion(ctx, store, name, 0, optFns...)
}

// RestoreVersion loads version seq of name. 0 means latest.
func RestoreVersion(ctx context.Context, store blobstore.BlobStore, name string, seq uint64, optFns ...Option) (*Graph, error) {
	g, err := New(optFns...)
	if err != nil {
		return nil, err
	}

	ctx, span := g.tel.start(ctx, "Restore",
		attribute.String("graph.name", name),
		attribute.Int64("graph.version", int64(seq)),
	)
	start := time.Now()

	s, m, err := g.manager(store).LoadVersion(ctx, name, seq)
	err = translateError(err)

	var size int64
	if err == nil {
		size = m.Snapshot.Size
		g.store = s
		g.in = g.newInserter()
	}
	g.tel.end(ctx, span, "Restore", start, 0, err)
	g.metrics.RecordSnapshot("restore", size, time.Since(start), err)
	vertices := 0
	if s != nil {
		vertices = s.Len()
	}
	g.logger.LogRestore(ctx, name, vertices, err)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// History returns the saved versions of name in store, oldest first.
func History(ctx context.Context, store blobstore.BlobStore, name string) ([]*Manifest, error) {
	ms, err := persistence.NewManager(store, codec.Default).History(ctx, name)
	return ms, translateError(err)
}

// Prune deletes all but the newest keep versions of name in store.
func Prune(ctx context.Context, store blobstore.BlobStore, name string, keep int) (int, error) {
	n, err := persistence.NewManager(store, codec.Default).Prune(ctx, name, keep)
	return n, translateError(err)
}
