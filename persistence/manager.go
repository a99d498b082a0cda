package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hupe1980/seqgraph/blobstore"
	"github.com/hupe1980/seqgraph/codec"
	"github.com/hupe1980/seqgraph/graph"
	"github.com/hupe1980/seqgraph/internal/resource"
	"github.com/hupe1980/seqgraph/manifest"
)

// Manager saves and loads versioned graph snapshots in a blob store.
type Manager struct {
	store       blobstore.BlobStore
	manifests   *manifest.Store
	compression Compression
	rc          *resource.Controller
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithCompression sets the compression of new snapshots. Default is LZ4.
func WithCompression(c Compression) ManagerOption {
	return func(m *Manager) { m.compression = c }
}

// WithResourceController limits the memory and IO bandwidth used by Save
// and Load.
func WithResourceController(rc *resource.Controller) ManagerOption {
	return func(m *Manager) { m.rc = rc }
}

// NewManager returns a manager over store. Manifests are written with c; a
// nil c uses codec.Default.
func NewManager(store blobstore.BlobStore, c codec.Codec, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:       store,
		manifests:   manifest.NewStore(store, c),
		compression: CompressionLZ4,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Manifests returns the underlying manifest store.
func (m *Manager) Manifests() *manifest.Store { return m.manifests }

func snapshotPath(graphName string) string {
	return fmt.Sprintf("%s/snapshots/%s.snap", graphName, uuid.NewString())
}

// Save writes a snapshot of s and makes it the current version of
// graphName.
func (m *Manager) Save(ctx context.Context, graphName string, s *graph.Store) (*manifest.Manifest, error) {
	if err := blobstore.ValidateName(graphName); err != nil {
		return nil, err
	}
	snap := FromStore(s)
	data, h, err := Encode(snap, m.compression)
	if err != nil {
		return nil, err
	}

	reserved, err := m.rc.AcquireMemory(ctx, int64(len(data)))
	if err != nil {
		return nil, err
	}
	defer m.rc.ReleaseMemory(reserved)
	if err := m.rc.AcquireIO(ctx, len(data)); err != nil {
		return nil, err
	}

	path := snapshotPath(graphName)
	if err := m.store.Put(ctx, path, data); err != nil {
		return nil, fmt.Errorf("persistence: write snapshot: %w", err)
	}

	mf := manifest.New(graphName)
	mf.Snapshot = manifest.SnapshotInfo{
		Path:        path,
		Size:        int64(len(data)),
		RawSize:     h.RawSize,
		Checksum:    h.Checksum,
		Compression: h.Compression.String(),
	}
	mf.Stats = s.Stats()
	if err := m.manifests.Save(ctx, mf); err != nil {
		_ = m.store.Delete(ctx, path)
		return nil, err
	}
	return mf, nil
}

// Load reads the current version of graphName.
func (m *Manager) Load(ctx context.Context, graphName string) (*graph.Store, *manifest.Manifest, error) {
	return m.LoadVersion(ctx, graphName, 0)
}

// LoadVersion reads version seq of graphName. 0 means latest.
func (m *Manager) LoadVersion(ctx context.Context, graphName string, seq uint64) (*graph.Store, *manifest.Manifest, error) {
	mf, err := m.manifests.LoadVersion(ctx, graphName, seq)
	if err != nil {
		return nil, nil, err
	}
	s, err := m.read(ctx, mf)
	if err != nil {
		return nil, nil, err
	}
	return s, mf, nil
}

func (m *Manager) read(ctx context.Context, mf *manifest.Manifest) (*graph.Store, error) {
	reserved, err := m.rc.AcquireMemory(ctx, mf.Snapshot.Size+int64(mf.Snapshot.RawSize))
	if err != nil {
		return nil, err
	}
	defer m.rc.ReleaseMemory(reserved)
	if err := m.rc.AcquireIO(ctx, int(mf.Snapshot.Size)); err != nil {
		return nil, err
	}

	data, err := blobstore.ReadAll(ctx, m.store, mf.Snapshot.Path)
	if err != nil {
		return nil, fmt.Errorf("persistence: read snapshot %s: %w", mf.Snapshot.Path, err)
	}
	if int64(len(data)) != mf.Snapshot.Size {
		return nil, &CorruptError{Offset: int64(len(data)), Reason: fmt.Sprintf("snapshot has %d bytes, manifest says %d", len(data), mf.Snapshot.Size)}
	}
	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	if h.Checksum != mf.Snapshot.Checksum {
		return nil, &ChecksumMismatchError{Expected: mf.Snapshot.Checksum, Actual: h.Checksum}
	}

	snap, err := Decode(data)
	if err != nil {
		return nil, err
	}
	s, err := snap.ToStore()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return s, nil
}

// History returns the saved versions of graphName, oldest first.
func (m *Manager) History(ctx context.Context, graphName string) ([]*manifest.Manifest, error) {
	return m.manifests.List(ctx, graphName)
}

// Prune deletes all but the newest keep versions of graphName together with
// their snapshots and returns the number of versions deleted. The current
// version is always kept.
func (m *Manager) Prune(ctx context.Context, graphName string, keep int) (int, error) {
	keep = max(keep, 1)
	history, err := m.History(ctx, graphName)
	if err != nil {
		return 0, err
	}
	if len(history) <= keep {
		return 0, nil
	}
	var errs []error
	deleted := 0
	for _, mf := range history[:len(history)-keep] {
		if err := m.manifests.Delete(ctx, graphName, mf.Seq); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := m.store.Delete(ctx, mf.Snapshot.Path); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
			errs = append(errs, err)
		}
		deleted++
	}
	return deleted, errors.Join(errs...)
}
