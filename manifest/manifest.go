package manifest

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/seqgraph/blobstore"
	"github.com/hupe1980/seqgraph/codec"
	"github.com/hupe1980/seqgraph/graph"
)

const (
	ManifestFileName = "MANIFEST"
	CurrentFileName  = "CURRENT"
	// CurrentVersion is the version of the manifest format.
	CurrentVersion = 1
)

// Manifest describes one saved version of a graph.
type Manifest struct {
	Version   int          `json:"version" yaml:"version"`
	Seq       uint64       `json:"seq" yaml:"seq"`
	ID        string       `json:"id" yaml:"id"`
	Parent    string       `json:"parent,omitempty" yaml:"parent,omitempty"`
	Graph     string       `json:"graph" yaml:"graph"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
	Snapshot  SnapshotInfo `json:"snapshot" yaml:"snapshot"`
	Stats     graph.Stats  `json:"stats" yaml:"stats"`

	// Codec is the codec the manifest was read or written with.
	Codec string `json:"-" yaml:"-"`
}

// SnapshotInfo locates and describes the snapshot blob of a manifest.
type SnapshotInfo struct {
	Path        string `json:"path" yaml:"path"`
	Size        int64  `json:"size" yaml:"size"`
	RawSize     uint64 `json:"raw_size" yaml:"raw_size"`
	Checksum    uint32 `json:"checksum" yaml:"checksum"`
	Compression string `json:"compression" yaml:"compression"`
}

// New returns an empty manifest for graphName.
func New(graphName string) *Manifest {
	return &Manifest{Version: CurrentVersion, Graph: graphName}
}

// CurrentPath returns the name of the CURRENT pointer of graphName.
func CurrentPath(graphName string) string {
	return graphName + "/" + CurrentFileName
}

func manifestsPrefix(graphName string) string {
	return graphName + "/manifests/"
}

func manifestPath(graphName string, seq uint64, codecName string) string {
	return fmt.Sprintf("%s%s-%06d.%s", manifestsPrefix(graphName), ManifestFileName, seq, codecName)
}

// parseManifestPath returns the sequence number and codec name encoded in a
// manifest blob name.
func parseManifestPath(name string) (uint64, string, bool) {
	base := path.Base(name)
	rest, ok := strings.CutPrefix(base, ManifestFileName+"-")
	if !ok {
		return 0, "", false
	}
	num, ext, ok := strings.Cut(rest, ".")
	if !ok {
		return 0, "", false
	}
	seq, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return seq, ext, true
}

// Store manages manifests in a blob store.
type Store struct {
	store blobstore.BlobStore
	codec codec.Codec
	mu    sync.Mutex
}

// NewStore creates a manifest store writing with c. A nil c uses
// codec.Default.
func NewStore(store blobstore.BlobStore, c codec.Codec) *Store {
	if c == nil {
		c = codec.Default
	}
	return &Store{store: store, codec: c}
}

// Load loads the current manifest of graphName.
func (s *Store) Load(ctx context.Context, graphName string) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCurrent(ctx, graphName)
}

func (s *Store) loadCurrent(ctx context.Context, graphName string) (*Manifest, error) {
	if err := blobstore.ValidateName(graphName); err != nil {
		return nil, err
	}
	content, err := blobstore.ReadAll(ctx, s.store, CurrentPath(graphName))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: graph %q", ErrNotFound, graphName)
		}
		return nil, err
	}
	return s.read(ctx, strings.TrimSpace(string(content)))
}

// LoadVersion loads the manifest with sequence number seq. 0 means latest.
func (s *Store) LoadVersion(ctx context.Context, graphName string, seq uint64) (*Manifest, error) {
	if seq == 0 {
		return s.Load(ctx, graphName)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := s.find(ctx, graphName, seq)
	if err != nil {
		return nil, err
	}
	return s.read(ctx, name)
}

func (s *Store) find(ctx context.Context, graphName string, seq uint64) (string, error) {
	if err := blobstore.ValidateName(graphName); err != nil {
		return "", err
	}
	files, err := s.store.List(ctx, fmt.Sprintf("%s%s-%06d.", manifestsPrefix(graphName), ManifestFileName, seq))
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if got, _, ok := parseManifestPath(f); ok && got == seq {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: graph %q version %d", ErrNotFound, graphName, seq)
}

func (s *Store) read(ctx context.Context, name string) (*Manifest, error) {
	_, ext, ok := parseManifestPath(name)
	if !ok {
		return nil, fmt.Errorf("manifest: invalid manifest name %q", name)
	}
	c, err := codec.Lookup(ext)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", name, err)
	}
	data, err := blobstore.ReadAll(ctx, s.store, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", name, err)
	}
	m := &Manifest{}
	if err := c.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("manifest: decode %s: %w", name, err)
	}
	if m.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: %d (expected %d)", ErrIncompatibleVersion, m.Version, CurrentVersion)
	}
	m.Codec = c.Name()
	return m, nil
}

// List returns all readable manifests of graphName ordered by sequence
// number. Unreadable or corrupted manifests are skipped.
func (s *Store) List(ctx context.Context, graphName string) ([]*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := blobstore.ValidateName(graphName); err != nil {
		return nil, err
	}
	files, err := s.store.List(ctx, manifestsPrefix(graphName))
	if err != nil {
		return nil, err
	}
	var manifests []*Manifest
	for _, f := range files {
		if _, _, ok := parseManifestPath(f); !ok {
			continue
		}
		m, err := s.read(ctx, f)
		if err != nil {
			continue
		}
		manifests = append(manifests, m)
	}
	slices.SortFunc(manifests, func(a, b *Manifest) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		default:
			return 0
		}
	})
	return manifests, nil
}

// Save assigns m the next sequence number and a fresh ID, writes it and
// makes it current.
func (s *Store) Save(ctx context.Context, m *Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.loadCurrent(ctx, m.Graph)
	switch {
	case err == nil:
		m.Seq = prev.Seq + 1
		m.Parent = prev.ID
	case errors.Is(err, ErrNotFound):
		m.Seq = 1
		m.Parent = ""
	default:
		return err
	}
	m.Version = CurrentVersion
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now().UTC()
	m.Codec = s.codec.Name()

	data, err := s.codec.Marshal(m)
	if err != nil {
		return fmt.Errorf("manifest: encode: %w", err)
	}

	name := manifestPath(m.Graph, m.Seq, m.Codec)
	if cs, ok := s.store.(blobstore.ConditionalStore); ok {
		if err := cs.PutIfNotExists(ctx, name, data); err != nil {
			if errors.Is(err, blobstore.ErrExists) {
				return fmt.Errorf("%w: graph %q version %d", ErrConflict, m.Graph, m.Seq)
			}
			return err
		}
	} else if err := s.store.Put(ctx, name, data); err != nil {
		return err
	}

	return s.store.Put(ctx, CurrentPath(m.Graph), []byte(name))
}

// Delete deletes the manifest with sequence number seq. The current
// manifest cannot be deleted.
func (s *Store) Delete(ctx context.Context, graphName string, seq uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.loadCurrent(ctx, graphName)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if cur != nil && cur.Seq == seq {
		return fmt.Errorf("manifest: version %d of %q is current", seq, graphName)
	}
	name, err := s.find(ctx, graphName, seq)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, name)
}
