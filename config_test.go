package seqgraph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
log:
  level: debug
  format: json
codec: yaml
compression: zstd
validate: true
resource:
  max_concurrent_searches: 8
  memory_limit_bytes: 1048576
storage:
  backend: local
  path: ./data
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seqgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "yaml", cfg.Codec)
	assert.Equal(t, int64(8), cfg.Resource.MaxConcurrentSearches)
	assert.Equal(t, "local", cfg.Storage.Backend)

	opts, err := cfg.Options()
	require.NoError(t, err)
	g, err := New(opts...)
	require.NoError(t, err)
	assert.Equal(t, CompressionZSTD, g.compression)
	assert.Equal(t, "yaml", g.codec.Name())
	assert.True(t, g.validate)
	assert.Equal(t, 8, g.rc.MaxConcurrentSearches())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"compression": "compression: brotli\n",
		"codec":       "codec: xml\n",
		"log level":   "log:\n  level: loud\n",
		"backend":     "storage:\n  backend: ftp\n",
		"local path":  "storage:\n  backend: local\n",
		"s3 bucket":   "storage:\n  backend: s3\n",
		"minio":       "storage:\n  backend: minio\n  bucket: b\n",
		"negative":    "resource:\n  memory_limit_bytes: -1\n",
		"yaml":        "log: [\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("{}"))
	require.NoError(t, err)

	opts, err := cfg.Options()
	require.NoError(t, err)
	g, err := New(opts...)
	require.NoError(t, err)
	assert.Equal(t, CompressionLZ4, g.compression)
	assert.False(t, g.validate)
}

func TestStorageConfigOpen(t *testing.T) {
	ctx := context.Background()
	backends := map[string]StorageConfig{
		"memory": {},
		"local":  {Backend: "local", Path: t.TempDir()},
		"badger": {Backend: "badger", Prefix: "graphs/"},
	}
	for name, sc := range backends {
		t.Run(name, func(t *testing.T) {
			store, closeFn, err := sc.Open(ctx, nil)
			require.NoError(t, err)
			defer func() { require.NoError(t, closeFn()) }()

			g := newTestGraph(t)
			fill(t, g, "abcab")
			_, err = g.Snapshot(ctx, store, "g")
			require.NoError(t, err)

			restored, err := Restore(ctx, store, "g")
			require.NoError(t, err)
			assert.Equal(t, g.Stats(), restored.Stats())
		})
	}

	_, _, err := StorageConfig{Backend: "ftp"}.Open(ctx, nil)
	assert.Error(t, err)
}
