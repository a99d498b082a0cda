package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blob")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestOpenReadClose(t *testing.T) {
	m, err := Open(writeFile(t, []byte("abcab|held")))
	require.NoError(t, err)

	assert.Equal(t, 10, m.Size())
	assert.Equal(t, []byte("abcab|held"), m.Bytes())
	require.NoError(t, m.Advise(AccessSequential))

	buf := make([]byte, 4)
	n, err := m.ReadAt(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "held", string(buf))

	n, err = m.ReadAt(make([]byte, 8), 6)
	assert.Equal(t, 4, n)
	assert.Equal(t, io.EOF, err)

	_, err = m.ReadAt(buf, 100)
	assert.Equal(t, io.EOF, err)
	_, err = m.ReadAt(buf, -1)
	assert.Equal(t, ErrInvalidOffset, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	_, err = m.ReadAt(buf, 0)
	assert.Equal(t, ErrClosed, err)
	assert.Equal(t, ErrClosed, m.Advise(AccessRandom))
}

func TestOpenEmptyFile(t *testing.T) {
	m, err := Open(writeFile(t, nil))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 0, m.Size())
	_, err = m.ReadAt(make([]byte, 1), 0)
	assert.Equal(t, io.EOF, err)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
