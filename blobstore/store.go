package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// ErrNotFound is returned when a blob does not exist. It is os.ErrNotExist so
// that file system errors match without translation.
var ErrNotFound = os.ErrNotExist

// ErrExists is returned by PutIfNotExists when the blob is already present.
var ErrExists = errors.New("blobstore: blob already exists")

// ErrInvalidName is returned for empty, absolute or escaping blob names.
var ErrInvalidName = errors.New("blobstore: invalid blob name")

// BlobStore is a flat namespace of immutable blobs.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Put writes a blob atomically, replacing any previous content.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a blob.
type Blob interface {
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	Close() error
	// Size returns the size of the blob in bytes.
	Size() int64
}

// ConditionalStore is implemented by stores that can create a blob only if
// it does not exist yet.
type ConditionalStore interface {
	PutIfNotExists(ctx context.Context, name string, data []byte) error
}

// Mappable is implemented by blobs whose content is already in memory.
type Mappable interface {
	// Bytes returns the content. The slice is valid until the blob is closed.
	Bytes() ([]byte, error)
}

// ValidateName checks that name is a clean relative slash path.
func ValidateName(name string) error {
	if name == "" || strings.HasPrefix(name, "/") || path.Clean(name) != name ||
		name == ".." || strings.HasPrefix(name, "../") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ReadAll opens name and returns its full content.
func ReadAll(ctx context.Context, store BlobStore, name string) ([]byte, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return append([]byte(nil), data...), nil
	}

	buf := make([]byte, b.Size())
	n, err := b.ReadAt(ctx, buf, 0)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == b.Size()) {
		return nil, err
	}
	if int64(n) != b.Size() {
		return nil, fmt.Errorf("blobstore: short read of %q: %d of %d bytes", name, n, b.Size())
	}
	return buf, nil
}

// ReadAt reads from data the way io.ReaderAt does. It is shared by the
// in-memory blob implementations.
func ReadAt(data []byte, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("blobstore: negative offset %d", off)
	}
	if off >= int64(len(data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// BytesBlob is a Blob over an in-memory byte slice.
type BytesBlob struct {
	data []byte
}

// NewBytesBlob returns a Blob reading data. data is not copied.
func NewBytesBlob(data []byte) *BytesBlob {
	return &BytesBlob{data: data}
}

func (b *BytesBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	return ReadAt(b.data, p, off)
}

func (b *BytesBlob) Close() error { return nil }

func (b *BytesBlob) Size() int64 { return int64(len(b.data)) }

func (b *BytesBlob) Bytes() ([]byte, error) { return b.data, nil }
