package minio

import (
	"bytes"
	"context"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/seqgraph/blobstore"
)

// Store keeps snapshots and manifests in a MinIO (or other S3-compatible)
// bucket. Names are joined below an optional root prefix.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore returns a store writing below rootPrefix in bucket.
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(rootPrefix, "/"),
	}
}

func (s *Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *Store) name(key string) string {
	if s.prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, s.prefix+"/")
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

// contentType labels objects so they are recognisable in the console.
func contentType(name string) string {
	switch path.Ext(name) {
	case ".snap":
		return "application/octet-stream"
	case ".json", ".go-json":
		return "application/json"
	case ".yaml":
		return "application/yaml"
	}
	return "text/plain"
}

// Open stats the object. Content is fetched with range requests on ReadAt.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if err := blobstore.ValidateName(name); err != nil {
		return nil, err
	}
	key := s.key(name)
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return &blob{client: s.client, bucket: s.bucket, key: key, size: info.Size}, nil
}

// Put uploads data as one object.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if err := blobstore.ValidateName(name); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType:    contentType(name),
			SendContentMd5: true,
		})
	return err
}

// Delete removes name. A missing object is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := blobstore.ValidateName(name); err != nil {
		return err
	}
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// List returns the sorted names below prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	full := prefix
	if s.prefix != "" {
		full = s.prefix + "/" + prefix
	}

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    full,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if n := s.name(obj.Key); n != "" {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names, nil
}

type blob struct {
	client *minio.Client
	bucket string
	key    string
	size   int64
}

func (b *blob) Size() int64 { return b.size }

func (b *blob) Close() error { return nil }

// ReadAt issues one ranged GET for [off, off+len(p)) clipped to the object.
func (b *blob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off >= b.size {
		return 0, io.EOF
	}
	want := min(int64(len(p)), b.size-off)

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, off+want-1); err != nil {
		return 0, err
	}
	obj, err := b.client.GetObject(ctx, b.bucket, b.key, opts)
	if err != nil {
		return 0, err
	}
	defer obj.Close()

	n, err := io.ReadFull(obj, p[:want])
	if err != nil {
		return n, err
	}
	if int64(n) < int64(len(p)) {
		return n, io.EOF
	}
	return n, nil
}
