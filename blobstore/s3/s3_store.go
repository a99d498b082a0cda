package s3

import (
	"context"
	"errors"
	"path"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/hupe1980/seqgraph/blobstore"
)

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	cfg      UploadConfig
	uploader *manager.Uploader
}

// Option configures a Store.
type Option func(*Store)

// WithUploadConfig replaces the default upload settings.
func WithUploadConfig(cfg UploadConfig) Option {
	return func(s *Store) {
		s.cfg = cfg
	}
}

// NewStore creates an S3 blob store. rootPrefix is prepended to all keys.
func NewStore(client Client, bucket, rootPrefix string, opts ...Option) *Store {
	s := &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
		cfg:    DefaultUploadConfig(),
	}
	for _, o := range opts {
		o(s)
	}
	s.uploader = newUploader(client, s.cfg)
	return s
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open opens a blob for ranged reads.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	return openBlob(ctx, s.client, s.bucket, s.key(name))
}

// Put writes data in one request, or as a multipart upload when it is at
// least PartSize bytes.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if err := blobstore.ValidateName(name); err != nil {
		return err
	}
	key := s.key(name)
	if s.cfg.PartSize > 0 && int64(len(data)) >= s.cfg.PartSize {
		return uploadMultipart(ctx, s.uploader, s.bucket, key, data, s.cfg.EnableChecksum)
	}
	_, err := s.client.PutObject(ctx, putObjectInput(s.bucket, key, data, s.cfg.EnableChecksum))
	return err
}

// PutIfNotExists writes data only if the key is free, using an S3
// conditional write.
func (s *Store) PutIfNotExists(ctx context.Context, name string, data []byte) error {
	if err := blobstore.ValidateName(name); err != nil {
		return err
	}
	input := putObjectInput(s.bucket, s.key(name), data, s.cfg.EnableChecksum)
	input.IfNoneMatch = aws.String("*")

	_, err := s.client.PutObject(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "PreconditionFailed", "ConditionalRequestConflict":
				return blobstore.ErrExists
			}
		}
		return err
	}
	return nil
}

// Delete removes a blob.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// List returns the blob names under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	full := strings.TrimSuffix(s.prefix, "/")
	if full != "" {
		full += "/"
	}
	names, err := listObjects(ctx, s.client, s.bucket, full+prefix, s.prefix)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(names, func(n string) bool { return !strings.HasPrefix(n, prefix) }), nil
}
