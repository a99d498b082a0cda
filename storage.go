package seqgraph

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/seqgraph/blobstore"
	badgerstore "github.com/hupe1980/seqgraph/blobstore/badger"
	miniostore "github.com/hupe1980/seqgraph/blobstore/minio"
	s3store "github.com/hupe1980/seqgraph/blobstore/s3"
)

// StorageConfig selects the blob store snapshots are written to.
type StorageConfig struct {
	// Backend is one of memory, local, badger, s3 or minio. Default memory.
	Backend string `json:"backend" yaml:"backend" validate:"omitempty,oneof=memory local badger s3 minio"`

	// Path is the directory of the local and badger backends. An empty
	// badger path keeps the database in memory.
	Path string `json:"path" yaml:"path" validate:"required_if=Backend local"`

	Bucket string `json:"bucket" yaml:"bucket" validate:"required_if=Backend s3,required_if=Backend minio"`
	Prefix string `json:"prefix" yaml:"prefix"`
	Region string `json:"region" yaml:"region"`

	// CommitTable is a DynamoDB table that versions the CURRENT pointers of
	// the s3 backend.
	CommitTable string `json:"commit_table" yaml:"commit_table"`

	Endpoint  string `json:"endpoint" yaml:"endpoint" validate:"required_if=Backend minio"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl"`
}

// Open opens the configured blob store. The returned close function
// releases backend resources and is never nil.
func (c StorageConfig) Open(ctx context.Context, logger *slog.Logger) (blobstore.BlobStore, func() error, error) {
	noop := func() error { return nil }

	switch c.Backend {
	case "", "memory":
		return blobstore.NewMemoryStore(), noop, nil

	case "local":
		return blobstore.NewLocalStore(c.Path), noop, nil

	case "badger":
		cfg := badgerstore.InMemoryConfig()
		if c.Path != "" {
			cfg = badgerstore.DefaultConfig(c.Path)
		}
		cfg.KeyPrefix = c.Prefix
		cfg.Logger = logger
		st, err := badgerstore.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil

	case "s3":
		client, awsCfg, err := s3store.NewClient(ctx, c.Region)
		if err != nil {
			return nil, nil, fmt.Errorf("seqgraph: load aws config: %w", err)
		}
		var st blobstore.BlobStore = s3store.NewStore(client, c.Bucket, c.Prefix)
		if c.CommitTable != "" {
			baseURI := "s3://" + path.Join(c.Bucket, c.Prefix)
			st = s3store.NewCommitStore(st, dynamodb.NewFromConfig(awsCfg), c.CommitTable, baseURI)
		}
		return st, noop, nil

	case "minio":
		client, err := minio.New(c.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
			Secure: c.UseSSL,
			Region: c.Region,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("seqgraph: minio client: %w", err)
		}
		return miniostore.NewStore(client, c.Bucket, c.Prefix), noop, nil

	default:
		return nil, nil, fmt.Errorf("seqgraph: unknown storage backend %q", c.Backend)
	}
}
