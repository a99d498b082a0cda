// Package blobstore stores graph snapshots and their manifests as named,
// immutable blobs.
//
// Names are slash separated ("graph/0001.snap"). Writers replace whole blobs
// with Put; readers Open a blob and read ranges with ReadAt. Implementations
// must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process maps, for tests
//   - LocalStore: a directory on disk; atomic writes, mmap reads
//   - badger.Store: a Badger key-value database
//   - minio.Store: MinIO and other S3-compatible services
//   - s3.Store: Amazon S3, with s3.CommitStore for DynamoDB-backed commits
package blobstore
