// Package s3 stores blobs in Amazon S3.
//
// Small blobs are written with a single PutObject carrying a CRC32C checksum;
// blobs of at least UploadConfig.PartSize go through the multipart uploader.
// Reads use ranged GetObject requests.
//
// S3 has no compare-and-swap, so concurrent writers of the same graph should
// wrap the store in a CommitStore, which keeps the CURRENT pointers in a
// DynamoDB table with conditional writes.
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "graphs", "corpus")
//	commits := s3.NewCommitStore(store, dynamodb.NewFromConfig(cfg), "seqgraph-commits", "s3://graphs/corpus")
package s3
