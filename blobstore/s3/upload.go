package s3

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/seqgraph/internal/hash"
)

// UploadConfig configures uploads.
type UploadConfig struct {
	// PartSize is the multipart part size and the threshold above which
	// Put switches to the multipart uploader. Default: 8MB.
	PartSize int64

	// Concurrency is the number of parts uploaded in parallel. Default: 5.
	Concurrency int

	// EnableChecksum sends CRC32C checksums. Default: true.
	EnableChecksum bool

	// LeavePartsOnError keeps the parts of a failed multipart upload.
	LeavePartsOnError bool
}

// DefaultUploadConfig returns the default upload settings.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:       8 * 1024 * 1024,
		Concurrency:    5,
		EnableChecksum: true,
	}
}

func newUploader(client Client, cfg UploadConfig) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = cfg.PartSize
		u.Concurrency = cfg.Concurrency
		u.LeavePartsOnError = cfg.LeavePartsOnError
	})
}

func putObjectInput(bucket, key string, data []byte, checksum bool) *s3.PutObjectInput {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if checksum {
		input.ChecksumCRC32C = aws.String(hash.CRC32CBase64(data))
	}
	return input
}

// uploadMultipart streams data through the multipart uploader.
func uploadMultipart(ctx context.Context, u *manager.Uploader, bucket, key string, data []byte, checksum bool) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if checksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}
	_, err := u.Upload(ctx, input)
	return err
}
