// Package hash computes the CRC32-Castagnoli checksums shared by snapshot
// headers and S3 uploads.
//
// Snapshot headers store the raw value:
//
//	h.Checksum = hash.CRC32C(payload)
//
// S3 expects the big-endian bytes in base64 on PutObject:
//
//	input.ChecksumCRC32C = aws.String(hash.CRC32CBase64(data))
package hash
