package persistence

import (
	"fmt"

	"github.com/hupe1980/seqgraph/internal/hash"
)

// Checksum returns the CRC32C of data. It detects storage corruption, not
// tampering.
func Checksum(data []byte) uint32 {
	return hash.CRC32C(data)
}

// ChecksumMismatchError is returned when a payload does not match the
// checksum recorded for it.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

func (e *ChecksumMismatchError) Unwrap() error { return ErrCorrupt }

// verifyChecksum compares data against expected.
func verifyChecksum(data []byte, expected uint32) error {
	if actual := Checksum(data); actual != expected {
		return &ChecksumMismatchError{Expected: expected, Actual: actual}
	}
	return nil
}
