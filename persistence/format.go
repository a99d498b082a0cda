package persistence

import (
	"errors"
	"fmt"
)

const (
	// MagicNumber identifies snapshot blobs (ASCII "SQG0").
	MagicNumber = 0x53514730
	// Version is the snapshot format version.
	Version = 1

	// HeaderSize is the encoded size of Header.
	HeaderSize = 32
)

var (
	ErrInvalidMagic   = errors.New("persistence: invalid magic number")
	ErrInvalidVersion = errors.New("persistence: unsupported version")
	ErrCorrupt        = errors.New("persistence: corrupt snapshot")
)

// Header is the fixed header at the start of every snapshot blob.
type Header struct {
	Magic       uint32
	Version     uint16
	Compression Compression
	Flags       uint8
	VertexCount uint32
	NextPattern uint32
	RawSize     uint64
	Checksum    uint32 // CRC32C of the payload
	Reserved    uint32
}

func (h *Header) validate() error {
	if h.Magic != MagicNumber {
		return fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return fmt.Errorf("%w: got %d", ErrInvalidVersion, h.Version)
	}
	if !h.Compression.Valid() {
		return fmt.Errorf("%w: unknown compression %d", ErrCorrupt, h.Compression)
	}
	return nil
}

// CorruptError locates a decoding failure in the raw body.
type CorruptError struct {
	Offset int64
	Reason string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("%s at byte %d: %s", ErrCorrupt, e.Offset, e.Reason)
}

func (e *CorruptError) Unwrap() error { return ErrCorrupt }
