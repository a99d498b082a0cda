package mmap

import "errors"

// AccessPattern is a hint about how mapped data will be read.
type AccessPattern int

const (
	// AccessDefault gives no advice.
	AccessDefault AccessPattern = iota
	// AccessSequential expects one front-to-back pass, as in snapshot decoding.
	AccessSequential
	// AccessRandom expects scattered reads.
	AccessRandom
	// AccessWillNeed asks the kernel to read ahead.
	AccessWillNeed
	// AccessDontNeed lets the kernel drop the pages.
	AccessDontNeed
)

var (
	// ErrClosed is returned when using a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for files whose size cannot be mapped.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrInvalidOffset is returned for negative read offsets.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
