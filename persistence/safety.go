package persistence

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/seqgraph/graph"
)

// nativeLittleEndian is true when the in-memory layout of a uint32 matches
// the on-disk layout.
var nativeLittleEndian = isLittleEndian()

func isLittleEndian() bool {
	var test uint16 = 0x0001
	return *(*byte)(unsafe.Pointer(&test)) == 1
}

// ErrUnalignedAccess is returned when a slice cannot be reinterpreted safely.
var ErrUnalignedAccess = fmt.Errorf("%w: unaligned memory access", ErrCorrupt)

func validateIDSliceAlignment(ids []graph.VertexID) error {
	if len(ids) == 0 {
		return nil
	}
	ptr := uintptr(unsafe.Pointer(&ids[0]))
	if ptr%unsafe.Alignof(ids[0]) != 0 {
		return fmt.Errorf("%w: vertex id slice at 0x%x", ErrUnalignedAccess, ptr)
	}
	return nil
}

// idBytes views ids as raw bytes. Only valid on little-endian platforms.
func idBytes(ids []graph.VertexID) ([]byte, error) {
	if err := validateIDSliceAlignment(ids); err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&ids[0])), len(ids)*4), nil
}
