// Package persistence encodes a graph store into a self-describing binary
// snapshot and stores snapshots in a blob store.
//
// A snapshot blob is a fixed 32-byte little-endian header followed by the
// payload:
//
//	magic "SQG0" | version | compression | flags | vertices | next pattern id
//	raw size | CRC32C of payload | reserved
//
// The raw body lists every vertex in id order with its width, its token
// (leaves only) and its patterns. Parent links are not stored; Load rebuilds
// them. The payload is the body compressed with LZ4, ZSTD or XZ, or stored
// as is.
//
// Slices of vertex ids are written straight from memory on little-endian
// platforms after an alignment check (see safety.go) and encoded element by
// element elsewhere.
package persistence
