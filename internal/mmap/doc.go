// Package mmap maps snapshot files read-only into memory.
//
//	m, err := mmap.Open("graph/0001.snap")
//	if err != nil { ... }
//	defer m.Close()
//	m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix platforms use mmap(2) and madvise(2). On Windows the file is mapped
// with MapViewOfFile and Advise is a no-op.
//
// Bytes must not be used after Close.
package mmap
