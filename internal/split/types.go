// Package split computes where vertices must be cut so that a requested
// offset becomes a pattern boundary.
//
// Discovery walks from the root downwards, widest vertex first, so every
// vertex is classified once with its complete offset set. Each dirty cut
// (one that falls inside a child) requests the inner offset from that child
// and records a back-link to the requesting position. Finalization then
// visits every discovered vertex narrowest first and derives its partitions.
package split

import (
	"fmt"
	"slices"

	"github.com/hupe1980/seqgraph/graph"
)

// RootMode classifies how the match aligns with the root.
type RootMode uint8

const (
	// Prefix means the match starts at the root's start.
	Prefix RootMode = iota
	// Postfix means the match ends at the root's end.
	Postfix
	// Infix means the match lies strictly inside the root.
	Infix
)

func (m RootMode) String() string {
	switch m {
	case Prefix:
		return "prefix"
	case Postfix:
		return "postfix"
	case Infix:
		return "infix"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// SplitKey requests a boundary at Offset inside Vertex.
type SplitKey struct {
	Vertex graph.VertexID
	Offset int
}

func compareKeys(a, b SplitKey) int {
	if a.Vertex != b.Vertex {
		if a.Vertex < b.Vertex {
			return -1
		}
		return 1
	}
	return a.Offset - b.Offset
}

// SubSplit is the position of an offset inside one pattern. Inner is the
// offset inside the child at Sub; zero means the cut is clean.
type SubSplit struct {
	Sub   graph.SubLocation
	Inner int
}

// Clean reports whether the cut falls between two children.
func (s SubSplit) Clean() bool { return s.Inner == 0 }

// PositionCache holds one offset of one vertex.
type PositionCache struct {
	Offset int
	// Splits has one entry per pattern of the vertex.
	Splits map[graph.PatternID]SubSplit
	// Top lists the positions of wider vertices that depend on this one.
	Top []SplitKey
}

func newPositionCache(offset int) *PositionCache {
	return &PositionCache{Offset: offset, Splits: make(map[graph.PatternID]SubSplit)}
}

func (p *PositionCache) addTop(k SplitKey) {
	i, found := slices.BinarySearchFunc(p.Top, k, compareKeys)
	if !found {
		p.Top = slices.Insert(p.Top, i, k)
	}
}

// Clean reports whether the offset is a boundary in pattern pid.
func (p *PositionCache) Clean(pid graph.PatternID) bool {
	s, ok := p.Splits[pid]
	return ok && s.Clean()
}

// CleanPatterns returns the patterns in which the offset is a boundary.
func (p *PositionCache) CleanPatterns() []graph.PatternID {
	var out []graph.PatternID
	for pid, s := range p.Splits {
		if s.Clean() {
			out = append(out, pid)
		}
	}
	slices.Sort(out)
	return out
}

// Perfect reports whether at least one pattern needs no inner split.
func (p *PositionCache) Perfect() bool {
	for _, s := range p.Splits {
		if s.Clean() {
			return true
		}
	}
	return false
}

// Partition is the segment between two consecutive borders of a vertex.
// Left and Right list the patterns in which the respective border is clean.
type Partition struct {
	Start, End  int
	Left, Right []graph.PatternID
}

// Width returns the partition width.
func (p Partition) Width() int { return p.End - p.Start }

// VertexSplits holds every requested offset of one vertex.
type VertexSplits struct {
	Index graph.Child
	// Patterns lists the patterns classified at discovery. Patterns the
	// vertex gains later are not cut.
	Patterns   []graph.PatternID
	Positions  map[int]*PositionCache
	Offsets    []int
	Partitions []Partition
}

// Position returns the cache of one offset.
func (vs *VertexSplits) Position(offset int) (*PositionCache, bool) {
	p, ok := vs.Positions[offset]
	return p, ok
}

// Borders returns 0, the sorted offsets and the vertex width.
func (vs *VertexSplits) Borders() []int {
	out := make([]int, 0, len(vs.Offsets)+2)
	out = append(out, 0)
	out = append(out, vs.Offsets...)
	return append(out, vs.Index.Width)
}

// PartitionAt returns the index of the partition starting at start.
func (vs *VertexSplits) PartitionAt(start int) (int, bool) {
	i, found := slices.BinarySearchFunc(vs.Partitions, start, func(p Partition, s int) int {
		return p.Start - s
	})
	return i, found
}

// PartitionsIn returns the indices [from, to) of the partitions exactly
// covering [start, end). ok is false if start or end is not a border.
func (vs *VertexSplits) PartitionsIn(start, end int) (from, to int, ok bool) {
	from, ok = vs.PartitionAt(start)
	if !ok {
		return 0, 0, false
	}
	to = from
	for to < len(vs.Partitions) && vs.Partitions[to].End <= end {
		to++
	}
	if to == from || vs.Partitions[to-1].End != end {
		return 0, 0, false
	}
	return from, to, true
}
