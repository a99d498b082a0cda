package seqgraph

import (
	"errors"
	"fmt"

	"github.com/hupe1980/seqgraph/graph"
	"github.com/hupe1980/seqgraph/internal/insert"
	"github.com/hupe1980/seqgraph/internal/split"
	"github.com/hupe1980/seqgraph/internal/traversal"
	"github.com/hupe1980/seqgraph/manifest"
	"github.com/hupe1980/seqgraph/persistence"
)

var (
	// ErrEmptyPatterns is returned for an empty query or an empty pattern.
	ErrEmptyPatterns = errors.New("empty patterns")

	// ErrNoMatchingParent is returned when no vertex continues the query
	// beyond its first element.
	ErrNoMatchingParent = errors.New("no matching parent")

	// ErrMismatch is returned by FindParent when a parent matched only part
	// of the query.
	ErrMismatch = errors.New("mismatch")

	// ErrPatternMismatch is returned by InsertPatterns when the patterns
	// differ in width or content.
	ErrPatternMismatch = errors.New("pattern mismatch")

	// ErrInvalidOffset is returned when a split offset does not lie strictly
	// inside the vertex.
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrUnknownToken is returned when a query names a token that has never
	// been inserted.
	ErrUnknownToken = errors.New("unknown token")

	// ErrUnknownVertex is returned when a child does not reference an
	// existing vertex of its width.
	ErrUnknownVertex = errors.New("unknown vertex")

	// ErrInvalidGraph is returned when a store fails validation.
	ErrInvalidGraph = errors.New("invalid graph")

	// ErrNotFound is returned when a graph has no saved snapshot.
	ErrNotFound = errors.New("not found")

	// ErrCorrupt is returned when a snapshot cannot be decoded.
	ErrCorrupt = errors.New("corrupt snapshot")
)

// ErrSingleIndex is returned when a query consists of a single known
// vertex. Child is that vertex.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrSingleIndex struct {
	Child Child
	cause error
}

func (e *ErrSingleIndex) Error() string {
	return fmt.Sprintf("single index %v", e.Child)
}

func (e *ErrSingleIndex) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var si *traversal.ErrSingleIndex
	if errors.As(err, &si) {
		return &ErrSingleIndex{Child: si.Child, cause: err}
	}

	switch {
	case errors.Is(err, traversal.ErrEmptyPatterns):
		return fmt.Errorf("%w: %w", ErrEmptyPatterns, err)
	case errors.Is(err, traversal.ErrNoMatchingParent):
		return fmt.Errorf("%w: %w", ErrNoMatchingParent, err)
	case errors.Is(err, traversal.ErrMismatch):
		return fmt.Errorf("%w: %w", ErrMismatch, err)
	case errors.Is(err, insert.ErrPatternMismatch):
		return fmt.Errorf("%w: %w", ErrPatternMismatch, err)
	case errors.Is(err, split.ErrInvalidInterval), errors.Is(err, split.ErrCompleteInterval):
		return fmt.Errorf("%w: %w", ErrInvalidOffset, err)
	case errors.Is(err, manifest.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, persistence.ErrCorrupt),
		errors.Is(err, persistence.ErrInvalidMagic),
		errors.Is(err, persistence.ErrInvalidVersion):
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	case errors.Is(err, graph.ErrInvalidGraph):
		return fmt.Errorf("%w: %w", ErrInvalidGraph, err)
	}
	return err
}
