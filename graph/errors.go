package graph

import (
	"errors"
	"fmt"
)

// ErrInvalidGraph is wrapped by every error returned from Validate.
var ErrInvalidGraph = errors.New("invalid graph")

// InvariantError is the panic value raised when a structural invariant of
// the store is violated. It indicates a bug in the caller, not bad input.
type InvariantError struct {
	Op  string
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("graph: %s: %s", e.Op, e.Msg)
}

func invariant(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

// ValidationError describes the first inconsistency found by Validate.
type ValidationError struct {
	Vertex VertexID
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: vertex %d: %s", ErrInvalidGraph, e.Vertex, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidGraph }
