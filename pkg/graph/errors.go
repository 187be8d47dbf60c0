package graph

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrSelfLoop     = errors.New("self-loop not allowed")
	ErrNodeNotFound = errors.New("node not found")
	ErrEdgeNotFound = errors.New("edge not found")
)

// GraphError provides structured error information for graph mutations.
type GraphError struct {
	Op    string // Operation that failed (e.g., "AddEdge", "Build")
	Node  NodeID // Primary node involved
	Other NodeID // Second endpoint for edge operations
	Cause error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.Other != 0 || e.Node != 0 {
		return fmt.Sprintf("%s (%d, %d): %v", e.Op, e.Node, e.Other, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}
