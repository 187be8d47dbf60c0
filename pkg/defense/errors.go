// Package defense reinforces a network by adding the candidate edges with the
// highest effective resistance, using a single sparse factorization of the
// grounded Laplacian to answer every resistance query.
package defense

import (
	"errors"
)

var (
	// ErrTooSmall is returned when factorizing a graph with fewer than 2 nodes
	ErrTooSmall = errors.New("graph too small to factorize")

	// ErrNotPositiveDefinite is returned when the grounded Laplacian has a
	// non-positive pivot, which happens when the graph is disconnected
	ErrNotPositiveDefinite = errors.New("grounded laplacian is not positive definite")

	// ErrNodeNotFactorized is returned for resistance queries on nodes outside
	// the factorized graph
	ErrNodeNotFactorized = errors.New("node not in factorization")
)
