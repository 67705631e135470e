// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package dbscan

// Index narrows down region queries.
//
// Candidates must return a superset of the input indices whose point lies
// strictly within eps of points[i], including i itself. Order and duplicates
// do not matter: the engine sorts, deduplicates and filters candidates with
// the exact distance, so any conforming index yields the same clusters as a
// full scan.
type Index interface {
	Candidates(i int) []int
}

// IndexBuilder builds an Index for a single clustering call.
type IndexBuilder[T any] func(points []T, eps float64) Index

// Option customizes an engine at construction time.
type Option[T Point[T]] func(*DBSCAN[T])

// WithIndex makes the engine build an Index per call instead of scanning the
// full input on every region query.
func WithIndex[T Point[T]](builder IndexBuilder[T]) Option[T] {
	return func(d *DBSCAN[T]) {
		d.index = builder
	}
}

// AllIndices is an Index that returns every input position. It is useful as
// a fallback for builders that cannot partition the input.
type AllIndices int

// Candidates returns 0..n-1.
func (n AllIndices) Candidates(_ int) []int {
	all := make([]int, int(n))
	for i := range all {
		all[i] = i
	}

	return all
}
