// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package dbscan

// Cluster is a duplicate-free group of points discovered by the engine.
//
// It is append-only while the engine builds it. Once returned the caller owns
// it and the engine never touches it again. It is not safe for concurrent
// mutation.
type Cluster[T any] struct {
	points []T
}

// AddPoint appends p to the cluster. The engine guarantees it is called at
// most once per input point.
func (c *Cluster[T]) AddPoint(p T) {
	c.points = append(c.points, p)
}

// Points returns the members of the cluster in the order they were added.
func (c *Cluster[T]) Points() []T {
	return c.points
}

// Size returns the number of members.
func (c *Cluster[T]) Size() int {
	return len(c.points)
}
