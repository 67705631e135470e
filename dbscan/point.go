// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package dbscan

import "math"

// Point is the only capability the engine needs from the values it clusters.
//
// Distance must be symmetric and non-negative, and should return 0 when a
// point is compared with itself. The engine never validates these properties.
type Point[T any] interface {
	Distance(other T) float64
}

// Float adapts a float64 so that one dimensional values can be clustered
// using the absolute difference as distance.
type Float float64

// Distance returns |f - other|.
func (f Float) Distance(other Float) float64 {
	return math.Abs(float64(f - other))
}
