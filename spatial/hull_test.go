// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func pt(lng, lat float64) Point {
	return Point{Lat: lat, Lng: lng}
}

func TestConvexHull(t *testing.T) {
	tests := []struct {
		name     string
		input    []Point
		expected []Point
	}{
		{"empty", nil, []Point{}},
		{"single", []Point{pt(1, 1)}, []Point{pt(1, 1)}},
		{"duplicates collapse", []Point{pt(1, 1), pt(1, 1)}, []Point{pt(1, 1)}},
		{"two points", []Point{pt(2, 2), pt(1, 1)}, []Point{pt(1, 1), pt(2, 2)}},
		{"collinear", []Point{pt(0, 0), pt(2, 2), pt(1, 1)}, []Point{pt(0, 0), pt(2, 2)}},
		{
			"square with interior and edge points",
			[]Point{pt(0, 0), pt(2, 0), pt(2, 2), pt(0, 2), pt(1, 1), pt(1, 0), pt(0.5, 1.5)},
			[]Point{pt(0, 0), pt(2, 0), pt(2, 2), pt(0, 2)},
		},
		{
			"triangle",
			[]Point{pt(3, 1), pt(0, 0), pt(1, 4)},
			[]Point{pt(0, 0), pt(3, 1), pt(1, 4)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ConvexHull(tc.input)
			if len(tc.expected) == 0 {
				assert.Empty(t, got)

				return
			}

			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("ConvexHull() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvexHullDoesNotModifyInput(t *testing.T) {
	input := []Point{pt(2, 2), pt(0, 0), pt(1, 3)}
	_ = ConvexHull(input)
	assert.Equal(t, []Point{pt(2, 2), pt(0, 0), pt(1, 3)}, input)
}

func TestCentroid(t *testing.T) {
	assert.Equal(t, Point{}, Centroid(nil))
	assert.Equal(t, pt(1, 1), Centroid([]Point{pt(0, 0), pt(2, 0), pt(2, 2), pt(0, 2)}))
}
