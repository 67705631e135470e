// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ConvexHull returns the convex hull of points treating longitude as x and
// latitude as y. The hull is counter-clockwise, starts at the point with the
// lowest longitude (lowest latitude on ties), has no repeated or collinear
// vertices and is not closed. Fewer than three distinct points are returned
// as they are, deduplicated.
func ConvexHull(points []Point) []Point {
	sorted := slices.Clone(points)
	slices.SortFunc(sorted, func(a, b Point) int {
		if a.Lng != b.Lng {
			if a.Lng < b.Lng {
				return -1
			}

			return 1
		}

		switch {
		case a.Lat < b.Lat:
			return -1
		case a.Lat > b.Lat:
			return 1
		default:
			return 0
		}
	})
	sorted = slices.Compact(sorted)

	if len(sorted) < 3 {
		return sorted
	}

	hull := make([]Point, 0, 2*len(sorted))

	// lower chain
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}

		hull = append(hull, p)
	}

	// upper chain
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}

		hull = append(hull, p)
	}

	// the last point repeats the first one
	hull = hull[:len(hull)-1]

	// all points were collinear
	if len(hull) < 3 {
		return []Point{sorted[0], sorted[len(sorted)-1]}
	}

	return hull
}

// cross is the z component of (a->b) x (a->c); positive for a left turn.
func cross(a, b, c Point) float64 {
	return (b.Lng-a.Lng)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lng-a.Lng)
}

// Centroid returns the arithmetic mean of the latitudes and longitudes of
// points. It is meant for display and ignores the antimeridian.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}

	lats := make([]float64, len(points))
	lngs := make([]float64, len(points))

	for i, p := range points {
		lats[i] = p.Lat
		lngs[i] = p.Lng
	}

	return Point{Lat: stat.Mean(lats, nil), Lng: stat.Mean(lngs, nil)}
}
