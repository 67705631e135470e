// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"fmt"
	"time"

	"github.com/uber/h3-go/v4"
)

// MaxH3Resolution is the finest h3 resolution stored for each location.
const MaxH3Resolution = 8

// Location is a single GPS fix.
type Location struct {
	ID         int64     `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	Point      Point     `json:"point"`
	Accuracy   float64   `json:"accuracy"` // meters
}

// Distance returns the great-circle distance in meters to other.
func (l *Location) Distance(other *Location) float64 {
	return l.Point.HaversineDistance(&other.Point)
}

// Cells returns the h3 cell containing the location for resolutions 1 to
// MaxH3Resolution, in that order.
func (l *Location) Cells() ([MaxH3Resolution]uint64, error) {
	var cells [MaxH3Resolution]uint64

	latLng := h3.NewLatLng(l.Point.Lat, l.Point.Lng)
	for res := 1; res <= MaxH3Resolution; res++ {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return cells, fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
		}

		cells[res-1] = uint64(cell)
	}

	return cells, nil
}
