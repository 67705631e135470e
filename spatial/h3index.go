// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"log"

	"github.com/jcodagnone/lugares/dbscan"
	"github.com/uber/h3-go/v4"
)

// h3EdgeLengthAvgM holds the average hexagon edge length in meters for each
// h3 resolution, as published by the h3 project.
var h3EdgeLengthAvgM = [...]float64{
	1281256.011, 483056.8391, 182512.9565, 68979.22179,
	26071.75968, 9854.090990, 3724.532667, 1406.475763,
	531.4140101, 200.7861476, 75.86378287, 28.66389748,
	10.83018784, 4.092010473, 1.546099657, 0.584168630,
}

// h3DiskRadius is the grid distance scanned around a location's cell. Cells
// are chosen with an average edge of at least eps, and two rings absorb the
// size distortion of h3 cells across the globe.
const h3DiskRadius = 2

// h3Resolution returns the finest resolution whose cells are large enough
// for eps, or false when eps exceeds even the coarsest cells.
func h3Resolution(eps float64) (int, bool) {
	for res := len(h3EdgeLengthAvgM) - 1; res >= 0; res-- {
		if h3EdgeLengthAvgM[res] >= eps {
			return res, true
		}
	}

	return 0, false
}

type h3Index struct {
	cells   []h3.Cell
	buckets map[h3.Cell][]int
	// disks caches the candidates of every cell already queried.
	disks map[h3.Cell][]int
	all   dbscan.AllIndices
}

// H3Index is a dbscan.IndexBuilder for locations. It buckets locations by
// h3 cell and answers region queries with the locations of the surrounding
// cells. Whenever h3 cannot help it degrades to a full scan, so clustering
// results never differ from the unindexed engine.
func H3Index(locations []*Location, eps float64) dbscan.Index {
	all := dbscan.AllIndices(len(locations))

	res, ok := h3Resolution(eps)
	if !ok {
		return all
	}

	idx := &h3Index{
		cells:   make([]h3.Cell, len(locations)),
		buckets: make(map[h3.Cell][]int),
		disks:   make(map[h3.Cell][]int),
		all:     all,
	}

	for i, l := range locations {
		cell, err := h3.LatLngToCell(h3.NewLatLng(l.Point.Lat, l.Point.Lng), res)
		if err != nil {
			log.Printf("h3 index disabled, location %d: %v", l.ID, err)

			return all
		}

		idx.cells[i] = cell
		idx.buckets[cell] = append(idx.buckets[cell], i)
	}

	return idx
}

func (idx *h3Index) Candidates(i int) []int {
	origin := idx.cells[i]
	if candidates, ok := idx.disks[origin]; ok {
		return candidates
	}

	disk, err := h3.GridDisk(origin, h3DiskRadius)
	if err != nil {
		return idx.all.Candidates(i)
	}

	var candidates []int
	for _, cell := range disk {
		candidates = append(candidates, idx.buckets[cell]...)
	}

	idx.disks[origin] = candidates

	return candidates
}
