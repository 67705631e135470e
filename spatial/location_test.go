// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/h3-go/v4"
)

func TestLocationDistanceIsSymmetric(t *testing.T) {
	a := &Location{ID: 1, Point: Point{Lat: -34.9058, Lng: -56.1913}}
	b := &Location{ID: 2, Point: Point{Lat: -34.9011, Lng: -56.1645}}

	assert.InDelta(t, a.Distance(b), b.Distance(a), 1e-9)
	assert.InDelta(t, 0, a.Distance(a), 0)
	assert.Greater(t, a.Distance(b), 2000.0)
	assert.Less(t, a.Distance(b), 3000.0)
}

func TestLocationCells(t *testing.T) {
	l := &Location{Point: Point{Lat: -34.8822366, Lng: -56.1529602}}

	cells, err := l.Cells()
	require.NoError(t, err)

	for i, c := range cells {
		cell := h3.Cell(c)
		assert.True(t, cell.IsValid(), "res %d", i+1)
		assert.Equal(t, i+1, cell.Resolution())
	}

	// every cell contains the finer ones
	for i := 1; i < len(cells); i++ {
		parent, err := h3.Cell(cells[i]).Parent(i)
		require.NoError(t, err)
		assert.Equal(t, h3.Cell(cells[i-1]), parent)
	}
}
