// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jcodagnone/lugares/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walk(n int) []*spatial.Location {
	out := make([]*spatial.Location, n)
	for i := range out {
		out[i] = &spatial.Location{
			RecordedAt: base.Add(time.Duration(i) * time.Second),
			Point:      spatial.Point{Lat: -34.9 + float64(i)*1e-6, Lng: -56.16},
			Accuracy:   10,
		}
	}

	return out
}

func TestImportInBatches(t *testing.T) {
	service, repo := setupService(t)

	locations := walk(importBatchSize + 250)

	n, err := service.Import(context.Background(), locations)
	require.NoError(t, err)
	assert.Equal(t, len(locations), n)

	count, err := repo.CountLocations()
	require.NoError(t, err)
	assert.Equal(t, len(locations), count)

	for _, l := range locations {
		if l.ID == 0 {
			t.Fatalf("location recorded at %s has no id", l.RecordedAt)
		}
	}
}

func TestImportRejectsInvalidBeforeStoring(t *testing.T) {
	service, repo := setupService(t)

	locations := walk(10)
	locations[7].Accuracy = -3

	n, err := service.Import(context.Background(), locations)
	require.Error(t, err)
	assert.Zero(t, n)
	assert.True(t, IsInvalidLocationError(err))

	count, err := repo.CountLocations()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestImportCanceled(t *testing.T) {
	service, _ := setupService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := service.Import(ctx, walk(3))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func TestSeedIfEmpty(t *testing.T) {
	service, repo := setupService(t)

	missing := filepath.Join(t.TempDir(), "missing.json")

	seeded, n, err := service.SeedIfEmpty(context.Background(), missing)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Zero(t, n)

	path := filepath.Join(t.TempDir(), "trip.geojson")
	require.NoError(t, os.WriteFile(path, []byte(tripGeoJSON), 0o600))

	seeded, n, err = service.SeedIfEmpty(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.Equal(t, 2, n)

	// a second call leaves the store alone
	seeded, n, err = service.SeedIfEmpty(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Equal(t, 2, n)

	count, err := repo.CountLocations()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestReimportedSeedAcceptsNewLocations(t *testing.T) {
	source, sourceRepo := setupService(t)

	_, err := source.Import(context.Background(), walk(5))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "locations.json")
	_, err = ExportToJSON(sourceRepo, path)
	require.NoError(t, err)

	service, repo := setupService(t)

	seeded, n, err := service.SeedIfEmpty(context.Background(), path)
	require.NoError(t, err)
	require.True(t, seeded)
	require.Equal(t, 5, n)

	exported, err := repo.ListLocations(nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, exported, 5)

	report, err := service.Discover(context.Background(), Params{Eps: 50, MinPts: 2})
	require.NoError(t, err)
	require.Len(t, report.Places, 1)

	l := &spatial.Location{RecordedAt: base.Add(time.Hour), Point: spatial.Point{Lat: -34.9, Lng: -56.16}, Accuracy: 5}
	require.NoError(t, service.AddLocation(l))
	assert.Greater(t, l.ID, exported[len(exported)-1].ID)

	run, err := service.Run(report.RunID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids(exported), run.Members[0])

	count, err := repo.CountLocations()
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}
