// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package dbscan

import (
	"errors"
	"math"
	"math/rand"
	"slices"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floats(vs ...float64) []Float {
	out := make([]Float, len(vs))
	for i, v := range vs {
		out[i] = Float(v)
	}

	return out
}

func members[T any](clusters []*Cluster[T]) [][]T {
	out := make([][]T, 0, len(clusters))
	for _, c := range clusters {
		out = append(out, slices.Clone(c.Points()))
	}

	return out
}

var sortFloats = cmpopts.SortSlices(func(a, b Float) bool { return a < b })

func TestClusterScenarios(t *testing.T) {
	tests := []struct {
		name     string
		input    []Float
		eps      float64
		minPts   int
		expected [][]Float
		noise    []Float
	}{
		{
			name:     "two separated groups",
			input:    floats(1, 2, 3, 10, 11, 12),
			eps:      2,
			minPts:   2,
			expected: [][]Float{floats(1, 2, 3), floats(10, 11, 12)},
		},
		{
			name:     "single outlier",
			input:    floats(1, 2, 3, 100),
			eps:      2,
			minPts:   2,
			expected: [][]Float{floats(1, 2, 3)},
			noise:    floats(100),
		},
		{
			name:     "a point is its own neighbour",
			input:    floats(5),
			eps:      1,
			minPts:   1,
			expected: [][]Float{floats(5)},
		},
		{
			name:     "everything is noise",
			input:    floats(1, 2, 3),
			eps:      0.5,
			minPts:   2,
			expected: [][]Float{},
			noise:    floats(1, 2, 3),
		},
		{
			name:     "border points stay with their own core",
			input:    floats(1, 2, 4, 5),
			eps:      1.5,
			minPts:   2,
			expected: [][]Float{floats(1, 2), floats(4, 5)},
		},
		{
			name:     "distance equal to eps is not a neighbour",
			input:    floats(0, 2, 4),
			eps:      2,
			minPts:   2,
			expected: [][]Float{},
			noise:    floats(0, 2, 4),
		},
		{
			name:     "empty input",
			input:    nil,
			eps:      1,
			minPts:   1,
			expected: [][]Float{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := New[Float](tc.eps, tc.minPts)
			require.NoError(t, err)

			result := d.Run(tc.input)

			if diff := cmp.Diff(tc.expected, members(result.Clusters), sortFloats, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("clusters mismatch (-want +got):\n%s", diff)
			}

			if diff := cmp.Diff(tc.noise, result.Noise, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("noise mismatch (-want +got):\n%s", diff)
			}

			assert.Equal(t, members(result.Clusters), members(d.Cluster(tc.input)))
		})
	}
}

func TestNewRejectsInvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		eps    float64
		minPts int
		param  string
	}{
		{"zero eps", 0, 1, "eps"},
		{"negative eps", -1, 1, "eps"},
		{"NaN eps", math.NaN(), 1, "eps"},
		{"infinite eps", math.Inf(1), 1, "eps"},
		{"zero minPts", 1, 0, "minPts"},
		{"negative minPts", 1, -3, "minPts"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := New[Float](tc.eps, tc.minPts)
			require.Error(t, err)
			assert.Nil(t, d)
			assert.True(t, IsConfigError(err))
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.param, cfgErr.Param)
		})
	}
}

func TestAccessors(t *testing.T) {
	d, err := New[Float](2.5, 4)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, d.Eps(), 0)
	assert.Equal(t, 4, d.MinPts())
}

func TestNoiseIsReclaimedAsBorderPoint(t *testing.T) {
	// 0 is scanned first and has only {0, 1} as neighbours, so it is noise
	// until 1 turns out to be a core point.
	d, err := New[Float](1.5, 3)
	require.NoError(t, err)

	result := d.Run(floats(0, 1, 2, 3))
	require.Len(t, result.Clusters, 1)
	assert.ElementsMatch(t, floats(0, 1, 2, 3), result.Clusters[0].Points())
	assert.Empty(t, result.Noise)
	assert.Equal(t, []int{0, 0, 0, 0}, result.Labels)
}

func TestFirstCoreClaimsSharedBorderPoint(t *testing.T) {
	// 2 is not a core point but lies within eps of the core points 1 and 3,
	// which belong to clusters that cannot reach each other. Whichever
	// cluster is expanded first claims it.
	left := floats(0.4, 0.6, 0.8, 1)
	right := floats(3, 3.2, 3.4, 3.6)
	border := Float(2)

	d, err := New[Float](1.1, 4)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input []Float
		owner []Float
		other []Float
	}{
		{"left first", append(append(slices.Clone(left), border), right...), left, right},
		{"right first", append(append(slices.Clone(right), border), left...), right, left},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clusters := d.Cluster(tc.input)
			require.Len(t, clusters, 2)
			assert.ElementsMatch(t, append(slices.Clone(tc.owner), border), clusters[0].Points())
			assert.ElementsMatch(t, tc.other, clusters[1].Points())
		})
	}
}

func TestDuplicatesAreIndependentPoints(t *testing.T) {
	d, err := New[Float](0.5, 2)
	require.NoError(t, err)

	result := d.Run(floats(1, 1, 7))
	require.Len(t, result.Clusters, 1)
	assert.Equal(t, 2, result.Clusters[0].Size())
	assert.Equal(t, floats(7), result.Noise)
	assert.Equal(t, []int{0, 0, Noise}, result.Labels)
}

func TestMinPtsOneMakesEveryPointACluster(t *testing.T) {
	d, err := New[Float](0.1, 1)
	require.NoError(t, err)

	clusters := d.Cluster(floats(1, 2, 3, 4))
	require.Len(t, clusters, 4)

	for i, c := range clusters {
		assert.Equal(t, []Float{Float(i + 1)}, c.Points())
	}
}

func TestClusterOrderFollowsDiscovery(t *testing.T) {
	d, err := New[Float](2, 2)
	require.NoError(t, err)

	clusters := d.Cluster(floats(10, 1, 11, 2))
	require.Len(t, clusters, 2)
	assert.Contains(t, clusters[0].Points(), Float(10))
	assert.Contains(t, clusters[1].Points(), Float(1))
}

type panicky struct{}

func (panicky) Distance(_ panicky) float64 {
	panic("broken distance")
}

func TestDistancePanicsPropagate(t *testing.T) {
	d, err := New[panicky](1, 1)
	require.NoError(t, err)

	assert.PanicsWithValue(t, "broken distance", func() {
		d.Cluster([]panicky{{}, {}})
	})
}

func TestConcurrentCallsShareEngine(t *testing.T) {
	d, err := New[Float](2, 2)
	require.NoError(t, err)

	want := members(d.Cluster(floats(1, 2, 3, 10, 11, 12, 50)))

	var wg sync.WaitGroup

	got := make([][][]Float, 8)

	for i := range got {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			got[i] = members(d.Cluster(floats(1, 2, 3, 10, 11, 12, 50)))
		}(i)
	}

	wg.Wait()

	for _, g := range got {
		assert.Equal(t, want, g)
	}
}

// shuffledIndex returns every position in a scrambled order, with
// duplicates, to prove the engine does not depend on candidate order.
type shuffledIndex struct {
	n   int
	rnd *rand.Rand
}

func (s *shuffledIndex) Candidates(_ int) []int {
	out := s.rnd.Perm(s.n)

	return append(out, out[:s.n/2]...)
}

func TestIndexDoesNotChangeOutput(t *testing.T) {
	points := randomPlane(rand.New(rand.NewSource(7)), 300)

	naive, err := New[xy](0.8, 4)
	require.NoError(t, err)

	withIndex, err := New[xy](0.8, 4, WithIndex[xy](func(points []xy, _ float64) Index {
		return &shuffledIndex{n: len(points), rnd: rand.New(rand.NewSource(1))}
	}))
	require.NoError(t, err)

	withAll, err := New[xy](0.8, 4, WithIndex[xy](func(points []xy, _ float64) Index {
		return AllIndices(len(points))
	}))
	require.NoError(t, err)

	want := naive.Run(points)
	for _, d := range []*DBSCAN[xy]{withIndex, withAll} {
		got := d.Run(points)
		assert.Equal(t, want.Labels, got.Labels)
		assert.Equal(t, members(want.Clusters), members(got.Clusters))
	}
}

func TestAllIndices(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, AllIndices(3).Candidates(1))
	assert.Empty(t, AllIndices(0).Candidates(0))
}

func TestFloatDistance(t *testing.T) {
	assert.InDelta(t, 3.0, Float(1).Distance(Float(4)), 0)
	assert.InDelta(t, 3.0, Float(4).Distance(Float(1)), 0)
	assert.InDelta(t, 0.0, Float(-2).Distance(Float(-2)), 0)
}
