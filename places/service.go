// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

// Package places discovers the places a person frequents by clustering the
// GPS fixes kept in the store.
package places

import (
	"context"
	"log"
	"math"
	"slices"
	"time"

	"github.com/jcodagnone/lugares/dbscan"
	"github.com/jcodagnone/lugares/spatial"
	"github.com/jcodagnone/lugares/store"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultEps is the neighbourhood radius used when none is given, in meters.
	DefaultEps = 50.0
	// DefaultMinPts is the minimum neighbourhood size used when none is given.
	DefaultMinPts = 5
)

// Params configures a discovery.
type Params struct {
	Eps    float64    `json:"eps"`
	MinPts int        `json:"min_pts"`
	From   *time.Time `json:"from,omitempty"`
	To     *time.Time `json:"to,omitempty"`
	// UseH3 answers neighbourhood queries from an h3 grid instead of
	// comparing every pair of fixes. The partition is the same.
	UseH3 bool `json:"use_h3"`
}

// Place is a cluster of fixes.
type Place struct {
	Index    int             `json:"index"`
	Size     int             `json:"size"`
	Centroid spatial.Point   `json:"centroid"`
	Hull     []spatial.Point `json:"hull"`
	// SpreadMeters is the root mean square distance of the fixes to the centroid.
	SpreadMeters   float64   `json:"spread_meters"`
	MedianAccuracy float64   `json:"median_accuracy"`
	FirstSeen      time.Time `json:"first_seen"`
	LastSeen       time.Time `json:"last_seen"`
	LocationIDs    []int64   `json:"location_ids"`
}

// Report is the outcome of a discovery.
type Report struct {
	RunID      string    `json:"run_id"`
	CreatedAt  time.Time `json:"created_at"`
	Params     Params    `json:"params"`
	PointCount int       `json:"point_count"`
	Places     []*Place  `json:"places"`
	Noise      []int64   `json:"noise"`
}

// Service runs discoveries over the stored fixes.
type Service struct {
	repo store.Repository
}

// NewService creates a service backed by repo.
func NewService(repo store.Repository) *Service {
	return &Service{repo: repo}
}

// Discover clusters the fixes recorded within the requested window and
// stores the run.
func (s *Service) Discover(ctx context.Context, params Params) (*Report, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	locations, err := s.repo.ListLocations(params.From, params.To, 0, 0)
	if err != nil {
		return nil, storageError(err, "listing locations")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts []dbscan.Option[*spatial.Location]
	if params.UseH3 {
		opts = append(opts, dbscan.WithIndex[*spatial.Location](spatial.H3Index))
	}

	engine, err := dbscan.New[*spatial.Location](params.Eps, params.MinPts, opts...)
	if err != nil {
		return nil, newError(ErrorTypeInvalidParams, err, "building engine")
	}

	start := time.Now()
	result := engine.Run(locations)

	log.Printf(
		"Clustered %d locations into %d places (%d noise) in %s",
		len(locations),
		len(result.Clusters),
		len(result.Noise),
		time.Since(start).Round(time.Millisecond),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		Params:     params,
		PointCount: len(locations),
		Places:     make([]*Place, 0, len(result.Clusters)),
		Noise:      make([]int64, 0, len(result.Noise)),
	}

	for i, cluster := range result.Clusters {
		report.Places = append(report.Places, newPlace(i, cluster.Points()))
	}

	for _, l := range result.Noise {
		report.Noise = append(report.Noise, l.ID)
	}

	run := &store.ClusterRun{
		Eps:          params.Eps,
		MinPts:       params.MinPts,
		UseH3:        params.UseH3,
		From:         params.From,
		To:           params.To,
		PointCount:   report.PointCount,
		ClusterCount: len(report.Places),
		NoiseCount:   len(report.Noise),
		Members:      make([][]int64, len(report.Places)),
	}
	for i, place := range report.Places {
		run.Members[i] = place.LocationIDs
	}

	if err := s.repo.SaveClusterRun(run); err != nil {
		return nil, storageError(err, "saving run")
	}

	report.RunID = run.ID
	report.CreatedAt = run.CreatedAt

	return report, nil
}

// newPlace summarizes the fixes of one cluster. Members keep the order in
// which the engine reached them.
func newPlace(index int, members []*spatial.Location) *Place {
	points := make([]spatial.Point, len(members))
	accuracies := make([]float64, len(members))
	ids := make([]int64, len(members))

	place := &Place{
		Index: index,
		Size:  len(members),
	}

	for i, l := range members {
		points[i] = l.Point
		accuracies[i] = l.Accuracy
		ids[i] = l.ID

		if place.FirstSeen.IsZero() || l.RecordedAt.Before(place.FirstSeen) {
			place.FirstSeen = l.RecordedAt
		}

		if l.RecordedAt.After(place.LastSeen) {
			place.LastSeen = l.RecordedAt
		}
	}

	place.Centroid = spatial.Centroid(points)
	place.Hull = spatial.ConvexHull(points)
	place.LocationIDs = ids

	squared := make([]float64, len(points))
	for i := range points {
		d := place.Centroid.HaversineDistance(&points[i])
		squared[i] = d * d
	}

	place.SpreadMeters = math.Sqrt(stat.Mean(squared, nil))

	slices.Sort(accuracies)
	place.MedianAccuracy = stat.Quantile(0.5, stat.Empirical, accuracies, nil)

	return place
}

// AddLocation validates and stores a single fix.
func (s *Service) AddLocation(l *spatial.Location) error {
	if err := validateLocation(l); err != nil {
		return err
	}

	if err := s.repo.SaveLocation(l); err != nil {
		return storageError(err, "saving location")
	}

	return nil
}

// Location returns the fix with the given id.
func (s *Service) Location(id int64) (*spatial.Location, error) {
	l, err := s.repo.GetLocation(id)
	if err != nil {
		return nil, storageError(err, "getting location %d", id)
	}

	return l, nil
}

// Locations returns the fixes within [from, to], oldest first.
func (s *Service) Locations(from, to *time.Time, limit, offset int) ([]*spatial.Location, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, newError(ErrorTypeInvalidParams, nil, "from (%s) is after to (%s)", from, to)
	}

	if limit < 0 || offset < 0 {
		return nil, newError(ErrorTypeInvalidParams, nil, "limit (%d) and offset (%d) must not be negative", limit, offset)
	}

	locations, err := s.repo.ListLocations(from, to, limit, offset)
	if err != nil {
		return nil, storageError(err, "listing locations")
	}

	return locations, nil
}

// DeleteLocation removes a fix.
func (s *Service) DeleteLocation(id int64) error {
	if err := s.repo.DeleteLocation(id); err != nil {
		return storageError(err, "deleting location %d", id)
	}

	return nil
}

// Run returns a stored run with its memberships.
func (s *Service) Run(id string) (*store.ClusterRun, error) {
	run, err := s.repo.GetClusterRun(id)
	if err != nil {
		return nil, storageError(err, "getting run %s", id)
	}

	return run, nil
}

// Runs returns the latest stored runs, newest first.
func (s *Service) Runs(limit int) ([]*store.ClusterRun, error) {
	runs, err := s.repo.ListClusterRuns(limit)
	if err != nil {
		return nil, storageError(err, "listing runs")
	}

	return runs, nil
}
