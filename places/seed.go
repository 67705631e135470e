// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jcodagnone/lugares/spatial"
	"github.com/jcodagnone/lugares/store"
)

const seedVersion = "1.0"

// SeedData represents the JSON seed file format.
type SeedData struct {
	Version     string              `json:"version"`
	LastUpdated time.Time           `json:"last_updated"`
	Locations   []*spatial.Location `json:"locations"`
}

// ExportToJSON writes every stored fix to a JSON seed file.
func ExportToJSON(repo store.Repository, filepath string) (int, error) {
	locations, err := repo.ListLocations(nil, nil, 0, 0)
	if err != nil {
		return 0, fmt.Errorf("listing locations: %w", err)
	}

	seed := &SeedData{
		Version:     seedVersion,
		LastUpdated: time.Now(),
		Locations:   locations,
	}

	data, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshaling JSON: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0o600); err != nil {
		return 0, fmt.Errorf("writing file: %w", err)
	}

	return len(locations), nil
}

// ReadLocations reads fixes from a JSON seed file or from a GeoJSON
// FeatureCollection of points.
func ReadLocations(filepath string) ([]*spatial.Location, error) {
	data, err := os.ReadFile(filepath) // #nosec G304 - filepath is provided by the user
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return ParseLocations(data)
}

// ParseLocations decodes a JSON seed or a GeoJSON FeatureCollection.
func ParseLocations(data []byte) ([]*spatial.Location, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	if probe.Type == "FeatureCollection" {
		return ParseGeoJSON(bytes.NewReader(data))
	}

	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}

	return seed.Locations, nil
}

type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type geoJSONFeature struct {
	Type       string          `json:"type"`
	Geometry   geoJSONGeometry `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type geoJSONCollection struct {
	Type     string            `json:"type"`
	Features []*geoJSONFeature `json:"features"`
}

// ParseGeoJSON reads the Point features of a FeatureCollection as fixes.
// The fix time comes from the recorded_at property (RFC 3339) or from the
// timestamp property (milliseconds since the epoch). Features of any other
// geometry are skipped.
func ParseGeoJSON(r io.Reader) ([]*spatial.Location, error) {
	var collection geoJSONCollection
	if err := json.NewDecoder(r).Decode(&collection); err != nil {
		return nil, fmt.Errorf("parsing GeoJSON: %w", err)
	}

	var locations []*spatial.Location

	for i, feature := range collection.Features {
		if feature.Geometry.Type != "Point" {
			continue
		}

		var coordinates []float64
		if err := json.Unmarshal(feature.Geometry.Coordinates, &coordinates); err != nil {
			return nil, fmt.Errorf("feature %d: parsing coordinates: %w", i, err)
		}

		if len(coordinates) < 2 {
			return nil, fmt.Errorf("feature %d: expected [lng, lat], got %v", i, coordinates)
		}

		l := &spatial.Location{
			Point: spatial.Point{Lng: coordinates[0], Lat: coordinates[1]},
		}

		recordedAt, err := featureTime(feature.Properties)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}

		l.RecordedAt = recordedAt

		if accuracy, ok := feature.Properties["accuracy"].(float64); ok {
			l.Accuracy = accuracy
		}

		if id, ok := feature.Properties["id"].(float64); ok {
			l.ID = int64(id)
		}

		locations = append(locations, l)
	}

	return locations, nil
}

func featureTime(properties map[string]any) (time.Time, error) {
	if s, ok := properties["recorded_at"].(string); ok {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing recorded_at: %w", err)
		}

		return t, nil
	}

	if ms, ok := properties["timestamp"].(float64); ok {
		return time.UnixMilli(int64(ms)).UTC(), nil
	}

	return time.Time{}, errors.New("missing recorded_at or timestamp property")
}

// WriteGeoJSON writes the places of a report as a FeatureCollection. Places
// with a proper hull become polygons, the rest are points at their centroid.
func WriteGeoJSON(w io.Writer, report *Report) error {
	collection := geoJSONCollection{
		Type:     "FeatureCollection",
		Features: make([]*geoJSONFeature, 0, len(report.Places)),
	}

	for _, place := range report.Places {
		geometry, err := placeGeometry(place)
		if err != nil {
			return fmt.Errorf("place %d: %w", place.Index, err)
		}

		collection.Features = append(collection.Features, &geoJSONFeature{
			Type:     "Feature",
			Geometry: geometry,
			Properties: map[string]any{
				"run_id":          report.RunID,
				"index":           place.Index,
				"size":            place.Size,
				"centroid":        []float64{place.Centroid.Lng, place.Centroid.Lat},
				"spread_meters":   place.SpreadMeters,
				"median_accuracy": place.MedianAccuracy,
				"first_seen":      place.FirstSeen.Format(time.RFC3339),
				"last_seen":       place.LastSeen.Format(time.RFC3339),
			},
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(collection)
}

func placeGeometry(place *Place) (geoJSONGeometry, error) {
	var (
		kind   string
		coords any
	)

	if len(place.Hull) >= 3 {
		ring := make([][]float64, 0, len(place.Hull)+1)
		for _, p := range place.Hull {
			ring = append(ring, []float64{p.Lng, p.Lat})
		}

		ring = append(ring, ring[0])
		kind, coords = "Polygon", [][][]float64{ring}
	} else {
		kind, coords = "Point", []float64{place.Centroid.Lng, place.Centroid.Lat}
	}

	raw, err := json.Marshal(coords)
	if err != nil {
		return geoJSONGeometry{}, err
	}

	return geoJSONGeometry{Type: kind, Coordinates: raw}, nil
}
