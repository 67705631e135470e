// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"errors"
	"fmt"
	"math"

	"github.com/jcodagnone/lugares/spatial"
)

const (
	// MaxEps is the largest neighbourhood radius accepted, in meters.
	MaxEps = 100_000
	// MaxMinPts is the largest minimum neighbourhood size accepted.
	MaxMinPts = 10_000
	// maxAccuracy rejects fixes whose error circle covers a whole region.
	maxAccuracy = 50_000
)

// validateCoordinates verifies that the coordinates lie on the globe.
func validateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90 (got: %f)", lat)
	}

	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180 (got: %f)", lng)
	}

	return nil
}

// validateLocation verifies that a fix can be stored.
func validateLocation(l *spatial.Location) error {
	if l == nil {
		return newError(ErrorTypeInvalidLocation, nil, "location cannot be nil")
	}

	if err := validateCoordinates(l.Point.Lat, l.Point.Lng); err != nil {
		return newError(ErrorTypeInvalidLocation, err, "invalid coordinates")
	}

	if math.IsNaN(l.Accuracy) || l.Accuracy < 0 || l.Accuracy > maxAccuracy {
		return newError(ErrorTypeInvalidLocation, nil, "accuracy must be between 0 and %d meters (got: %f)", maxAccuracy, l.Accuracy)
	}

	if l.RecordedAt.IsZero() {
		return newError(ErrorTypeInvalidLocation, nil, "recorded_at cannot be empty")
	}

	return nil
}

// Validate verifies the parameters of a discovery.
func (p Params) Validate() error {
	var errs []error

	if math.IsNaN(p.Eps) || p.Eps <= 0 || p.Eps > MaxEps {
		errs = append(errs, fmt.Errorf("eps must be in (0, %d] meters (got: %v)", MaxEps, p.Eps))
	}

	if p.MinPts <= 0 || p.MinPts > MaxMinPts {
		errs = append(errs, fmt.Errorf("min_pts must be between 1 and %d (got: %d)", MaxMinPts, p.MinPts))
	}

	if p.From != nil && p.To != nil && p.From.After(*p.To) {
		errs = append(errs, fmt.Errorf("from (%s) is after to (%s)", p.From, p.To))
	}

	if len(errs) > 0 {
		return newError(ErrorTypeInvalidParams, errors.Join(errs...), "invalid parameters")
	}

	return nil
}
