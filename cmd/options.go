// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"time"

	"github.com/jcodagnone/lugares/places"
)

// Options holds the values of the command line flags.
type Options struct {
	DbPath  string
	Eps     float64
	MinPts  int
	H3Index bool
	From    string
	To      string
	Addr    string
	Limit   int
	Seed    string
	GeoJSON string

	// RunsLimit is kept apart from Limit since both flags set their
	// default when registered.
	RunsLimit int
}

var options = &Options{}

// parseTimeFlag accepts RFC 3339 timestamps or plain dates.
func parseTimeFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("invalid --%s %q: expected RFC 3339 or YYYY-MM-DD", name, value)
}

// window returns the --from and --to bounds.
func (o *Options) window() (*time.Time, *time.Time, error) {
	from, err := parseTimeFlag("from", o.From)
	if err != nil {
		return nil, nil, err
	}

	to, err := parseTimeFlag("to", o.To)
	if err != nil {
		return nil, nil, err
	}

	return from, to, nil
}

// params builds the discovery parameters from the flags.
func (o *Options) params() (places.Params, error) {
	from, to, err := o.window()
	if err != nil {
		return places.Params{}, err
	}

	return places.Params{
		Eps:    o.Eps,
		MinPts: o.MinPts,
		From:   from,
		To:     to,
		UseH3:  o.H3Index,
	}, nil
}
