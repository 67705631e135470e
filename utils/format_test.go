// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatInt(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{65536, "65,536"},
		{100000, "100,000"},
		{9876543, "9,876,543"},
		{-5, "-5"},
		{-1000, "-1,000"},
		{-123456, "-123,456"},
		{math.MaxInt64, "9,223,372,036,854,775,807"},
		{math.MinInt64, "-9,223,372,036,854,775,808"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatInt(tc.input))
		})
	}
}

func TestFormatMeters(t *testing.T) {
	assert.Equal(t, "0.0 m", FormatMeters(0))
	assert.Equal(t, "12.3 m", FormatMeters(12.34))
	assert.Equal(t, "999.9 m", FormatMeters(999.94))
	assert.Equal(t, "1.00 km", FormatMeters(1000))
	assert.Equal(t, "42.25 km", FormatMeters(42250))
}
