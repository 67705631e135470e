// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

// Package utils holds formatting helpers for command line output.
package utils

import (
	"strconv"
	"strings"
)

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int64) string {
	digits := strconv.FormatInt(n, 10)

	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder

	b.WriteString(sign)

	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}

	b.WriteString(digits[:lead])

	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}

	return b.String()
}

// FormatMeters renders a distance in meters, switching to kilometers from
// one kilometer up.
func FormatMeters(m float64) string {
	if m >= 1000 || m <= -1000 {
		return strconv.FormatFloat(m/1000, 'f', 2, 64) + " km"
	}

	return strconv.FormatFloat(m, 'f', 1, 64) + " m"
}
