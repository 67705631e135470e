// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jcodagnone/lugares/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeFlag(t *testing.T) {
	got, err := parseTimeFlag("from", "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseTimeFlag("from", "2025-11-03T09:30:00-03:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 11, 3, 12, 30, 0, 0, time.UTC)))

	got, err = parseTimeFlag("to", "2025-11-03")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)))

	_, err = parseTimeFlag("to", "yesterday")
	assert.ErrorContains(t, err, "--to")
}

func TestOptionsParams(t *testing.T) {
	o := &Options{Eps: 25, MinPts: 4, H3Index: true, From: "2025-01-01"}

	params, err := o.params()
	require.NoError(t, err)
	assert.InDelta(t, 25.0, params.Eps, 0)
	assert.Equal(t, 4, params.MinPts)
	assert.True(t, params.UseH3)
	require.NotNil(t, params.From)
	assert.Nil(t, params.To)

	o.To = "not a date"
	_, err = o.params()
	assert.Error(t, err)
}

func TestParseLatLng(t *testing.T) {
	p, err := parseLatLng(" -34.9 , -56.16 ")
	require.NoError(t, err)
	assert.Equal(t, spatial.Point{Lat: -34.9, Lng: -56.16}, p)

	for _, bad := range []string{"-34.9", "a,b", "1,x", "91,0", "0,181"} {
		_, err := parseLatLng(bad)
		assert.Error(t, err, bad)
	}
}

func TestEachLineSkipsBlankLines(t *testing.T) {
	var lines []string

	err := eachLine(strings.NewReader("a\n\n  \nb\n"), func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)
}

func TestLogWriterPrefixesTimestamp(t *testing.T) {
	var buf bytes.Buffer

	w := &logWriter{writer: &buf}
	_, err := w.Write([]byte("hello\n"))
	require.NoError(t, err)

	line := buf.String()
	assert.True(t, strings.HasSuffix(line, " hello\n"), line)

	_, err = time.Parse("2006-01-02 15:04:05", strings.TrimSuffix(line, " hello\n"))
	assert.NoError(t, err)
}
