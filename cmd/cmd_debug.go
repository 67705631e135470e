// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jcodagnone/lugares/spatial"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugDistanceCmd = &cobra.Command{
	Use:   "distance",
	Short: "Print the great-circle distance between pairs of coordinates",
	Long: `Reads one pair of coordinates per line and prints the distance between
them in meters.

$ echo "-34.9,-56.16 -34.91,-56.16" | lugares debug distance
-34.9,-56.16 -34.91,-56.16	1111.95
	`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(os.Stderr, "Enter pairs of lat,lng lat,lng, one per line…")
		}

		return eachLine(os.Stdin, func(line string) {
			fields := strings.Fields(line)
			if len(fields) != 2 {
				fmt.Printf("%s\t%q\n", line, "expected two coordinates")

				return
			}

			a, err := parseLatLng(fields[0])
			if err != nil {
				fmt.Printf("%s\t%q\n", line, err)

				return
			}

			b, err := parseLatLng(fields[1])
			if err != nil {
				fmt.Printf("%s\t%q\n", line, err)

				return
			}

			fmt.Printf("%s\t%.2f\n", line, a.HaversineDistance(&b))
		})
	},
}

var debugCellsCmd = &cobra.Command{
	Use:   "cells",
	Short: "Print the h3 cells stored for a coordinate",
	Long: `Reads one lat,lng per line and prints the h3 cells stored alongside a fix
at that position, from the coarsest resolution to the finest.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(os.Stderr, "Enter lat,lng coordinates, one per line…")
		}

		return eachLine(os.Stdin, func(line string) {
			p, err := parseLatLng(strings.TrimSpace(line))
			if err != nil {
				fmt.Printf("%s\t%q\n", line, err)

				return
			}

			cells, err := (&spatial.Location{Point: p}).Cells()
			if err != nil {
				fmt.Printf("%s\t%q\n", line, err)

				return
			}

			hex := make([]string, len(cells))
			for i, c := range cells {
				hex[i] = strconv.FormatUint(c, 16)
			}

			fmt.Printf("%s\t%s\n", line, strings.Join(hex, " "))
		})
	},
}

func eachLine(r io.Reader, fn func(line string)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			fn(line)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return nil
}

func parseLatLng(s string) (spatial.Point, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return spatial.Point{}, fmt.Errorf("expected lat,lng, got %q", s)
	}

	var (
		p   spatial.Point
		err error
	)

	if p.Lat, err = strconv.ParseFloat(strings.TrimSpace(lat), 64); err != nil {
		return spatial.Point{}, fmt.Errorf("parsing latitude: %w", err)
	}

	if p.Lng, err = strconv.ParseFloat(strings.TrimSpace(lng), 64); err != nil {
		return spatial.Point{}, fmt.Errorf("parsing longitude: %w", err)
	}

	if !p.Valid() {
		return spatial.Point{}, fmt.Errorf("coordinates out of range: %s", s)
	}

	return p, nil
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugDistanceCmd)
	debugCmd.AddCommand(debugCellsCmd)
}
