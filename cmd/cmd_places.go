// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jcodagnone/lugares/places"
	"github.com/jcodagnone/lugares/utils"
	"github.com/spf13/cobra"
)

var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "Discover the places where the stored fixes concentrate",
	Long: `Clusters the stored fixes with DBSCAN. A fix is a core fix when at least
--min-pts fixes (itself included) lie strictly closer than --eps meters.
Places grow from core fixes; fixes reachable from none are noise.

Each run is stored and can be listed with 'runs list'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		params, err := options.params()
		if err != nil {
			return err
		}

		service, _, closer, err := openService()
		if err != nil {
			return err
		}
		defer closer()

		report, err := service.Discover(cmd.Context(), params)
		if err != nil {
			return err
		}

		printReport(report)

		if options.GeoJSON != "" {
			if err := writeGeoJSONFile(options.GeoJSON, report); err != nil {
				return err
			}

			log.Printf("Wrote %d places to %s", len(report.Places), options.GeoJSON)
		}

		return nil
	},
}

func printReport(report *places.Report) {
	a, b, c, d, e := strings.Repeat("─", 3), strings.Repeat("─", 7), strings.Repeat("─", 24), strings.Repeat("─", 10), strings.Repeat("─", 33)
	fmt.Printf("╭─%s─┬─%s─┬─%s─┬─%s─┬─%s─╮\n", a, b, c, d, e)
	fmt.Printf("│ %3s │ %7s │ %-24s │ %10s │ %-33s │\n", "#", "Fixes", "Centroid", "Spread", "Seen")
	fmt.Printf("├─%s─┼─%s─┼─%s─┼─%s─┼─%s─┤\n", a, b, c, d, e)

	for _, p := range report.Places {
		fmt.Printf("│ %3d │ %7s │ %11.6f, %11.6f │ %10s │ %-16s → %-14s │\n",
			p.Index,
			utils.FormatInt(int64(p.Size)),
			p.Centroid.Lat,
			p.Centroid.Lng,
			utils.FormatMeters(p.SpreadMeters),
			p.FirstSeen.Format("2006-01-02 15:04"),
			p.LastSeen.Format("01-02 15:04"),
		)
	}

	fmt.Printf("╰─%s─┴─%s─┴─%s─┴─%s─┴─%s─╯\n", a, b, c, d, e)
	fmt.Printf("📍 %s places from %s locations, %s noise (run %s)\n",
		utils.FormatInt(int64(len(report.Places))),
		utils.FormatInt(int64(report.PointCount)),
		utils.FormatInt(int64(len(report.Noise))),
		report.RunID,
	)
}

func writeGeoJSONFile(path string, report *places.Report) error {
	f, err := os.Create(path) // #nosec G304 - path is provided by the user
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := places.WriteGeoJSON(f, report); err != nil {
		f.Close()

		return fmt.Errorf("writing %s: %w", path, err)
	}

	return f.Close()
}

func init() {
	rootCmd.AddCommand(placesCmd)

	placesCmd.Flags().Float64Var(&options.Eps, "eps", places.DefaultEps, "Neighbourhood radius in meters")
	placesCmd.Flags().IntVar(&options.MinPts, "min-pts", places.DefaultMinPts, "Minimum number of fixes within --eps of a core fix, itself included")
	placesCmd.Flags().StringVar(&options.From, "from", "", "Only cluster fixes recorded at or after this time")
	placesCmd.Flags().StringVar(&options.To, "to", "", "Only cluster fixes recorded at or before this time")
	placesCmd.Flags().BoolVar(&options.H3Index, "h3", false, "Answer neighbourhood queries from an h3 grid")
	placesCmd.Flags().StringVar(&options.GeoJSON, "geojson", "", "Also write the places to this GeoJSON file")
}
