// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/jcodagnone/lugares/places"
	"github.com/jcodagnone/lugares/utils"
	"github.com/spf13/cobra"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Manage the stored GPS fixes",
}

var locationsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import fixes from a JSON seed or a GeoJSON file",
	Long: `Reads a JSON seed file (as written by 'locations export') or a GeoJSON
FeatureCollection of Point features. GeoJSON features carry their time in a
recorded_at (RFC 3339) or timestamp (epoch milliseconds) property and may
carry an accuracy in meters.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _, closer, err := openService()
		if err != nil {
			return err
		}
		defer closer()

		n, err := service.ImportFile(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("importing %s: %w", args[0], err)
		}

		fmt.Printf("✅ Imported %s locations from %s\n", utils.FormatInt(int64(n)), args[0])

		return nil
	},
}

var locationsExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export every fix to a JSON seed file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		_, repo, closer, err := openService()
		if err != nil {
			return err
		}
		defer closer()

		n, err := places.ExportToJSON(repo, args[0])
		if err != nil {
			return fmt.Errorf("exporting locations: %w", err)
		}

		fmt.Printf("✅ Exported %s locations to %s\n", utils.FormatInt(int64(n)), args[0])

		return nil
	},
}

var locationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored fixes, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		service, repo, closer, err := openService()
		if err != nil {
			return err
		}
		defer closer()

		from, to, err := options.window()
		if err != nil {
			return err
		}

		locations, err := service.Locations(from, to, options.Limit, 0)
		if err != nil {
			return err
		}

		total, err := repo.CountLocations()
		if err != nil {
			return fmt.Errorf("counting locations: %w", err)
		}

		a, b, c, d := strings.Repeat("─", 8), strings.Repeat("─", 20), strings.Repeat("─", 24), strings.Repeat("─", 9)
		fmt.Printf("╭─%s─┬─%s─┬─%s─┬─%s─╮\n", a, b, c, d)
		fmt.Printf("│ %8s │ %-20s │ %-24s │ %9s │\n", "Id", "Recorded at", "Lat, Lng", "Accuracy")
		fmt.Printf("├─%s─┼─%s─┼─%s─┼─%s─┤\n", a, b, c, d)

		for _, l := range locations {
			fmt.Printf("│ %8d │ %-20s │ %11.6f, %11.6f │ %9s │\n",
				l.ID,
				l.RecordedAt.Format("2006-01-02 15:04:05"),
				l.Point.Lat,
				l.Point.Lng,
				utils.FormatMeters(l.Accuracy),
			)
		}

		fmt.Printf("╰─%s─┴─%s─┴─%s─┴─%s─╯\n", a, b, c, d)
		fmt.Printf("%s of %s locations\n", utils.FormatInt(int64(len(locations))), utils.FormatInt(int64(total)))

		return nil
	},
}

var locationsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every fix and every stored run",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		_, repo, closer, err := openService()
		if err != nil {
			return err
		}
		defer closer()

		if err := repo.DeleteAllLocations(); err != nil {
			return err
		}

		fmt.Println("🧹 Database cleared")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(locationsCmd)
	locationsCmd.AddCommand(locationsImportCmd)
	locationsCmd.AddCommand(locationsExportCmd)
	locationsCmd.AddCommand(locationsListCmd)
	locationsCmd.AddCommand(locationsClearCmd)

	locationsListCmd.Flags().StringVar(&options.From, "from", "", "Only fixes recorded at or after this time")
	locationsListCmd.Flags().StringVar(&options.To, "to", "", "Only fixes recorded at or before this time")
	locationsListCmd.Flags().IntVar(&options.Limit, "limit", 100, "Maximum number of fixes to list, 0 for all")
}
