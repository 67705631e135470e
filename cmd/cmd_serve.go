// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"

	"github.com/jcodagnone/lugares/places"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves the stored fixes and place discovery over HTTP:

  GET    /api/locations?from=&to=&limit=&offset=
  POST   /api/locations
  GET    /api/locations/:id
  DELETE /api/locations/:id
  GET    /api/places?eps=&min_pts=&from=&to=&h3=
  GET    /api/places.geojson?eps=&min_pts=&from=&to=&h3=
  GET    /api/runs
  GET    /api/runs/:id

Each GET on /api/places or /api/places.geojson runs a discovery and stores
it, so it shows up under /api/runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		service, _, closer, err := openService()
		if err != nil {
			return err
		}
		defer closer()

		if options.Seed != "" {
			seeded, n, err := service.SeedIfEmpty(cmd.Context(), options.Seed)
			if err != nil {
				return fmt.Errorf("seeding from %s: %w", options.Seed, err)
			}

			if seeded {
				log.Printf("Seeded %d locations from %s", n, options.Seed)
			}
		}

		fmt.Printf("🗺️  Listening on http://%s\n", options.Addr)

		return places.NewServer(service, options.Addr).Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&options.Addr, "addr", places.DefaultAddr, "Address to listen on")
	serveCmd.Flags().StringVar(&options.Seed, "seed", "", "Seed file imported when the database is empty")
}
