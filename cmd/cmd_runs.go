// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jcodagnone/lugares/utils"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored clustering runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the latest runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		service, _, closer, err := openService()
		if err != nil {
			return err
		}
		defer closer()

		runs, err := service.Runs(options.RunsLimit)
		if err != nil {
			return err
		}

		a, b, c, d := strings.Repeat("─", 36), strings.Repeat("─", 19), strings.Repeat("─", 18), strings.Repeat("─", 23)
		fmt.Printf("╭─%s─┬─%s─┬─%s─┬─%s─╮\n", a, b, c, d)
		fmt.Printf("│ %-36s │ %-19s │ %-18s │ %-23s │\n", "Id", "Created", "eps / minPts", "Points / places / noise")
		fmt.Printf("├─%s─┼─%s─┼─%s─┼─%s─┤\n", a, b, c, d)

		for _, run := range runs {
			index := ""
			if run.UseH3 {
				index = " h3"
			}

			fmt.Printf("│ %-36s │ %-19s │ %-18s │ %-23s │\n",
				run.ID,
				run.CreatedAt.Format("2006-01-02 15:04:05"),
				fmt.Sprintf("%s / %d%s", utils.FormatMeters(run.Eps), run.MinPts, index),
				fmt.Sprintf("%s / %s / %s",
					utils.FormatInt(int64(run.PointCount)),
					utils.FormatInt(int64(run.ClusterCount)),
					utils.FormatInt(int64(run.NoiseCount)),
				),
			)
		}

		fmt.Printf("╰─%s─┴─%s─┴─%s─┴─%s─╯\n", a, b, c, d)

		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a run and its memberships as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		service, _, closer, err := openService()
		if err != nil {
			return err
		}
		defer closer()

		run, err := service.Run(args[0])
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling run: %w", err)
		}

		fmt.Println(string(data))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsListCmd.Flags().IntVar(&options.RunsLimit, "limit", 20, "Maximum number of runs to list, 0 for all")
}
