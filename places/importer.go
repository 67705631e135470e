// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jcodagnone/lugares/spatial"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// importBatchSize is the number of fixes inserted per transaction.
const importBatchSize = 1000

// Import validates every fix and then stores them in batches. Nothing is
// stored when a fix is rejected. It returns the number of fixes stored.
func (s *Service) Import(ctx context.Context, locations []*spatial.Location) (int, error) {
	for i, l := range locations {
		if err := validateLocation(l); err != nil {
			return 0, fmt.Errorf("location %d: %w", i, err)
		}
	}

	n := len(locations)

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(n,
			progressbar.OptionSetDescription("Importing locations"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	imported := 0

	for start := 0; start < n; start += importBatchSize {
		if err := ctx.Err(); err != nil {
			return imported, err
		}

		end := min(start+importBatchSize, n)

		if err := s.repo.BulkInsertLocations(locations[start:end]); err != nil {
			return imported, storageError(err, "inserting locations %d to %d", start, end)
		}

		imported += end - start

		if bar == nil {
			log.Printf("Imported %d of %d locations", imported, n)
		} else if err := bar.Add(end - start); err != nil {
			return imported, fmt.Errorf("updating progress bar: %w", err)
		}
	}

	return imported, nil
}

// ImportFile reads a JSON seed or GeoJSON file and imports its fixes.
func (s *Service) ImportFile(ctx context.Context, filepath string) (int, error) {
	locations, err := ReadLocations(filepath)
	if err != nil {
		return 0, err
	}

	return s.Import(ctx, locations)
}

// SeedIfEmpty imports a seed file when the store holds no fixes. A missing
// file is not an error.
func (s *Service) SeedIfEmpty(ctx context.Context, filepath string) (bool, int, error) {
	count, err := s.repo.CountLocations()
	if err != nil {
		return false, 0, storageError(err, "counting locations")
	}

	if count > 0 {
		return false, count, nil
	}

	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return false, 0, nil
	}

	imported, err := s.ImportFile(ctx, filepath)
	if err != nil {
		return false, imported, err
	}

	return true, imported, nil
}
