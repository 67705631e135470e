// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/lugares/places"
	"github.com/jcodagnone/lugares/store"
	"github.com/spf13/cobra"
)

const dbFile = "lugares.duckdb"

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})

	rootCmd.PersistentFlags().StringVar(
		&options.DbPath,
		"db-path",
		"db",
		"Directory where the location database is kept",
	)
}

var rootCmd = &cobra.Command{
	Use:   "lugares",
	Short: "discovers frequently visited places from GPS traces",
	Long: `
lugares stores GPS fixes and groups them with DBSCAN into the places where
they concentrate: home, work, the gym. Fixes that belong nowhere are noise.
`,
	SilenceUsage: true,
}

var Version = "dev"

func Execute(version string) {
	Version = version
	rootCmd.Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// openService opens (creating when needed) the database under the db path.
// The returned function closes it.
func openService() (*places.Service, store.Repository, func(), error) {
	if err := os.MkdirAll(options.DbPath, 0o750); err != nil {
		return nil, nil, nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(options.DbPath, dbFile))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := store.NewRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, nil, fmt.Errorf("creating schema: %w", err)
	}

	closer := func() {
		if err := db.Close(); err != nil {
			log.Printf("closing database: %v", err)
		}
	}

	return places.NewService(repo), repo, closer, nil
}
