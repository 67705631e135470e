// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists GPS locations and clustering runs in DuckDB.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jcodagnone/lugares/spatial"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Repository handles persistence of locations and cluster runs.
type Repository interface {
	// CreateSchema creates the tables if they do not exist
	CreateSchema() error

	// SaveLocation inserts a location, or updates it when ID is already stored
	SaveLocation(location *spatial.Location) error

	// BulkInsertLocations inserts a slice of locations in a single transaction
	BulkInsertLocations(locations []*spatial.Location) error

	// GetLocation returns the location with the given id
	GetLocation(id int64) (*spatial.Location, error)

	// ListLocations returns locations recorded within [from, to], oldest first.
	// Nil bounds are open.
	ListLocations(from, to *time.Time, limit, offset int) ([]*spatial.Location, error)

	// CountLocations returns the total number of locations
	CountLocations() (int, error)

	// DeleteLocation removes a single location and drops it from stored runs
	DeleteLocation(id int64) error

	// DeleteAllLocations removes every location and every cluster run
	DeleteAllLocations() error

	// SaveClusterRun stores a run and its memberships
	SaveClusterRun(run *ClusterRun) error

	// GetClusterRun returns a run with its memberships
	GetClusterRun(id string) (*ClusterRun, error)

	// ListClusterRuns returns the latest runs without memberships
	ListClusterRuns(limit int) ([]*ClusterRun, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlRepository struct {
	db *sql.DB
}

// NewRepository creates a new repository over an open DuckDB connection.
func NewRepository(db *sql.DB) Repository {
	return &sqlRepository{db: db}
}

// DB returns the underlying database connection for advanced queries.
func (r *sqlRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS locations (
			id BIGINT PRIMARY KEY,
			recorded_at TIMESTAMP NOT NULL,
			point VARCHAR NOT NULL,
			accuracy DOUBLE NOT NULL DEFAULT 0,
			h3_res1 UBIGINT,
			h3_res2 UBIGINT,
			h3_res3 UBIGINT,
			h3_res4 UBIGINT,
			h3_res5 UBIGINT,
			h3_res6 UBIGINT,
			h3_res7 UBIGINT,
			h3_res8 UBIGINT
		);

		CREATE INDEX IF NOT EXISTS locations_recorded_at ON locations(recorded_at);

		CREATE TABLE IF NOT EXISTS cluster_runs (
			id VARCHAR PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			eps DOUBLE NOT NULL,
			min_pts INTEGER NOT NULL,
			use_h3 BOOLEAN NOT NULL DEFAULT FALSE,
			from_ts TIMESTAMP,
			to_ts TIMESTAMP,
			point_count INTEGER NOT NULL,
			cluster_count INTEGER NOT NULL,
			noise_count INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS cluster_members (
			run_id VARCHAR NOT NULL,
			cluster_idx INTEGER NOT NULL,
			location_id BIGINT NOT NULL,
			PRIMARY KEY (run_id, location_id)
		);
	`)

	return err
}

func (r *sqlRepository) SaveLocation(location *spatial.Location) error {
	if location.ID == 0 {
		return r.BulkInsertLocations([]*spatial.Location{location})
	}

	cells, err := location.Cells()
	if err != nil {
		return err
	}

	result, err := r.db.Exec(`
		UPDATE locations
		SET recorded_at = ?, point = ?, accuracy = ?,
			h3_res1 = ?, h3_res2 = ?, h3_res3 = ?, h3_res4 = ?, h3_res5 = ?, h3_res6 = ?, h3_res7 = ?, h3_res8 = ?
		WHERE id = ?
	`,
		location.RecordedAt,
		location.Point,
		location.Accuracy,
		cells[0], cells[1], cells[2], cells[3], cells[4], cells[5], cells[6], cells[7],
		location.ID,
	)
	if err != nil {
		return err
	}

	if n, err := result.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	return r.BulkInsertLocations([]*spatial.Location{location})
}

// BulkInsertLocations keeps the ids already set and numbers the rest past
// the largest id stored or carried by the batch, so imported ids never
// collide with later generated ones.
func (r *sqlRepository) BulkInsertLocations(locations []*spatial.Location) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	rollback := func(err error) error {
		if rErr := tx.Rollback(); rErr != nil {
			return rErr // Prioritize the rollback error
		}

		return err
	}

	var next int64
	if err := tx.QueryRow("SELECT COALESCE(MAX(id), 0) FROM locations").Scan(&next); err != nil {
		return rollback(fmt.Errorf("reading last location id: %w", err))
	}

	for _, l := range locations {
		next = max(next, l.ID)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO locations(
			id,
			recorded_at,
			point,
			accuracy,
			h3_res1,
			h3_res2,
			h3_res3,
			h3_res4,
			h3_res5,
			h3_res6,
			h3_res7,
			h3_res8
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return rollback(err)
	}
	defer stmt.Close()

	for _, l := range locations {
		cells, err := l.Cells()
		if err != nil {
			return rollback(err)
		}

		id := l.ID
		if id == 0 {
			next++
			id = next
		}

		_, err = stmt.Exec(
			id,
			l.RecordedAt,
			l.Point,
			l.Accuracy,
			cells[0], cells[1], cells[2], cells[3], cells[4], cells[5], cells[6], cells[7],
		)
		if err != nil {
			return rollback(fmt.Errorf("inserting location recorded at %s: %w", l.RecordedAt.Format(time.RFC3339), err))
		}

		l.ID = id
	}

	return tx.Commit()
}

var baseSelect = `
	SELECT id, recorded_at, point, accuracy
	FROM locations
`

func (r *sqlRepository) list(query string, args []any) ([]*spatial.Location, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*spatial.Location

	for rows.Next() {
		l := &spatial.Location{}

		if err := rows.Scan(&l.ID, &l.RecordedAt, &l.Point, &l.Accuracy); err != nil {
			return nil, err
		}

		locations = append(locations, l)
	}

	return locations, rows.Err()
}

func (r *sqlRepository) GetLocation(id int64) (*spatial.Location, error) {
	locations, err := r.list(baseSelect+" WHERE id = ?", []any{id})
	if err != nil {
		return nil, err
	}

	if len(locations) == 0 {
		return nil, fmt.Errorf("location %d: %w", id, ErrNotFound)
	}

	return locations[0], nil
}

func (r *sqlRepository) ListLocations(from, to *time.Time, limit, offset int) ([]*spatial.Location, error) {
	query := baseSelect + " WHERE 1 = 1"

	args := []any{}

	if from != nil {
		query += " AND recorded_at >= ?"

		args = append(args, *from)
	}

	if to != nil {
		query += " AND recorded_at <= ?"

		args = append(args, *to)
	}

	query += " ORDER BY recorded_at, id"

	if limit > 0 {
		query += " LIMIT ? OFFSET ?"

		args = append(args, limit, offset)
	}

	return r.list(query, args)
}

func (r *sqlRepository) CountLocations() (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM locations",
	).Scan(&count)

	return count, err
}

// DeleteLocation removes a location along with its cluster memberships.
func (r *sqlRepository) DeleteLocation(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM cluster_members WHERE location_id = ?", id); err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = rErr
		}

		return fmt.Errorf("deleting memberships of location %d: %w", id, err)
	}

	result, err := tx.Exec("DELETE FROM locations WHERE id = ?", id)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = rErr
		}

		return err
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		if rErr := tx.Rollback(); rErr != nil {
			return rErr
		}

		return fmt.Errorf("location %d: %w", id, ErrNotFound)
	}

	return tx.Commit()
}

func (r *sqlRepository) DeleteAllLocations() error {
	for _, table := range []string{"cluster_members", "cluster_runs", "locations"} {
		if _, err := r.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	return nil
}
