// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ClusterRun records one clustering of the stored locations.
type ClusterRun struct {
	ID           string     `json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	Eps          float64    `json:"eps"`
	MinPts       int        `json:"min_pts"`
	UseH3        bool       `json:"use_h3"`
	From         *time.Time `json:"from,omitempty"`
	To           *time.Time `json:"to,omitempty"`
	PointCount   int        `json:"point_count"`
	ClusterCount int        `json:"cluster_count"`
	NoiseCount   int        `json:"noise_count"`
	// Members holds the location ids of each cluster, in cluster order.
	// Deleting a location removes it from here; counts keep their values
	// at the time of the run.
	Members [][]int64 `json:"members,omitempty"`
}

func (r *sqlRepository) SaveClusterRun(run *ClusterRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	rollback := func(err error) error {
		if rErr := tx.Rollback(); rErr != nil {
			return rErr
		}

		return err
	}

	_, err = tx.Exec(`
		INSERT INTO cluster_runs(id, created_at, eps, min_pts, use_h3, from_ts, to_ts, point_count, cluster_count, noise_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt,
		run.Eps,
		run.MinPts,
		run.UseH3,
		nullTime(run.From),
		nullTime(run.To),
		run.PointCount,
		run.ClusterCount,
		run.NoiseCount,
	)
	if err != nil {
		return rollback(fmt.Errorf("inserting run %s: %w", run.ID, err))
	}

	stmt, err := tx.Prepare(`INSERT INTO cluster_members(run_id, cluster_idx, location_id) VALUES (?, ?, ?)`)
	if err != nil {
		return rollback(err)
	}
	defer stmt.Close()

	for idx, members := range run.Members {
		for _, id := range members {
			if _, err := stmt.Exec(run.ID, idx, id); err != nil {
				return rollback(fmt.Errorf("inserting member %d of run %s: %w", id, run.ID, err))
			}
		}
	}

	return tx.Commit()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}

	return *t
}

const runSelect = `
	SELECT id, created_at, eps, min_pts, use_h3, from_ts, to_ts, point_count, cluster_count, noise_count
	FROM cluster_runs
`

func scanRun(row interface{ Scan(dest ...any) error }) (*ClusterRun, error) {
	run := &ClusterRun{}

	var from, to sql.NullTime

	err := row.Scan(
		&run.ID, &run.CreatedAt, &run.Eps, &run.MinPts, &run.UseH3,
		&from, &to,
		&run.PointCount, &run.ClusterCount, &run.NoiseCount,
	)
	if err != nil {
		return nil, err
	}

	if from.Valid {
		run.From = &from.Time
	}

	if to.Valid {
		run.To = &to.Time
	}

	return run, nil
}

func (r *sqlRepository) GetClusterRun(id string) (*ClusterRun, error) {
	run, err := scanRun(r.db.QueryRow(runSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}

	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(`
		SELECT cluster_idx, location_id
		FROM cluster_members
		WHERE run_id = ?
		ORDER BY cluster_idx, location_id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run.Members = make([][]int64, run.ClusterCount)

	for rows.Next() {
		var (
			idx        int
			locationID int64
		)

		if err := rows.Scan(&idx, &locationID); err != nil {
			return nil, err
		}

		if idx < 0 || idx >= len(run.Members) {
			return nil, fmt.Errorf("run %s: cluster index %d out of range", id, idx)
		}

		run.Members[idx] = append(run.Members[idx], locationID)
	}

	return run, rows.Err()
}

func (r *sqlRepository) ListClusterRuns(limit int) ([]*ClusterRun, error) {
	query := runSelect + " ORDER BY created_at DESC"

	args := []any{}

	if limit > 0 {
		query += " LIMIT ?"

		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*ClusterRun

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}
