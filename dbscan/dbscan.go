// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

// Package dbscan implements density-based clustering over any point type that
// can measure its distance to another value of the same type.
//
// A point is a core point when at least MinPts points (itself included) lie
// strictly closer than Eps. Clusters grow breadth-first from core points and
// absorb the border points reachable from them. Everything else is noise.
//
// Points are tracked by their position in the input slice, so two values at
// distance zero, or even the same value passed twice, are distinct points.
package dbscan

import (
	"math"
	"slices"
)

// Noise is the label given to points that belong to no cluster.
const Noise = -1

type state uint8

const (
	unvisited state = iota
	noise
	clustered
)

// DBSCAN is a reusable clustering engine. Its parameters never change after
// New, and every call allocates its own working state, so a single engine may
// serve concurrent calls as long as callers do not mutate shared input.
type DBSCAN[T Point[T]] struct {
	eps    float64
	minPts int
	index  IndexBuilder[T]
}

// New returns an engine for the given neighbourhood radius and minimum
// neighbourhood size. It fails when eps is not a positive finite number or
// minPts is not positive.
func New[T Point[T]](eps float64, minPts int, opts ...Option[T]) (*DBSCAN[T], error) {
	switch {
	case math.IsNaN(eps) || math.IsInf(eps, 0):
		return nil, &ConfigError{Param: "eps", Value: eps, Reason: "must be a finite number"}
	case eps <= 0:
		return nil, &ConfigError{Param: "eps", Value: eps, Reason: "must be greater than zero"}
	case minPts <= 0:
		return nil, &ConfigError{Param: "minPts", Value: minPts, Reason: "must be greater than zero"}
	}

	d := &DBSCAN[T]{eps: eps, minPts: minPts}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Eps returns the neighbourhood radius.
func (d *DBSCAN[T]) Eps() float64 {
	return d.eps
}

// MinPts returns the minimum neighbourhood size of a core point.
func (d *DBSCAN[T]) MinPts() int {
	return d.minPts
}

// Result is the complete partition produced by Run.
type Result[T any] struct {
	// Clusters in the order their first core point was found.
	Clusters []*Cluster[T]
	// Noise holds the points that joined no cluster, in input order.
	Noise []T
	// Labels maps each input position to its cluster ordinal or to Noise.
	Labels []int
}

// Cluster groups points and returns the clusters found. Points absent from
// every cluster are noise.
func (d *DBSCAN[T]) Cluster(points []T) []*Cluster[T] {
	return d.Run(points).Clusters
}

// run holds the per-call state. It is never shared between calls.
type run[T Point[T]] struct {
	*DBSCAN[T]

	points []T
	idx    Index
	states []state
	labels []int
	// enqueued[i] == stamp when i is already in the current worklist.
	enqueued []int
	stamp    int
}

// Run groups points like Cluster and also reports noise and per-point labels.
func (d *DBSCAN[T]) Run(points []T) *Result[T] {
	r := &run[T]{
		DBSCAN:   d,
		points:   points,
		states:   make([]state, len(points)),
		labels:   make([]int, len(points)),
		enqueued: make([]int, len(points)),
	}
	if d.index != nil && len(points) > 0 {
		r.idx = d.index(points, d.eps)
	}

	var clusters []*Cluster[T]

	for i := range points {
		if r.states[i] != unvisited {
			continue
		}

		neighbors := r.regionQuery(i)
		if len(neighbors) < d.minPts {
			r.states[i] = noise

			continue
		}

		clusters = append(clusters, r.expand(len(clusters), i, neighbors))
	}

	result := &Result[T]{Clusters: clusters, Labels: r.labels}

	for i, s := range r.states {
		if s != clustered {
			r.labels[i] = Noise
			result.Noise = append(result.Noise, points[i])
		}
	}

	return result
}

// expand builds the cluster seeded by the core point p. The worklist is a
// FIFO over input positions; newly found neighbours of core points are
// appended to its tail unless they were enqueued before.
func (r *run[T]) expand(id, p int, neighbors []int) *Cluster[T] {
	cluster := &Cluster[T]{}
	r.add(cluster, id, p)

	r.stamp++
	queue := make([]int, 0, len(neighbors))

	for _, q := range neighbors {
		r.enqueued[q] = r.stamp
		queue = append(queue, q)
	}

	for head := 0; head < len(queue); head++ {
		q := queue[head]
		s := r.states[q]

		if s == unvisited {
			if qn := r.regionQuery(q); len(qn) >= r.minPts {
				for _, n := range qn {
					if r.enqueued[n] != r.stamp {
						r.enqueued[n] = r.stamp
						queue = append(queue, n)
					}
				}
			}
		}

		// Noise points are reclaimed here as border points.
		if s != clustered {
			r.add(cluster, id, q)
		}
	}

	return cluster
}

func (r *run[T]) add(c *Cluster[T], id, i int) {
	c.AddPoint(r.points[i])
	r.states[i] = clustered
	r.labels[i] = id
}

// regionQuery returns, in ascending order, the positions of every point
// strictly closer than eps to points[i], i included.
func (r *run[T]) regionQuery(i int) []int {
	p := r.points[i]

	var neighbors []int

	if r.idx == nil {
		for j, q := range r.points {
			if p.Distance(q) < r.eps {
				neighbors = append(neighbors, j)
			}
		}

		return neighbors
	}

	candidates := slices.Clone(r.idx.Candidates(i))
	slices.Sort(candidates)
	candidates = slices.Compact(candidates)

	for _, j := range candidates {
		if p.Distance(r.points[j]) < r.eps {
			neighbors = append(neighbors, j)
		}
	}

	return neighbors
}
