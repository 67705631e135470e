// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/lugares/spatial"
	"github.com/jcodagnone/lugares/store"
)

// DefaultAddr is where the API listens unless told otherwise.
const DefaultAddr = "localhost:8080"

// Server exposes a Service over HTTP.
type Server struct {
	service *Service
	addr    string
}

// NewServer creates a server listening on addr, or DefaultAddr when empty.
func NewServer(service *Service, addr string) *Server {
	if addr == "" {
		addr = DefaultAddr
	}

	return &Server{service: service, addr: addr}
}

// Router returns the engine with every API route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/api/locations", s.listLocations)
	r.POST("/api/locations", s.addLocation)
	r.GET("/api/locations/:id", s.getLocation)
	r.DELETE("/api/locations/:id", s.deleteLocation)
	r.GET("/api/places", s.discover)
	r.GET("/api/places.geojson", s.discoverGeoJSON)
	r.GET("/api/runs", s.listRuns)
	r.GET("/api/runs/:id", s.getRun)

	return r
}

// Run listens and serves until the server fails.
func (s *Server) Run() error {
	return s.Router().Run(s.addr)
}

func fail(ctx *gin.Context, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
	}

	ctx.JSON(status, gin.H{"error": err.Error(), "type": errorType(err).String()})
}

// queryTime reads an optional RFC 3339 query parameter.
func queryTime(ctx *gin.Context, name string) (*time.Time, error) {
	value := ctx.Query(name)
	if value == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, newError(ErrorTypeInvalidParams, err, "invalid %s parameter", name)
	}

	return &t, nil
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(ctx *gin.Context, name string, def int) (int, error) {
	value := ctx.Query(name)
	if value == "" {
		return def, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, newError(ErrorTypeInvalidParams, err, "invalid %s parameter", name)
	}

	if n < 0 {
		return 0, newError(ErrorTypeInvalidParams, nil, "%s must not be negative, got %d", name, n)
	}

	return n, nil
}

func pathID(ctx *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, newError(ErrorTypeInvalidParams, err, "invalid id")
	}

	return id, nil
}

func (s *Server) listLocations(ctx *gin.Context) {
	from, err := queryTime(ctx, "from")
	if err != nil {
		fail(ctx, err)

		return
	}

	to, err := queryTime(ctx, "to")
	if err != nil {
		fail(ctx, err)

		return
	}

	limit, err := queryInt(ctx, "limit", 1000)
	if err != nil {
		fail(ctx, err)

		return
	}

	offset, err := queryInt(ctx, "offset", 0)
	if err != nil {
		fail(ctx, err)

		return
	}

	locations, err := s.service.Locations(from, to, limit, offset)
	if err != nil {
		fail(ctx, err)

		return
	}

	if locations == nil {
		locations = []*spatial.Location{}
	}

	ctx.JSON(http.StatusOK, locations)
}

// AddLocationRequest is the body of POST /api/locations.
type AddLocationRequest struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy"`
	RecordedAt time.Time `json:"recorded_at"`
}

func (s *Server) addLocation(ctx *gin.Context) {
	var req AddLocationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		fail(ctx, newError(ErrorTypeInvalidLocation, err, "invalid request body"))

		return
	}

	l := &spatial.Location{
		RecordedAt: req.RecordedAt,
		Point:      spatial.Point{Lat: req.Latitude, Lng: req.Longitude},
		Accuracy:   req.Accuracy,
	}

	if err := s.service.AddLocation(l); err != nil {
		fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusCreated, l)
}

func (s *Server) getLocation(ctx *gin.Context) {
	id, err := pathID(ctx)
	if err != nil {
		fail(ctx, err)

		return
	}

	l, err := s.service.Location(id)
	if err != nil {
		fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, l)
}

func (s *Server) deleteLocation(ctx *gin.Context) {
	id, err := pathID(ctx)
	if err != nil {
		fail(ctx, err)

		return
	}

	if err := s.service.DeleteLocation(id); err != nil {
		fail(ctx, err)

		return
	}

	ctx.Status(http.StatusNoContent)
}

// discoveryParams reads eps, min_pts, from, to and h3 from the query string.
func discoveryParams(ctx *gin.Context) (Params, error) {
	params := Params{Eps: DefaultEps, MinPts: DefaultMinPts}

	var errs []error

	if value := ctx.Query("eps"); value != "" {
		eps, err := strconv.ParseFloat(value, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid eps parameter: %w", err))
		}

		params.Eps = eps
	}

	minPts, err := queryInt(ctx, "min_pts", DefaultMinPts)
	if err != nil {
		errs = append(errs, err)
	}

	params.MinPts = minPts

	if params.From, err = queryTime(ctx, "from"); err != nil {
		errs = append(errs, err)
	}

	if params.To, err = queryTime(ctx, "to"); err != nil {
		errs = append(errs, err)
	}

	if value := ctx.Query("h3"); value != "" {
		useH3, err := strconv.ParseBool(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid h3 parameter: %w", err))
		}

		params.UseH3 = useH3
	}

	if len(errs) > 0 {
		return params, newError(ErrorTypeInvalidParams, errors.Join(errs...), "invalid query")
	}

	return params, nil
}

func (s *Server) runDiscovery(ctx *gin.Context) (*Report, bool) {
	params, err := discoveryParams(ctx)
	if err != nil {
		fail(ctx, err)

		return nil, false
	}

	report, err := s.service.Discover(ctx.Request.Context(), params)
	if err != nil {
		fail(ctx, err)

		return nil, false
	}

	return report, true
}

// discover stores a new run on every call.
func (s *Server) discover(ctx *gin.Context) {
	report, ok := s.runDiscovery(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, report)
}

func (s *Server) discoverGeoJSON(ctx *gin.Context) {
	report, ok := s.runDiscovery(ctx)
	if !ok {
		return
	}

	ctx.Header("Content-Type", "application/geo+json")
	ctx.Status(http.StatusOK)

	if err := WriteGeoJSON(ctx.Writer, report); err != nil {
		log.Printf("writing GeoJSON for run %s: %v", report.RunID, err)
	}
}

func (s *Server) listRuns(ctx *gin.Context) {
	limit, err := queryInt(ctx, "limit", 50)
	if err != nil {
		fail(ctx, err)

		return
	}

	runs, err := s.service.Runs(limit)
	if err != nil {
		fail(ctx, err)

		return
	}

	if runs == nil {
		runs = []*store.ClusterRun{}
	}

	ctx.JSON(http.StatusOK, runs)
}

func (s *Server) getRun(ctx *gin.Context) {
	run, err := s.service.Run(ctx.Param("id"))
	if err != nil {
		fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, run)
}
