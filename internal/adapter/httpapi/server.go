// Package httpapi exposes the track store's products over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/vortex-track/internal/atcf"
	"github.com/couchcryptid/vortex-track/internal/geo"
	"github.com/couchcryptid/vortex-track/internal/observability"
	"github.com/couchcryptid/vortex-track/internal/track"
)

// Server exposes health, readiness, metrics and track product routes.
// The store is single-threaded; a mutex serializes every access from
// concurrent request handlers.
type Server struct {
	httpServer *http.Server
	store      *track.Store
	mu         sync.Mutex
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates the HTTP server and wires all routes.
func NewServer(addr string, store *track.Store, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:   store,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /track", s.handleTrack)
	mux.HandleFunc("GET /track/geojson", s.handleTrackGeoJSON)
	mux.HandleFunc("GET /track/isotachs", s.handleIsotachs)
	mux.HandleFunc("GET /track/swaths", s.handleSwaths)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	loaded := s.store.Loaded()
	s.mu.Unlock()

	if !loaded {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no deck loaded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleTrack serves the canonical table as raw ATCF text.
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mu.Lock()
	data, err := s.store.Data(r.Context())
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, "track", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := atcf.WriteATCF(w, data); err != nil {
		s.logger.Error("write atcf response", "error", err)
	}
	s.observeBuild("track", start)
}

// handleTrackGeoJSON serves one linestring feature per track.
func (s *Server) handleTrackGeoJSON(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mu.Lock()
	lines, err := s.store.Linestrings(r.Context())
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, "geojson", err)
		return
	}

	fc := geojson.NewFeatureCollection()
	for advisory, byCycle := range lines {
		for cycleKey, line := range byCycle {
			feature := geo.LineStringFeature(line)
			feature.SetProperty("advisory", string(advisory))
			feature.SetProperty("cycle", cycleKey)
			fc.AddFeature(feature)
		}
	}

	writeJSON(w, http.StatusOK, fc)
	s.observeBuild("geojson", start)
}

func (s *Server) handleIsotachs(w http.ResponseWriter, r *http.Request) {
	windSpeed, segments, err := productParams(r)
	if err != nil {
		s.writeError(w, "isotachs", err)
		return
	}

	start := time.Now()
	s.mu.Lock()
	set, err := s.store.Isotachs(r.Context(), windSpeed, segments)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, "isotachs", err)
		return
	}

	fc := geojson.NewFeatureCollection()
	for advisory, byCycle := range set {
		for cycleKey, byTime := range byCycle {
			for at, polygon := range byTime {
				feature := geo.PolygonFeature(polygon)
				feature.SetProperty("advisory", string(advisory))
				feature.SetProperty("cycle", cycleKey)
				feature.SetProperty("time", at.Format(time.RFC3339))
				feature.SetProperty("wind_speed", windSpeed)
				fc.AddFeature(feature)
			}
		}
	}

	writeJSON(w, http.StatusOK, fc)
	s.observeBuild("isotachs", start)
}

func (s *Server) handleSwaths(w http.ResponseWriter, r *http.Request) {
	windSpeed, segments, err := productParams(r)
	if err != nil {
		s.writeError(w, "swaths", err)
		return
	}

	start := time.Now()
	s.mu.Lock()
	set, err := s.store.WindSwaths(r.Context(), windSpeed, segments)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, "swaths", err)
		return
	}

	fc := geojson.NewFeatureCollection()
	for advisory, byCycle := range set {
		for cycleKey, polygon := range byCycle {
			feature := geo.PolygonFeature(polygon)
			feature.SetProperty("advisory", string(advisory))
			feature.SetProperty("cycle", cycleKey)
			feature.SetProperty("wind_speed", windSpeed)
			fc.AddFeature(feature)
		}
	}

	writeJSON(w, http.StatusOK, fc)
	s.observeBuild("swaths", start)
}

// productParams reads wind_speed (default 34) and segments (default 91).
func productParams(r *http.Request) (windSpeed float64, segments int, err error) {
	windSpeed = 34
	if raw := r.URL.Query().Get("wind_speed"); raw != "" {
		windSpeed, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, 0, errors.Join(track.ErrInvalidArgument, err)
		}
	}
	segments = track.DefaultSegments
	if raw := r.URL.Query().Get("segments"); raw != "" {
		segments, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errors.Join(track.ErrInvalidArgument, err)
		}
	}
	return windSpeed, segments, nil
}

func (s *Server) observeBuild(product string, start time.Time) {
	s.metrics.ProductBuilds.WithLabelValues(product, "success").Inc()
	s.metrics.ProductBuildDuration.WithLabelValues(product).Observe(time.Since(start).Seconds())

	s.mu.Lock()
	loaded := s.store.Loaded()
	s.mu.Unlock()
	if loaded {
		s.metrics.StoreLoaded.Set(1)
	}
}

func (s *Server) writeError(w http.ResponseWriter, product string, err error) {
	s.metrics.ProductBuilds.WithLabelValues(product, "error").Inc()

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, track.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, track.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, track.ErrConnectivity):
		status = http.StatusBadGateway
	case errors.Is(err, track.ErrUnimplemented):
		status = http.StatusNotImplemented
	}

	s.logger.Warn("request failed", "product", product, "status", status, "error", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
