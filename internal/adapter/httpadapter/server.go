package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/weather-mcp/internal/service"
)

var errNonFinite = errors.New("coordinate is not finite")

// Server exposes the weather operations plus health, readiness, and metrics
// HTTP endpoints.
type Server struct {
	httpServer *http.Server
	svc        service.Service
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /v1 weather routes. writeTimeout bounds a whole request, including every
// upstream call an alerts lookup makes.
func NewServer(addr string, svc service.Service, ready sharedobs.ReadinessChecker, writeTimeout time.Duration, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: writeTimeout,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/alerts/{region}", s.handleAlerts)
	mux.HandleFunc("GET /v1/forecast", s.handleForecast)

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

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	region := strings.TrimSpace(r.PathValue("region"))
	if region == "" {
		writeText(w, http.StatusBadRequest, "region is required")
		return
	}
	writeText(w, http.StatusOK, s.svc.GetAlerts(r.Context(), region))
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := parseCoordinate(q.Get("latitude"))
	if err != nil {
		writeText(w, http.StatusBadRequest, "latitude must be a number")
		return
	}
	lon, err := parseCoordinate(q.Get("longitude"))
	if err != nil {
		writeText(w, http.StatusBadRequest, "longitude must be a number")
		return
	}
	writeText(w, http.StatusOK, s.svc.GetForecast(r.Context(), lat, lon))
}

// parseCoordinate parses a decimal degree. NaN and the infinities parse as
// floats but are not coordinates.
func parseCoordinate(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNonFinite
	}
	return v, nil
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
