// Package api provides the HTTP surface of serve mode: health probes,
// Prometheus metrics and the recommendation endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/trackside/internal/allocator"
	"github.com/yourusername/trackside/internal/config"
	"github.com/yourusername/trackside/internal/metrics"
	"github.com/yourusername/trackside/internal/models"
	"github.com/yourusername/trackside/internal/service"
)

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// RecommendRequest is the body of POST /v1/recommend.
type RecommendRequest struct {
	TrackName  string              `json:"track_name"`
	RaceNumber int                 `json:"race_number"`
	Field      []models.FieldEntry `json:"field"`
}

// DayPlanRequest is the body of POST /v1/dayplan.
type DayPlanRequest struct {
	Bankroll float64                `json:"bankroll"`
	Style    string                 `json:"style"`
	Races    []models.RaceCardEntry `json:"races"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server is the HTTP server for serve mode.
type Server struct {
	serviceName string
	version     string
	cfg         *config.ServerConfig
	metricsPath string
	engine      *service.Engine
	allocator   *allocator.Allocator
	limiter     *rate.Limiter
	server      *http.Server
	logger      *logrus.Logger
	db          DatabasePinger
	mu          sync.RWMutex
	ready       bool
}

// Config holds the server's collaborators.
type Config struct {
	ServiceName string
	Version     string
	Server      *config.ServerConfig
	MetricsPath string
	Engine      *service.Engine
	Allocator   *allocator.Allocator
	Logger      *logrus.Logger
	DB          DatabasePinger
}

// NewServer creates the serve-mode HTTP server.
func NewServer(cfg Config) *Server {
	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	return &Server{
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		cfg:         cfg.Server,
		metricsPath: metricsPath,
		engine:      cfg.Engine,
		allocator:   cfg.Allocator,
		limiter:     rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst),
		logger:      cfg.Logger,
		db:          cfg.DB,
		ready:       false,
	}
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Start starts the server in the background and shuts it down when the
// context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/live", s.handleLive)
	mux.Handle(s.metricsPath, metrics.Handler())
	mux.HandleFunc("/v1/recommend", s.rateLimited(s.handleRecommend))
	mux.HandleFunc("/v1/dayplan", s.rateLimited(s.handleDayPlan))

	s.server = &http.Server{
		Addr:         ":" + strconv.Itoa(s.cfg.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.WithFields(logrus.Fields{
			"port":    s.cfg.Port,
			"service": s.serviceName,
		}).Info("HTTP server starting")

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("HTTP server error")
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("HTTP server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// rateLimited rejects requests beyond the configured rate with 429.
func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next(w, r)
	}
}

// handleRecommend analyzes one race and returns the ranked plays.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.TrackName == "" || req.RaceNumber <= 0 || len(req.Field) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "track_name, race_number and field are required"})
		return
	}

	analysis, err := s.engine.AnalyzeRace(req.TrackName, req.RaceNumber, models.Field(req.Field))
	if err != nil {
		if errors.Is(err, models.ErrEmptyField) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		s.logger.WithError(err).Error("Race analysis failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "analysis failed"})
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// handleDayPlan builds a bankroll allocation plan for a race card.
func (s *Server) handleDayPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req DayPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	style, err := models.ParseRiskStyle(req.Style)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	plan, err := s.allocator.Build(req.Bankroll, style, req.Races)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	metrics.DayPlansBuiltTotal.Inc()
	writeJSON(w, http.StatusOK, plan)
}

// handleHealth handles the /health endpoint - basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
	})
}

// handleLive handles the /live endpoint - kubernetes liveness probe.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: s.serviceName,
	})
}

// handleReady handles the /ready endpoint - checks database connectivity.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	allHealthy := true

	if !s.IsReady() {
		allHealthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			allHealthy = false
			checks["database"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["database"] = "ok"
		}
	}

	response := ReadyResponse{
		Service:  s.serviceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}

	if allHealthy {
		response.Status = "ok"
		writeJSON(w, http.StatusOK, response)
		return
	}
	response.Status = "not_ready"
	writeJSON(w, http.StatusServiceUnavailable, response)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
