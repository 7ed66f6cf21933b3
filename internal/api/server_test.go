package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/trackside/internal/allocator"
	"github.com/yourusername/trackside/internal/config"
	"github.com/yourusername/trackside/internal/models"
	"github.com/yourusername/trackside/internal/service"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(ctx context.Context) error {
	return p.err
}

func testServer(db DatabasePinger) *Server {
	engineCfg := config.DefaultEngineConfig()
	allocCfg := config.DefaultAllocationConfig()
	log := logrus.New()
	log.SetOutput(io.Discard)

	return NewServer(Config{
		ServiceName: "trackside",
		Version:     "test",
		Server:      &config.ServerConfig{Port: 8080, RateLimitRPS: 100, RateLimitBurst: 100},
		Engine:      service.NewEngine(&engineCfg, log),
		Allocator:   allocator.New(&allocCfg, log),
		Logger:      log,
		DB:          db,
	})
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func recommendBody() RecommendRequest {
	field := make([]models.FieldEntry, 4)
	names := []string{"Night Auditor", "Copper Kettle", "Stage Whisper", "Borrowed Time"}
	for i := range field {
		field[i] = models.FieldEntry{
			Index:         i,
			ProgramNumber: i + 1,
			Name:          names[i],
			BaseScore:     25,
			DecimalOdds:   3.0,
			Rank:          i + 1,
		}
	}
	field[0].DecimalOdds = 4.0
	return RecommendRequest{TrackName: "Keeneland", RaceNumber: 3, Field: field}
}

func TestRecommendEndpoint(t *testing.T) {
	s := testServer(nil)

	rec := postJSON(t, s.handleRecommend, "/v1/recommend", recommendBody())
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis service.RaceAnalysis
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&analysis))
	assert.Equal(t, "Keeneland", analysis.TrackName)
	assert.Equal(t, models.VerdictBet, analysis.Verdict)
	assert.NotEmpty(t, analysis.Recommendations)
}

func TestRecommendRejectsBadRequests(t *testing.T) {
	s := testServer(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/recommend", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.handleRecommend(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	empty := recommendBody()
	empty.Field = nil
	rec = postJSON(t, s.handleRecommend, "/v1/recommend", empty)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	get := httptest.NewRequest(http.MethodGet, "/v1/recommend", nil)
	rec = httptest.NewRecorder()
	s.handleRecommend(rec, get)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDayPlanEndpoint(t *testing.T) {
	s := testServer(nil)

	body := DayPlanRequest{
		Bankroll: 500,
		Style:    "balanced",
		Races: []models.RaceCardEntry{
			{RaceNumber: 1, TrackName: "Keeneland", Verdict: models.VerdictBet, Edge: 25},
			{RaceNumber: 2, TrackName: "Keeneland", Verdict: models.VerdictCaution, Edge: 8},
			{RaceNumber: 3, TrackName: "Keeneland", Verdict: models.VerdictPass, Edge: 1},
		},
	}
	rec := postJSON(t, s.handleDayPlan, "/v1/dayplan", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var plan allocator.Plan
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&plan))
	assert.InDelta(t, 500.0, plan.TotalBankroll, 1e-9)
	assert.Len(t, plan.Allocations, 3)
}

func TestDayPlanRejectsUnknownStyle(t *testing.T) {
	s := testServer(nil)

	body := DayPlanRequest{Bankroll: 500, Style: "reckless"}
	rec := postJSON(t, s.handleDayPlan, "/v1/dayplan", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimitReturns429(t *testing.T) {
	engineCfg := config.DefaultEngineConfig()
	allocCfg := config.DefaultAllocationConfig()
	log := logrus.New()
	log.SetOutput(io.Discard)

	s := NewServer(Config{
		ServiceName: "trackside",
		Server:      &config.ServerConfig{Port: 8080, RateLimitRPS: 1, RateLimitBurst: 1},
		Engine:      service.NewEngine(&engineCfg, log),
		Allocator:   allocator.New(&allocCfg, log),
		Logger:      log,
	})

	handler := s.rateLimited(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	first := httptest.NewRecorder()
	handler(first, httptest.NewRequest(http.MethodPost, "/v1/recommend", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler(second, httptest.NewRequest(http.MethodPost, "/v1/recommend", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestHealthAndLive(t *testing.T) {
	s := testServer(nil)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "trackside", health.Service)

	rec = httptest.NewRecorder()
	s.handleLive(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyReflectsServiceAndDatabase(t *testing.T) {
	s := testServer(&stubPinger{})

	// Not ready until serve mode flips the flag.
	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.SetReady(true)
	rec = httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var ready ReadyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ready))
	assert.Equal(t, "ok", ready.Checks["database"])
}

func TestReadyFailsOnDatabaseError(t *testing.T) {
	s := testServer(&stubPinger{err: errors.New("connection refused")})
	s.SetReady(true)

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var ready ReadyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ready))
	assert.Contains(t, ready.Checks["database"], "error")
}
