package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/CortexBrief/internal/briefing"
	"github.com/dyike/CortexBrief/internal/metrics"
	"github.com/dyike/CortexBrief/internal/service"
	"github.com/dyike/CortexBrief/internal/sources"
)

type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context) *briefing.Report {
	return &briefing.Report{
		RunID:     "run-1",
		Date:      time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Fragments: []sources.Fragment{{Source: "fear_greed", Status: sources.StatusOK, Text: "62/100 (GREED)"}},
		Text:      "=== INTELLIGENCE BRIEFING: 2025-06-02 ===\n",
	}
}

type stubSummarizer struct{}

func (stubSummarizer) Summarize(ctx context.Context, briefing string) string { return "Stay calm." }

type stubMission struct{ err error }

func (m stubMission) Run(ctx context.Context, confirm service.ConfirmFunc) (*service.Outcome, error) {
	out := &service.Outcome{Report: stubGenerator{}.Generate(ctx), Delivered: m.err == nil}
	return out, m.err
}

func newTestServer(t *testing.T, h *Handler) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics.New(reg).RecordBriefing(1748822400)
	return NewServer(h, WithGatherer(reg), WithLogger(zerolog.Nop())), reg
}

func do(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestBriefingEndpoints(t *testing.T) {
	s, _ := newTestServer(t, &Handler{Generator: stubGenerator{}, Summarizer: stubSummarizer{}})

	rec := do(s, http.MethodGet, "/briefing")
	require.Equal(t, http.StatusOK, rec.Code)
	var body briefingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	assert.Equal(t, "2025-06-02", body.Date)
	assert.Equal(t, "Stay calm.", body.Note)
	require.Len(t, body.Fragments, 1)
	assert.Equal(t, sources.StatusOK, body.Fragments[0].Status)

	rec = do(s, http.MethodGet, "/briefing?note=false")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Note)

	rec = do(s, http.MethodGet, "/briefing/raw")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "=== INTELLIGENCE BRIEFING: 2025-06-02 ===\n", rec.Body.String())

	rec = do(s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &Handler{Generator: stubGenerator{}})

	rec := do(s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cortexbrief_briefings_total")
}

func TestMissionEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &Handler{Generator: stubGenerator{}, Mission: stubMission{}})
	rec := do(s, http.MethodPost, "/missions")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"delivered":true`)

	s, _ = newTestServer(t, &Handler{Generator: stubGenerator{}, Mission: stubMission{err: errors.New("webhook: refused")}})
	rec = do(s, http.MethodPost, "/missions")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "webhook: refused")
}

func TestMissionRouteNeedsMission(t *testing.T) {
	s, _ := newTestServer(t, &Handler{Generator: stubGenerator{}})
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodPost, "/missions").Code)
}

func TestRecoverMiddleware(t *testing.T) {
	s, _ := newTestServer(t, nil)
	s.Echo().GET("/panic", func(c echo.Context) error { panic("boom") })

	rec := do(s, http.MethodGet, "/panic")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
