package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/research"
	"github.com/sawpanic/marketintel/internal/types"
)

func testEngine() *research.Engine {
	events := []types.ContrarianEvent{
		{ID: "a", TradeTimestampMS: 1000, IsContrarian: true, OutcomeWon: true, TradeNotional: 100, TradePrice: 0.4},
		{ID: "b", TradeTimestampMS: 2000, IsContrarian: false, OutcomeWon: false, TradeNotional: 200, TradePrice: 0.6},
	}
	return research.NewEngine(config.DefaultResearchConfig(), nil, func() []types.ContrarianEvent { return events })
}

func TestHealth_AlwaysOK(t *testing.T) {
	h := New(testEngine(), nil, config.Default(), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBreakdown_UnknownFactorReturns400(t *testing.T) {
	h := New(testEngine(), nil, config.Default(), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/analysis/breakdown/bogus", nil)
	req = mux.SetURLVars(req, map[string]string{"factor": "bogus"})
	rec := httptest.NewRecorder()
	h.Breakdown(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body["error"], "bogus")
}

func TestBreakdown_KnownFactorReturns200(t *testing.T) {
	h := New(testEngine(), nil, config.Default(), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/analysis/breakdown/category", nil)
	req = mux.SetURLVars(req, map[string]string{"factor": "category"})
	rec := httptest.NewRecorder()
	h.Breakdown(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOptimize_WithoutStorageReturns503(t *testing.T) {
	h := New(testEngine(), nil, config.Default(), nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/analysis/optimize", nil)
	rec := httptest.NewRecorder()
	h.Optimize(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAlerts_WithoutStorageReturnsEmptyList(t *testing.T) {
	h := New(testEngine(), nil, config.Default(), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/analysis/alerts", nil)
	rec := httptest.NewRecorder()
	h.Alerts(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]types.DriftAlert
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Empty(t, body["alerts"])
}

func TestSummary_ReturnsCorrelationSummary(t *testing.T) {
	h := New(testEngine(), nil, config.Default(), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/analysis/summary?days=90", nil)
	rec := httptest.NewRecorder()
	h.Summary(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body types.CorrelationSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 2, body.N)
}

func TestParseAnalysisConfig_InvalidContrarianModeFallsBackToVsOFI(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/analysis/summary?contrarianMode=not_a_mode", nil)
	ac := parseAnalysisConfig(req)
	assert.Equal(t, types.ModeVsOFI, ac.ContrarianMode)
}

func TestClampLimit_EnforcesMax(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/analysis/events?limit=500", nil)
	assert.Equal(t, 100, clampLimit(req, 20, 100))

	reqDefault := httptest.NewRequest(http.MethodGet, "/api/analysis/events", nil)
	assert.Equal(t, 20, clampLimit(reqDefault, 20, 100))
}
