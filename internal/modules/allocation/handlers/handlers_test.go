package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/momentum/internal/domain"
	"github.com/aristath/momentum/internal/modules/allocation"
	"github.com/aristath/momentum/internal/modules/scoring"
	testingpkg "github.com/aristath/momentum/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testScores = map[string]float64{"NVDA": 0.9, "GOOGL": 0.8, "AMZN": 0.7, "MSFT": 0.6, "IBM": 0.5}

func setupRouter(t *testing.T, source domain.MarketDataSource) *chi.Mux {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)

	cfg, err := allocation.NewConfig(allocation.DefaultTickers, scoring.NewStaticProvider(testScores), allocation.DefaultOptions())
	require.NoError(t, err)

	db, cleanup := testingpkg.NewTestDB(t, "runs")
	t.Cleanup(cleanup)
	repo := allocation.NewRepository(db.Conn(), logger)

	service := allocation.NewService(allocation.ServiceDeps{
		Strategy: allocation.NewStrategy(cfg, nil),
		Source:   source,
		Runs:     repo,
		Lookback: 120,
	}, logger)

	router := chi.NewRouter()
	router.Route("/api", NewHandler(service, repo, logger).RegisterRoutes)
	return router
}

func do(t *testing.T, router http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeRun(t *testing.T, w *httptest.ResponseRecorder) RunResponse {
	t.Helper()
	var run RunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	return run
}

func TestHandleGetStrategy(t *testing.T) {
	router := setupRouter(t, nil)

	w := do(t, router, http.MethodGet, "/api/strategy", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response StrategyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ai-ml-momentum", response.Name)
	assert.Equal(t, "1day", response.Interval)
	assert.Equal(t, []string{"NVDA", "GOOGL", "AMZN", "MSFT", "IBM"}, response.Assets)
	assert.InDelta(t, 3.5, response.TotalScore, 1e-12)
	assert.Equal(t, 14, response.Indicators.RSIPeriod)
	assert.Equal(t, 34, response.MinBars)
}

func TestHandleEvaluate(t *testing.T) {
	router := setupRouter(t, nil)

	bundle := testingpkg.TrendingBundle(60, []string{"nvda", "GOOGL"}, []string{"IBM"})
	body, err := json.Marshal(EvaluateRequest{OHLCV: bundle})
	require.NoError(t, err)

	w := do(t, router, http.MethodPost, "/api/allocation/evaluate", body)
	require.Equal(t, http.StatusOK, w.Code)

	run := decodeRun(t, w)
	assert.NotEmpty(t, run.ID)
	assert.InDelta(t, 0.9/3.5, run.Weights["NVDA"], 1e-12)
	assert.InDelta(t, 0.8/3.5, run.Weights["GOOGL"], 1e-12)
	assert.Equal(t, 0.0, run.Weights["IBM"])
	assert.NotContains(t, run.Weights, "AMZN")
	assert.NotContains(t, run.Weights, "MSFT")
	assert.False(t, run.Result.Normalized)

	// The evaluation is logged
	w = do(t, router, http.MethodGet, "/api/allocation/runs/"+run.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, run.Weights, decodeRun(t, w).Weights)
}

func TestHandleEvaluate_BadRequests(t *testing.T) {
	router := setupRouter(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"ohlcv":`},
		{"missing ohlcv", `{}`},
		{"blank ticker", `{"ohlcv":{" ":[]}}`},
		{"duplicate ticker", `{"ohlcv":{"ibm":[],"IBM":[]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/allocation/evaluate", []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleRun(t *testing.T) {
	source := testingpkg.NewMockMarketDataSource(testingpkg.TrendingBundle(150, []string{"MSFT"}, nil))
	router := setupRouter(t, source)

	w := do(t, router, http.MethodPost, "/api/allocation/run", nil)
	require.Equal(t, http.StatusOK, w.Code)

	run := decodeRun(t, w)
	require.Len(t, run.Weights, 1)
	assert.InDelta(t, 0.6/3.5, run.Weights["MSFT"], 1e-12)
}

func TestHandleRun_NoSource(t *testing.T) {
	router := setupRouter(t, nil)

	w := do(t, router, http.MethodPost, "/api/allocation/run", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleGetLatest(t *testing.T) {
	router := setupRouter(t, nil)

	w := do(t, router, http.MethodGet, "/api/allocation/latest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodPost, "/api/allocation/evaluate", []byte(`{"ohlcv":{}}`))
	require.Equal(t, http.StatusOK, w.Code)
	id := decodeRun(t, w).ID

	w = do(t, router, http.MethodGet, "/api/allocation/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decodeRun(t, w).ID)
}

func TestHandleGetRun_NotFound(t *testing.T) {
	router := setupRouter(t, nil)

	w := do(t, router, http.MethodGet, "/api/allocation/runs/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleListRuns(t *testing.T) {
	router := setupRouter(t, nil)

	for i := 0; i < 3; i++ {
		w := do(t, router, http.MethodPost, "/api/allocation/evaluate", []byte(`{"ohlcv":{}}`))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(t, router, http.MethodGet, "/api/allocation/runs?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Runs  []RunResponse `json:"runs"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)
	assert.Len(t, response.Runs, 2)

	w = do(t, router, http.MethodGet, "/api/allocation/runs?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
