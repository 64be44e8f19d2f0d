package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/momentum/internal/modules/historical"
	testingpkg "github.com/aristath/momentum/internal/testing"
	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Every pooled connection would otherwise get its own in-memory database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_prices (
			symbol TEXT NOT NULL,
			date TEXT NOT NULL,
			open REAL NOT NULL,
			high REAL NOT NULL,
			low REAL NOT NULL,
			close REAL NOT NULL,
			volume REAL NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, date)
		);
	`)
	require.NoError(t, err)

	return db
}

func setupRouter(t *testing.T) (*chi.Mux, *historical.HistoryDB) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })

	historyDB := historical.NewHistoryDB(db, logger)
	handler := NewHandler(historyDB, logger)

	router := chi.NewRouter()
	router.Route("/api", handler.RegisterRoutes)
	return router, historyDB
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestHandleUpsertBars(t *testing.T) {
	router, historyDB := setupRouter(t)

	bars := testingpkg.GeometricSeries(100, 0.01, 40)
	body, err := json.Marshal(UpsertRequest{Bars: bars})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/history/nvda", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, "NVDA", response["symbol"])
	assert.Equal(t, float64(40), response["stored"])

	series, err := historyDB.GetSeries(req.Context(), "NVDA", 100)
	require.NoError(t, err)
	assert.Len(t, series, 40)
}

func TestHandleUpsertBars_BadRequests(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"bars":`},
		{"empty bars", `{"bars":[]}`},
		{"invalid bar", `{"bars":[{"date":"yesterday","open":1,"high":1,"low":1,"close":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/history/IBM", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
}

func TestHandleGetDailyPrices(t *testing.T) {
	router, historyDB := setupRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/historical/prices/IBM?limit=5", nil)
	require.NoError(t, historyDB.UpsertBars(req.Context(), "IBM", testingpkg.GeometricSeries(100, 0.01, 20)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "IBM", data["symbol"])
	assert.Equal(t, float64(5), data["count"])
}

func TestHandleGetSummary(t *testing.T) {
	router, historyDB := setupRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/historical/summary/NVDA", nil)
	require.NoError(t, historyDB.UpsertBars(req.Context(), "NVDA", testingpkg.GeometricSeries(100, 0.01, 80)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(80), data["bars"])
	assert.NotNil(t, data["sma_20"])
	assert.NotNil(t, data["ema_50"])
	assert.Greater(t, data["rsi_14"].(float64), 50.0)

	macd := data["macd"].(map[string]interface{})
	assert.Greater(t, macd["macd"].(float64), 0.0)
}

func TestHandleGetSummary_UnknownSymbol(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/historical/summary/MSFT", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGetSymbols(t *testing.T) {
	router, historyDB := setupRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/historical/symbols", nil)
	require.NoError(t, historyDB.UpsertBars(req.Context(), "AMZN", testingpkg.GeometricSeries(100, 0.01, 3)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"AMZN": float64(3)}, data["symbols"])
}
