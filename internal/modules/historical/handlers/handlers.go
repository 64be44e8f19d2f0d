// Package handlers provides HTTP handlers for stored price history.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/momentum/internal/domain"
	"github.com/aristath/momentum/internal/modules/historical"
	"github.com/aristath/momentum/pkg/formulas"
	"github.com/rs/zerolog"
)

const (
	defaultPriceLimit      = 100
	defaultSummaryLookback = 120
	maxUpsertBars          = 5000
)

// HistoryStore is the subset of the history database used by the handlers
type HistoryStore interface {
	GetSeries(ctx context.Context, symbol string, limit int) (domain.Series, error)
	UpsertBars(ctx context.Context, symbol string, bars []domain.Bar) error
	Symbols(ctx context.Context) (map[string]int, error)
}

// Handler handles historical data HTTP requests
type Handler struct {
	store HistoryStore
	log   zerolog.Logger
}

// NewHandler creates a new historical data handler
func NewHandler(store HistoryStore, log zerolog.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log.With().Str("handler", "historical").Logger(),
	}
}

// HandleGetDailyPrices handles GET /api/historical/prices/{symbol}
func (h *Handler) HandleGetDailyPrices(w http.ResponseWriter, r *http.Request, symbol string) {
	limit := parseLimit(r, defaultPriceLimit)

	series, err := h.store.GetSeries(r.Context(), symbol, limit)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get daily prices")
		h.writeError(w, http.StatusInternalServerError, "Failed to get daily prices")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"symbol": domain.NormalizeTicker(symbol),
			"prices": series,
			"count":  len(series),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetSummary handles GET /api/historical/summary/{symbol}
// Returns trend and volatility diagnostics over the stored lookback window.
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request, symbol string) {
	lookback := parseLimit(r, defaultSummaryLookback)

	series, err := h.store.GetSeries(r.Context(), symbol, lookback)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get prices for summary")
		h.writeError(w, http.StatusInternalServerError, "Failed to get prices")
		return
	}

	latest, ok := series.Latest()
	if !ok {
		h.writeError(w, http.StatusNotFound, "no stored prices for "+domain.NormalizeTicker(symbol))
		return
	}

	closes := series.Closes()
	sma := formulas.CalculateSMA(closes, 20)
	ema := formulas.CalculateEMA(closes, 50)
	returns := formulas.CalculateReturns(closes)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"symbol":                domain.NormalizeTicker(symbol),
			"bars":                  len(series),
			"latest_date":           latest.Date,
			"latest_close":          latest.Close,
			"sma_20":                sma,
			"ema_50":                ema,
			"distance_from_ema_50":  formulas.DistanceFrom(latest.Close, ema),
			"mean_daily_return":     formulas.Mean(returns),
			"annualized_volatility": formulas.AnnualizedVolatility(returns),
			"rsi_14":                formulas.CalculateRSI(closes, 14),
			"macd":                  formulas.CalculateMACD(closes, 12, 26, 9),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetSymbols handles GET /api/historical/symbols
func (h *Handler) HandleGetSymbols(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Symbols(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list symbols")
		h.writeError(w, http.StatusInternalServerError, "Failed to list symbols")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"symbols": counts,
			"count":   len(counts),
		},
	})
}

// UpsertRequest is the body accepted by HandleUpsertBars
type UpsertRequest struct {
	Bars []domain.Bar `json:"bars"`
}

// HandleUpsertBars handles POST /api/history/{symbol}
func (h *Handler) HandleUpsertBars(w http.ResponseWriter, r *http.Request, symbol string) {
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Bars) == 0 {
		h.writeError(w, http.StatusBadRequest, "bars must not be empty")
		return
	}
	if len(req.Bars) > maxUpsertBars {
		h.writeError(w, http.StatusBadRequest, "too many bars in a single request")
		return
	}

	if err := h.store.UpsertBars(r.Context(), symbol, req.Bars); err != nil {
		if errors.Is(err, historical.ErrInvalidBar) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to store bars")
		h.writeError(w, http.StatusInternalServerError, "Failed to store bars")
		return
	}

	h.log.Info().
		Str("symbol", domain.NormalizeTicker(symbol)).
		Int("bars", len(req.Bars)).
		Msg("Stored price history")

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": domain.NormalizeTicker(symbol),
		"stored": len(req.Bars),
	})
}

func parseLimit(r *http.Request, fallback int) int {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
