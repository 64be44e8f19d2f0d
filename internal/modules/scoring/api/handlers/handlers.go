// Package handlers provides HTTP handlers for bullishness scores and indicator diagnostics.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aristath/momentum/internal/domain"
	"github.com/aristath/momentum/internal/modules/allocation"
	"github.com/rs/zerolog"
)

// Handlers provides HTTP handlers for the scoring module
type Handlers struct {
	cfg  *allocation.Config
	calc *allocation.TalibCalculator
	log  zerolog.Logger
}

// NewHandlers creates a new scoring handlers instance
func NewHandlers(cfg *allocation.Config, log zerolog.Logger) *Handlers {
	return &Handlers{
		cfg:  cfg,
		calc: allocation.NewTalibCalculator(cfg.Indicators()),
		log:  log.With().Str("module", "scoring_handlers").Logger(),
	}
}

// ScoreResponse is the held score of one ticker and its share of the total
type ScoreResponse struct {
	Ticker    string  `json:"ticker"`
	Score     float64 `json:"score"`
	MaxWeight float64 `json:"max_weight"`
}

// IndicatorRequest carries closing prices, oldest first
type IndicatorRequest struct {
	Symbol string    `json:"symbol"`
	Closes []float64 `json:"closes"`
}

// IndicatorResponse reports the indicators and the bullish condition for a price series
type IndicatorResponse struct {
	Symbol     string                 `json:"symbol"`
	Bars       int                    `json:"bars"`
	MinBars    int                    `json:"min_bars"`
	Available  bool                   `json:"available"`
	Indicators *allocation.Indicators `json:"indicators,omitempty"`
	Bullish    bool                   `json:"bullish"`
}

// HandleGetScores handles GET /api/scoring/scores
func (h *Handlers) HandleGetScores(w http.ResponseWriter, r *http.Request) {
	assets := h.cfg.Assets()
	scores := make([]ScoreResponse, 0, len(assets))
	for _, ticker := range assets {
		scores = append(scores, h.scoreResponse(ticker))
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"scores":      scores,
		"total_score": h.cfg.TotalScore(),
	})
}

// HandleGetScore handles GET /api/scoring/scores/{ticker}
func (h *Handlers) HandleGetScore(w http.ResponseWriter, r *http.Request, ticker string) {
	ticker = domain.NormalizeTicker(ticker)
	if _, ok := h.cfg.Score(ticker); !ok {
		h.writeError(w, "ticker is not in the universe", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, h.scoreResponse(ticker))
}

// HandleIndicators handles POST /api/scoring/indicators
// Computes RSI and MACD for the posted closes without touching the run log.
func (h *Handlers) HandleIndicators(w http.ResponseWriter, r *http.Request) {
	var req IndicatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode indicator request")
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Closes) == 0 {
		h.writeError(w, "closes are required", http.StatusBadRequest)
		return
	}

	series := make(domain.Series, len(req.Closes))
	for i, c := range req.Closes {
		series[i] = domain.Bar{Close: c}
	}

	params := h.cfg.Indicators()
	response := IndicatorResponse{
		Symbol:  domain.NormalizeTicker(req.Symbol),
		Bars:    len(series),
		MinBars: params.MinBars(),
	}

	if ind, ok := h.calc.Calculate(series); ok {
		response.Available = true
		response.Indicators = &ind
		response.Bullish = allocation.IsBullish(ind, params.RSIThreshold)
	}

	h.writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) scoreResponse(ticker string) ScoreResponse {
	score, _ := h.cfg.Score(ticker)
	return ScoreResponse{
		Ticker:    ticker,
		Score:     score,
		MaxWeight: score / h.cfg.TotalScore(),
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handlers) writeError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
