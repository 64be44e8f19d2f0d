// Package handlers provides HTTP handlers for allocation evaluation and the run log.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/momentum/internal/domain"
	"github.com/aristath/momentum/internal/modules/allocation"
	"github.com/rs/zerolog"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 500
)

// Evaluator runs the strategy against a bundle or stored history
type Evaluator interface {
	Strategy() *allocation.Strategy
	Evaluate(ctx context.Context, data domain.MarketData) (*allocation.Run, error)
	EvaluateFromHistory(ctx context.Context) (*allocation.Run, error)
}

// RunReader reads the allocation run log
type RunReader interface {
	GetByID(ctx context.Context, id string) (*allocation.Run, error)
	Latest(ctx context.Context) (*allocation.Run, error)
	List(ctx context.Context, limit int) ([]*allocation.Run, error)
}

// Handler handles allocation HTTP requests
type Handler struct {
	service Evaluator
	runs    RunReader
	log     zerolog.Logger
}

// NewHandler creates a new allocation handler
func NewHandler(service Evaluator, runs RunReader, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		runs:    runs,
		log:     log.With().Str("handler", "allocation").Logger(),
	}
}

// StrategyResponse describes the configured strategy
type StrategyResponse struct {
	Name       string                     `json:"name"`
	Interval   string                     `json:"interval"`
	Assets     []string                   `json:"assets"`
	Scores     map[string]float64         `json:"scores"`
	TotalScore float64                    `json:"total_score"`
	Indicators allocation.IndicatorParams `json:"indicators"`
	MinBars    int                        `json:"min_bars"`
}

// RunResponse is the JSON view of a logged run
type RunResponse struct {
	ID        string             `json:"id,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	Weights   map[string]float64 `json:"weights"`
	Result    *allocation.Result `json:"result"`
}

// EvaluateRequest carries a market data bundle keyed by ticker
type EvaluateRequest struct {
	OHLCV map[string]domain.Series `json:"ohlcv"`
}

// HandleGetStrategy handles GET /api/strategy
func (h *Handler) HandleGetStrategy(w http.ResponseWriter, r *http.Request) {
	cfg := h.service.Strategy().Config()
	h.writeJSON(w, http.StatusOK, StrategyResponse{
		Name:       cfg.Name(),
		Interval:   cfg.Interval(),
		Assets:     cfg.Assets(),
		Scores:     cfg.Scores(),
		TotalScore: cfg.TotalScore(),
		Indicators: cfg.Indicators(),
		MinBars:    cfg.Indicators().MinBars(),
	})
}

// HandleEvaluate handles POST /api/allocation/evaluate
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.OHLCV == nil {
		h.writeError(w, http.StatusBadRequest, "ohlcv is required")
		return
	}

	data := make(domain.MarketData, len(req.OHLCV))
	for ticker, series := range req.OHLCV {
		key := domain.NormalizeTicker(ticker)
		if key == "" {
			h.writeError(w, http.StatusBadRequest, "blank ticker in ohlcv")
			return
		}
		if _, dup := data[key]; dup {
			h.writeError(w, http.StatusBadRequest, "duplicate ticker in ohlcv: "+key)
			return
		}
		series.SortByDate()
		data[key] = series
	}

	run, err := h.service.Evaluate(r.Context(), data)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to evaluate allocation")
		h.writeError(w, http.StatusInternalServerError, "Failed to evaluate allocation")
		return
	}

	h.writeJSON(w, http.StatusOK, toRunResponse(run))
}

// HandleRun handles POST /api/allocation/run
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.EvaluateFromHistory(r.Context())
	if err != nil {
		if errors.Is(err, allocation.ErrNoMarketDataSource) {
			h.writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to evaluate allocation from history")
		h.writeError(w, http.StatusInternalServerError, "Failed to evaluate allocation from history")
		return
	}

	h.writeJSON(w, http.StatusOK, toRunResponse(run))
}

// HandleGetLatest handles GET /api/allocation/latest
func (h *Handler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.Latest(r.Context())
	if err != nil {
		h.writeRunError(w, err, "")
		return
	}

	h.writeJSON(w, http.StatusOK, toRunResponse(run))
}

// HandleGetRun handles GET /api/allocation/runs/{id}
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request, id string) {
	run, err := h.runs.GetByID(r.Context(), id)
	if err != nil {
		h.writeRunError(w, err, id)
		return
	}

	h.writeJSON(w, http.StatusOK, toRunResponse(run))
}

// HandleListRuns handles GET /api/allocation/runs
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxRunsLimit)
	}

	runs, err := h.runs.List(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list allocation runs")
		h.writeError(w, http.StatusInternalServerError, "Failed to list allocation runs")
		return
	}

	response := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		response = append(response, toRunResponse(run))
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  response,
		"count": len(response),
	})
}

func toRunResponse(run *allocation.Run) RunResponse {
	return RunResponse{
		ID:        run.ID,
		CreatedAt: run.CreatedAt,
		Weights:   run.Result.Weights(),
		Result:    run.Result,
	}
}

func (h *Handler) writeRunError(w http.ResponseWriter, err error, id string) {
	if errors.Is(err, allocation.ErrRunNotFound) {
		h.writeError(w, http.StatusNotFound, "allocation run not found")
		return
	}
	h.log.Error().Err(err).Str("run_id", id).Msg("Failed to read allocation run")
	h.writeError(w, http.StatusInternalServerError, "Failed to read allocation run")
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
