package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the liveness document served at /health
type HealthResponse struct {
	Status        string  `json:"status"`
	Service       string  `json:"service"`
	Strategy      string  `json:"strategy"`
	Interval      string  `json:"interval"`
	Assets        int     `json:"assets"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Error         string  `json:"error,omitempty"`
}

// handleHealth reports the served strategy; 503 when the run log cannot be reached
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cfg := s.container.StrategyConfig
	response := HealthResponse{
		Status:        "ok",
		Service:       "momentum",
		Strategy:      cfg.Name(),
		Interval:      cfg.Interval(),
		Assets:        len(cfg.Assets()),
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
	}

	if err := s.container.RunsDB.QuickCheck(r.Context()); err != nil {
		response.Status = "unavailable"
		response.Error = err.Error()
		s.writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	s.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
