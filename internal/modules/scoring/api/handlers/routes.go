package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all scoring routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/scoring", func(r chi.Router) {
		r.Get("/scores", h.HandleGetScores)
		r.Get("/scores/{ticker}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetScore(w, r, chi.URLParam(r, "ticker"))
		})

		// Diagnostics: indicator values for an arbitrary close series
		r.Post("/indicators", h.HandleIndicators)
	})
}
