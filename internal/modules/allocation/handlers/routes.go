package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers strategy and allocation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/strategy", h.HandleGetStrategy)

	r.Route("/allocation", func(r chi.Router) {
		r.Post("/evaluate", h.HandleEvaluate)
		r.Post("/run", h.HandleRun)
		r.Get("/latest", h.HandleGetLatest)
		r.Get("/runs", h.HandleListRuns)
		r.Get("/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetRun(w, r, chi.URLParam(r, "id"))
		})
	})
}
