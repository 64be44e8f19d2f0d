package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all historical data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/historical", func(r chi.Router) {
		r.Get("/symbols", h.HandleGetSymbols)
		r.Get("/prices/{symbol}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetDailyPrices(w, r, chi.URLParam(r, "symbol"))
		})
		r.Get("/summary/{symbol}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetSummary(w, r, chi.URLParam(r, "symbol"))
		})
	})

	r.Post("/history/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleUpsertBars(w, r, chi.URLParam(r, "symbol"))
	})
}
