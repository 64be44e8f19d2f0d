package handlers

import (
	"net/http"
	"testing"

	"github.com/aristath/momentum/internal/modules/historical"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRoutes(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	db := setupTestDB(t)
	defer db.Close()

	handler := NewHandler(historical.NewHistoryDB(db, logger), logger)

	router := chi.NewRouter()

	assert.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	}, "RegisterRoutes should not panic")

	var routes []string
	_ = chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	assert.Contains(t, routes, "POST /history/{symbol}")
	assert.Contains(t, routes, "GET /historical/prices/{symbol}")
}
