package api

import (
	"context"
	"net/http"
	"time"

	"github.com/phrazzld/coban-api/internal/api/shared"
	"github.com/phrazzld/coban-api/internal/store"
)

// HealthResponse reports service and store health.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// HealthHandler returns the GET /health handler. The store's Validate probe
// runs under timeout; a failing probe yields 503.
func HealthHandler(scoreStore store.ScoreStore, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if !scoreStore.Validate(ctx) {
			shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Store: "unavailable"})
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Store: "ok"})
	}
}
