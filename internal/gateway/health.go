package gateway

import (
	"context"
	"net/http"
	"time"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status   string `json:"status"` // "ok" or "degraded"
	Uptime   string `json:"uptime"`
	Provider string `json:"provider,omitempty"`
}

// handleHealth reports gateway liveness and, when the provider exposes a
// probe, its reachability. A degraded provider yields 503 so load
// balancers stop routing conversations here.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status: "ok",
			Uptime: time.Since(s.startedAt).Round(time.Second).String(),
		}

		if s.health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			if err := s.health.HealthCheck(ctx); err != nil {
				resp.Status = "degraded"
				resp.Provider = err.Error()
			} else {
				resp.Provider = "ok"
			}
		}

		status := http.StatusOK
		if resp.Status == "degraded" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
