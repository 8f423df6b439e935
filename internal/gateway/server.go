package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Operational — no request body.
	r.Get("/health", s.handleHealth())
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	// Conversation flow.
	r.Post("/openai", s.instrument("turn", s.handleTurn()))
	r.Post("/finalize", s.instrument("finalize", s.handleFinalize()))
	r.Get("/history", s.instrument("history", s.handleHistory()))

	return r
}
