package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/intakehq/intake/internal/provider"
)

// Conversation is the slice of the orchestrator the gateway needs.
type Conversation interface {
	Turn(ctx context.Context, uid, text string) (string, error)
	Finalize(ctx context.Context, uid string) (string, error)
	History(ctx context.Context, uid string) ([]provider.Message, error)
}

// Server is the HTTP gateway. It exposes the conversation endpoints plus
// health and metrics, and owns the listener lifecycle.
type Server struct {
	config    Config
	logger    *slog.Logger
	conv      Conversation
	health    provider.HealthChecker // optional, nil when the provider has no probe
	metrics   *Metrics
	server    *http.Server
	startedAt time.Time
}

// Options carries the gateway's collaborators.
type Options struct {
	Logger *slog.Logger
	Conv   Conversation
	Health provider.HealthChecker
}

// New builds a Server. The listener is not opened until Start.
func New(cfg Config, opts Options) *Server {
	cfg.Defaults()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:  cfg,
		logger:  logger,
		conv:    opts.Conv,
		health:  opts.Health,
		metrics: NewMetrics(),
	}
}

// Start opens the listener and serves in a background goroutine.
func (s *Server) Start() error {
	s.startedAt = time.Now()

	s.server = &http.Server{
		Addr:         s.config.Bind,
		Handler:      s.buildRouter(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", s.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen failed: %w", err)
	}

	go func() {
		s.logger.Info("gateway listening", "addr", s.config.Bind)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop performs a graceful shutdown with the configured timeout.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("gateway shutting down")
	return s.server.Shutdown(shutdownCtx)
}
