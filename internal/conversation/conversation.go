// Package conversation implements the two conversation flows: the
// incremental turn (prompt in, reply out, history persisted) and
// finalization (entire history summarized into a structured record and
// exported). It owns the flow-level failure semantics: validation
// short-circuits before any collaborator, non-critical collaborator
// failures degrade gracefully, provider and extraction failures are
// fatal to their flow.
package conversation

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/intakehq/intake/internal/export"
	"github.com/intakehq/intake/internal/history"
	"github.com/intakehq/intake/internal/prompt"
	"github.com/intakehq/intake/internal/provider"
)

// DefaultReply is returned to the caller when the provider answers the
// turn flow with empty content.
const DefaultReply = "Sorry, no response generated."

// FinalizedMessage is the success confirmation for the finalize flow.
// The raw record is never echoed back to the caller.
const FinalizedMessage = "Conversation finalized and exported."

// defaultRecentLimit bounds the history window assembled for an
// incremental turn.
const defaultRecentLimit = 10

// Config groups the orchestrator's injected collaborators.
type Config struct {
	Prompt   prompt.Provider
	History  history.Store
	Provider provider.Provider
	Sink     export.Sink
	Logger   *slog.Logger

	// RecentLimit is the number of most recent turns included in an
	// incremental turn's context. Zero means the default (10).
	RecentLimit int

	// Now overrides time.Now for testing. Defaults to time.Now.
	Now func() time.Time
}

// Orchestrator ties the prompt loader, history store, provider, and
// export sink into the conversation flows. All state lives in the
// injected history store; the orchestrator itself is stateless and safe
// for concurrent use.
type Orchestrator struct {
	prompt      prompt.Provider
	history     history.Store
	llm         provider.Provider
	sink        export.Sink
	logger      *slog.Logger
	recentLimit int
	now         func() time.Time
	tracer      trace.Tracer
}

// New creates an Orchestrator from the given configuration.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recentLimit := cfg.RecentLimit
	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		prompt:      cfg.Prompt,
		history:     cfg.History,
		llm:         cfg.Provider,
		sink:        cfg.Sink,
		logger:      logger,
		recentLimit: recentLimit,
		now:         now,
		tracer:      otel.Tracer("intake/conversation"),
	}
}
