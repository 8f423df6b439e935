package conversation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/intakehq/intake/internal/provider"
)

// Turn runs one incremental conversation turn for the given user:
// validate, load the system prompt and bounded history, assemble,
// complete, persist best-effort, reply.
//
// Only validation and provider failures fail the flow. A history fetch
// failure degrades to a fresh conversation; an append failure loses the
// turn's record but the reply is still returned.
func (o *Orchestrator) Turn(ctx context.Context, uid, text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("%w: prompt is required", ErrValidation)
	}
	if uid == "" {
		return "", fmt.Errorf("%w: uid is required", ErrValidation)
	}

	ctx, span := o.tracer.Start(ctx, "conversation.turn",
		trace.WithAttributes(attribute.String("intake.uid", uid)))
	defer span.End()

	system := o.prompt.Load()

	hist, err := o.history.Recent(uid, o.recentLimit)
	if err != nil {
		// Continuity degrades to a fresh start rather than blocking the turn.
		o.logger.Warn("history fetch failed, continuing without context",
			"uid", uid, "error", err)
		hist = nil
	}

	msgs := Assemble(system, hist, provider.UserMessage(text))

	resp, err := o.llm.Complete(ctx, provider.CompletionRequest{Messages: msgs})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("completion failed: %w", err)
	}

	reply := resp.Content
	if reply == "" {
		reply = DefaultReply
	}

	o.persistTurn(uid, text, reply)

	return reply, nil
}

// persistTurn appends the user and assistant turns best-effort. A
// failure here loses the record of this exchange but never the reply.
func (o *Orchestrator) persistTurn(uid, text, reply string) {
	if text != "" {
		if err := o.history.Append(uid, provider.UserMessage(text)); err != nil {
			o.logger.Warn("failed to persist user turn", "uid", uid, "error", err)
		}
	}
	if reply != "" {
		if err := o.history.Append(uid, provider.AssistantMessage(reply)); err != nil {
			o.logger.Warn("failed to persist assistant turn", "uid", uid, "error", err)
		}
	}
}

// History returns the user's stored turns oldest-first for the resume
// endpoint. A store failure degrades to an empty history.
func (o *Orchestrator) History(ctx context.Context, uid string) ([]provider.Message, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrValidation)
	}

	_, span := o.tracer.Start(ctx, "conversation.history",
		trace.WithAttributes(attribute.String("intake.uid", uid)))
	defer span.End()

	msgs, err := o.history.All(uid)
	if err != nil {
		o.logger.Warn("history fetch failed, returning empty", "uid", uid, "error", err)
		return nil, nil
	}
	return msgs, nil
}
