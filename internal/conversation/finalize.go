package conversation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/intakehq/intake/internal/extract"
	"github.com/intakehq/intake/internal/provider"
)

// Finalize closes the user's conversation: the entire history plus the
// fixed summary instruction is sent to the model, the reply is parsed
// into the structured record, and the record is appended to the export
// sink as one fixed-order row.
//
// Provider and extraction failures are fatal — a partial or garbage
// record is never exported. An export append failure is logged and
// swallowed; the caller still receives the success confirmation.
func (o *Orchestrator) Finalize(ctx context.Context, uid string) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("%w: uid is required", ErrValidation)
	}

	ctx, span := o.tracer.Start(ctx, "conversation.finalize",
		trace.WithAttributes(attribute.String("intake.uid", uid)))
	defer span.End()

	system := o.prompt.Load()

	hist, err := o.history.All(uid)
	if err != nil {
		o.logger.Warn("history fetch failed, finalizing without context",
			"uid", uid, "error", err)
		hist = nil
	}

	msgs := Assemble(system, hist, provider.UserMessage(summaryInstruction))

	resp, err := o.llm.Complete(ctx, provider.CompletionRequest{Messages: msgs})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("completion failed: %w", err)
	}

	// An empty reply cannot be parsed as JSON; surfacing it as a provider
	// fault here avoids exporting an all-empty record.
	if resp.Content == "" {
		span.RecordError(provider.ErrEmptyReply)
		return "", fmt.Errorf("finalize: %w", provider.ErrEmptyReply)
	}

	job, err := extract.Record(resp.Content)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("finalize: %w", err)
	}

	row := job.Row(o.now(), uid)
	if err := o.sink.AppendRow(ctx, row); err != nil {
		o.logger.Error("export append failed", "uid", uid, "error", err)
	}

	return FinalizedMessage, nil
}
