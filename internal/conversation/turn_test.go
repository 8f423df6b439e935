package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/intakehq/intake/internal/provider"
)

func TestTurn_Success(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.llm.CompleteFunc = replyWith("Hello! How can I help?")

	reply, err := f.orch.Turn(context.Background(), "u1", "hi")
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if reply != "Hello! How can I help?" {
		t.Errorf("reply = %q", reply)
	}

	// Assembled request: system prompt first, new input last.
	req := f.llm.Request()
	if len(req.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(req.Messages))
	}
	if req.Messages[0].Role != provider.MessageRoleSystem {
		t.Error("first message must be the system turn")
	}
	if req.Messages[1].Content != "hi" {
		t.Errorf("last message = %q, want the prompt", req.Messages[1].Content)
	}

	// Both sides of the pair persisted.
	msgs, _ := f.history.All("u1")
	if len(msgs) != 2 {
		t.Fatalf("persisted %d turns, want 2", len(msgs))
	}
	if msgs[0].Role != provider.MessageRoleUser || msgs[1].Role != provider.MessageRoleAssistant {
		t.Errorf("persisted roles = %q, %q", msgs[0].Role, msgs[1].Role)
	}
}

func TestTurn_IncludesRecentHistory(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_ = f.history.Append("u1", provider.UserMessage("earlier"))
	_ = f.history.Append("u1", provider.AssistantMessage("answer"))

	if _, err := f.orch.Turn(context.Background(), "u1", "followup"); err != nil {
		t.Fatalf("Turn() error = %v", err)
	}

	req := f.llm.Request()
	if len(req.Messages) != 4 {
		t.Fatalf("got %d messages, want system + 2 history + input", len(req.Messages))
	}
	if req.Messages[1].Content != "earlier" || req.Messages[2].Content != "answer" {
		t.Error("history turns must appear oldest-first between system and input")
	}
}

func TestTurn_ValidationShortCircuits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		uid  string
		text string
	}{
		{"missing prompt", "u1", ""},
		{"missing uid", "", "hi"},
		{"both missing", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			_, err := f.orch.Turn(context.Background(), tt.uid, tt.text)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}

			// No collaborator may have been touched.
			if f.prompt.calls != 0 {
				t.Errorf("prompt loaded %d times, want 0", f.prompt.calls)
			}
			if f.history.recentCalls != 0 || f.history.appendCalls != 0 {
				t.Error("history store must not be called")
			}
			if f.llm.Calls() != 0 {
				t.Error("provider must not be called")
			}
		})
	}
}

func TestTurn_HistoryFetchFailureDegrades(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.history.failRecent = true
	f.llm.CompleteFunc = replyWith("fresh start reply")

	reply, err := f.orch.Turn(context.Background(), "u1", "hi")
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if reply != "fresh start reply" {
		t.Errorf("reply = %q", reply)
	}

	// Degraded to a fresh conversation: system + input only.
	if got := len(f.llm.Request().Messages); got != 2 {
		t.Errorf("got %d messages, want 2", got)
	}
}

func TestTurn_AppendFailureStillReplies(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.history.failAppend = true

	reply, err := f.orch.Turn(context.Background(), "u1", "hi")
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if reply != "ok" {
		t.Errorf("reply = %q, want ok", reply)
	}
}

func TestTurn_EmptyReplyDefaults(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.llm.CompleteFunc = replyWith("")

	reply, err := f.orch.Turn(context.Background(), "u1", "hi")
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if reply != DefaultReply {
		t.Errorf("reply = %q, want default reply", reply)
	}

	// The substituted default is what gets persisted as the assistant turn.
	msgs, _ := f.history.All("u1")
	if len(msgs) != 2 || msgs[1].Content != DefaultReply {
		t.Errorf("persisted turns = %v", msgs)
	}
}

func TestTurn_ProviderFailureIsFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.llm.CompleteFunc = func(context.Context, provider.CompletionRequest) (provider.CompletionResponse, error) {
		return provider.CompletionResponse{}, provider.ErrProviderDown
	}

	_, err := f.orch.Turn(context.Background(), "u1", "hi")
	if !errors.Is(err, provider.ErrProviderDown) {
		t.Fatalf("error = %v, want ErrProviderDown", err)
	}

	// Nothing persisted for a failed turn.
	if n, _ := f.history.Len("u1"); n != 0 {
		t.Errorf("persisted %d turns after provider failure, want 0", n)
	}
}

func TestHistory_ReturnsStoredTurns(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_ = f.history.Append("u1", provider.UserMessage("q"))
	_ = f.history.Append("u1", provider.AssistantMessage("a"))

	msgs, err := f.orch.History(context.Background(), "u1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Errorf("got %d turns, want 2", len(msgs))
	}
}

func TestHistory_StoreFailureDegradesToEmpty(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.history.failAll = true

	msgs, err := f.orch.History(context.Background(), "u1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d turns, want empty on store failure", len(msgs))
	}
}

func TestHistory_MissingUID(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if _, err := f.orch.History(context.Background(), ""); !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}
