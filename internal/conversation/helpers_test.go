package conversation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/intakehq/intake/internal/history"
	"github.com/intakehq/intake/internal/provider"
	"github.com/intakehq/intake/internal/provider/providertest"
)

// mockHistory is a Store test double with failure injection and call counts.
type mockHistory struct {
	mu          sync.Mutex
	turns       map[string][]provider.Message
	recentCalls int
	allCalls    int
	appendCalls int
	failRecent  bool
	failAll     bool
	failAppend  bool
}

func newMockHistory() *mockHistory {
	return &mockHistory{turns: make(map[string][]provider.Message)}
}

func (m *mockHistory) Append(uid string, msg provider.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendCalls++
	if m.failAppend {
		return errors.New("append failed")
	}
	m.turns[uid] = append(m.turns[uid], msg)
	return nil
}

func (m *mockHistory) Recent(uid string, n int) ([]provider.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recentCalls++
	if m.failRecent {
		return nil, errors.New("fetch failed")
	}
	msgs := m.turns[uid]
	if n < len(msgs) {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]provider.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (m *mockHistory) All(uid string) ([]provider.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allCalls++
	if m.failAll {
		return nil, errors.New("fetch failed")
	}
	out := make([]provider.Message, len(m.turns[uid]))
	copy(out, m.turns[uid])
	return out, nil
}

func (m *mockHistory) Len(uid string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns[uid]), nil
}

func (m *mockHistory) Purge(uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.turns, uid)
	return nil
}

func (m *mockHistory) PurgeIdle(time.Time) (int, error) { return 0, nil }

var _ history.Store = (*mockHistory)(nil)

// mockSink is a Sink test double recording appended rows.
type mockSink struct {
	mu    sync.Mutex
	rows  [][]string
	calls int
	fail  bool
}

func (m *mockSink) AppendRow(_ context.Context, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.fail {
		return errors.New("sink failed")
	}
	cp := make([]string, len(row))
	copy(cp, row)
	m.rows = append(m.rows, cp)
	return nil
}

// countingPrompt wraps a fixed prompt and counts Load calls.
type countingPrompt struct {
	mu    sync.Mutex
	text  string
	calls int
}

func (p *countingPrompt) Load() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.text
}

// fixture bundles an Orchestrator with its mock collaborators.
type fixture struct {
	orch    *Orchestrator
	prompt  *countingPrompt
	history *mockHistory
	llm     *providertest.MockProvider
	sink    *mockSink
}

func replyWith(content string) func(context.Context, provider.CompletionRequest) (provider.CompletionResponse, error) {
	return func(context.Context, provider.CompletionRequest) (provider.CompletionResponse, error) {
		return provider.CompletionResponse{
			Content:      content,
			FinishReason: provider.FinishReasonStop,
		}, nil
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		prompt:  &countingPrompt{text: "You are an intake assistant."},
		history: newMockHistory(),
		llm:     &providertest.MockProvider{CompleteFunc: replyWith("ok")},
		sink:    &mockSink{},
	}
	f.orch = New(Config{
		Prompt:   f.prompt,
		History:  f.history,
		Provider: f.llm,
		Sink:     f.sink,
		Logger:   slog.New(slog.DiscardHandler),
		Now:      func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) },
	})
	return f
}
