package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/intakehq/intake/internal/provider"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &Client{
		config: Config{
			APIKey:  "sk-test",
			Model:   "gpt-4o",
			BaseURL: srv.URL,
		},
		client: srv.Client(),
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func readRequestBody(t *testing.T, r *http.Request) chatRequest {
	t.Helper()
	body, _ := io.ReadAll(r.Body)
	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("invalid request body: %v", err)
	}
	return req
}

func completionJSON(content, finishReason string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finishReason,
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     12,
			"completion_tokens": 5,
			"total_tokens":      17,
		},
	}
}

func TestComplete_Success(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Error("missing authorization header")
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}

		req := readRequestBody(t, r)
		if req.Model != "gpt-4o" {
			t.Errorf("model = %q, want gpt-4o", req.Model)
		}
		if len(req.Messages) != 2 {
			t.Errorf("got %d messages, want 2", len(req.Messages))
		}
		if req.Messages[0].Role != "system" {
			t.Errorf("first role = %q, want system", req.Messages[0].Role)
		}

		writeJSON(t, w, completionJSON("Hello there.", "stop"))
	})

	c := newTestClient(t, handler)
	resp, err := c.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{
			provider.SystemMessage("You are a helpful AI assistant."),
			provider.UserMessage("hi"),
		},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "Hello there." {
		t.Errorf("content = %q, want %q", resp.Content, "Hello there.")
	}
	if resp.FinishReason != provider.FinishReasonStop {
		t.Errorf("finish reason = %q, want stop", resp.FinishReason)
	}
	if resp.Usage.TotalTokens != 17 {
		t.Errorf("total tokens = %d, want 17", resp.Usage.TotalTokens)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"choices": []any{}})
	})

	c := newTestClient(t, handler)
	resp, err := c.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{provider.UserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "" {
		t.Errorf("content = %q, want empty", resp.Content)
	}
}

func TestComplete_RateLimit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		writeJSON(t, w, map[string]any{
			"error": map[string]any{"message": "rate limit exceeded"},
		})
	})

	c := newTestClient(t, handler)
	_, err := c.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{provider.UserMessage("hi")},
	})
	if !errors.Is(err, provider.ErrRateLimit) {
		t.Errorf("error = %v, want ErrRateLimit", err)
	}
}

func TestComplete_ServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	c := newTestClient(t, handler)
	_, err := c.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{provider.UserMessage("hi")},
	})
	if !errors.Is(err, provider.ErrProviderDown) {
		t.Errorf("error = %v, want ErrProviderDown", err)
	}
}

func TestComplete_AuthFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(t, w, map[string]any{
			"error": map[string]any{"message": "invalid api key"},
		})
	})

	c := newTestClient(t, handler)
	_, err := c.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{provider.UserMessage("hi")},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if provider.IsRetryable(err) {
		t.Error("auth failure should not be retryable")
	}
}

func TestComplete_MaxTokensOverride(t *testing.T) {
	var got chatRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = readRequestBody(t, r)
		writeJSON(t, w, completionJSON("ok", "stop"))
	})

	c := newTestClient(t, handler)
	c.config.MaxTokens = 256

	_, err := c.Complete(context.Background(), provider.CompletionRequest{
		Messages:  []provider.Message{provider.UserMessage("hi")},
		MaxTokens: 64,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got.MaxTokens != 64 {
		t.Errorf("max_tokens = %d, want request-level override 64", got.MaxTokens)
	}
}

func TestHealthCheck(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := readRequestBody(t, r)
		if req.MaxTokens != 1 {
			t.Errorf("max_tokens = %d, want 1", req.MaxTokens)
		}
		writeJSON(t, w, completionJSON("hi", "stop"))
	})

	c := newTestClient(t, handler)
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{APIKey: "sk-x", Timeout: "10s"}, false},
		{"missing key", Config{Timeout: "10s"}, true},
		{"bad timeout", Config{APIKey: "sk-x", Timeout: "soon"}, true},
		{"empty timeout ok", Config{APIKey: "sk-x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
