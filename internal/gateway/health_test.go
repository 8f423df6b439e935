package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

type probeFunc func(ctx context.Context) error

func (f probeFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestHandleHealth_NoProbe(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, &mockConversation{}, nil)
	rec := doRequest(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[HealthResponse](t, rec)
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Provider != "" {
		t.Errorf("provider field should be omitted without a probe, got %q", resp.Provider)
	}
}

func TestHandleHealth_ProviderHealthy(t *testing.T) {
	t.Parallel()

	probe := probeFunc(func(context.Context) error { return nil })
	h := newTestServer(t, &mockConversation{}, probe)

	rec := doRequest(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[HealthResponse](t, rec)
	if resp.Provider != "ok" {
		t.Errorf("provider = %q", resp.Provider)
	}
}

func TestHandleHealth_ProviderDegraded(t *testing.T) {
	t.Parallel()

	probe := probeFunc(func(context.Context) error { return errors.New("connection refused") })
	h := newTestServer(t, &mockConversation{}, probe)

	rec := doRequest(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	resp := decodeBody[HealthResponse](t, rec)
	if resp.Status != "degraded" {
		t.Errorf("status = %q", resp.Status)
	}
}
