package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubHealthClient struct {
	healthErr error
	count     uint64
	countErr  error
}

func (s *stubHealthClient) HealthCheck(context.Context) error {
	return s.healthErr
}

func (s *stubHealthClient) CountPoints(context.Context, string) (uint64, error) {
	return s.count, s.countErr
}

func checkHealth(t *testing.T, h *HealthHandler) (int, HealthResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.HandleHealth(w, req)

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return w.Code, resp
}

func TestHealthHealthy(t *testing.T) {
	h := NewHealthHandler(&stubHealthClient{count: 12}, "legal_faqs", true, "test")

	code, resp := checkHealth(t, h)
	if code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
	if resp.Status != "healthy" {
		t.Errorf("Status = %s, want healthy", resp.Status)
	}
	if !resp.QdrantConnected || !resp.OpenAIConfigured {
		t.Errorf("resp = %+v", resp)
	}
	if resp.FAQsLoaded != 12 {
		t.Errorf("FAQsLoaded = %d, want 12", resp.FAQsLoaded)
	}
}

func TestHealthDegradedNoKey(t *testing.T) {
	h := NewHealthHandler(&stubHealthClient{count: 12}, "legal_faqs", false, "test")

	code, resp := checkHealth(t, h)
	if code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
	if resp.Status != "degraded" {
		t.Errorf("Status = %s, want degraded", resp.Status)
	}
}

func TestHealthDegradedQdrantDown(t *testing.T) {
	h := NewHealthHandler(&stubHealthClient{healthErr: errors.New("dial refused")}, "legal_faqs", true, "test")

	code, resp := checkHealth(t, h)
	if code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
	if resp.Status != "degraded" {
		t.Errorf("Status = %s, want degraded (generator still usable)", resp.Status)
	}
	if resp.QdrantConnected {
		t.Error("QdrantConnected should be false")
	}
	if resp.FAQsLoaded != 0 {
		t.Errorf("FAQsLoaded = %d, want 0", resp.FAQsLoaded)
	}
}

func TestHealthUnhealthyBothDown(t *testing.T) {
	h := NewHealthHandler(&stubHealthClient{healthErr: errors.New("dial refused")}, "legal_faqs", false, "test")

	code, resp := checkHealth(t, h)
	if code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", code)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("Status = %s, want unhealthy", resp.Status)
	}
}

func TestHealthUnhealthyCountFails(t *testing.T) {
	h := NewHealthHandler(&stubHealthClient{countErr: errors.New("timeout")}, "legal_faqs", true, "test")

	code, resp := checkHealth(t, h)
	if code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", code)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("Status = %s, want unhealthy when the check fails", resp.Status)
	}
}

func TestLiveness(t *testing.T) {
	h := NewHealthHandler(&stubHealthClient{}, "legal_faqs", true, "test")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.HandleLiveness(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
