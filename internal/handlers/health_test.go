package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHealthcheck(t *testing.T) {
	started := fixedNow().Add(-90 * time.Second)
	handler := HealthHandler{Started: started, NowFunc: fixedNow}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthcheck", nil)
	rec := httptest.NewRecorder()

	handler.Check(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if !envelope.Success {
		t.Fatal("expected success envelope")
	}
	if got := dataField(t, envelope, "status"); got != "ok" {
		t.Fatalf("expected status ok, got %v", got)
	}
	if got := dataField(t, envelope, "uptimeSeconds"); got != float64(90) {
		t.Fatalf("expected 90s uptime, got %v", got)
	}
}

func TestNotFoundEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()

	NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Success {
		t.Fatal("expected failure envelope")
	}
	if envelope.StatusCode != http.StatusNotFound {
		t.Fatalf("expected statusCode 404 in body, got %d", envelope.StatusCode)
	}
}
