package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	applogger "DerivPulse/pkg/logger"
)

func TestNewServerThreadsLogger(t *testing.T) {
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	s := NewServer(nil, WithLogger(l), WithCORS(false))
	if s.config.Logger != l {
		t.Fatalf("logger option not applied to server config")
	}

	// The middleware chain must serve requests with the logger attached.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	s.Echo().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d, want 200", rec.Code)
	}
}
