package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware(t *testing.T) {
	httpRequestsTotal.Reset()
	httpRequestDuration.Reset()

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r := chi.NewRouter()
	r.Use(MetricsMiddleware())
	r.Get("/api/loans/{loanID}/status", testHandler)

	for _, path := range []string{"/api/loans/1/status", "/api/loans/2/status"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("expected status code %d, got %d", http.StatusOK, rec.Code)
		}
	}

	expectedTotal := `
		# HELP loan_origination_http_requests_total Total number of HTTP requests.
		# TYPE loan_origination_http_requests_total counter
		loan_origination_http_requests_total{method="GET",path="/api/loans/{loanID}/status",status_code="200"} 2
	`
	if err := testutil.CollectAndCompare(httpRequestsTotal, strings.NewReader(expectedTotal)); err != nil {
		t.Errorf("unexpected metrics for loan_origination_http_requests_total: %v", err)
	}
	if n := testutil.CollectAndCount(httpRequestDuration); n != 1 {
		t.Errorf("expected 1 duration series, got %d", n)
	}
}
