package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		statusCode int
	}{
		{
			name:       "normalizes loan request path",
			method:     http.MethodGet,
			path:       "/api/v1/loan-requests/ABC123",
			statusCode: http.StatusTeapot,
		},
		{
			name:       "keeps non-matching path as-is",
			method:     http.MethodPost,
			path:       "/health",
			statusCode: http.StatusCreated,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			httpRequestsTotal.Reset()
			httpRequestDuration.Reset()
			httpRequestsInFlight.Set(0)

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(tc.statusCode)
			})

			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()

			Metrics(next).ServeHTTP(rr, req)

			if !handlerCalled {
				t.Fatalf("next handler was not invoked")
			}

			if got := testutil.ToFloat64(httpRequestsInFlight); got != 0 {
				t.Fatalf("expected in-flight gauge to return to 0, got %v", got)
			}

			normalized := normalizePath(tc.path)
			counter := httpRequestsTotal.WithLabelValues(tc.method, normalized, strconv.Itoa(tc.statusCode))
			if got := testutil.ToFloat64(counter); got != 1 {
				t.Fatalf("expected counter to be 1, got %v", got)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "loan request path without suffix",
			input:    "/api/v1/loan-requests/ABC123",
			expected: "/api/v1/loan-requests/:id",
		},
		{
			name:     "loan request path with suffix",
			input:    "/api/v1/loan-requests/ABC123/approve",
			expected: "/api/v1/loan-requests/:id/approve",
		},
		{
			name:     "loan schedule path",
			input:    "/api/v1/loans/XYZ789/schedule",
			expected: "/api/v1/loans/:id/schedule",
		},
		{
			name:     "repayment path",
			input:    "/api/v1/repayments/XYZ789/paid",
			expected: "/api/v1/repayments/:id/paid",
		},
		{
			name:     "transaction code path",
			input:    "/api/v1/credit/transactions/DEP-20260115-00001",
			expected: "/api/v1/credit/transactions/:id",
		},
		{
			name:     "transaction list path",
			input:    "/api/v1/credit/transactions",
			expected: "/api/v1/credit/transactions",
		},
		{
			name:     "non-matching path",
			input:    "/api/v1/health",
			expected: "/api/v1/health",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizePath(tc.input); got != tc.expected {
				t.Fatalf("normalizePath(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}
