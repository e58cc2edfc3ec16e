package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecovery_PassesThrough(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	wrapped := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Front,Back\n")) //nolint:errcheck
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/export", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if rec.Body.String() != "Front,Back\n" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestRecovery_PanicValues(t *testing.T) {
	cases := []struct {
		name    string
		value   any
		wantLog string
	}{
		{"string", "exporter exploded", "exporter exploded"},
		{"error", errors.New("nil map write"), "nil map write"},
		{"integer", 42, "42"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			wrapped := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tc.value)
			}))

			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/export", nil))

			if rec.Code != http.StatusInternalServerError {
				t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
			}
			if body := strings.TrimSpace(rec.Body.String()); body != "internal server error" {
				t.Errorf("expected generic body, got %q", body)
			}

			out := buf.String()
			for _, want := range []string{"panic recovered", tc.wantLog, "path=/api/export", "method=POST", "stack="} {
				if !strings.Contains(out, want) {
					t.Errorf("expected log to contain %q, got %q", want, out)
				}
			}
		})
	}
}

func TestRecovery_LogsRequestIDOfExportRoute(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := Chain(RequestID(), Recovery(logger))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("apkg build")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/vocabulary/export?format=apkg", nil)
	req.Header.Set(RequestIDHeader, "export-req-42")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "export-req-42" {
		t.Errorf("expected request id echoed on the error response, got %q", got)
	}
	if out := buf.String(); !strings.Contains(out, "request_id=export-req-42") {
		t.Errorf("expected log to carry the request id, got %q", out)
	}
}

func TestRecovery_RepanicsAbortHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	wrapped := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if got := recover(); got != http.ErrAbortHandler {
			t.Errorf("expected http.ErrAbortHandler to propagate, got %v", got)
		}
	}()

	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/export/formats", nil))
	t.Error("expected panic to propagate")
}
