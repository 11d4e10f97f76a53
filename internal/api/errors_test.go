package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/onnwee/newsai/internal/middleware"
)

func TestWriteError_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, context.Background(), http.StatusNotFound, ErrCodeNotFound, "Article not found")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	want := `{"error":{"code":"not_found","message":"Article not found"}}`
	if got := w.Body.String(); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestWriteError_LoggedByMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := middleware.Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "bad input")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/register", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse log: %v", err)
	}
	if entry["error_code"] != ErrCodeValidation {
		t.Errorf("error_code = %v, want %s", entry["error_code"], ErrCodeValidation)
	}
}

func TestStatusCodeMapping(t *testing.T) {
	tests := map[string]int{
		ErrCodeValidation:          http.StatusBadRequest,
		ErrCodeBadRequest:          http.StatusBadRequest,
		ErrCodeUserExists:          http.StatusBadRequest,
		ErrCodeAuthFailed:          http.StatusUnauthorized,
		ErrCodeForbidden:           http.StatusForbidden,
		ErrCodeNotFound:            http.StatusNotFound,
		ErrCodeRateLimited:         http.StatusTooManyRequests,
		ErrCodeUnavailable:         http.StatusServiceUnavailable,
		ErrCodeIdempotencyConflict: http.StatusUnprocessableEntity,
		ErrCodeInternal:            http.StatusInternalServerError,
		"unknown":                  http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := StatusCodeMapping(code); got != want {
			t.Errorf("StatusCodeMapping(%q) = %d, want %d", code, got, want)
		}
	}
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body))
	rr := httptest.NewRecorder()

	var dst RegisterRequest
	if decodeJSON(rr, req, &dst) {
		t.Fatal("expected decode to fail")
	}
	assertError(t, rr, http.StatusBadRequest, ErrCodeBadRequest)
	if resp := decodeBody[ErrorResponse](t, rr); resp.Error.Message != "Request body too large" {
		t.Errorf("message = %q", resp.Error.Message)
	}
}
