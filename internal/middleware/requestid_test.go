package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{"generates when absent", "", false},
		{"reuses client id", "existing-request-id-123", true},
		{"rejects overlong id", strings.Repeat("a", maxRequestIDLength+1), false},
		{"rejects control characters", "bad\nid", false},
		{"rejects spaces", "has space", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.incoming != "" {
				req.Header[RequestIDHeader] = []string{tt.incoming}
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if captured == "" {
				t.Fatal("expected request ID in context")
			}
			if rr.Header().Get(RequestIDHeader) != captured {
				t.Errorf("response header %q != context %q", rr.Header().Get(RequestIDHeader), captured)
			}
			if tt.wantSame {
				if captured != tt.incoming {
					t.Errorf("expected client ID %q to be reused, got %q", tt.incoming, captured)
				}
				return
			}
			if _, err := uuid.Parse(captured); err != nil {
				t.Errorf("expected generated UUID, got %q", captured)
			}
		})
	}
}

func TestGetRequestID_EmptyContextReturnsEmptyString(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("expected empty string, got %q", id)
	}
}
