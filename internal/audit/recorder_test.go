package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/onnwee/newsai/internal/middleware"
)

type failingRepo struct{}

func (failingRepo) Record(context.Context, LogEntry) (*Entry, error) {
	return nil, errors.New("disk full")
}

func (failingRepo) List(context.Context, int) ([]*Entry, error) { return nil, nil }

func (failingRepo) QueryByEntity(context.Context, string, string, int) ([]*Entry, error) {
	return nil, nil
}

func TestRecorder_Record(t *testing.T) {
	repo := NewInMemoryRepository()
	rec := NewRecorder(repo, nil)

	var captured *http.Request
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.WithContext(middleware.SetUser(r.Context(), 12, "admin"))
	}))
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/articles?id=3", nil)
	req.Header.Set("User-Agent", "newsai-test")
	req.Header.Set("X-Request-ID", "req-123")
	req.RemoteAddr = "192.0.2.10:5555"
	h.ServeHTTP(httptest.NewRecorder(), req)

	rec.Record(captured, EntityArticle, "3", ActionDeleteArticle, OutcomeSuccess)

	entries, _ := repo.List(context.Background(), 0)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.UserID != 12 || e.EntityID != "3" || e.Action != ActionDeleteArticle {
		t.Errorf("entry = %+v", e)
	}
	if e.RequestID != "req-123" || e.IPAddress != "192.0.2.10" || e.UserAgent != "newsai-test" {
		t.Errorf("request metadata = %q %q %q", e.RequestID, e.IPAddress, e.UserAgent)
	}
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var rec *Recorder
	rec.Record(httptest.NewRequest(http.MethodGet, "/", nil), EntityStats, "all", ActionViewStats, OutcomeSuccess)
}

func TestRecorder_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(failingRepo{}, slog.New(slog.NewTextHandler(&buf, nil)))

	rec.Record(httptest.NewRequest(http.MethodPost, "/api/admin/articles", nil), EntityArticle, "1", ActionCreateArticle, OutcomeSuccess)

	if !strings.Contains(buf.String(), "failed to record audit entry") || !strings.Contains(buf.String(), "disk full") {
		t.Errorf("log output = %q", buf.String())
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "198.51.100.7:1234", nil, "198.51.100.7"},
		{"ipv6 remote addr", "[2001:db8::1]:443", nil, "2001:db8::1"},
		{"forwarded for", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "203.0.113.5"},
		{"forwarded for with port", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "203.0.113.5:9000"}, "203.0.113.5"},
		{"real ip", "10.0.0.1:80", map[string]string{"X-Real-IP": " 203.0.113.9 "}, "203.0.113.9"},
		{"no port", "unix", nil, "unix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := clientIP(r); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
