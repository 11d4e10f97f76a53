package audit

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/onnwee/newsai/internal/middleware"
)

// Recorder writes audit entries for authenticated admin requests.
// A nil Recorder records nothing.
type Recorder struct {
	repo   Repository
	logger *slog.Logger
}

// NewRecorder creates a Recorder backed by repo.
func NewRecorder(repo Repository, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{repo: repo, logger: logger}
}

// Record stores an entry for the action the request's user performed.
// Failures are logged rather than returned: the action itself has already
// happened and its response must not change.
func (rec *Recorder) Record(r *http.Request, entityType, entityID, action, outcome string) {
	if rec == nil || rec.repo == nil {
		return
	}
	ctx := r.Context()
	_, err := rec.repo.Record(ctx, LogEntry{
		UserID:     middleware.GetUserID(ctx),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Outcome:    outcome,
		RequestID:  middleware.GetRequestID(ctx),
		IPAddress:  clientIP(r),
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		rec.logger.ErrorContext(ctx, "failed to record audit entry",
			slog.String("action", action),
			slog.String("entity_id", entityID),
			slog.String("error", err.Error()))
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
// RemoteAddr, with any port stripped.
func clientIP(r *http.Request) string {
	candidate := r.RemoteAddr
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			candidate = first
		}
	} else if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		candidate = xri
	}
	if host, _, err := net.SplitHostPort(candidate); err == nil {
		return host
	}
	return candidate
}
