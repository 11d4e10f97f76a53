package api

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Check results reported by /ready.
const (
	checkOK       = "ok"
	checkError    = "error"
	checkDegraded = "degraded"
	checkDisabled = "not_configured"
)

// readyTimeout bounds all readiness checks together.
const readyTimeout = 5 * time.Second

// HealthChecker defines the interface for components that can be health checked.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandlersConfig configures the health check handlers.
// Nil checkers mean the service is not configured (in-memory stores).
type HealthHandlersConfig struct {
	DBChecker    HealthChecker
	RedisChecker HealthChecker
	// Upstreams are news provider hosts. A failing upstream marks the check
	// degraded without failing readiness, since live fetches tolerate it.
	Upstreams map[string]HealthChecker
}

// HealthHandlers provides health and readiness check endpoints for Kubernetes probes.
type HealthHandlers struct {
	critical  map[string]HealthChecker
	upstreams map[string]HealthChecker
}

// NewHealthHandlers creates a new health check handler.
func NewHealthHandlers(config HealthHandlersConfig) *HealthHandlers {
	critical := map[string]HealthChecker{
		"database": config.DBChecker,
		"redis":    config.RedisChecker,
	}
	return &HealthHandlers{critical: critical, upstreams: config.Upstreams}
}

// HealthResponse represents the JSON response for health checks.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Health handles GET /health (liveness probe).
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, r.Context(), http.StatusOK, HealthResponse{
		Status:    "healthy",
		Checks:    map[string]string{"runtime": checkOK},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready (readiness probe). Returns 503 when a configured
// database or Redis check fails.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	type result struct {
		name     string
		critical bool
		err      error
		skipped  bool
	}

	var (
		mu      sync.Mutex
		results []result
		wg      sync.WaitGroup
	)
	run := func(name string, checker HealthChecker, critical bool) {
		if checker == nil {
			mu.Lock()
			results = append(results, result{name: name, critical: critical, skipped: true})
			mu.Unlock()
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := checker.HealthCheck(ctx)
			mu.Lock()
			results = append(results, result{name: name, critical: critical, err: err})
			mu.Unlock()
		}()
	}
	for _, name := range sortedNames(h.critical) {
		run(name, h.critical[name], true)
	}
	for _, name := range sortedNames(h.upstreams) {
		run(name, h.upstreams[name], false)
	}
	wg.Wait()

	checks := map[string]string{"metrics": checkOK}
	healthy := true
	for _, res := range results {
		switch {
		case res.skipped:
			checks[res.name] = checkDisabled
		case res.err == nil:
			checks[res.name] = checkOK
		case res.critical:
			checks[res.name] = checkError
			healthy = false
			slog.WarnContext(ctx, "readiness check failed", "check", res.name, "error", res.err)
		default:
			checks[res.name] = checkDegraded
			slog.WarnContext(ctx, "upstream check failed", "check", res.name, "error", res.err)
		}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	WriteJSON(w, r.Context(), code, HealthResponse{
		Status:    status,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func sortedNames(m map[string]HealthChecker) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
