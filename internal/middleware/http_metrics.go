package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// staticRoutes are recorded under their own path.
var staticRoutes = map[string]bool{
	"/":                   true,
	"/api/register":       true,
	"/api/login":          true,
	"/api/token/refresh":  true,
	"/api/articles":       true,
	"/api/preferences":    true,
	"/api/interactions":   true,
	"/api/admin/articles": true,
	"/api/admin/users":    true,
	"/api/admin/stats":    true,
	"/health":             true,
	"/ready":              true,
	"/metrics":            true,
}

// normalizePath maps request paths onto route patterns so metric labels stay
// bounded: /api/articles/42 becomes /api/articles/{id}. Unknown paths are
// collapsed to "other".
func normalizePath(path string) string {
	if staticRoutes[path] {
		return path
	}
	if rest, ok := strings.CutPrefix(path, "/api/articles/"); ok && rest != "" && !strings.Contains(rest, "/") {
		return "/api/articles/{id}"
	}
	if strings.HasPrefix(path, "/debug/pprof/") {
		return "/debug/pprof"
	}
	return "other"
}

// metricsResponseWriter captures status code and response size.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	wroteHeader bool
}

func (mrw *metricsResponseWriter) WriteHeader(code int) {
	if mrw.wroteHeader {
		return
	}
	mrw.statusCode = code
	mrw.wroteHeader = true
	mrw.ResponseWriter.WriteHeader(code)
}

func (mrw *metricsResponseWriter) Write(b []byte) (int, error) {
	if !mrw.wroteHeader {
		mrw.wroteHeader = true
	}
	n, err := mrw.ResponseWriter.Write(b)
	mrw.size += int64(n)
	return n, err
}

// Unwrap lets UpdateResponseContext reach an outer Logging writer.
func (mrw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return mrw.ResponseWriter
}

// HTTPMetrics records request duration, count and sizes.
// /health, /ready and /metrics are not recorded.
func HTTPMetrics(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/health", "/ready", "/metrics":
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			mrw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(mrw, r)

			requestSize := r.ContentLength
			if requestSize < 0 {
				requestSize = 0
			}
			metrics.ObserveHTTPRequest(
				r.Method,
				normalizePath(r.URL.Path),
				strconv.Itoa(mrw.statusCode),
				time.Since(start).Seconds(),
				requestSize,
				mrw.size,
			)
		})
	}
}
