package middleware

import (
	"log/slog"
	"net/http"
	"net/http/pprof"
	"strings"
)

// Profiling exposes net/http/pprof under /debug/pprof/ when enabled.
// It refuses to enable itself when env is "production"; the profiles expose
// memory contents and must never be reachable from the internet.
func Profiling(enabled bool, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		if env == "production" {
			slog.Error("profiling requested in production, ignoring")
			return next
		}
		slog.Warn("profiling endpoints enabled", slog.String("path", "/debug/pprof/"))

		mux := http.NewServeMux()
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/debug/pprof/") {
				mux.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
