package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/onnwee/newsai/internal/idempotency"
	"github.com/onnwee/newsai/internal/middleware"
	"github.com/onnwee/newsai/internal/user"
)

// ServiceName and Version identify the API on its root endpoint.
const (
	ServiceName = "newsai-api"
	Version     = "0.1.0"
)

// RouterConfig holds the handlers and shared middleware dependencies of the API.
type RouterConfig struct {
	Auth         *AuthHandlers
	Articles     *ArticleHandlers
	Preferences  *PreferenceHandlers
	Interactions *InteractionHandlers
	Admin        *AdminHandlers
	Health       *HealthHandlers

	Tokens middleware.TokenValidator

	// RateLimitStore enables per-route limits when non-nil.
	RateLimitStore middleware.RateLimitStore
	AuthLimit      middleware.RateLimitConfig
	LiveFetchLimit middleware.RateLimitConfig
	Metrics        *middleware.Metrics

	// Idempotency enables Idempotency-Key replay on create endpoints when
	// non-nil. IdempotencyTTL defaults to idempotency.DefaultTTL.
	Idempotency    idempotency.Store
	IdempotencyTTL time.Duration

	// MetricsHandler serves /metrics when non-nil.
	MetricsHandler http.Handler
}

// NewRouter registers every API route on a new ServeMux. Routes under
// /api other than register, login and token refresh require an access
// token; /api/admin routes also require the admin role.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	requireUser := middleware.RequireAuth(cfg.Tokens)
	requireAdmin := func(h http.Handler) http.Handler {
		return requireUser(middleware.RequireRole(user.RoleAdmin)(h))
	}
	authLimited := func(h http.Handler) http.Handler { return h }
	liveLimited := func(h http.Handler) http.Handler { return h }
	if cfg.RateLimitStore != nil {
		authLimited = middleware.RateLimiter(cfg.RateLimitStore, cfg.AuthLimit,
			middleware.ScopedKeyFunc("auth", middleware.IPKeyFunc()), cfg.Metrics)
		liveLimited = middleware.RateLimiter(cfg.RateLimitStore, cfg.LiveFetchLimit,
			middleware.ScopedKeyFunc("live", middleware.UserKeyFunc()), cfg.Metrics)
	}
	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = idempotency.DefaultTTL
	}
	idempotent := Idempotent(cfg.Idempotency, ttl, cfg.Metrics)

	mux.Handle("POST /api/register", authLimited(http.HandlerFunc(cfg.Auth.Register)))
	mux.Handle("POST /api/login", authLimited(http.HandlerFunc(cfg.Auth.Login)))
	mux.Handle("POST /api/token/refresh", authLimited(http.HandlerFunc(cfg.Auth.Refresh)))

	list := http.HandlerFunc(cfg.Articles.ListArticles)
	limitedList := liveLimited(list)
	mux.Handle("GET /api/articles", requireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.URL.Query().Get("fetch_live"), "true") {
			limitedList.ServeHTTP(w, r)
			return
		}
		list.ServeHTTP(w, r)
	})))
	mux.Handle("GET /api/articles/{id}", requireUser(http.HandlerFunc(cfg.Articles.GetArticle)))

	mux.Handle("GET /api/preferences", requireUser(http.HandlerFunc(cfg.Preferences.GetPreferences)))
	mux.Handle("POST /api/preferences", requireUser(http.HandlerFunc(cfg.Preferences.UpdatePreferences)))

	mux.Handle("GET /api/interactions", requireUser(http.HandlerFunc(cfg.Interactions.ListInteractions)))
	mux.Handle("POST /api/interactions", requireUser(idempotent(http.HandlerFunc(cfg.Interactions.RecordInteraction))))

	mux.Handle("GET /api/admin/articles", requireAdmin(http.HandlerFunc(cfg.Admin.ListArticles)))
	mux.Handle("POST /api/admin/articles", requireAdmin(idempotent(http.HandlerFunc(cfg.Admin.CreateArticle))))
	mux.Handle("PUT /api/admin/articles", requireAdmin(http.HandlerFunc(cfg.Admin.UpdateArticle)))
	mux.Handle("DELETE /api/admin/articles", requireAdmin(http.HandlerFunc(cfg.Admin.DeleteArticle)))
	mux.Handle("GET /api/admin/users", requireAdmin(http.HandlerFunc(cfg.Admin.ListUsers)))
	mux.Handle("GET /api/admin/stats", requireAdmin(http.HandlerFunc(cfg.Admin.Stats)))
	mux.Handle("GET /api/admin/audit", requireAdmin(http.HandlerFunc(cfg.Admin.ListAudit)))

	mux.HandleFunc("GET /health", cfg.Health.Health)
	mux.HandleFunc("GET /ready", cfg.Health.Ready)
	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "The requested resource was not found")
			return
		}
		WriteJSON(w, r.Context(), http.StatusOK, map[string]string{"service": ServiceName, "version": Version})
	})
	return mux
}
