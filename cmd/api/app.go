package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/newsai/internal/api"
	"github.com/onnwee/newsai/internal/article"
	"github.com/onnwee/newsai/internal/audit"
	"github.com/onnwee/newsai/internal/auth"
	"github.com/onnwee/newsai/internal/config"
	"github.com/onnwee/newsai/internal/db"
	"github.com/onnwee/newsai/internal/health"
	"github.com/onnwee/newsai/internal/idempotency"
	"github.com/onnwee/newsai/internal/interaction"
	"github.com/onnwee/newsai/internal/middleware"
	"github.com/onnwee/newsai/internal/provider"
	"github.com/onnwee/newsai/internal/ranking"
	"github.com/onnwee/newsai/internal/user"
)

const (
	defaultAdminName       = "Admin"
	rateLimitCleanupPeriod = time.Minute

	idempotencyCleanupPeriod = 10 * time.Minute
)

// app owns the wired HTTP handler and every resource it depends on.
type app struct {
	handler http.Handler
	closers []func() error
	cancel  context.CancelFunc
	logger  *slog.Logger
}

// stores groups the repositories, backed by PostgreSQL or memory.
type stores struct {
	articles     article.Repository
	users        user.Repository
	prefs        user.PreferenceRepository
	interactions interaction.Repository
	auditLog     audit.Repository
	dbChecker    api.HealthChecker
}

// newApp connects storage, loads ranking data, bootstraps accounts and the
// sample catalog, and assembles the middleware chain around the router.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	bgCtx, cancel := context.WithCancel(context.Background())
	a := &app{cancel: cancel, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	st, err := a.openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = a.openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
	}

	synonyms, err := ranking.LoadSynonyms(cfg.SynonymsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load synonyms: %w", err)
	}
	weights, err := ranking.LoadCalibration(cfg.RankingCalibrationFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranking calibration: %w", err)
	}
	expander := ranking.NewExpander(synonyms)
	scorer := ranking.NewScorer(weights)
	logger.Info("ranking configured",
		slog.Int("synonym_entries", synonyms.Len()),
		slog.Any("weights", scorer.Weights()))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		return nil, fmt.Errorf("failed to register http metrics: %w", err)
	}
	liveMetrics := provider.NewMetrics()
	if err := liveMetrics.Register(registry); err != nil {
		return nil, fmt.Errorf("failed to register provider metrics: %w", err)
	}

	var (
		limitStore   middleware.RateLimitStore
		liveCache    provider.Cache
		replayStore  idempotency.Store
		redisChecker api.HealthChecker
	)
	if redisClient != nil {
		limitStore = middleware.NewRedisRateLimitStore(redisClient).WithMetrics(httpMetrics)
		liveCache = provider.NewRedisCache(redisClient)
		replayStore = idempotency.NewRedisStore(redisClient)
		redisChecker = health.NewRedisChecker(redisClient)
	} else {
		memStore := middleware.NewInMemoryRateLimitStore()
		go cleanupLoop(bgCtx, rateLimitCleanupPeriod, memStore.Cleanup)
		limitStore = memStore
		liveCache = provider.NewInMemoryCache()
		memReplay := idempotency.NewInMemoryStore()
		go cleanupLoop(bgCtx, idempotencyCleanupPeriod, func() { memReplay.Cleanup() })
		replayStore = memReplay
	}

	providers, upstreams := newsProviders(cfg, logger)
	var live api.LiveFetcher
	if len(providers) > 0 {
		live = provider.NewAggregator(providers,
			provider.WithExpander(expander),
			provider.WithScorer(scorer),
			provider.WithCache(liveCache, cfg.LiveCacheTTL()),
			provider.WithMetrics(liveMetrics),
			provider.WithLogger(logger),
		)
	} else {
		logger.Warn("no news provider keys configured, live fetch disabled")
	}

	accounts := user.NewService(st.users, logger)
	if cfg.HasAdminBootstrap() {
		admin, err := accounts.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, defaultAdminName)
		if err != nil {
			return nil, fmt.Errorf("failed to ensure admin account: %w", err)
		}
		logger.Info("admin account ready", slog.Int64("user_id", admin.ID))
	}
	if _, err := article.Seed(ctx, st.articles); err != nil {
		return nil, fmt.Errorf("failed to seed articles: %w", err)
	}

	var tokenOpts []auth.Option
	if cfg.JWTPreviousSecret != "" {
		tokenOpts = append(tokenOpts, auth.WithPreviousSecret(cfg.JWTPreviousSecret))
	}
	tokens := auth.NewJWTService(cfg.JWTSecret, tokenOpts...)

	router := api.NewRouter(api.RouterConfig{
		Auth:         api.NewAuthHandlers(accounts, st.users, tokens),
		Articles:     api.NewArticleHandlers(st.articles, st.interactions, live, expander, scorer),
		Preferences:  api.NewPreferenceHandlers(st.prefs),
		Interactions: api.NewInteractionHandlers(st.interactions),
		Admin:        api.NewAdminHandlers(st.articles, st.users, st.interactions, st.auditLog),
		Health: api.NewHealthHandlers(api.HealthHandlersConfig{
			DBChecker:    st.dbChecker,
			RedisChecker: redisChecker,
			Upstreams:    upstreams,
		}),
		Tokens:         tokens,
		RateLimitStore: limitStore,
		AuthLimit:      middleware.DefaultAuthLimit(),
		LiveFetchLimit: middleware.DefaultLiveFetchLimit(),
		Metrics:        httpMetrics,
		Idempotency:    replayStore,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	})

	// Outermost first: RequestID, Tracing, Logging, HTTPMetrics, CORS,
	// global rate limit, Profiling, router.
	var handler http.Handler = router
	handler = middleware.Profiling(cfg.ProfilingEnabled, cfg.Env)(handler)
	handler = middleware.RateLimiter(limitStore, middleware.DefaultGlobalLimit(),
		middleware.ScopedKeyFunc("global", middleware.IPKeyFunc()), httpMetrics)(handler)
	handler = middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSAllowedOrigins))(handler)
	handler = middleware.HTTPMetrics(httpMetrics)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Tracing(api.ServiceName)(handler)
	handler = middleware.RequestID(handler)

	a.handler = handler
	return a, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *app) Handler() http.Handler {
	return a.handler
}

// Close stops background work and releases connections in reverse order.
func (a *app) Close() {
	a.cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to close resource", "error", err)
		}
	}
	a.closers = nil
}

func (a *app) openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.DatabaseURL == "" {
		a.logger.Warn("DATABASE_URL not set, using in-memory stores")
		return &stores{
			articles:     article.NewInMemoryRepository(),
			users:        user.NewInMemoryRepository(),
			prefs:        user.NewInMemoryPreferenceRepository(),
			interactions: interaction.NewInMemoryRepository(),
			auditLog:     audit.NewInMemoryRepository(),
		}, nil
	}

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, conn.Close)

	if err := db.Migrate(ctx, conn); err != nil {
		return nil, err
	}
	return postgresStores(conn, a.logger), nil
}

func postgresStores(conn *sql.DB, logger *slog.Logger) *stores {
	return &stores{
		articles:     article.NewPostgresRepository(conn, logger),
		users:        user.NewPostgresRepository(conn, logger),
		prefs:        user.NewPostgresPreferenceRepository(conn),
		interactions: interaction.NewPostgresRepository(conn, logger),
		auditLog:     audit.NewPostgresRepository(conn, logger),
		dbChecker:    health.NewDBChecker(conn),
	}
}

func (a *app) openRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	a.closers = append(a.closers, client.Close)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// newsProviders builds a client for every provider with an API key, plus a
// health checker for its host.
func newsProviders(cfg *config.Config, logger *slog.Logger) ([]provider.Provider, map[string]api.HealthChecker) {
	var providers []provider.Provider
	upstreams := map[string]api.HealthChecker{}

	add := func(p provider.Provider, endpoint string) {
		providers = append(providers, p)
		if origin, err := originOf(endpoint); err == nil {
			upstreams[p.Name()] = health.NewUpstreamChecker(origin)
		}
	}
	if cfg.NewsAPIKey != "" {
		add(provider.NewNewsAPIClient(cfg.NewsAPIKey, logger), provider.NewsAPIBaseURL)
	}
	if cfg.GuardianAPIKey != "" {
		add(provider.NewGuardianClient(cfg.GuardianAPIKey, logger), provider.GuardianBaseURL)
	}
	return providers, upstreams
}

func originOf(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.New("endpoint has no origin")
	}
	return u.Scheme + "://" + u.Host, nil
}

// cleanupLoop runs sweep every period until ctx is done.
func cleanupLoop(ctx context.Context, every time.Duration, sweep func()) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
