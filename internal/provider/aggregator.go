package provider

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/onnwee/newsai/internal/ranking"
	"github.com/onnwee/newsai/internal/tracing"
)

// cacheKeyPrefix namespaces live result keys in shared caches.
const cacheKeyPrefix = "live:"

// Aggregator expands a query once, fans it out to every provider and ranks
// the merged results.
type Aggregator struct {
	providers []Provider
	expander  *ranking.Expander
	scorer    *ranking.Scorer
	cache     Cache
	cacheTTL  time.Duration
	metrics   *Metrics
	logger    *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithExpander sets the query expander. Defaults to the built-in synonym table.
func WithExpander(e *ranking.Expander) Option {
	return func(a *Aggregator) { a.expander = e }
}

// WithScorer sets the relevance scorer. Defaults to the standard field weights.
func WithScorer(s *ranking.Scorer) Option {
	return func(a *Aggregator) { a.scorer = s }
}

// WithCache enables result caching. A non-positive ttl uses DefaultCacheTTL.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(a *Aggregator) {
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		a.cache = c
		a.cacheTTL = ttl
	}
}

// WithMetrics records fetch and cache metrics.
func WithMetrics(m *Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// NewAggregator creates an Aggregator over providers, queried in the given order.
func NewAggregator(providers []Provider, opts ...Option) *Aggregator {
	a := &Aggregator{
		providers: providers,
		expander:  ranking.NewExpander(nil),
		scorer:    ranking.NewScorer(nil),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Fetch returns live articles for query ranked by relevance to its expansion.
// Provider failures are logged and contribute no items, so Fetch only fails
// when ctx is cancelled.
func (a *Aggregator) Fetch(ctx context.Context, query, category string) (items []Item, err error) {
	ctx, end := tracing.StartSpan(ctx, "live.fetch",
		attribute.String("news.query", query),
		attribute.String("news.category", category))
	defer func() { end(err) }()

	expanded := a.expander.Expand(query)
	terms := ranking.Terms(expanded)
	a.logger.DebugContext(ctx, "expanded live query",
		slog.String("query", query),
		slog.String("expanded", expanded),
		slog.Int("terms", len(terms)))

	key := cacheKey(expanded, category)
	if hit, ok := a.cached(ctx, key); ok {
		tracing.AddEvent(ctx, "cache.hit", attribute.Int("results", len(hit)))
		return hit, nil
	}

	results := make([][]Item, len(a.providers))
	failed := make([]bool, len(a.providers))
	opts := FetchOptions{Category: category, Tags: query}

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range a.providers {
		g.Go(func() error {
			results[i], failed[i] = a.fetchOne(gctx, p, expanded, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var merged []Item
	for _, items := range results {
		merged = append(merged, items...)
	}

	ranked := ranking.RankItems(a.scorer, merged, terms, Item.Candidate)
	out := make([]Item, len(ranked))
	for i, r := range ranked {
		out[i] = r.Item
		out[i].RelevanceScore = r.Score
	}

	tracing.SetAttributes(ctx, attribute.Int("news.results", len(out)))
	if len(out) > 0 {
		a.logger.DebugContext(ctx, "ranked live results",
			slog.Int("count", len(out)),
			slog.Int("top_score", out[0].RelevanceScore))
	}

	// A partial result would pin one provider's outage for the whole TTL.
	if a.cache != nil && len(out) > 0 && !slices.Contains(failed, true) {
		if err := a.cache.Set(ctx, key, out, a.cacheTTL); err != nil {
			a.logger.WarnContext(ctx, "failed to cache live results",
				slog.String("error", err.Error()))
		}
	}
	return out, nil
}

func (a *Aggregator) cached(ctx context.Context, key string) ([]Item, bool) {
	if a.cache == nil {
		return nil, false
	}
	items, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		a.metrics.IncCache("error")
		a.logger.WarnContext(ctx, "live cache lookup failed",
			slog.String("error", err.Error()))
		return nil, false
	}
	if !ok {
		a.metrics.IncCache("miss")
		return nil, false
	}
	a.metrics.IncCache("hit")
	return items, true
}

// fetchOne reports whether p failed; a failed provider contributes no items.
func (a *Aggregator) fetchOne(ctx context.Context, p Provider, query string, opts FetchOptions) ([]Item, bool) {
	ctx, end := tracing.StartSpan(ctx, "provider.fetch", attribute.String("provider", p.Name()))
	start := time.Now()
	items, err := p.Fetch(ctx, query, opts)
	elapsed := time.Since(start).Seconds()
	end(err)
	if err != nil {
		a.metrics.ObserveFetch(p.Name(), OutcomeError, elapsed, 0)
		a.logger.WarnContext(ctx, "live provider fetch failed",
			slog.String("provider", p.Name()),
			slog.String("error", err.Error()))
		return nil, true
	}
	a.metrics.ObserveFetch(p.Name(), OutcomeSuccess, elapsed, len(items))
	return items, false
}

// cacheKey builds the cache key for an expanded query and optional category label.
func cacheKey(expanded, category string) string {
	key := cacheKeyPrefix + expanded
	if category != "" {
		key += "|" + strings.ToLower(category)
	}
	return key
}
