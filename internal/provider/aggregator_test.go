package provider

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/onnwee/newsai/internal/ranking"
)

type fakeProvider struct {
	name  string
	items []Item
	err   error
	delay time.Duration
	calls atomic.Int32
	query atomic.Value
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(ctx context.Context, query string, opts FetchOptions) ([]Item, error) {
	f.calls.Add(1)
	f.query.Store(query)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]Item, len(f.items))
	for i, it := range f.items {
		it.Tags = opts.Tags
		out[i] = it
	}
	return out, nil
}

func titles(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestAggregator_MergesAndRanks(t *testing.T) {
	news := &fakeProvider{name: NameNewsAPI, items: []Item{
		{Title: "Weather today"},
		{Title: "AI rules drafted"},
	}, delay: 20 * time.Millisecond}
	guardian := &fakeProvider{name: NameGuardian, items: []Item{
		{Title: "Machine learning news"},
		{Title: "Sports roundup"},
	}}

	agg := NewAggregator([]Provider{news, guardian})
	items, err := agg.Fetch(context.Background(), "AI", "")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	want := []string{"Machine learning news", "AI rules drafted", "Weather today", "Sports roundup"}
	got := titles(items)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	scores := []int{10, 5, 0, 0}
	for i, s := range scores {
		if items[i].RelevanceScore != s {
			t.Errorf("%q score = %d, want %d", items[i].Title, items[i].RelevanceScore, s)
		}
	}

	expanded := ranking.NewExpander(nil).Expand("AI")
	if q, _ := news.query.Load().(string); q != expanded {
		t.Errorf("provider received %q, want expanded %q", q, expanded)
	}
	if items[0].Tags != "AI" {
		t.Errorf("expected raw query as tags, got %q", items[0].Tags)
	}
}

func TestAggregator_ProviderFailureContributesNothing(t *testing.T) {
	broken := &fakeProvider{name: NameNewsAPI, err: errors.New("boom")}
	ok := &fakeProvider{name: NameGuardian, items: []Item{{Title: "Budget vote"}}}

	agg := NewAggregator([]Provider{broken, ok}, WithMetrics(NewMetrics()))
	items, err := agg.Fetch(context.Background(), "budget", "")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(items) != 1 || items[0].Title != "Budget vote" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestAggregator_NoResults(t *testing.T) {
	agg := NewAggregator([]Provider{&fakeProvider{name: NameNewsAPI}})
	items, err := agg.Fetch(context.Background(), "news", "")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", items)
	}
}

func TestAggregator_Cache(t *testing.T) {
	p := &fakeProvider{name: NameNewsAPI, items: []Item{{Title: "Election results"}}}
	cache := NewInMemoryCache()
	agg := NewAggregator([]Provider{p}, WithCache(cache, time.Minute))

	for i := 0; i < 3; i++ {
		items, err := agg.Fetch(context.Background(), "election", "")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}
	}
	if n := p.calls.Load(); n != 1 {
		t.Errorf("provider called %d times, want 1", n)
	}

	// A different category label is a different cache entry.
	if _, err := agg.Fetch(context.Background(), "election", "Politics"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if n := p.calls.Load(); n != 2 {
		t.Errorf("provider called %d times, want 2", n)
	}
}

func TestAggregator_PartialResultsNotCached(t *testing.T) {
	guardian := &fakeProvider{name: NameGuardian, items: []Item{{Title: "Election night"}}}
	newsapi := &fakeProvider{name: NameNewsAPI, err: errors.New("upstream 503")}
	cache := NewInMemoryCache()
	agg := NewAggregator([]Provider{newsapi, guardian}, WithCache(cache, time.Minute))

	for i := 0; i < 2; i++ {
		items, err := agg.Fetch(context.Background(), "election", "")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected the guardian item, got %v", titles(items))
		}
	}
	if n := newsapi.calls.Load(); n != 2 {
		t.Errorf("failing provider called %d times, want 2 (nothing cached)", n)
	}
	if _, ok, _ := cache.Get(context.Background(), cacheKey(ranking.NewExpander(nil).Expand("election"), "")); ok {
		t.Error("partial result was cached")
	}
}

func TestAggregator_CancelledContext(t *testing.T) {
	p := &fakeProvider{name: NameNewsAPI, items: []Item{{Title: "Slow"}}, delay: time.Second}
	agg := NewAggregator([]Provider{p})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := agg.Fetch(ctx, "news", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCacheKey(t *testing.T) {
	if got := cacheKey("ai ml", ""); got != "live:ai ml" {
		t.Errorf("cacheKey() = %q", got)
	}
	if got := cacheKey("ai ml", "Technology"); got != "live:ai ml|technology" {
		t.Errorf("cacheKey() = %q", got)
	}
}
