package article

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

// newTestRepo returns a repository whose clock advances one minute per call.
func newTestRepo() *InMemoryRepository {
	repo := NewInMemoryRepository()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	calls := 0
	repo.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return repo
}

func TestInMemoryRepository_CreateDefaults(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	a := &Article{Title: "Hello"}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if a.ID != 1 {
		t.Errorf("expected ID 1, got %d", a.ID)
	}
	if a.Category != DefaultCategory || a.Source != DefaultSource || a.APISource != SourceLocal {
		t.Errorf("defaults not applied: %+v", a)
	}
	if a.PublishedAt.IsZero() || a.CreatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	// Stored value is a copy
	a.Title = "mutated"
	got, err := repo.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Hello" {
		t.Errorf("stored article was mutated: %q", got.Title)
	}
}

func TestInMemoryRepository_CreateRequiresTitle(t *testing.T) {
	repo := newTestRepo()
	if err := repo.Create(context.Background(), &Article{Title: "   "}); !errors.Is(err, ErrTitleMissing) {
		t.Errorf("expected ErrTitleMissing, got %v", err)
	}
}

func TestInMemoryRepository_UpdatePartial(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	a := &Article{Title: "Original", Description: "desc", Author: "Ann"}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := repo.Update(ctx, a.ID, Update{Title: strPtr("Changed"), Tags: strPtr("x,y")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "Changed" || updated.Tags != "x,y" {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Description != "desc" || updated.Author != "Ann" {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	if _, err := repo.Update(ctx, 999, Update{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Update(ctx, a.ID, Update{Title: strPtr("")}); !errors.Is(err, ErrTitleMissing) {
		t.Errorf("expected ErrTitleMissing, got %v", err)
	}
}

func TestInMemoryRepository_Delete(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	a := &Article{Title: "Doomed"}
	_ = repo.Create(ctx, a)

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestInMemoryRepository_ListNewestFirst(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_ = repo.Create(ctx, &Article{Title: fmt.Sprintf("A%d", i)})
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	got := []string{list[0].Title, list[1].Title, list[2].Title}
	if strings.Join(got, ",") != "A3,A2,A1" {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestInMemoryRepository_Search(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	seed := []*Article{
		{Title: "AI in hospitals", Category: "Technology", PublishedAt: base.Add(1 * time.Hour)},
		{Title: "Markets rally", Description: "stocks and bonds", Category: "Business", PublishedAt: base.Add(2 * time.Hour)},
		{Title: "Green energy", Tags: "Climate, AI", Category: "Environment", PublishedAt: base.Add(3 * time.Hour)},
		{Title: "Football final", Content: "ai only in content", Category: "Sports", PublishedAt: base.Add(4 * time.Hour)},
	}
	for _, a := range seed {
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "no filter returns newest first",
			filter: Filter{},
			want:   []string{"Football final", "Green energy", "Markets rally", "AI in hospitals"},
		},
		{
			name:   "category filter",
			filter: Filter{Category: "Business"},
			want:   []string{"Markets rally"},
		},
		{
			name:   "All disables category filter",
			filter: Filter{Category: AllCategories, Limit: 2},
			want:   []string{"Football final", "Green energy"},
		},
		{
			name:   "terms match title, description or tags but not content",
			filter: Filter{Terms: []string{"AI"}},
			want:   []string{"Green energy", "AI in hospitals"},
		},
		{
			name:   "any term matches",
			filter: Filter{Terms: []string{"stocks", "hospitals"}},
			want:   []string{"Markets rally", "AI in hospitals"},
		},
		{
			name:   "only first five terms are used",
			filter: Filter{Terms: []string{"q1", "q2", "q3", "q4", "q5", "markets"}},
			want:   nil,
		},
		{
			name:   "category and terms combine",
			filter: Filter{Category: "Technology", Terms: []string{"green", "hospitals"}},
			want:   []string{"AI in hospitals"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Search(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			titles := make([]string, len(got))
			for i, a := range got {
				titles[i] = a.Title
			}
			if strings.Join(titles, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Search() = %v, want %v", titles, tt.want)
			}
		})
	}
}

func TestSeed(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	n, err := Seed(ctx, repo)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if n != len(SampleArticles()) {
		t.Errorf("expected %d seeded, got %d", len(SampleArticles()), n)
	}

	// Second seed is a no-op
	n, err = Seed(ctx, repo)
	if err != nil || n != 0 {
		t.Errorf("expected no-op reseed, got n=%d err=%v", n, err)
	}
}

func TestArticle_Candidate(t *testing.T) {
	a := &Article{Title: "T", Description: "D", Content: "C"}
	c := a.Candidate()
	if *c.Title != "T" || *c.Description != "D" || *c.Content != "C" {
		t.Errorf("unexpected candidate: %+v", c)
	}
}
