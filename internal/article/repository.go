package article

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Repository defines the interface for article catalog operations.
type Repository interface {
	// Create stores a new article, assigning its ID and defaults.
	Create(ctx context.Context, a *Article) error

	// Update applies a partial update. Returns ErrNotFound if the article does not exist.
	Update(ctx context.Context, id int64, u Update) (*Article, error)

	// Delete removes an article. Returns ErrNotFound if the article does not exist.
	Delete(ctx context.Context, id int64) error

	// GetByID retrieves an article. Returns ErrNotFound if the article does not exist.
	GetByID(ctx context.Context, id int64) (*Article, error)

	// List returns all articles ordered by created_at DESC.
	List(ctx context.Context) ([]*Article, error)

	// Search returns articles matching the filter ordered by published_at DESC.
	Search(ctx context.Context, f Filter) ([]*Article, error)

	// Count returns the number of stored articles.
	Count(ctx context.Context) (int, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu       sync.RWMutex
	articles map[int64]*Article
	nextID   int64
	now      func() time.Time
}

// NewInMemoryRepository creates a new in-memory article repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		articles: make(map[int64]*Article),
		nextID:   1,
		now:      time.Now,
	}
}

// Create stores a copy of the article and sets its ID and timestamps.
func (r *InMemoryRepository) Create(ctx context.Context, a *Article) error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrTitleMissing
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a.ID = r.nextID
	r.nextID++
	a.applyDefaults(r.now().UTC())

	stored := *a
	r.articles[stored.ID] = &stored
	return nil
}

// Update applies a partial update to a stored article.
func (r *InMemoryRepository) Update(ctx context.Context, id int64, u Update) (*Article, error) {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return nil, ErrTitleMissing
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.articles[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.apply(existing)

	out := *existing
	return &out, nil
}

// Delete removes a stored article.
func (r *InMemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.articles[id]; !ok {
		return ErrNotFound
	}
	delete(r.articles, id)
	return nil
}

// GetByID returns a copy of a stored article.
func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (*Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.articles[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *a
	return &out, nil
}

// List returns copies of all articles, newest first.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Article, 0, len(r.articles))
	for _, a := range r.articles {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Search returns copies of matching articles ordered by published_at DESC, id DESC.
// Term matching is case-insensitive substring containment.
func (r *InMemoryRepository) Search(ctx context.Context, f Filter) ([]*Article, error) {
	f = f.normalized()

	terms := make([]string, 0, len(f.Terms))
	for _, t := range f.Terms {
		if t = strings.ToLower(t); t != "" {
			terms = append(terms, t)
		}
	}

	r.mu.RLock()
	var matches []*Article
	for _, a := range r.articles {
		if f.Category != "" && a.Category != f.Category {
			continue
		}
		if len(terms) > 0 && !matchesAnyTerm(a, terms) {
			continue
		}
		cp := *a
		matches = append(matches, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].PublishedAt.Equal(matches[j].PublishedAt) {
			return matches[i].PublishedAt.After(matches[j].PublishedAt)
		}
		return matches[i].ID > matches[j].ID
	})

	if len(matches) > f.Limit {
		matches = matches[:f.Limit]
	}
	return matches, nil
}

// Count returns the number of stored articles.
func (r *InMemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.articles), nil
}

// matchesAnyTerm reports whether any lowercased term occurs in the title,
// description or tags of the article.
func matchesAnyTerm(a *Article, terms []string) bool {
	title := strings.ToLower(a.Title)
	description := strings.ToLower(a.Description)
	tags := strings.ToLower(a.Tags)
	for _, t := range terms {
		if strings.Contains(title, t) || strings.Contains(description, t) || strings.Contains(tags, t) {
			return true
		}
	}
	return false
}
