package user

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Repository defines the interface for user account storage.
type Repository interface {
	// Create stores a new user and assigns its ID. Returns ErrEmailTaken on duplicate email.
	Create(ctx context.Context, u *User) error

	// GetByID retrieves a user. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by (lowercased) email. Returns ErrNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List returns all users ordered by ID.
	List(ctx context.Context) ([]*User, error)

	// Count returns the number of users.
	Count(ctx context.Context) (int, error)
}

// PreferenceRepository defines the interface for user preference storage.
type PreferenceRepository interface {
	// Get returns the preferences for a user, with empty lists if none are stored.
	Get(ctx context.Context, userID int64) (*Preferences, error)

	// Upsert creates or replaces the preferences for a user.
	Upsert(ctx context.Context, p *Preferences) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu      sync.RWMutex
	users   map[int64]*User
	byEmail map[string]int64
	nextID  int64
}

// NewInMemoryRepository creates a new in-memory user repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:   make(map[int64]*User),
		byEmail: make(map[string]int64),
		nextID:  1,
	}
}

// Create stores a copy of the user.
func (r *InMemoryRepository) Create(ctx context.Context, u *User) error {
	email := strings.ToLower(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return ErrEmailTaken
	}

	u.ID = r.nextID
	r.nextID++
	u.Email = email
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	stored := *u
	r.users[stored.ID] = &stored
	r.byEmail[email] = stored.ID
	return nil
}

// GetByID returns a copy of the user.
func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

// GetByEmail returns a copy of the user with the given email.
func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *r.users[id]
	return &out, nil
}

// List returns copies of all users ordered by ID.
func (r *InMemoryRepository) List(ctx context.Context) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Count returns the number of users.
func (r *InMemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

// InMemoryPreferenceRepository is an in-memory implementation of PreferenceRepository.
type InMemoryPreferenceRepository struct {
	mu    sync.RWMutex
	prefs map[int64]*Preferences
}

// NewInMemoryPreferenceRepository creates a new in-memory preference repository.
func NewInMemoryPreferenceRepository() *InMemoryPreferenceRepository {
	return &InMemoryPreferenceRepository{
		prefs: make(map[int64]*Preferences),
	}
}

// Get returns a copy of the stored preferences or empty preferences.
func (r *InMemoryPreferenceRepository) Get(ctx context.Context, userID int64) (*Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prefs[userID]
	if !ok {
		return &Preferences{UserID: userID, Interests: []string{}, PreferredSources: []string{}}, nil
	}
	return copyPreferences(p), nil
}

// Upsert stores normalized preferences for the user.
func (r *InMemoryPreferenceRepository) Upsert(ctx context.Context, p *Preferences) error {
	p.Interests = normalizeLabels(p.Interests)
	p.PreferredSources = normalizeLabels(p.PreferredSources)
	p.UpdatedAt = time.Now().UTC()
	stored := copyPreferences(p)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs[p.UserID] = stored
	return nil
}

func copyPreferences(p *Preferences) *Preferences {
	out := *p
	out.Interests = append([]string{}, p.Interests...)
	out.PreferredSources = append([]string{}, p.PreferredSources...)
	return &out
}
