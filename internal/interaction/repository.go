package interaction

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository stores interactions and reading history.
type Repository interface {
	// Record stores an interaction and assigns its ID.
	Record(ctx context.Context, i *Interaction) error

	// RecordRead appends a reading history entry.
	RecordRead(ctx context.Context, r *Read) error

	// CountInteractions returns the total number of interactions.
	CountInteractions(ctx context.Context) (int, error)

	// CountReads returns the total number of reading history entries.
	CountReads(ctx context.Context) (int, error)

	// ListByUser returns a user's interactions, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*Interaction, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	mu           sync.RWMutex
	interactions []*Interaction
	reads        []*Read
	now          func() time.Time
}

// NewInMemoryRepository creates a new in-memory interaction repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Record stores a copy of the interaction.
func (r *InMemoryRepository) Record(ctx context.Context, i *Interaction) error {
	t, err := NormalizeType(i.Type)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i.Type = t
	i.ID = int64(len(r.interactions) + 1)
	if i.CreatedAt.IsZero() {
		i.CreatedAt = r.now()
	}
	stored := *i
	r.interactions = append(r.interactions, &stored)
	return nil
}

// RecordRead stores a copy of the read entry.
func (r *InMemoryRepository) RecordRead(ctx context.Context, rd *Read) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rd.ID = int64(len(r.reads) + 1)
	if rd.ReadAt.IsZero() {
		rd.ReadAt = r.now()
	}
	stored := *rd
	r.reads = append(r.reads, &stored)
	return nil
}

// CountInteractions returns the number of recorded interactions.
func (r *InMemoryRepository) CountInteractions(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.interactions), nil
}

// CountReads returns the number of reading history entries.
func (r *InMemoryRepository) CountReads(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reads), nil
}

// ListByUser returns copies of the user's interactions, newest first.
func (r *InMemoryRepository) ListByUser(ctx context.Context, userID int64) ([]*Interaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Interaction
	for _, i := range r.interactions {
		if i.UserID == userID {
			cp := *i
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID > out[b].ID
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out, nil
}
