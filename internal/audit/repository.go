package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Validation errors.
var (
	ErrInvalidEntityType = errors.New("entity type cannot be empty")
	ErrInvalidEntityID   = errors.New("entity ID cannot be empty")
	ErrInvalidAction     = errors.New("action cannot be empty")
	ErrInvalidOutcome    = errors.New("outcome must be success or failure")
)

// Repository stores audit entries. List and QueryByEntity return newest
// first; a limit of 0 means no limit.
type Repository interface {
	Record(ctx context.Context, entry LogEntry) (*Entry, error)
	List(ctx context.Context, limit int) ([]*Entry, error)
	QueryByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*Entry, error)
}

func (e LogEntry) validate() error {
	switch {
	case e.EntityType == "":
		return ErrInvalidEntityType
	case e.EntityID == "":
		return ErrInvalidEntityID
	case e.Action == "":
		return ErrInvalidAction
	case e.Outcome != OutcomeSuccess && e.Outcome != OutcomeFailure:
		return ErrInvalidOutcome
	}
	return nil
}

func newEntry(in LogEntry, previousHash string) *Entry {
	return &Entry{
		ID:           uuid.NewString(),
		UserID:       in.UserID,
		EntityType:   in.EntityType,
		EntityID:     in.EntityID,
		Action:       in.Action,
		Outcome:      in.Outcome,
		RequestID:    in.RequestID,
		IPAddress:    in.IPAddress,
		UserAgent:    in.UserAgent,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
		PreviousHash: previousHash,
	}
}

// InMemoryRepository is a thread-safe Repository for development and tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewInMemoryRepository creates an empty InMemoryRepository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Record appends an entry chained to the previous one.
func (r *InMemoryRepository) Record(ctx context.Context, in LogEntry) (*Entry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev := ""
	if n := len(r.entries); n > 0 {
		prev = Hash(r.entries[n-1])
	}
	e := newEntry(in, prev)
	r.entries = append(r.entries, e)

	out := *e
	return &out, nil
}

// List returns the most recent entries.
func (r *InMemoryRepository) List(ctx context.Context, limit int) ([]*Entry, error) {
	return r.filter(limit, func(*Entry) bool { return true }), nil
}

// QueryByEntity returns the most recent entries for one entity.
func (r *InMemoryRepository) QueryByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*Entry, error) {
	return r.filter(limit, func(e *Entry) bool {
		return e.EntityType == entityType && e.EntityID == entityID
	}), nil
}

func (r *InMemoryRepository) filter(limit int, keep func(*Entry) bool) []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Entry{}
	for i := len(r.entries) - 1; i >= 0; i-- {
		if !keep(r.entries[i]) {
			continue
		}
		e := *r.entries[i]
		out = append(out, &e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
