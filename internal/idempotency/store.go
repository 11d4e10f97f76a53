package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "idempotency:"

// InMemoryStore keeps records in process memory.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[string]memoryRecord
	now     func() time.Time
}

type memoryRecord struct {
	rec       Record
	expiresAt time.Time
}

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]memoryRecord), now: time.Now}
}

// Get returns a copy of the live record for scope.
func (s *InMemoryStore) Get(ctx context.Context, scope string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.records[scope]
	if !ok || !s.now().Before(m.expiresAt) {
		return nil, ErrNotFound
	}
	rec := m.rec
	rec.Body = append([]byte(nil), m.rec.Body...)
	return &rec, nil
}

// Put stores rec unless a live record already holds its scope.
func (s *InMemoryStore) Put(ctx context.Context, rec *Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if m, ok := s.records[rec.Scope]; ok && now.Before(m.expiresAt) {
		return ErrKeyExists
	}
	stored := *rec
	stored.Body = append([]byte(nil), rec.Body...)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now.UTC()
	}
	s.records[rec.Scope] = memoryRecord{rec: stored, expiresAt: now.Add(ttl)}
	return nil
}

// Cleanup drops expired records and returns how many were removed.
func (s *InMemoryStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for scope, m := range s.records {
		if !now.Before(m.expiresAt) {
			delete(s.records, scope)
			removed++
		}
	}
	return removed
}

// RedisStore keeps records as JSON strings with a TTL.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Get loads the record for scope.
func (s *RedisStore) Get(ctx context.Context, scope string) (*Record, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+scope).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read idempotency record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode idempotency record: %w", err)
	}
	return &rec, nil
}

// Put stores rec with SET NX so the first writer wins.
func (s *RedisStore) Put(ctx context.Context, rec *Record, ttl time.Duration) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode idempotency record: %w", err)
	}
	ok, err := s.client.SetNX(ctx, redisKeyPrefix+rec.Scope, data, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store idempotency record: %w", err)
	}
	if !ok {
		return ErrKeyExists
	}
	return nil
}
