// Package idempotency replays the stored response of a write request when a
// client retries it with the same Idempotency-Key header.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

// HeaderKey is the request header carrying the client's key.
const HeaderKey = "Idempotency-Key"

// HeaderReplayed marks responses served from the store.
const HeaderReplayed = "Idempotent-Replayed"

// MaxKeyLength bounds client keys.
const MaxKeyLength = 64

// DefaultTTL is how long completed responses are kept.
const DefaultTTL = 24 * time.Hour

var (
	ErrNotFound   = errors.New("idempotency key not found")
	ErrKeyExists  = errors.New("idempotency key already exists")
	ErrInvalidKey = errors.New("idempotency key must be 1 to 64 printable ASCII characters")
)

// Record is a completed response stored under a scoped key.
type Record struct {
	Scope       string    `json:"scope"`
	RequestHash string    `json:"request_hash"`
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists records. Put fails with ErrKeyExists when the scope is taken.
type Store interface {
	Get(ctx context.Context, scope string) (*Record, error)
	Put(ctx context.Context, rec *Record, ttl time.Duration) error
}

// ValidateKey accepts 1 to MaxKeyLength printable ASCII characters.
func ValidateKey(key string) error {
	if key == "" || len(key) > MaxKeyLength {
		return ErrInvalidKey
	}
	for i := 0; i < len(key); i++ {
		if key[i] < 0x21 || key[i] > 0x7e {
			return ErrInvalidKey
		}
	}
	return nil
}

// Scope namespaces a client key by user, method and route, so two users
// cannot collide on the same key.
func Scope(userID int64, method, route, key string) string {
	return strconv.FormatInt(userID, 10) + ":" + method + ":" + route + ":" + key
}

// HashRequest fingerprints a request body to detect key reuse with a
// different payload.
func HashRequest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
