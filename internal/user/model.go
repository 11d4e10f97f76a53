// Package user provides user accounts, password handling and reading preferences.
package user

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Role values.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Common errors for user operations.
var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrPasswordTooLong    = errors.New("password is too long")
)

// User is a registered account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Preferences holds a user's reading interests and preferred sources.
type Preferences struct {
	UserID           int64     `json:"-"`
	Interests        []string  `json:"interests"`
	PreferredSources []string  `json:"preferred_sources"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
}

// normalizeLabels NFKC-normalizes, trims and de-duplicates labels, preserving order.
// Commas are stripped because lists are persisted comma-joined.
func normalizeLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		label = strings.ReplaceAll(label, ",", " ")
		label = strings.Join(strings.Fields(label), " ")
		label = norm.NFKC.String(label)
		if label == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}

// joinLabels renders labels for storage.
func joinLabels(labels []string) string {
	return strings.Join(labels, ",")
}

// splitLabels parses stored labels. An empty string yields an empty slice.
func splitLabels(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
