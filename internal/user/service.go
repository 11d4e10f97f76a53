package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/onnwee/newsai/internal/validate"
)

// Service implements account registration, login and admin bootstrap.
type Service struct {
	users  Repository
	logger *slog.Logger
}

// NewService creates a new user Service.
func NewService(users Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, logger: logger}
}

// Register creates a regular user account.
// Returns a validate error for a malformed email, ErrPasswordTooShort, ErrPasswordTooLong or ErrEmailTaken.
func (s *Service) Register(ctx context.Context, email, password, name string) (*User, error) {
	return s.create(ctx, email, password, name, RoleUser)
}

func (s *Service) create(ctx context.Context, email, password, name, role string) (*User, error) {
	normalized, err := validate.Email(email)
	if err != nil {
		return nil, err
	}
	name, err = validate.Label(name)
	if err != nil {
		return nil, fmt.Errorf("invalid name: %w", err)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        normalized,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", u.ID),
		slog.String("role", u.Role))
	return u, nil
}

// Authenticate returns the user matching the credentials or ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// EnsureAdmin creates an admin account unless one already exists for email.
// An existing account is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) (*User, error) {
	existing, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err == nil {
		if !existing.IsAdmin() {
			s.logger.WarnContext(ctx, "bootstrap admin email belongs to a non-admin account",
				slog.Int64("user_id", existing.ID))
		}
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	if name == "" {
		name = "Administrator"
	}
	return s.create(ctx, email, password, name, RoleAdmin)
}
