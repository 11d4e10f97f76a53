package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{db: db, logger: logger}
}

// Create inserts a user. Returns ErrEmailTaken when the email is already registered.
func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	u.Email = strings.ToLower(u.Email)
	if u.Role == "" {
		u.Role = RoleUser
	}

	query := `
		INSERT INTO users (email, password_hash, name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.Name, u.Role).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		r.logger.Error("failed to insert user",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, role, created_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail retrieves a user by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, role, created_at FROM users WHERE email = $1`,
		strings.ToLower(email))
	return scanUser(row)
}

// List returns all users ordered by ID.
func (r *PostgresRepository) List(ctx context.Context) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, password_hash, name, role, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// Count returns the number of users.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// PostgresPreferenceRepository implements PreferenceRepository using PostgreSQL.
type PostgresPreferenceRepository struct {
	db *sql.DB
}

// NewPostgresPreferenceRepository creates a new PostgresPreferenceRepository.
func NewPostgresPreferenceRepository(db *sql.DB) *PostgresPreferenceRepository {
	return &PostgresPreferenceRepository{db: db}
}

// Get returns stored preferences, or empty preferences when the user has none.
func (r *PostgresPreferenceRepository) Get(ctx context.Context, userID int64) (*Preferences, error) {
	var interests, sources string
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT interests, preferred_sources, updated_at FROM user_preferences WHERE user_id = $1`,
		userID).Scan(&interests, &sources, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &Preferences{UserID: userID, Interests: []string{}, PreferredSources: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return &Preferences{
		UserID:           userID,
		Interests:        splitLabels(interests),
		PreferredSources: splitLabels(sources),
		UpdatedAt:        updatedAt,
	}, nil
}

// Upsert creates or replaces the preferences row for the user.
func (r *PostgresPreferenceRepository) Upsert(ctx context.Context, p *Preferences) error {
	p.Interests = normalizeLabels(p.Interests)
	p.PreferredSources = normalizeLabels(p.PreferredSources)

	query := `
		INSERT INTO user_preferences (user_id, interests, preferred_sources, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET interests = EXCLUDED.interests,
			preferred_sources = EXCLUDED.preferred_sources,
			updated_at = NOW()
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.UserID, joinLabels(p.Interests), joinLabels(p.PreferredSources)).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}
	return nil
}
