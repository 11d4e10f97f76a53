package interaction

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

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

// Record inserts an interaction.
func (r *PostgresRepository) Record(ctx context.Context, i *Interaction) error {
	t, err := NormalizeType(i.Type)
	if err != nil {
		return err
	}
	i.Type = t

	query := `
		INSERT INTO user_interactions (user_id, article_id, interaction_type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, query, i.UserID, i.ArticleID, i.Type).Scan(&i.ID, &i.CreatedAt); err != nil {
		r.logger.Error("failed to record interaction",
			slog.String("error", err.Error()),
			slog.Int64("user_id", i.UserID),
			slog.Int64("article_id", i.ArticleID))
		return fmt.Errorf("failed to record interaction: %w", err)
	}
	return nil
}

// RecordRead inserts a reading history entry.
func (r *PostgresRepository) RecordRead(ctx context.Context, rd *Read) error {
	query := `
		INSERT INTO reading_history (user_id, article_id)
		VALUES ($1, $2)
		RETURNING id, read_at
	`
	if err := r.db.QueryRowContext(ctx, query, rd.UserID, rd.ArticleID).Scan(&rd.ID, &rd.ReadAt); err != nil {
		return fmt.Errorf("failed to record read: %w", err)
	}
	return nil
}

// CountInteractions returns the number of rows in user_interactions.
func (r *PostgresRepository) CountInteractions(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM user_interactions`)
}

// CountReads returns the number of rows in reading_history.
func (r *PostgresRepository) CountReads(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM reading_history`)
}

func (r *PostgresRepository) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}

// ListByUser returns the user's interactions, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*Interaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, article_id, interaction_type, created_at
		FROM user_interactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	var out []*Interaction
	for rows.Next() {
		var i Interaction
		if err := rows.Scan(&i.ID, &i.UserID, &i.ArticleID, &i.Type, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		out = append(out, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interactions: %w", err)
	}
	return out, nil
}
