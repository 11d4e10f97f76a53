package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/onnwee/newsai/internal/tracing"
)

// chainLockKey serializes appends so each entry sees its true predecessor.
const chainLockKey = 0x6e657773 // "news"

const entryColumns = `id, user_id, entity_type, entity_id, action, outcome,
	request_id, ip_address, user_agent, previous_hash, created_at`

// PostgresRepository implements Repository on the admin_audit_log table.
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

// Record appends an entry under a transaction-scoped advisory lock.
func (r *PostgresRepository) Record(ctx context.Context, in LogEntry) (_ *Entry, err error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	ctx, end := tracing.StartDBSpan(ctx, "admin_audit_log", tracing.DBOperationInsert)
	defer func() { end(err) }()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.logger.Warn("failed to rollback audit transaction", slog.String("error", err.Error()))
		}
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, chainLockKey); err != nil {
		return nil, fmt.Errorf("failed to lock audit chain: %w", err)
	}

	prevHash := ""
	row := tx.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM admin_audit_log ORDER BY seq DESC LIMIT 1`)
	last, err := scanEntry(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to read last audit entry: %w", err)
	default:
		prevHash = Hash(last)
	}

	e := newEntry(in, prevHash)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO admin_audit_log (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.UserID, e.EntityType, e.EntityID, e.Action, e.Outcome,
		e.RequestID, e.IPAddress, e.UserAgent, e.PreviousHash, e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert audit entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit audit entry: %w", err)
	}
	return e, nil
}

// List returns the most recent entries.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*Entry, error) {
	return r.query(ctx, `SELECT `+entryColumns+` FROM admin_audit_log ORDER BY seq DESC`, limit)
}

// QueryByEntity returns the most recent entries for one entity.
func (r *PostgresRepository) QueryByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*Entry, error) {
	return r.query(ctx, `SELECT `+entryColumns+` FROM admin_audit_log
		WHERE entity_type = $1 AND entity_id = $2 ORDER BY seq DESC`, limit, entityType, entityID)
}

func (r *PostgresRepository) query(ctx context.Context, query string, limit int, args ...any) ([]*Entry, error) {
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	out := []*Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.UserID, &e.EntityType, &e.EntityID, &e.Action, &e.Outcome,
		&e.RequestID, &e.IPAddress, &e.UserAgent, &e.PreviousHash, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}
