package article

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/onnwee/newsai/internal/tracing"
)

// articleColumns is the column list shared by all SELECT queries.
const articleColumns = `id, title, description, content, url, image_url, source, author,
	category, tags, api_source, published_at, created_at`

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
	return &PostgresRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new article and sets its ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, a *Article) (err error) {
	if strings.TrimSpace(a.Title) == "" {
		return ErrTitleMissing
	}
	ctx, end := tracing.StartDBSpan(ctx, "articles", tracing.DBOperationInsert)
	defer func() { end(err) }()

	a.applyDefaults(time.Now().UTC())

	query := `
		INSERT INTO articles (title, description, content, url, image_url, source, author,
			category, tags, api_source, published_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	err = r.db.QueryRowContext(ctx, query,
		a.Title, a.Description, a.Content, a.URL, a.ImageURL, a.Source, a.Author,
		a.Category, a.Tags, a.APISource, a.PublishedAt, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		r.logger.Error("failed to insert article",
			slog.String("error", err.Error()),
			slog.String("title", a.Title))
		return fmt.Errorf("failed to insert article: %w", err)
	}
	return nil
}

// Update applies a partial update inside a transaction.
func (r *PostgresRepository) Update(ctx context.Context, id int64, u Update) (*Article, error) {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return nil, ErrTitleMissing
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.logger.Warn("failed to rollback transaction",
				slog.String("error", err.Error()))
		}
	}()

	row := tx.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1 FOR UPDATE`, id)
	a, err := scanArticle(row)
	if err != nil {
		return nil, err
	}
	u.apply(a)

	_, err = tx.ExecContext(ctx, `
		UPDATE articles
		SET title = $1, description = $2, content = $3, category = $4, tags = $5,
			source = $6, author = $7, image_url = $8, url = $9
		WHERE id = $10
	`, a.Title, a.Description, a.Content, a.Category, a.Tags, a.Source, a.Author, a.ImageURL, a.URL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit article update: %w", err)
	}
	return a, nil
}

// Delete removes an article.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves an article by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Article, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	return scanArticle(row)
}

// List returns all articles ordered by created_at DESC.
func (r *PostgresRepository) List(ctx context.Context) ([]*Article, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+articleColumns+` FROM articles ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return scanArticles(rows)
}

// Search returns articles matching the filter ordered by published_at DESC.
// Terms are matched case-insensitively with ILIKE; LIKE wildcards in terms are escaped.
func (r *PostgresRepository) Search(ctx context.Context, f Filter) (found []*Article, err error) {
	ctx, end := tracing.StartDBSpan(ctx, "articles", tracing.DBOperationQuery)
	defer func() { end(err) }()

	query, args := buildSearchQuery(f.normalized())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search articles: %w", err)
	}
	return scanArticles(rows)
}

// Count returns the number of stored articles.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return n, nil
}

// buildSearchQuery renders the SQL and arguments for a normalized filter.
func buildSearchQuery(f Filter) (string, []any) {
	var (
		where []string
		args  []any
	)

	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	var termClauses []string
	for _, t := range f.Terms {
		if t == "" {
			continue
		}
		args = append(args, "%"+escapeLike(t)+"%")
		n := len(args)
		termClauses = append(termClauses,
			fmt.Sprintf("title ILIKE $%d OR description ILIKE $%d OR tags ILIKE $%d", n, n, n))
	}
	if len(termClauses) > 0 {
		where = append(where, "("+strings.Join(termClauses, " OR ")+")")
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + articleColumns + ` FROM articles`)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	args = append(args, f.Limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY published_at DESC, id DESC LIMIT $%d", len(args)))

	return sb.String(), args
}

// escapeLike escapes LIKE pattern metacharacters using the default backslash escape.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var (
		a                                                         Article
		description, content, url, imageURL, source, author, tags sql.NullString
		category, apiSource                                       sql.NullString
	)
	err := row.Scan(&a.ID, &a.Title, &description, &content, &url, &imageURL, &source, &author,
		&category, &tags, &apiSource, &a.PublishedAt, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan article: %w", err)
	}
	a.Description = description.String
	a.Content = content.String
	a.URL = url.String
	a.ImageURL = imageURL.String
	a.Source = source.String
	a.Author = author.String
	a.Category = category.String
	a.Tags = tags.String
	a.APISource = apiSource.String
	return &a, nil
}

func scanArticles(rows *sql.Rows) ([]*Article, error) {
	defer rows.Close()

	var out []*Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return out, nil
}
