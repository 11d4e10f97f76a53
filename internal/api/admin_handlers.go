package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/onnwee/newsai/internal/article"
	"github.com/onnwee/newsai/internal/audit"
	"github.com/onnwee/newsai/internal/interaction"
	"github.com/onnwee/newsai/internal/middleware"
	"github.com/onnwee/newsai/internal/user"
	"github.com/onnwee/newsai/internal/validate"
)

// Article body length limits for admin writes.
const (
	maxDescriptionLength = 2000
	maxContentLength     = 50000
	maxTagsLength        = 500
)

// Audit listing page sizes.
const (
	defaultAuditLimit = 100
	maxAuditLimit     = 500
)

// CreateArticleRequest is the body of POST /api/admin/articles.
type CreateArticleRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	URL         string     `json:"url"`
	ImageURL    string     `json:"image_url"`
	Category    string     `json:"category"`
	Tags        string     `json:"tags"`
	Source      string     `json:"source"`
	Author      string     `json:"author"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// UpdateArticleRequest is the body of PUT /api/admin/articles. Omitted fields
// are left unchanged.
type UpdateArticleRequest struct {
	ID int64 `json:"id"`
	article.Update
}

// CreatedResponse confirms a created resource.
type CreatedResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// StatsResponse is the body of GET /api/admin/stats.
type StatsResponse struct {
	TotalUsers        int `json:"total_users"`
	TotalArticles     int `json:"total_articles"`
	TotalReads        int `json:"total_reads"`
	TotalInteractions int `json:"total_interactions"`
}

// AdminHandlers serves the admin-only catalog, user, stats and audit endpoints.
type AdminHandlers struct {
	articles     article.Repository
	users        user.Repository
	interactions interaction.Repository
	auditLog     audit.Repository
	recorder     *audit.Recorder
}

// NewAdminHandlers creates a new AdminHandlers instance. A nil auditLog
// disables the audit trail.
func NewAdminHandlers(articles article.Repository, users user.Repository, interactions interaction.Repository, auditLog audit.Repository) *AdminHandlers {
	h := &AdminHandlers{articles: articles, users: users, interactions: interactions, auditLog: auditLog}
	if auditLog != nil {
		h.recorder = audit.NewRecorder(auditLog, slog.Default())
	}
	return h
}

// ListArticles handles GET /api/admin/articles, newest first.
func (h *AdminHandlers) ListArticles(w http.ResponseWriter, r *http.Request) {
	list, err := h.articles.List(r.Context())
	if err != nil {
		writeInternalError(w, r, err, "Failed to list articles")
		return
	}
	if list == nil {
		list = []*article.Article{}
	}
	WriteJSON(w, r.Context(), http.StatusOK, list)
}

// CreateArticle handles POST /api/admin/articles. The author defaults to the
// admin's display name.
func (h *AdminHandlers) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req CreateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := req.toArticle()
	if err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	if a.Author == "" {
		if admin, err := h.users.GetByID(r.Context(), middleware.GetUserID(r.Context())); err == nil {
			a.Author = admin.Name
		}
	}

	if err := h.articles.Create(r.Context(), a); err != nil {
		if errors.Is(err, article.ErrTitleMissing) {
			WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "title is required")
			return
		}
		writeInternalError(w, r, err, "Failed to create article")
		return
	}

	slog.InfoContext(r.Context(), "article created",
		slog.Int64("article_id", a.ID),
		slog.Int64("user_id", middleware.GetUserID(r.Context())))
	h.recorder.Record(r, audit.EntityArticle, idString(a.ID), audit.ActionCreateArticle, audit.OutcomeSuccess)
	WriteJSON(w, r.Context(), http.StatusCreated, CreatedResponse{Message: "Article created", ID: a.ID})
}

// UpdateArticle handles PUT /api/admin/articles. The article ID is taken from
// the body, or from ?id= when the body has none.
func (h *AdminHandlers) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	var req UpdateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := req.ID
	if id == 0 {
		parsed, ok := queryID(w, r)
		if !ok {
			return
		}
		id = parsed
	}
	if err := validateUpdate(&req.Update); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	updated, err := h.articles.Update(r.Context(), id, req.Update)
	switch {
	case errors.Is(err, article.ErrNotFound):
		h.recorder.Record(r, audit.EntityArticle, idString(id), audit.ActionUpdateArticle, audit.OutcomeFailure)
		WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "Article not found")
	case errors.Is(err, article.ErrTitleMissing):
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "title must not be empty")
	case err != nil:
		writeInternalError(w, r, err, "Failed to update article")
	default:
		h.recorder.Record(r, audit.EntityArticle, idString(id), audit.ActionUpdateArticle, audit.OutcomeSuccess)
		WriteJSON(w, r.Context(), http.StatusOK, updated)
	}
}

// DeleteArticle handles DELETE /api/admin/articles?id=.
func (h *AdminHandlers) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(w, r)
	if !ok {
		return
	}

	err := h.articles.Delete(r.Context(), id)
	switch {
	case errors.Is(err, article.ErrNotFound):
		h.recorder.Record(r, audit.EntityArticle, idString(id), audit.ActionDeleteArticle, audit.OutcomeFailure)
		WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "Article not found")
	case err != nil:
		writeInternalError(w, r, err, "Failed to delete article")
	default:
		slog.InfoContext(r.Context(), "article deleted", slog.Int64("article_id", id))
		h.recorder.Record(r, audit.EntityArticle, idString(id), audit.ActionDeleteArticle, audit.OutcomeSuccess)
		WriteJSON(w, r.Context(), http.StatusOK, MessageResponse{Message: "Article deleted"})
	}
}

// ListUsers handles GET /api/admin/users. Password hashes are never encoded.
func (h *AdminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		writeInternalError(w, r, err, "Failed to list users")
		return
	}
	if list == nil {
		list = []*user.User{}
	}
	h.recorder.Record(r, audit.EntityUser, "all", audit.ActionListUsers, audit.OutcomeSuccess)
	WriteJSON(w, r.Context(), http.StatusOK, list)
}

// Stats handles GET /api/admin/stats. The four counts are read concurrently.
func (h *AdminHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	var stats StatsResponse
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		stats.TotalUsers, err = h.users.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalArticles, err = h.articles.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalReads, err = h.interactions.CountReads(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalInteractions, err = h.interactions.CountInteractions(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		writeInternalError(w, r, err, "Failed to load stats")
		return
	}
	h.recorder.Record(r, audit.EntityStats, "all", audit.ActionViewStats, audit.OutcomeSuccess)
	WriteJSON(w, r.Context(), http.StatusOK, stats)
}

// ListAudit handles GET /api/admin/audit, newest first. Optional filters:
// entity_type with entity_id, and limit (default 100, at most 500).
func (h *AdminHandlers) ListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := defaultAuditLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAuditLimit)
	}
	entityType, entityID := q.Get("entity_type"), q.Get("entity_id")
	if (entityType == "") != (entityID == "") {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "entity_type and entity_id must be given together")
		return
	}

	if h.auditLog == nil {
		WriteJSON(w, r.Context(), http.StatusOK, []*audit.Entry{})
		return
	}

	var (
		entries []*audit.Entry
		err     error
	)
	if entityType != "" {
		entries, err = h.auditLog.QueryByEntity(r.Context(), entityType, entityID, limit)
	} else {
		entries, err = h.auditLog.List(r.Context(), limit)
	}
	if err != nil {
		writeInternalError(w, r, err, "Failed to load audit log")
		return
	}
	if entries == nil {
		entries = []*audit.Entry{}
	}
	WriteJSON(w, r.Context(), http.StatusOK, entries)
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

// queryID parses the ?id= parameter. On failure it writes a 400 response.
func queryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Article ID must be a positive integer")
		return 0, false
	}
	return id, true
}

// toArticle validates the request and converts it to a new article.
func (req *CreateArticleRequest) toArticle() (*article.Article, error) {
	var a article.Article
	var err error
	if a.Title, err = validate.ArticleTitle(req.Title); err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}
	if a.Description, err = validate.Text(req.Description, maxDescriptionLength); err != nil {
		return nil, fmt.Errorf("description: %w", err)
	}
	if a.Content, err = validate.Text(req.Content, maxContentLength); err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	if a.Tags, err = validate.Text(req.Tags, maxTagsLength); err != nil {
		return nil, fmt.Errorf("tags: %w", err)
	}
	if a.Category, err = validate.Label(req.Category); err != nil {
		return nil, fmt.Errorf("category: %w", err)
	}
	if a.Source, err = validate.Label(req.Source); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if a.Author, err = validate.Label(req.Author); err != nil {
		return nil, fmt.Errorf("author: %w", err)
	}
	if a.URL, err = validate.ArticleURL(req.URL); err != nil {
		return nil, fmt.Errorf("url: %w", err)
	}
	if a.ImageURL, err = validate.ArticleURL(req.ImageURL); err != nil {
		return nil, fmt.Errorf("image_url: %w", err)
	}
	if req.PublishedAt != nil {
		a.PublishedAt = req.PublishedAt.UTC()
	}
	return &a, nil
}

// validateUpdate validates and trims the fields present in u.
func validateUpdate(u *article.Update) error {
	fields := []struct {
		name  string
		value *string
		check func(string) (string, error)
	}{
		{"title", u.Title, validate.ArticleTitle},
		{"description", u.Description, func(s string) (string, error) { return validate.Text(s, maxDescriptionLength) }},
		{"content", u.Content, func(s string) (string, error) { return validate.Text(s, maxContentLength) }},
		{"tags", u.Tags, func(s string) (string, error) { return validate.Text(s, maxTagsLength) }},
		{"category", u.Category, validate.Label},
		{"source", u.Source, validate.Label},
		{"author", u.Author, validate.Label},
		{"url", u.URL, validate.ArticleURL},
		{"image_url", u.ImageURL, validate.ArticleURL},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		v, err := f.check(*f.value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = v
	}
	return nil
}
