package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/onnwee/newsai/internal/interaction"
	"github.com/onnwee/newsai/internal/middleware"
)

// InteractionRequest is the body of POST /api/interactions. Live articles
// have no catalog ID, so article_id falls back to id and then to 0.
type InteractionRequest struct {
	ArticleID *int64 `json:"article_id"`
	ID        *int64 `json:"id"`
	Type      string `json:"type"`
}

// InteractionSummary echoes a recorded interaction.
type InteractionSummary struct {
	UserID    int64  `json:"user_id"`
	ArticleID int64  `json:"article_id"`
	Type      string `json:"type"`
}

// InteractionResponse confirms a recorded interaction.
type InteractionResponse struct {
	Message     string             `json:"message"`
	Success     bool               `json:"success"`
	Interaction InteractionSummary `json:"interaction"`
}

// InteractionHandlers records and lists the caller's article interactions.
type InteractionHandlers struct {
	repo interaction.Repository
}

// NewInteractionHandlers creates a new InteractionHandlers instance.
func NewInteractionHandlers(repo interaction.Repository) *InteractionHandlers {
	return &InteractionHandlers{repo: repo}
}

// RecordInteraction handles POST /api/interactions.
func (h *InteractionHandlers) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req InteractionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	typ, err := interaction.NormalizeType(req.Type)
	if errors.Is(err, interaction.ErrInvalidType) {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation,
			"type must be one of like, bookmark, share, view")
		return
	}

	var articleID int64
	switch {
	case req.ArticleID != nil && *req.ArticleID != 0:
		articleID = *req.ArticleID
	case req.ID != nil:
		articleID = *req.ID
	}
	if articleID < 0 {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "article_id must not be negative")
		return
	}

	rec := &interaction.Interaction{
		UserID:    middleware.GetUserID(r.Context()),
		ArticleID: articleID,
		Type:      typ,
	}
	if err := h.repo.Record(r.Context(), rec); err != nil {
		writeInternalError(w, r, err, "Error recording interaction")
		return
	}

	slog.InfoContext(r.Context(), "interaction recorded",
		slog.Int64("user_id", rec.UserID),
		slog.Int64("article_id", rec.ArticleID),
		slog.String("type", rec.Type))

	WriteJSON(w, r.Context(), http.StatusOK, InteractionResponse{
		Message: "Interaction recorded successfully",
		Success: true,
		Interaction: InteractionSummary{
			UserID:    rec.UserID,
			ArticleID: rec.ArticleID,
			Type:      rec.Type,
		},
	})
}

// ListInteractions handles GET /api/interactions, newest first.
func (h *InteractionHandlers) ListInteractions(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeInternalError(w, r, err, "Failed to list interactions")
		return
	}
	if list == nil {
		list = []*interaction.Interaction{}
	}
	WriteJSON(w, r.Context(), http.StatusOK, list)
}
