package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/onnwee/newsai/internal/article"
	"github.com/onnwee/newsai/internal/interaction"
	"github.com/onnwee/newsai/internal/middleware"
	"github.com/onnwee/newsai/internal/provider"
	"github.com/onnwee/newsai/internal/ranking"
)

// defaultLiveQuery is used for live fetches without a search or category.
const defaultLiveQuery = "news"

// LiveFetcher returns ranked live articles. *provider.Aggregator implements it.
type LiveFetcher interface {
	Fetch(ctx context.Context, query, category string) ([]provider.Item, error)
}

// ArticleResult is a catalog search hit with its relevance score. Hits that
// matched only on tags score 0 and still carry the field. Unsearched
// listings return plain articles.
type ArticleResult struct {
	*article.Article
	RelevanceScore int `json:"relevance_score"`
}

// ArticleHandlers serves the article listing and detail endpoints.
type ArticleHandlers struct {
	articles article.Repository
	reads    interaction.Repository
	live     LiveFetcher
	expander *ranking.Expander
	scorer   *ranking.Scorer
}

// NewArticleHandlers creates a new ArticleHandlers instance. live may be nil,
// in which case fetch_live requests return 503.
func NewArticleHandlers(articles article.Repository, reads interaction.Repository, live LiveFetcher, expander *ranking.Expander, scorer *ranking.Scorer) *ArticleHandlers {
	if expander == nil {
		expander = ranking.NewExpander(nil)
	}
	return &ArticleHandlers{
		articles: articles,
		reads:    reads,
		live:     live,
		expander: expander,
		scorer:   scorer,
	}
}

// ListArticles handles GET /api/articles.
//
// Query parameters: category, search, fetch_live. With fetch_live=true the
// live providers are queried with search, falling back to category and then
// "news". Otherwise the local catalog is searched with the expanded terms
// and, when search is set, results are ranked by relevance with ties kept in
// published order.
func (h *ArticleHandlers) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	search := strings.TrimSpace(q.Get("search"))

	if strings.EqualFold(q.Get("fetch_live"), "true") {
		h.listLive(w, r, search, category)
		return
	}

	filter := article.Filter{Category: category}
	if search != "" {
		expanded := h.expander.Expand(search)
		filter.Terms = ranking.Terms(expanded)
		slog.DebugContext(r.Context(), "expanded catalog search",
			slog.String("search", search),
			slog.String("expanded", expanded))
	}

	found, err := h.articles.Search(r.Context(), filter)
	if err != nil {
		writeInternalError(w, r, err, "Failed to search articles")
		return
	}

	if search == "" {
		if found == nil {
			found = []*article.Article{}
		}
		WriteJSON(w, r.Context(), http.StatusOK, found)
		return
	}

	results := make([]ArticleResult, 0, len(found))
	for _, ranked := range ranking.RankItems(h.scorer, found, filter.Terms, (*article.Article).Candidate) {
		results = append(results, ArticleResult{Article: ranked.Item, RelevanceScore: ranked.Score})
	}
	WriteJSON(w, r.Context(), http.StatusOK, results)
}

func (h *ArticleHandlers) listLive(w http.ResponseWriter, r *http.Request, search, category string) {
	if h.live == nil {
		WriteError(w, r.Context(), http.StatusServiceUnavailable, ErrCodeUnavailable, "Live news is not configured")
		return
	}

	query := search
	if query == "" {
		query = category
	}
	if query == "" {
		query = defaultLiveQuery
	}

	items, err := h.live.Fetch(r.Context(), query, category)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			WriteError(w, r.Context(), http.StatusServiceUnavailable, ErrCodeUnavailable, "Live fetch was cancelled")
			return
		}
		writeInternalError(w, r, err, "Failed to fetch live articles")
		return
	}
	if items == nil {
		items = []provider.Item{}
	}
	WriteJSON(w, r.Context(), http.StatusOK, items)
}

// GetArticle handles GET /api/articles/{id} and records the read in the
// caller's reading history. A failed history write does not fail the request.
func (h *ArticleHandlers) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Article ID must be a positive integer")
		return
	}

	a, err := h.articles.GetByID(r.Context(), id)
	if errors.Is(err, article.ErrNotFound) {
		WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "Article not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, err, "Failed to load article")
		return
	}

	if userID := middleware.GetUserID(r.Context()); userID != 0 && h.reads != nil {
		read := &interaction.Read{UserID: userID, ArticleID: a.ID}
		if err := h.reads.RecordRead(r.Context(), read); err != nil {
			slog.WarnContext(r.Context(), "failed to record read",
				slog.Int64("article_id", a.ID),
				slog.String("error", err.Error()))
		}
	}

	WriteJSON(w, r.Context(), http.StatusOK, a)
}
