// Package provider fetches live articles from third-party news APIs and
// merges them into a single relevance-ranked list.
package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/onnwee/newsai/internal/ranking"
)

// DefaultTimeout bounds a single provider request.
const DefaultTimeout = 10 * time.Second

// Provider names, also used as the api_source of fetched items.
const (
	NameNewsAPI  = "newsapi"
	NameGuardian = "guardian"
)

// Item is a live article returned by a provider. Live items have no catalog ID.
type Item struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Content        string `json:"content"`
	URL            string `json:"url"`
	ImageURL       string `json:"image_url"`
	Source         string `json:"source"`
	Author         string `json:"author"`
	Category       string `json:"category"`
	Tags           string `json:"tags"`
	APISource      string `json:"api_source"`
	PublishedAt    string `json:"published_at"`
	RelevanceScore int    `json:"relevance_score"`
}

// Candidate returns the ranking view of the item.
func (i Item) Candidate() ranking.Candidate {
	return ranking.Candidate{
		Title:          ranking.StringPtr(i.Title),
		Description:    ranking.StringPtr(i.Description),
		Content:        ranking.StringPtr(i.Content),
		RelevanceScore: i.RelevanceScore,
	}
}

// FetchOptions carries per-request parameters.
type FetchOptions struct {
	// Category labels fetched items where the provider has no section of its own.
	Category string
	// Tags is stored on every item, normally the user's raw query.
	Tags string
}

// Provider is a live news source.
// Implementations return an empty list, never an error, when unconfigured.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, query string, opts FetchOptions) ([]Item, error)
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
