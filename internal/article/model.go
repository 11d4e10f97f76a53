// Package article provides the article model and catalog repositories
// backing local search and administrative CRUD.
package article

import (
	"errors"
	"time"

	"github.com/onnwee/newsai/internal/ranking"
)

// Common errors for article operations.
var (
	ErrNotFound     = errors.New("article not found")
	ErrTitleMissing = errors.New("article title is required")
)

// API source values recorded on stored articles.
const (
	SourceLocal    = "local"
	SourceNewsAPI  = "newsapi"
	SourceGuardian = "guardian"
)

// Defaults applied when an article is created without these fields.
const (
	DefaultCategory = "General"
	DefaultSource   = "Admin"
)

// AllCategories is the category filter value that disables category filtering.
const AllCategories = "All"

// Search limits.
const (
	DefaultSearchLimit = 50
	MaxSearchTerms     = 5
)

// Article is a news article in the local catalog.
type Article struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url"`
	Source      string    `json:"source"`
	Author      string    `json:"author"`
	Category    string    `json:"category"`
	Tags        string    `json:"tags"` // comma-separated
	APISource   string    `json:"api_source"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Candidate returns the ranking view of the article.
func (a *Article) Candidate() ranking.Candidate {
	return ranking.Candidate{
		Title:       &a.Title,
		Description: &a.Description,
		Content:     &a.Content,
	}
}

// applyDefaults fills in default values for a new article.
func (a *Article) applyDefaults(now time.Time) {
	if a.Category == "" {
		a.Category = DefaultCategory
	}
	if a.Source == "" {
		a.Source = DefaultSource
	}
	if a.APISource == "" {
		a.APISource = SourceLocal
	}
	if a.PublishedAt.IsZero() {
		a.PublishedAt = now
	}
	a.CreatedAt = now
}

// Update holds a partial article update. Nil fields are left unchanged.
type Update struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Content     *string `json:"content,omitempty"`
	Category    *string `json:"category,omitempty"`
	Tags        *string `json:"tags,omitempty"`
	Source      *string `json:"source,omitempty"`
	Author      *string `json:"author,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	URL         *string `json:"url,omitempty"`
}

// apply copies the non-nil fields of u onto a.
func (u Update) apply(a *Article) {
	if u.Title != nil {
		a.Title = *u.Title
	}
	if u.Description != nil {
		a.Description = *u.Description
	}
	if u.Content != nil {
		a.Content = *u.Content
	}
	if u.Category != nil {
		a.Category = *u.Category
	}
	if u.Tags != nil {
		a.Tags = *u.Tags
	}
	if u.Source != nil {
		a.Source = *u.Source
	}
	if u.Author != nil {
		a.Author = *u.Author
	}
	if u.ImageURL != nil {
		a.ImageURL = *u.ImageURL
	}
	if u.URL != nil {
		a.URL = *u.URL
	}
}

// Filter selects articles for local search.
type Filter struct {
	// Category restricts results to one category. Empty or AllCategories disables it.
	Category string
	// Terms are matched as substrings of title, description or tags.
	// Only the first MaxSearchTerms terms are used. An article matches if any term does.
	Terms []string
	// Limit caps the number of results. Zero means DefaultSearchLimit.
	Limit int
}

// normalized returns the filter with the term cap and default limit applied.
func (f Filter) normalized() Filter {
	if f.Category == AllCategories {
		f.Category = ""
	}
	if len(f.Terms) > MaxSearchTerms {
		f.Terms = f.Terms[:MaxSearchTerms]
	}
	if f.Limit <= 0 {
		f.Limit = DefaultSearchLimit
	}
	return f
}
