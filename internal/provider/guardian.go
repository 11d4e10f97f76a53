package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// Guardian defaults.
const (
	GuardianBaseURL  = "https://content.guardianapis.com/search"
	GuardianPageSize = 20
)

const guardianPlaceholderImage = "https://via.placeholder.com/400x200?text=News+Article"

// GuardianClient fetches articles from the Guardian content API.
type GuardianClient struct {
	apiKey     string
	baseURL    string
	pageSize   int
	httpClient *http.Client
	logger     *slog.Logger
}

// GuardianOption configures a GuardianClient.
type GuardianOption func(*GuardianClient)

// WithGuardianBaseURL overrides the endpoint, mainly for tests.
func WithGuardianBaseURL(u string) GuardianOption {
	return func(c *GuardianClient) { c.baseURL = u }
}

// WithGuardianHTTPClient overrides the HTTP client.
func WithGuardianHTTPClient(hc *http.Client) GuardianOption {
	return func(c *GuardianClient) { c.httpClient = hc }
}

// NewGuardianClient creates a client. An empty apiKey disables fetching.
func NewGuardianClient(apiKey string, logger *slog.Logger, opts ...GuardianOption) *GuardianClient {
	if logger == nil {
		logger = slog.Default()
	}
	c := &GuardianClient{
		apiKey:     apiKey,
		baseURL:    GuardianBaseURL,
		pageSize:   GuardianPageSize,
		httpClient: defaultHTTPClient(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns "guardian".
func (c *GuardianClient) Name() string { return NameGuardian }

type guardianResponse struct {
	Response struct {
		Status  string `json:"status"`
		Results []struct {
			WebTitle           string `json:"webTitle"`
			WebURL             string `json:"webUrl"`
			SectionName        string `json:"sectionName"`
			WebPublicationDate string `json:"webPublicationDate"`
			Fields             struct {
				Thumbnail string `json:"thumbnail"`
				TrailText string `json:"trailText"`
				BodyText  string `json:"bodyText"`
			} `json:"fields"`
		} `json:"results"`
	} `json:"response"`
}

// Fetch queries the Guardian search endpoint with the (already expanded) query.
func (c *GuardianClient) Fetch(ctx context.Context, query string, opts FetchOptions) ([]Item, error) {
	if c.apiKey == "" {
		c.logger.DebugContext(ctx, "guardian key not configured, skipping")
		return []Item{}, nil
	}

	params := url.Values{}
	params.Set("api-key", c.apiKey)
	params.Set("q", query)
	params.Set("page-size", strconv.Itoa(c.pageSize))
	params.Set("show-fields", "thumbnail,trailText,bodyText")

	var body guardianResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+"?"+params.Encode(), nil, &body); err != nil {
		return nil, fmt.Errorf("guardian: %w", err)
	}

	items := make([]Item, 0, len(body.Response.Results))
	for _, r := range body.Response.Results {
		item := Item{
			Title:       r.WebTitle,
			Description: r.Fields.TrailText,
			Content:     r.Fields.BodyText,
			URL:         r.WebURL,
			ImageURL:    r.Fields.Thumbnail,
			Source:      "The Guardian",
			Author:      "Guardian Staff",
			Category:    r.SectionName,
			Tags:        opts.Tags,
			APISource:   NameGuardian,
			PublishedAt: r.WebPublicationDate,
		}
		if item.Title == "" {
			item.Title = "No Title"
		}
		if item.ImageURL == "" {
			item.ImageURL = guardianPlaceholderImage
		}
		if item.Category == "" {
			item.Category = "General"
		}
		if item.PublishedAt == "" {
			item.PublishedAt = nowRFC3339()
		}
		items = append(items, item)
	}
	return items, nil
}
