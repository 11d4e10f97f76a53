package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// NewsAPI defaults.
const (
	NewsAPIBaseURL  = "https://newsapi.org/v2/everything"
	NewsAPIPageSize = 50
)

// removedTitle marks articles withdrawn by NewsAPI.
const removedTitle = "[Removed]"

// newsAPIKeyHeader carries the key so it never appears in request URLs.
const newsAPIKeyHeader = "X-Api-Key"

// defaultImages are used when an article has no image, keyed by lowercased category.
var defaultImages = map[string]string{
	"technology":    "https://images.unsplash.com/photo-1518770660439-4636190af475?w=400&h=200&fit=crop",
	"health":        "https://images.unsplash.com/photo-1505751172876-fa1923c5c528?w=400&h=200&fit=crop",
	"business":      "https://images.unsplash.com/photo-1486406146926-c627a92ad1ab?w=400&h=200&fit=crop",
	"science":       "https://images.unsplash.com/photo-1532094349884-543bc11b234d?w=400&h=200&fit=crop",
	"sports":        "https://images.unsplash.com/photo-1461896836934-ffe607ba8211?w=400&h=200&fit=crop",
	"politics":      "https://images.unsplash.com/photo-1529107386315-e1a2ed48a620?w=400&h=200&fit=crop",
	"entertainment": "https://images.unsplash.com/photo-1514306191717-452ec28c7814?w=400&h=200&fit=crop",
}

const fallbackImage = "https://images.unsplash.com/photo-1504711434969-e33886168f5c?w=400&h=200&fit=crop"

// NewsAPIClient fetches articles from the NewsAPI "everything" endpoint.
type NewsAPIClient struct {
	apiKey     string
	baseURL    string
	pageSize   int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewsAPIOption configures a NewsAPIClient.
type NewsAPIOption func(*NewsAPIClient)

// WithNewsAPIBaseURL overrides the endpoint, mainly for tests.
func WithNewsAPIBaseURL(u string) NewsAPIOption {
	return func(c *NewsAPIClient) { c.baseURL = u }
}

// WithNewsAPIHTTPClient overrides the HTTP client.
func WithNewsAPIHTTPClient(hc *http.Client) NewsAPIOption {
	return func(c *NewsAPIClient) { c.httpClient = hc }
}

// NewNewsAPIClient creates a client. An empty apiKey disables fetching.
func NewNewsAPIClient(apiKey string, logger *slog.Logger, opts ...NewsAPIOption) *NewsAPIClient {
	if logger == nil {
		logger = slog.Default()
	}
	c := &NewsAPIClient{
		apiKey:     apiKey,
		baseURL:    NewsAPIBaseURL,
		pageSize:   NewsAPIPageSize,
		httpClient: defaultHTTPClient(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns "newsapi".
func (c *NewsAPIClient) Name() string { return NameNewsAPI }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Author      string `json:"author"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
		Content     string `json:"content"`
	} `json:"articles"`
}

// Fetch queries NewsAPI with the (already expanded) query.
// Transport, status and decode failures are returned as errors; a missing key yields no items.
func (c *NewsAPIClient) Fetch(ctx context.Context, query string, opts FetchOptions) ([]Item, error) {
	if c.apiKey == "" {
		c.logger.DebugContext(ctx, "newsapi key not configured, skipping")
		return []Item{}, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")

	var body newsAPIResponse
	header := http.Header{newsAPIKeyHeader: []string{c.apiKey}}
	if err := getJSON(ctx, c.httpClient, c.baseURL+"?"+params.Encode(), header, &body); err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}

	category := opts.Category
	if category == "" {
		category = "General"
	}
	image, ok := defaultImages[strings.ToLower(category)]
	if !ok {
		image = fallbackImage
	}

	items := make([]Item, 0, len(body.Articles))
	for _, a := range body.Articles {
		if a.Title == "" || a.Title == removedTitle {
			continue
		}
		item := Item{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			Source:      a.Source.Name,
			Author:      a.Author,
			Category:    category,
			Tags:        opts.Tags,
			APISource:   NameNewsAPI,
			PublishedAt: a.PublishedAt,
		}
		if item.ImageURL == "" {
			item.ImageURL = image
		}
		if item.Source == "" {
			item.Source = "NewsAPI"
		}
		if item.Author == "" {
			item.Author = "Unknown"
		}
		if item.PublishedAt == "" {
			item.PublishedAt = nowRFC3339()
		}
		items = append(items, item)
	}
	return items, nil
}

// getJSON performs a GET request and decodes a 200 response into out.
// Returned errors never contain the query string, which may carry an API key.
func getJSON(ctx context.Context, hc *http.Client, rawURL string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request to %s", redactQuery(rawURL))
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("request failed: %s %s: %w", urlErr.Op, redactQuery(urlErr.URL), urlErr.Err)
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// redactQuery drops the query string and fragment of rawURL.
func redactQuery(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery, u.Fragment, u.User = "", "", nil
	return u.String()
}
