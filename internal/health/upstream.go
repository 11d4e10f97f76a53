package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// UpstreamChecker checks that a news provider's API host is reachable.
// Any response below 500 counts as reachable, since provider endpoints
// answer unauthenticated probes with 401.
type UpstreamChecker struct {
	url    string
	client *http.Client
}

// NewUpstreamChecker creates a checker that sends HEAD requests to url.
func NewUpstreamChecker(url string) *UpstreamChecker {
	return &UpstreamChecker{
		url: url,
		client: &http.Client{
			Timeout: 3 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        8,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

// HealthCheck reports an error when the upstream cannot be reached or
// answers with a server error.
func (u *UpstreamChecker) HealthCheck(ctx context.Context) error {
	if u.url == "" {
		return fmt.Errorf("upstream url not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach upstream: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return fmt.Errorf("upstream unhealthy: status code %d", resp.StatusCode)
	}
	return nil
}
