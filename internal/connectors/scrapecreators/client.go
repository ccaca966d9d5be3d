// Package scrapecreators is the upstream client for the ScrapeCreators
// TikTok scraping API. It issues authenticated single-shot requests,
// normalizes the provider's inconsistent payload shapes, and classifies
// failures into transient and permanent so callers can make structural
// retry decisions.
package scrapecreators

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/komenta/internal/core/domain"
	"github.com/custodia-labs/komenta/internal/core/ports/driven"
)

const (
	// DefaultBaseURL is the provider's v1 API root.
	DefaultBaseURL = "https://api.scrapecreators.com/v1"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// CommentPageSize is the per-page comment count requested upstream.
	CommentPageSize = 100

	// SearchPageSize is the per-page video count for keyword searches.
	SearchPageSize = 30
)

// Ensure Client implements the port.
var _ driven.CommentSource = (*Client)(nil)

// Config holds the client configuration. The API key is injected here at
// construction; the package keeps no ambient credential state.
type Config struct {
	// APIKey authenticates every request via the x-api-key header (required).
	APIKey string

	// BaseURL overrides the provider API root. Defaults to DefaultBaseURL.
	BaseURL string

	// Timeout is the per-request timeout. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Client is a CommentSource backed by the ScrapeCreators HTTP API.
// Each method performs exactly one outbound request and no retry.
type Client struct {
	http        *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *RateLimiter
}

// NewClient creates a client from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("scrapecreators: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		http:        &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		rateLimiter: NewRateLimiter(),
	}, nil
}

// get performs one authenticated GET and returns the raw body.
// Failures come back as *UpstreamError with the transient flag set for
// network errors and retryable statuses.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("scrapecreators: create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &UpstreamError{Transient: true, Err: err}
	}
	defer resp.Body.Close()

	c.rateLimiter.UpdateFromResponse(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Transient: true, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{
			Status:    resp.StatusCode,
			Body:      truncateBody(body),
			Transient: transientStatus(resp.StatusCode),
		}
	}
	return body, nil
}

// CollectComments walks the comment pages of one video under the given
// budget, retrying transient failures and pacing between pages.
func (c *Client) CollectComments(ctx context.Context, videoURL string, budget domain.FetchBudget) *driven.CommentCollection {
	fetch := func(ctx context.Context, cursor string) (*driven.CommentPage, error) {
		return c.VideoComments(ctx, videoURL, cursor)
	}
	return Paginate(ctx, fetch, budget)
}

// VideoComments fetches one comment page for a video URL.
func (c *Client) VideoComments(ctx context.Context, videoURL, cursor string) (*driven.CommentPage, error) {
	params := url.Values{}
	params.Set("url", videoURL)
	params.Set("count", fmt.Sprint(CommentPageSize))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	body, err := c.get(ctx, "/tiktok/video/comments", params)
	if err != nil {
		return nil, err
	}

	page, err := normalizeCommentPage(body)
	if err != nil {
		return nil, &UpstreamError{Status: http.StatusOK, Body: truncateBody(body), Err: err}
	}
	return page, nil
}

// UserVideos lists up to amount recent videos of an account.
func (c *Client) UserVideos(ctx context.Context, handle string, amount int) ([]domain.Video, error) {
	params := url.Values{}
	params.Set("handle", handle)
	params.Set("amount", fmt.Sprint(amount))

	body, err := c.get(ctx, "/tiktok/profile/videos", params)
	if err != nil {
		return nil, err
	}

	videos, err := normalizeVideoList(body)
	if err != nil {
		return nil, &UpstreamError{Status: http.StatusOK, Body: truncateBody(body), Err: err}
	}
	return videos, nil
}

// SearchVideos fetches one page of keyword search results.
func (c *Client) SearchVideos(ctx context.Context, keyword, cursor string) (*driven.VideoPage, error) {
	params := url.Values{}
	params.Set("query", keyword)
	params.Set("count", fmt.Sprint(SearchPageSize))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	body, err := c.get(ctx, "/tiktok/search/keyword", params)
	if err != nil {
		return nil, err
	}

	page, err := normalizeSearchPage(body)
	if err != nil {
		return nil, &UpstreamError{Status: http.StatusOK, Body: truncateBody(body), Err: err}
	}
	return page, nil
}

// VideoInfo fetches engagement stats for a single video.
func (c *Client) VideoInfo(ctx context.Context, videoURL string) (*domain.VideoStats, error) {
	params := url.Values{}
	params.Set("url", videoURL)

	body, err := c.get(ctx, "/tiktok/video", params)
	if err != nil {
		return nil, err
	}

	stats, err := normalizeVideoInfo(body)
	if err != nil {
		return nil, &UpstreamError{Status: http.StatusOK, Body: truncateBody(body), Err: err}
	}
	return stats, nil
}

// Close releases resources.
func (c *Client) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
