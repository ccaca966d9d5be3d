package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// QueryType selects the target-resolution strategy for an analysis run.
type QueryType string

const (
	// QueryUsername analyses recent videos of one account.
	QueryUsername QueryType = "username"

	// QueryVideo analyses a single video URL.
	QueryVideo QueryType = "video"

	// QueryKeyword analyses videos matching a keyword or hashtag search.
	QueryKeyword QueryType = "keyword"
)

// ParseQueryType validates a raw type string from the API surface.
func ParseQueryType(s string) (QueryType, error) {
	switch QueryType(s) {
	case QueryUsername, QueryVideo, QueryKeyword:
		return QueryType(s), nil
	}
	return "", fmt.Errorf("%w: type must be 'username', 'video', or 'keyword'", ErrInvalidInput)
}

// Query describes one analysis request.
type Query struct {
	// Text is the username, video URL, or keyword.
	Text string

	// Type selects how Text is resolved into videos.
	Type QueryType

	// LatestOnly restricts the run to the single most recent video
	// (username) or first search hit (keyword).
	LatestOnly bool

	// TargetCount is the per-video comment budget. Zero means the
	// service default.
	TargetCount int
}

// FetchBudget bounds one pagination pass over a video's comments.
// The paginator never returns more than TargetCount items, although it may
// fetch more from upstream and discard the excess locally.
type FetchBudget struct {
	// TargetCount is the maximum number of items to accumulate.
	TargetCount int

	// MaxPages caps the number of upstream page fetches. Zero means
	// unlimited (the cursor or TargetCount terminates the loop).
	MaxPages int

	// PageDelay is slept after every successful page fetch, including
	// the final one, to respect upstream rate limits.
	PageDelay time.Duration
}

// Video is one resolved analysis target.
type Video struct {
	// ID is the upstream video identifier (aweme id).
	ID string `json:"id"`

	// AuthorHandle is the posting account's handle.
	AuthorHandle string `json:"authorHandle"`

	// URL is the canonical video URL.
	URL string `json:"url"`

	// Description is the caption text, when the listing includes it.
	Description string `json:"description,omitempty"`
}

// VideoStats carries engagement metrics for a single video.
type VideoStats struct {
	Likes     int   `json:"likes"`
	Shares    int   `json:"shares"`
	Saves     int   `json:"saves"`
	Views     int   `json:"views"`
	CreatedAt int64 `json:"createdAt,omitempty"`
}

// videoURLRegex matches canonical TikTok video URLs.
var videoURLRegex = regexp.MustCompile(`tiktok\.com/@([^/]+)/video/(\d+)`)

// ParseVideoURL extracts the username and video id from a TikTok video URL.
func ParseVideoURL(rawURL string) (username, videoID string, err error) {
	m := videoURLRegex.FindStringSubmatch(rawURL)
	if m == nil {
		return "", "", fmt.Errorf("%w: invalid TikTok video URL format", ErrInvalidInput)
	}
	return m[1], m[2], nil
}

// VideoURL builds the canonical URL for a video.
func VideoURL(handle, videoID string) string {
	return fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", handle, videoID)
}

// CleanHandle strips a leading "@" from a username query.
func CleanHandle(input string) string {
	return strings.TrimPrefix(input, "@")
}

// CleanKeyword strips a leading "#" from a keyword query.
func CleanKeyword(input string) string {
	return strings.TrimPrefix(input, "#")
}
