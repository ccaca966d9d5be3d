package scrapecreators

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ProactiveRate is the proactive throttle rate in requests per second.
	// The provider meters by request, so staying near 2 req/s keeps bursts
	// of paginated fetches inside the plan quota.
	ProactiveRate = 2.0

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter paces outbound requests to the scraping provider.
// It combines a proactive token bucket with reactive Retry-After handling.
type RateLimiter struct {
	mu        sync.Mutex
	bucket    *rate.Limiter
	holdUntil time.Time
}

// NewRateLimiter creates a limiter with the default proactive rate.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		bucket: rate.NewLimiter(rate.Limit(ProactiveRate), 1),
	}
}

// Wait blocks until it is safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	holdUntil := r.holdUntil
	r.mu.Unlock()

	if time.Now().Before(holdUntil) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(holdUntil)):
		}
	}
	return nil
}

// UpdateFromResponse records a Retry-After hold when the provider asks
// for one.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	if retryAfter := resp.Header.Get(HeaderRetryAfter); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
			r.mu.Lock()
			r.holdUntil = time.Now().Add(time.Duration(seconds) * time.Second)
			r.mu.Unlock()
		}
	}
}
