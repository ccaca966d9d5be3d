package scrapecreators

import (
	"context"
	"time"

	"github.com/custodia-labs/komenta/internal/core/domain"
	"github.com/custodia-labs/komenta/internal/core/ports/driven"
)

const (
	// MaxRetries is the per-page retry budget for transient failures.
	MaxRetries = 3

	// RetryDelay is the base backoff delay; attempt n waits RetryDelay * 2^n.
	RetryDelay = time.Second

	// DefaultPageDelay is slept between page fetches when the budget does
	// not specify a pacing delay.
	DefaultPageDelay = 500 * time.Millisecond
)

// PageFetch fetches one comment page for an opaque cursor. An empty cursor
// requests the first page.
type PageFetch func(ctx context.Context, cursor string) (*driven.CommentPage, error)

// Paginate walks a paginated comment listing until the budget's target
// count is reached, upstream signals the end, the page cap is hit, or an
// unrecoverable failure occurs. Partial results are flagged via the
// collection's Failure field, never discarded, because upstream
// pagination is unreliable mid-stream.
//
// Transient failures are retried per page with exponential backoff;
// permanent failures end the pass immediately. A cursor that does not
// advance between pages is treated as the end of the set rather than
// looping forever.
func Paginate(ctx context.Context, fetch PageFetch, budget domain.FetchBudget) *driven.CommentCollection {
	res := &driven.CommentCollection{}
	if budget.TargetCount <= 0 {
		return res
	}

	delay := budget.PageDelay
	if delay <= 0 {
		delay = DefaultPageDelay
	}

	cursor := ""
	for {
		page, err := fetchPageWithRetry(ctx, fetch, cursor)
		if err != nil {
			res.Failure = err
			return res
		}
		res.Pages++

		items := page.Comments
		if remaining := budget.TargetCount - len(res.Comments); len(items) > remaining {
			items = items[:remaining]
		}
		res.Comments = append(res.Comments, items...)

		// Pace after every successful page, the final one included.
		if err := sleepContext(ctx, delay); err != nil {
			res.Failure = err
			return res
		}

		if !page.HasMore || page.NextCursor == "" {
			return res
		}
		if page.NextCursor == cursor {
			// Stuck cursor: upstream repeated itself. Terminate
			// instead of refetching the same page indefinitely.
			return res
		}
		if len(res.Comments) >= budget.TargetCount ||
			(budget.MaxPages > 0 && res.Pages >= budget.MaxPages) {
			res.NextCursor = page.NextCursor
			res.HasMore = true
			return res
		}

		cursor = page.NextCursor
	}
}

// fetchPageWithRetry fetches one page, retrying transient failures up to
// MaxRetries attempts with exponential backoff.
func fetchPageWithRetry(ctx context.Context, fetch PageFetch, cursor string) (*driven.CommentPage, error) {
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := RetryDelay * time.Duration(1<<(attempt-1))
			if err := sleepContext(ctx, backoff); err != nil {
				return nil, err
			}
		}

		page, err := fetch(ctx, cursor)
		if err == nil {
			return page, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
