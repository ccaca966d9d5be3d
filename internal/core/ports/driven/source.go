// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/komenta/internal/core/domain"
)

// CommentPage is one raw page of comments from the upstream provider.
type CommentPage struct {
	// Comments are the items on this page, in upstream order.
	Comments []domain.Comment

	// NextCursor is the opaque pagination token for the following page.
	// Empty means upstream signalled the true end of the set.
	NextCursor string

	// HasMore is the upstream continuation flag. A page can report
	// HasMore with an empty cursor; that is still the end.
	HasMore bool
}

// CommentCollection is the outcome of one budgeted pagination pass over a
// video's comments. When Failure is set the accumulated comments are still
// valid; partial results are flagged, never discarded.
type CommentCollection struct {
	// Comments holds the accumulated items in upstream page order,
	// capped at the budget's TargetCount.
	Comments []domain.Comment

	// Pages is the number of successful page fetches.
	Pages int

	// NextCursor resumes pagination when the target was reached before
	// upstream ran out of pages.
	NextCursor string

	// HasMore reports whether upstream had further pages when the pass
	// ended.
	HasMore bool

	// Failure is the error that ended the pass early, if any.
	Failure error
}

// VideoPage is one page of videos from a keyword search.
type VideoPage struct {
	Videos     []domain.Video
	NextCursor string
	HasMore    bool
}

// CommentSource fetches comments and video listings from a scraping
// provider. Implementations paginate internally under the supplied budget
// and own all retry and pacing policy; a single call to CollectComments
// may issue many upstream requests.
type CommentSource interface {
	// CollectComments walks the comment pages of one video under the
	// given budget. Upstream failures end the pass and are reported via
	// the collection's Failure field alongside whatever was accumulated.
	CollectComments(ctx context.Context, videoURL string, budget domain.FetchBudget) *CommentCollection

	// UserVideos lists up to amount recent videos of an account.
	UserVideos(ctx context.Context, handle string, amount int) ([]domain.Video, error)

	// SearchVideos fetches one page of keyword search results.
	SearchVideos(ctx context.Context, keyword, cursor string) (*VideoPage, error)

	// VideoInfo fetches engagement stats for a single video.
	VideoInfo(ctx context.Context, videoURL string) (*domain.VideoStats, error)

	// Close releases resources.
	Close() error
}
