package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/komenta/internal/classify/bot"
	"github.com/custodia-labs/komenta/internal/classify/sentiment"
	"github.com/custodia-labs/komenta/internal/core/domain"
	"github.com/custodia-labs/komenta/internal/core/ports/driven"
	"github.com/custodia-labs/komenta/internal/core/ports/driving"
	"github.com/custodia-labs/komenta/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// Default orchestration limits.
const (
	// DefaultTargetCount is the per-video comment budget when the query
	// does not specify one.
	DefaultTargetCount = 100

	// MaxVideosPerRun caps how many resolved videos one run analyses.
	MaxVideosPerRun = 100

	// SearchPageCap bounds keyword search pagination.
	SearchPageCap = 4

	// DefaultVideoDelay is the pause between per-video comment passes,
	// to avoid upstream throttling.
	DefaultVideoDelay = time.Second
)

// AnalysisConfig tunes the orchestrator. Zero values select the defaults.
type AnalysisConfig struct {
	TargetCount int
	MaxPages    int
	PageDelay   time.Duration
	VideoDelay  time.Duration
}

// AnalysisService resolves a query into target videos, paginates their
// comments sequentially through the comment source, classifies the merged
// set, and reduces it to an aggregate result.
//
// Fetching is deliberately sequential - video by video, page by page - to
// respect the upstream provider's rate limits.
type AnalysisService struct {
	source  driven.CommentSource
	history driven.HistoryStore
	cfg     AnalysisConfig
}

// NewAnalysisService creates the orchestrator. The history store is
// optional; when nil, completed runs are not recorded.
func NewAnalysisService(source driven.CommentSource, history driven.HistoryStore, cfg AnalysisConfig) *AnalysisService {
	if cfg.TargetCount <= 0 {
		cfg.TargetCount = DefaultTargetCount
	}
	if cfg.VideoDelay <= 0 {
		cfg.VideoDelay = DefaultVideoDelay
	}
	return &AnalysisService{
		source:  source,
		history: history,
		cfg:     cfg,
	}
}

// Analyze executes one query end to end.
func (s *AnalysisService) Analyze(ctx context.Context, q domain.Query) (*domain.AggregateResult, error) {
	if q.Text == "" {
		return nil, fmt.Errorf("%w: query text is required", domain.ErrInvalidInput)
	}
	if _, err := domain.ParseQueryType(string(q.Type)); err != nil {
		return nil, err
	}

	budget := s.budget(q)

	var (
		result *domain.AggregateResult
		err    error
	)
	switch q.Type {
	case domain.QueryVideo:
		result, err = s.analyzeVideo(ctx, q, budget)
	case domain.QueryUsername:
		result, err = s.analyzeUser(ctx, q, budget)
	case domain.QueryKeyword:
		result, err = s.analyzeKeyword(ctx, q, budget)
	}
	if err != nil {
		return nil, err
	}

	s.record(ctx, q, result)
	return result, nil
}

// budget derives the per-video fetch budget for a query.
func (s *AnalysisService) budget(q domain.Query) domain.FetchBudget {
	target := q.TargetCount
	if target <= 0 {
		target = s.cfg.TargetCount
	}
	return domain.FetchBudget{
		TargetCount: target,
		MaxPages:    s.cfg.MaxPages,
		PageDelay:   s.cfg.PageDelay,
	}
}

// analyzeVideo handles a direct video URL query.
func (s *AnalysisService) analyzeVideo(ctx context.Context, q domain.Query, budget domain.FetchBudget) (*domain.AggregateResult, error) {
	handle, videoID, err := domain.ParseVideoURL(q.Text)
	if err != nil {
		return nil, err
	}
	videoURL := domain.VideoURL(handle, videoID)

	// Engagement stats enrich the result but never fail the run.
	stats, statsErr := s.source.VideoInfo(ctx, videoURL)
	if statsErr != nil {
		logger.Warn("video info unavailable for %s: %v", videoURL, statsErr)
		stats = nil
	}

	coll := s.source.CollectComments(ctx, videoURL, budget)
	if len(coll.Comments) == 0 {
		if coll.Failure != nil {
			return nil, fmt.Errorf("fetch comments: %w", coll.Failure)
		}
		return nil, fmt.Errorf("%w: video %s", domain.ErrNoComments, videoID)
	}
	if coll.Failure != nil {
		logger.Warn("partial comment set for %s: %v", videoURL, coll.Failure)
	}

	tagged := tagComments(coll.Comments, videoID, videoURL)
	result := reduce(q, classify(tagged))
	result.VideosAnalyzed = 1
	result.TotalVideos = 1
	result.Cursor = coll.NextCursor
	result.HasMore = coll.HasMore
	result.VideoStats = stats
	return &result, nil
}

// analyzeUser handles a username query: list recent videos, then collect
// comments per video.
func (s *AnalysisService) analyzeUser(ctx context.Context, q domain.Query, budget domain.FetchBudget) (*domain.AggregateResult, error) {
	handle := domain.CleanHandle(q.Text)

	videos, err := s.source.UserVideos(ctx, handle, MaxVideosPerRun)
	if err != nil {
		return nil, fmt.Errorf("list videos for @%s: %w", handle, err)
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("%w: user @%s", domain.ErrNoVideos, handle)
	}

	targets := videos
	if q.LatestOnly {
		targets = videos[:1]
	}

	merged, ok, failed, err := s.collectAcrossVideos(ctx, targets, budget)
	if err != nil {
		return nil, err
	}
	if len(merged) == 0 {
		return nil, fmt.Errorf("%w: attempted %d videos, %d failed", domain.ErrNoComments, len(targets), failed)
	}

	result := reduce(q, classify(merged))
	result.VideosAnalyzed = ok
	result.TotalVideos = len(videos)
	result.FailedVideos = failed
	return &result, nil
}

// analyzeKeyword handles a keyword query: search for videos page by page,
// then collect comments per video.
func (s *AnalysisService) analyzeKeyword(ctx context.Context, q domain.Query, budget domain.FetchBudget) (*domain.AggregateResult, error) {
	keyword := domain.CleanKeyword(q.Text)

	videos, err := s.searchVideos(ctx, keyword, q.LatestOnly)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("%w: keyword %q", domain.ErrNoVideos, keyword)
	}

	targets := videos
	if q.LatestOnly {
		targets = videos[:1]
	}

	merged, ok, failed, err := s.collectAcrossVideos(ctx, targets, budget)
	if err != nil {
		return nil, err
	}
	if len(merged) == 0 {
		return nil, fmt.Errorf("%w: attempted %d videos, %d failed", domain.ErrNoComments, len(targets), failed)
	}

	result := reduce(q, classify(merged))
	result.VideosAnalyzed = ok
	result.TotalVideos = len(videos)
	result.FailedVideos = failed
	return &result, nil
}

// searchVideos pages through keyword search results up to the page cap.
func (s *AnalysisService) searchVideos(ctx context.Context, keyword string, latestOnly bool) ([]domain.Video, error) {
	maxPages := SearchPageCap
	if latestOnly {
		maxPages = 1
	}

	var videos []domain.Video
	cursor := ""
	for page := 0; page < maxPages && len(videos) < MaxVideosPerRun; page++ {
		vp, err := s.source.SearchVideos(ctx, keyword, cursor)
		if err != nil {
			// Keep whatever earlier pages produced.
			if len(videos) > 0 {
				logger.Warn("search page %d failed, continuing with %d videos: %v", page+1, len(videos), err)
				break
			}
			return nil, err
		}
		if len(vp.Videos) == 0 {
			break
		}
		videos = append(videos, vp.Videos...)

		if !vp.HasMore || vp.NextCursor == "" || vp.NextCursor == cursor {
			break
		}
		cursor = vp.NextCursor
	}

	if len(videos) > MaxVideosPerRun {
		videos = videos[:MaxVideosPerRun]
	}
	return videos, nil
}

// collectAcrossVideos runs the budgeted comment collection for each target
// sequentially. A single video's failure never aborts the batch; it is
// counted and skipped. Successful and failed counters move symmetrically:
// every target increments exactly one of them.
func (s *AnalysisService) collectAcrossVideos(ctx context.Context, targets []domain.Video, budget domain.FetchBudget) (merged []domain.Comment, ok, failed int, err error) {
	for i, v := range targets {
		if ctx.Err() != nil {
			return nil, ok, failed, ctx.Err()
		}

		coll := s.source.CollectComments(ctx, v.URL, budget)
		if errors.Is(coll.Failure, context.Canceled) || errors.Is(coll.Failure, context.DeadlineExceeded) {
			return nil, ok, failed, coll.Failure
		}

		if len(coll.Comments) == 0 {
			failed++
			if coll.Failure != nil {
				logger.Warn("video %s yielded no comments: %v", v.ID, coll.Failure)
			}
		} else {
			ok++
			merged = append(merged, tagComments(coll.Comments, v.ID, v.URL)...)
		}

		// Pause between videos to stay under upstream throttling, but
		// not after the last one.
		if i < len(targets)-1 {
			if err := waitContext(ctx, s.cfg.VideoDelay); err != nil {
				return nil, ok, failed, err
			}
		}
	}
	return merged, ok, failed, nil
}

// classify runs both classifiers over a merged comment set.
func classify(comments []domain.Comment) []domain.AnnotatedComment {
	return sentiment.Annotate(bot.Classify(comments))
}

// reduce builds the aggregate result for a query from annotated comments.
func reduce(q domain.Query, annotated []domain.AnnotatedComment) domain.AggregateResult {
	result := domain.Summarize(annotated)
	result.Query = q.Text
	result.QueryType = q.Type
	return result
}

// tagComments scopes comments to the video they came from.
func tagComments(comments []domain.Comment, videoID, videoURL string) []domain.Comment {
	for i := range comments {
		comments[i].VideoID = videoID
		comments[i].VideoURL = videoURL
	}
	return comments
}

// record saves a completed run to history. Best effort: storage problems
// are logged, never surfaced to the caller.
func (s *AnalysisService) record(ctx context.Context, q domain.Query, r *domain.AggregateResult) {
	if s.history == nil || r == nil {
		return
	}
	rec := domain.SearchRecord{
		ID:             uuid.NewString(),
		Query:          q.Text,
		Type:           q.Type,
		TotalComments:  r.TotalComments,
		RealComments:   r.RealComments,
		BotComments:    r.BotComments,
		VideosAnalyzed: r.VideosAnalyzed,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.history.Save(ctx, rec); err != nil {
		logger.Warn("save history record: %v", err)
	}
}

// waitContext sleeps for d or until the context is cancelled.
func waitContext(ctx context.Context, d time.Duration) error {
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
