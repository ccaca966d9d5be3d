package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/komenta/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/komenta/internal/core/domain"
	"github.com/custodia-labs/komenta/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockCommentSource implements driven.CommentSource for testing.
type mockCommentSource struct {
	collections map[string]*driven.CommentCollection
	videos      []domain.Video
	videosErr   error
	searchPages []*driven.VideoPage
	searchErr   error
	stats       *domain.VideoStats
	statsErr    error

	collectCalls []string
	lastBudget   domain.FetchBudget
	searchCalls  int
}

func (m *mockCommentSource) CollectComments(_ context.Context, videoURL string, budget domain.FetchBudget) *driven.CommentCollection {
	m.collectCalls = append(m.collectCalls, videoURL)
	m.lastBudget = budget
	if coll, ok := m.collections[videoURL]; ok {
		return coll
	}
	return &driven.CommentCollection{}
}

func (m *mockCommentSource) UserVideos(_ context.Context, _ string, _ int) ([]domain.Video, error) {
	if m.videosErr != nil {
		return nil, m.videosErr
	}
	return m.videos, nil
}

func (m *mockCommentSource) SearchVideos(_ context.Context, _, _ string) (*driven.VideoPage, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.searchCalls >= len(m.searchPages) {
		return &driven.VideoPage{}, nil
	}
	page := m.searchPages[m.searchCalls]
	m.searchCalls++
	return page, nil
}

func (m *mockCommentSource) VideoInfo(_ context.Context, _ string) (*domain.VideoStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return m.stats, nil
}

func (m *mockCommentSource) Close() error {
	return nil
}

// --- Test helpers ---

func testVideo(id, handle string) domain.Video {
	return domain.Video{
		ID:           id,
		AuthorHandle: handle,
		URL:          domain.VideoURL(handle, id),
	}
}

func testComments(prefix string, n int) []domain.Comment {
	out := make([]domain.Comment, n)
	for i := range out {
		out[i] = domain.Comment{
			ID:   fmt.Sprintf("%s-%d", prefix, i),
			Text: fmt.Sprintf("an ordinary comment %s-%d", prefix, i),
			Author: domain.Author{
				Handle:    fmt.Sprintf("author_%s_%d", prefix, i),
				AvatarURL: "https://cdn.example/p.jpeg",
			},
			LikeCount: 1,
		}
	}
	return out
}

func newTestService(source driven.CommentSource, history driven.HistoryStore) *AnalysisService {
	return NewAnalysisService(source, history, AnalysisConfig{
		VideoDelay: time.Millisecond,
		PageDelay:  time.Millisecond,
	})
}

// --- Tests ---

func TestAnalyze_InvalidInput(t *testing.T) {
	svc := newTestService(&mockCommentSource{}, nil)

	_, err := svc.Analyze(context.Background(), domain.Query{Type: domain.QueryVideo})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Analyze(context.Background(), domain.Query{Text: "x", Type: "profile"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnalyze_VideoQuery(t *testing.T) {
	url := "https://www.tiktok.com/@alice/video/100"
	source := &mockCommentSource{
		collections: map[string]*driven.CommentCollection{
			url: {
				Comments:   testComments("v", 10),
				Pages:      1,
				NextCursor: "10",
				HasMore:    true,
			},
		},
		stats: &domain.VideoStats{Likes: 500, Views: 9000},
	}
	svc := newTestService(source, nil)

	result, err := svc.Analyze(context.Background(), domain.Query{Text: url, Type: domain.QueryVideo})
	require.NoError(t, err)

	assert.Equal(t, 10, result.TotalComments)
	assert.Equal(t, 1, result.VideosAnalyzed)
	assert.Equal(t, 1, result.TotalVideos)
	assert.Equal(t, "10", result.Cursor)
	assert.True(t, result.HasMore)
	require.NotNil(t, result.VideoStats)
	assert.Equal(t, 500, result.VideoStats.Likes)

	// Comments are tagged with their origin video.
	assert.Equal(t, "100", result.Comments[0].VideoID)
	assert.Equal(t, url, result.Comments[0].VideoURL)
}

func TestAnalyze_VideoQuery_StatsFailureIsNonFatal(t *testing.T) {
	url := "https://www.tiktok.com/@alice/video/100"
	source := &mockCommentSource{
		collections: map[string]*driven.CommentCollection{
			url: {Comments: testComments("v", 3)},
		},
		statsErr: errors.New("info endpoint down"),
	}
	svc := newTestService(source, nil)

	result, err := svc.Analyze(context.Background(), domain.Query{Text: url, Type: domain.QueryVideo})
	require.NoError(t, err)
	assert.Nil(t, result.VideoStats)
	assert.Equal(t, 3, result.TotalComments)
}

func TestAnalyze_VideoQuery_NoComments(t *testing.T) {
	svc := newTestService(&mockCommentSource{}, nil)

	_, err := svc.Analyze(context.Background(), domain.Query{
		Text: "https://www.tiktok.com/@alice/video/100",
		Type: domain.QueryVideo,
	})
	assert.ErrorIs(t, err, domain.ErrNoComments)
}

func TestAnalyze_VideoQuery_FetchFailure(t *testing.T) {
	url := "https://www.tiktok.com/@alice/video/100"
	upstream := errors.New("upstream rejected the request")
	source := &mockCommentSource{
		collections: map[string]*driven.CommentCollection{
			url: {Failure: upstream},
		},
	}
	svc := newTestService(source, nil)

	_, err := svc.Analyze(context.Background(), domain.Query{Text: url, Type: domain.QueryVideo})
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
}

func TestAnalyze_VideoQuery_InvalidURL(t *testing.T) {
	svc := newTestService(&mockCommentSource{}, nil)

	_, err := svc.Analyze(context.Background(), domain.Query{Text: "not a video url", Type: domain.QueryVideo})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnalyze_UserQuery_CountsMoveSymmetrically(t *testing.T) {
	// Three videos: two yield comments, one fails. Every target must
	// land in exactly one of the analysed/failed counters.
	v1, v2, v3 := testVideo("1", "alice"), testVideo("2", "alice"), testVideo("3", "alice")
	source := &mockCommentSource{
		videos: []domain.Video{v1, v2, v3},
		collections: map[string]*driven.CommentCollection{
			v1.URL: {Comments: testComments("a", 4)},
			v2.URL: {Failure: errors.New("blocked")},
			v3.URL: {Comments: testComments("b", 6)},
		},
	}
	svc := newTestService(source, nil)

	result, err := svc.Analyze(context.Background(), domain.Query{Text: "@alice", Type: domain.QueryUsername})
	require.NoError(t, err)

	assert.Equal(t, 10, result.TotalComments)
	assert.Equal(t, 2, result.VideosAnalyzed)
	assert.Equal(t, 1, result.FailedVideos)
	assert.Equal(t, 3, result.TotalVideos)
	assert.Equal(t, result.TotalVideos, result.VideosAnalyzed+result.FailedVideos)
	assert.Len(t, source.collectCalls, 3)
}

func TestAnalyze_UserQuery_NoVideos(t *testing.T) {
	svc := newTestService(&mockCommentSource{}, nil)

	_, err := svc.Analyze(context.Background(), domain.Query{Text: "ghost", Type: domain.QueryUsername})
	assert.ErrorIs(t, err, domain.ErrNoVideos)
}

func TestAnalyze_UserQuery_ListFailure(t *testing.T) {
	source := &mockCommentSource{videosErr: errors.New("profile endpoint down")}
	svc := newTestService(source, nil)

	_, err := svc.Analyze(context.Background(), domain.Query{Text: "alice", Type: domain.QueryUsername})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoVideos)
}

func TestAnalyze_UserQuery_LatestOnly(t *testing.T) {
	v1, v2 := testVideo("1", "alice"), testVideo("2", "alice")
	source := &mockCommentSource{
		videos: []domain.Video{v1, v2},
		collections: map[string]*driven.CommentCollection{
			v1.URL: {Comments: testComments("a", 2)},
			v2.URL: {Comments: testComments("b", 2)},
		},
	}
	svc := newTestService(source, nil)

	result, err := svc.Analyze(context.Background(), domain.Query{
		Text: "alice", Type: domain.QueryUsername, LatestOnly: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalComments)
	assert.Equal(t, []string{v1.URL}, source.collectCalls)
}

func TestAnalyze_UserQuery_AllVideosEmpty(t *testing.T) {
	source := &mockCommentSource{
		videos: []domain.Video{testVideo("1", "alice"), testVideo("2", "alice")},
	}
	svc := newTestService(source, nil)

	_, err := svc.Analyze(context.Background(), domain.Query{Text: "alice", Type: domain.QueryUsername})
	assert.ErrorIs(t, err, domain.ErrNoComments)
}

func TestAnalyze_KeywordQuery_PagesThroughSearch(t *testing.T) {
	v1, v2, v3 := testVideo("1", "a"), testVideo("2", "b"), testVideo("3", "c")
	source := &mockCommentSource{
		searchPages: []*driven.VideoPage{
			{Videos: []domain.Video{v1, v2}, NextCursor: "30", HasMore: true},
			{Videos: []domain.Video{v3}, HasMore: false},
		},
		collections: map[string]*driven.CommentCollection{
			v1.URL: {Comments: testComments("a", 1)},
			v2.URL: {Comments: testComments("b", 1)},
			v3.URL: {Comments: testComments("c", 1)},
		},
	}
	svc := newTestService(source, nil)

	result, err := svc.Analyze(context.Background(), domain.Query{Text: "#cats", Type: domain.QueryKeyword})
	require.NoError(t, err)

	assert.Equal(t, 2, source.searchCalls)
	assert.Equal(t, 3, result.TotalVideos)
	assert.Equal(t, 3, result.VideosAnalyzed)
	assert.Equal(t, 3, result.TotalComments)
}

func TestAnalyze_KeywordQuery_NoResults(t *testing.T) {
	svc := newTestService(&mockCommentSource{}, nil)

	_, err := svc.Analyze(context.Background(), domain.Query{Text: "cats", Type: domain.QueryKeyword})
	assert.ErrorIs(t, err, domain.ErrNoVideos)
}

func TestAnalyze_ContextCancellationAborts(t *testing.T) {
	url := "https://www.tiktok.com/@alice/video/1"
	source := &mockCommentSource{
		videos: []domain.Video{testVideo("1", "alice"), testVideo("2", "alice")},
		collections: map[string]*driven.CommentCollection{
			url: {Failure: context.Canceled},
		},
	}
	svc := newTestService(source, nil)

	_, err := svc.Analyze(context.Background(), domain.Query{Text: "alice", Type: domain.QueryUsername})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	// Cancellation aborts the whole batch rather than counting the
	// remaining videos as failed.
	assert.Len(t, source.collectCalls, 1)
}

func TestAnalyze_TargetCountOverride(t *testing.T) {
	url := "https://www.tiktok.com/@alice/video/100"
	source := &mockCommentSource{
		collections: map[string]*driven.CommentCollection{
			url: {Comments: testComments("v", 1)},
		},
	}
	svc := newTestService(source, nil)

	_, err := svc.Analyze(context.Background(), domain.Query{
		Text: url, Type: domain.QueryVideo, TargetCount: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, 250, source.lastBudget.TargetCount)

	// Zero falls back to the service default.
	_, err = svc.Analyze(context.Background(), domain.Query{Text: url, Type: domain.QueryVideo})
	require.NoError(t, err)
	assert.Equal(t, DefaultTargetCount, source.lastBudget.TargetCount)
}

func TestAnalyze_RecordsHistory(t *testing.T) {
	url := "https://www.tiktok.com/@alice/video/100"
	source := &mockCommentSource{
		collections: map[string]*driven.CommentCollection{
			url: {Comments: testComments("v", 5)},
		},
	}
	store := memory.NewHistoryStore()
	svc := newTestService(source, store)

	_, err := svc.Analyze(context.Background(), domain.Query{Text: url, Type: domain.QueryVideo})
	require.NoError(t, err)

	records, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, url, rec.Query)
	assert.Equal(t, domain.QueryVideo, rec.Type)
	assert.Equal(t, 5, rec.TotalComments)
	assert.Equal(t, 1, rec.VideosAnalyzed)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
}
