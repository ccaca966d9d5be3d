package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	comments := []AnnotatedComment{
		{Comment: Comment{Author: Author{Handle: "alice"}}, Sentiment: SentimentPositive},
		{Comment: Comment{Author: Author{Handle: "alice"}}, Sentiment: SentimentNegative},
		{Comment: Comment{Author: Author{Handle: "bob"}}, IsBot: true, Sentiment: SentimentNeutral},
		{Comment: Comment{Author: Author{ID: "42"}}, Sentiment: SentimentPositive},
	}

	r := Summarize(comments)

	assert.Equal(t, 4, r.TotalComments)
	assert.Equal(t, 3, r.RealComments)
	assert.Equal(t, 1, r.BotComments)
	assert.Equal(t, 3, r.UniqueAuthors)
	assert.Equal(t, SentimentCounts{Positive: 2, Negative: 1, Neutral: 1}, r.SentimentCounts)
	assert.Equal(t, 4, r.PlatformBreakdown.TikTok)
	assert.Zero(t, r.PlatformBreakdown.Instagram)
}

func TestSummarize_CountsAlwaysSumToTotal(t *testing.T) {
	comments := []AnnotatedComment{
		{IsBot: true},
		{},
		{Sentiment: SentimentPositive},
	}

	r := Summarize(comments)

	assert.Equal(t, r.TotalComments, r.RealComments+r.BotComments)
	assert.Equal(t, r.TotalComments,
		r.SentimentCounts.Positive+r.SentimentCounts.Negative+r.SentimentCounts.Neutral)
}

func TestSummarize_Empty(t *testing.T) {
	r := Summarize(nil)

	assert.Zero(t, r.TotalComments)
	assert.Zero(t, r.UniqueAuthors)
	assert.Empty(t, r.Comments)
}

func TestSummarize_UnlabelledSentimentIsNeutral(t *testing.T) {
	r := Summarize([]AnnotatedComment{{}})
	assert.Equal(t, 1, r.SentimentCounts.Neutral)
}

func TestIsNoData_Basic(t *testing.T) {
	assert.True(t, IsNoData(ErrNoVideos))
	assert.True(t, IsNoData(ErrNoComments))
	assert.False(t, IsNoData(ErrInvalidInput))
	assert.False(t, IsNoData(nil))
}
