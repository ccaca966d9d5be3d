package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/komenta/internal/core/domain"
	"github.com/custodia-labs/komenta/internal/core/ports/driven"
	"github.com/custodia-labs/komenta/internal/core/ports/driving"
)

// mockLLM implements driven.LLMService with a scripted response sequence.
// Once the script runs out, the last entry repeats.
type mockLLM struct {
	name   string
	script []mockReply

	calls    int
	lastOpts driven.GenerateOptions
}

type mockReply struct {
	response string
	err      error
}

func (m *mockLLM) Generate(_ context.Context, _ string, opts driven.GenerateOptions) (string, error) {
	idx := m.calls
	m.calls++
	m.lastOpts = opts
	if idx >= len(m.script) {
		idx = len(m.script) - 1
	}
	reply := m.script[idx]
	return reply.response, reply.err
}

func (m *mockLLM) ModelName() string          { return m.name }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

func annotated(texts ...string) []domain.AnnotatedComment {
	out := make([]domain.AnnotatedComment, len(texts))
	for i, text := range texts {
		out[i] = domain.AnnotatedComment{
			Comment:   domain.Comment{ID: fmt.Sprintf("c%d", i), Text: text},
			Sentiment: domain.SentimentNeutral,
		}
	}
	return out
}

const validNarrativeJSON = "```json\n" +
	`{"mainNarrative":{"title":"Product reception","description":"Viewers debate the product.","sentiment":"positive","keywords":["product"],"percentage":60},` +
	`"secondaryNarratives":[{"topic":"Pricing","sentiment":"negative","keywords":["price"],"commentCount":3,"percentage":20}]}` +
	"\n```"

func TestNarratives_EmptyComments(t *testing.T) {
	svc := NewSummaryService(&mockLLM{name: "m"}, nil)

	_, err := svc.Narratives(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNarratives_PrimarySucceeds(t *testing.T) {
	primary := &mockLLM{name: "llama3.2", script: []mockReply{{response: validNarrativeJSON}}}
	fallback := &mockLLM{name: "gpt-4o-mini", script: []mockReply{{response: validNarrativeJSON}}}
	svc := NewSummaryService(primary, fallback)

	report, err := svc.Narratives(context.Background(), annotated("great product", "love it"))
	require.NoError(t, err)

	assert.Equal(t, "llama3.2", report.Model)
	assert.Equal(t, "Product reception", report.MainNarrative.Title)
	assert.Equal(t, domain.SentimentPositive, report.MainNarrative.Sentiment)
	require.Len(t, report.SecondaryNarratives, 1)
	assert.Equal(t, "Pricing", report.SecondaryNarratives[0].Topic)

	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, fallback.calls)
	assert.Equal(t, 2048, primary.lastOpts.MaxTokens)
}

func TestNarratives_FallbackWhenPrimaryOutputUnusable(t *testing.T) {
	// The primary answers but with no extractable JSON; the chain must
	// move on to the fallback model.
	primary := &mockLLM{name: "llama3.2", script: []mockReply{{response: "I cannot produce JSON, sorry."}}}
	fallback := &mockLLM{name: "gpt-4o-mini", script: []mockReply{{response: validNarrativeJSON}}}
	svc := NewSummaryService(primary, fallback)

	report, err := svc.Narratives(context.Background(), annotated("great product"))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", report.Model)
}

func TestNarratives_ManualWhenAllBackendsFail(t *testing.T) {
	garbage := []mockReply{{response: "no structured output here"}}
	svc := NewSummaryService(
		&mockLLM{name: "llama3.2", script: garbage},
		&mockLLM{name: "gpt-4o-mini", script: garbage},
	)

	comments := annotated("the visuals are amazing today", "amazing work everyone", "this meeting was boring")
	comments[0].Sentiment = domain.SentimentPositive
	comments[1].Sentiment = domain.SentimentPositive
	comments[2].Sentiment = domain.SentimentNegative

	report, err := svc.Narratives(context.Background(), comments)
	require.NoError(t, err)

	assert.Equal(t, "manual", report.Model)
	assert.Equal(t, domain.SentimentPositive, report.MainNarrative.Sentiment)
	assert.NotEmpty(t, report.MainNarrative.Description)
	assert.Contains(t, report.MainNarrative.Keywords, "amazing")
	assert.InDelta(t, 100.0/3*2, report.MainNarrative.Percentage, 0.01)
}

func TestNarratives_NoBackendsConfigured(t *testing.T) {
	svc := NewSummaryService(nil, nil)

	report, err := svc.Narratives(context.Background(), annotated("hello there friend"))
	require.NoError(t, err)
	assert.Equal(t, "manual", report.Model)
}

func TestNarratives_InvalidSchemaRejected(t *testing.T) {
	// A syntactically valid report with an out-of-vocabulary sentiment
	// must not be accepted from the model.
	bad := "```json\n" +
		`{"mainNarrative":{"title":"T","description":"D","sentiment":"angry","keywords":[],"percentage":0}}` +
		"\n```"
	primary := &mockLLM{name: "llama3.2", script: []mockReply{{response: bad}}}
	svc := NewSummaryService(primary, nil)

	report, err := svc.Narratives(context.Background(), annotated("whatever happened here"))
	require.NoError(t, err)
	assert.Equal(t, "manual", report.Model)
}

func TestNarratives_SecondaryNarrativesCapped(t *testing.T) {
	var secondaries string
	for i := 0; i < 6; i++ {
		if i > 0 {
			secondaries += ","
		}
		secondaries += fmt.Sprintf(`{"topic":"t%d","sentiment":"neutral","keywords":[],"commentCount":1,"percentage":5}`, i)
	}
	raw := "```json\n" +
		`{"mainNarrative":{"title":"T","description":"D","sentiment":"neutral","keywords":[],"percentage":50},` +
		`"secondaryNarratives":[` + secondaries + `]}` +
		"\n```"
	svc := NewSummaryService(&mockLLM{name: "m", script: []mockReply{{response: raw}}}, nil)

	report, err := svc.Narratives(context.Background(), annotated("a comment"))
	require.NoError(t, err)
	assert.Len(t, report.SecondaryNarratives, 4)
}

func TestNarratives_RetriesTransientBackendFailure(t *testing.T) {
	primary := &mockLLM{name: "llama3.2", script: []mockReply{
		{err: errors.New("connection refused")},
		{response: validNarrativeJSON},
	}}
	svc := NewSummaryService(primary, nil)

	report, err := svc.Narratives(context.Background(), annotated("great product"))
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", report.Model)
	assert.Equal(t, 2, primary.calls)
}

func TestProContra_InvalidSide(t *testing.T) {
	svc := NewSummaryService(&mockLLM{name: "m"}, nil)

	_, err := svc.ProContra(context.Background(), annotated("x"), "against")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProContra_EmptyComments(t *testing.T) {
	svc := NewSummaryService(&mockLLM{name: "m"}, nil)

	_, err := svc.ProContra(context.Background(), nil, driving.StancePro)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProContra_FiltersInvalidEntriesAndAttachesText(t *testing.T) {
	raw := "```json\n" +
		`{"comments":[` +
		`{"index":0,"score":5,"reason":"out of range low"},` +
		`{"index":2,"score":7,"reason":"supports the idea"},` +
		`{"index":1,"score":11,"reason":"score too high"},` +
		`{"index":9,"score":5,"reason":"out of range high"}],` +
		`"summary":{"total":4,"percentage":80,"themes":["support"]}}` +
		"\n```"
	svc := NewSummaryService(&mockLLM{name: "llama3.2", script: []mockReply{{response: raw}}}, nil)

	report, err := svc.ProContra(context.Background(), annotated("first comment", "second comment", "third comment"), driving.StancePro)
	require.NoError(t, err)

	assert.Equal(t, driving.StancePro, report.Side)
	assert.Equal(t, "llama3.2", report.Model)
	require.Len(t, report.Comments, 1)
	assert.Equal(t, 2, report.Comments[0].Index)
	assert.Equal(t, "second comment", report.Comments[0].Text)
	assert.Equal(t, "supports the idea", report.Comments[0].Reason)

	// The summary is recomputed from the surviving entries, not taken
	// from the model.
	assert.Equal(t, 1, report.Summary.Total)
	assert.InDelta(t, 100.0/3, report.Summary.Percentage, 0.01)
}

func TestProContra_ManualFallback(t *testing.T) {
	svc := NewSummaryService(nil, nil)

	comments := annotated("love this idea so much", "terrible plan honestly", "just watching along")
	comments[0].Sentiment = domain.SentimentPositive
	comments[1].Sentiment = domain.SentimentNegative

	pro, err := svc.ProContra(context.Background(), comments, driving.StancePro)
	require.NoError(t, err)
	assert.Equal(t, "manual", pro.Model)
	require.Len(t, pro.Comments, 1)
	assert.Equal(t, "love this idea so much", pro.Comments[0].Text)
	assert.Equal(t, 5, pro.Comments[0].Score)
	assert.Equal(t, 1, pro.Summary.Total)

	contra, err := svc.ProContra(context.Background(), comments, driving.StanceContra)
	require.NoError(t, err)
	require.Len(t, contra.Comments, 1)
	assert.Equal(t, "terrible plan honestly", contra.Comments[0].Text)
}

func TestSampleTexts_SkipsEmptyAndCaps(t *testing.T) {
	comments := annotated("one", "", "two", "three")
	assert.Equal(t, []string{"one", "two"}, sampleTexts(comments, 2))
	assert.Equal(t, []string{"one", "two", "three"}, sampleTexts(comments, 10))
}

func TestTopWords_StableOrdering(t *testing.T) {
	comments := annotated(
		"bagus banget videonya bagus",
		"videonya keren banget",
	)

	// "bagus", "banget" and "videonya" all appear twice; ties break
	// alphabetically.
	got := topWords(comments, 3)
	assert.Equal(t, []string{"bagus", "banget", "videonya"}, got)
}
