package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/komenta/internal/core/domain"
	"github.com/custodia-labs/komenta/internal/core/ports/driven"
	"github.com/custodia-labs/komenta/internal/core/ports/driving"
	"github.com/custodia-labs/komenta/internal/logger"
)

// Ensure SummaryService implements the interface.
var _ driving.SummaryService = (*SummaryService)(nil)

const (
	// SampleSize caps how many comments are embedded in a prompt, to
	// stay inside model token limits.
	SampleSize = 100

	// generateRetries is the per-backend attempt budget.
	generateRetries = 3

	// generateRetryDelay is the base backoff between attempts.
	generateRetryDelay = time.Second

	// manualModelName marks reports produced without a model.
	manualModelName = "manual"
)

// SummaryService produces narrative and stance reports over annotated
// comments. It tries the primary model first, then the fallback model,
// and finally derives a deterministic manual report from the lexical
// classifications, so the operation as a whole cannot fail on model
// availability.
type SummaryService struct {
	primary  driven.LLMService
	fallback driven.LLMService
}

// NewSummaryService creates the service. Either backend may be nil.
func NewSummaryService(primary, fallback driven.LLMService) *SummaryService {
	return &SummaryService{primary: primary, fallback: fallback}
}

// backends returns the configured model chain in priority order.
func (s *SummaryService) backends() []driven.LLMService {
	var out []driven.LLMService
	if s.primary != nil {
		out = append(out, s.primary)
	}
	if s.fallback != nil {
		out = append(out, s.fallback)
	}
	return out
}

// Narratives identifies the main and secondary discussion themes.
func (s *SummaryService) Narratives(ctx context.Context, comments []domain.AnnotatedComment) (*driving.NarrativeReport, error) {
	if len(comments) == 0 {
		return nil, fmt.Errorf("%w: comments are required", domain.ErrInvalidInput)
	}

	sample := sampleTexts(comments, SampleSize)
	prompt := narrativePrompt(len(comments), sample)

	for _, backend := range s.backends() {
		report, err := s.generateNarratives(ctx, backend, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("narrative analysis via %s failed: %v", backend.ModelName(), err)
			continue
		}
		report.Model = backend.ModelName()
		return report, nil
	}

	logger.Info("falling back to manual narrative report")
	return manualNarratives(comments), nil
}

// ProContra extracts comments carrying the requested stance.
func (s *SummaryService) ProContra(ctx context.Context, comments []domain.AnnotatedComment, side driving.StanceSide) (*driving.ProContraReport, error) {
	if len(comments) == 0 {
		return nil, fmt.Errorf("%w: comments are required", domain.ErrInvalidInput)
	}
	if side != driving.StancePro && side != driving.StanceContra {
		return nil, fmt.Errorf("%w: side must be 'pro' or 'contra'", domain.ErrInvalidInput)
	}

	sample := sampleTexts(comments, SampleSize)
	prompt := proContraPrompt(side, sample)

	for _, backend := range s.backends() {
		report, err := s.generateProContra(ctx, backend, prompt, sample, side)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("%s stance analysis via %s failed: %v", side, backend.ModelName(), err)
			continue
		}
		report.Model = backend.ModelName()
		return report, nil
	}

	logger.Info("falling back to manual %s stance report", side)
	return manualProContra(comments, side), nil
}

// generateNarratives runs one backend and validates its output.
func (s *SummaryService) generateNarratives(ctx context.Context, backend driven.LLMService, prompt string) (*driving.NarrativeReport, error) {
	raw, err := generateWithRetry(ctx, backend, prompt)
	if err != nil {
		return nil, err
	}

	payload, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var report driving.NarrativeReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("decode narrative report: %w", err)
	}
	if err := validateNarratives(&report); err != nil {
		return nil, err
	}
	return &report, nil
}

// generateProContra runs one backend, validates, and attaches comment text.
func (s *SummaryService) generateProContra(ctx context.Context, backend driven.LLMService, prompt string, sample []string, side driving.StanceSide) (*driving.ProContraReport, error) {
	raw, err := generateWithRetry(ctx, backend, prompt)
	if err != nil {
		return nil, err
	}

	payload, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var report driving.ProContraReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("decode stance report: %w", err)
	}

	valid := report.Comments[:0]
	for _, sc := range report.Comments {
		if sc.Index < 1 || sc.Index > len(sample) {
			continue
		}
		if sc.Score < 1 || sc.Score > 10 {
			continue
		}
		sc.Text = sample[sc.Index-1]
		valid = append(valid, sc)
	}
	report.Comments = valid
	report.Side = side
	report.Summary.Total = len(valid)
	if len(sample) > 0 {
		report.Summary.Percentage = float64(len(valid)) / float64(len(sample)) * 100
	}
	return &report, nil
}

// generateWithRetry calls one backend with bounded backoff.
func generateWithRetry(ctx context.Context, backend driven.LLMService, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < generateRetries; attempt++ {
		if attempt > 0 {
			delay := generateRetryDelay * time.Duration(1<<(attempt-1))
			if err := waitContext(ctx, delay); err != nil {
				return "", err
			}
		}

		raw, err := backend.Generate(ctx, prompt, driven.GenerateOptions{
			MaxTokens:   2048,
			Temperature: 0.2,
		})
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

// validateNarratives enforces the fixed report schema.
func validateNarratives(r *driving.NarrativeReport) error {
	if r.MainNarrative.Title == "" {
		return fmt.Errorf("narrative report missing main narrative title")
	}
	if !validSentiment(r.MainNarrative.Sentiment) {
		return fmt.Errorf("narrative report has invalid sentiment %q", r.MainNarrative.Sentiment)
	}
	for i := range r.SecondaryNarratives {
		if r.SecondaryNarratives[i].Topic == "" {
			return fmt.Errorf("secondary narrative %d missing topic", i)
		}
		if !validSentiment(r.SecondaryNarratives[i].Sentiment) {
			return fmt.Errorf("secondary narrative %d has invalid sentiment", i)
		}
	}
	if len(r.SecondaryNarratives) > 4 {
		r.SecondaryNarratives = r.SecondaryNarratives[:4]
	}
	return nil
}

func validSentiment(s domain.Sentiment) bool {
	switch s {
	case domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral:
		return true
	}
	return false
}

// sampleTexts takes the first n non-empty comment texts.
func sampleTexts(comments []domain.AnnotatedComment, n int) []string {
	out := make([]string, 0, n)
	for _, c := range comments {
		if c.Text == "" {
			continue
		}
		out = append(out, c.Text)
		if len(out) == n {
			break
		}
	}
	return out
}

// narrativePrompt builds the theme-detection prompt.
func narrativePrompt(total int, sample []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze these %d TikTok comments and identify the main narrative and secondary narratives being discussed.\n\n", total)
	b.WriteString("Comments:\n")
	b.WriteString(strings.Join(sample, "\n---\n"))
	b.WriteString("\n\nReturn ONLY a JSON object with this shape:\n")
	b.WriteString(`{"mainNarrative":{"title":"...","description":"...","sentiment":"positive|negative|neutral","keywords":["..."],"percentage":0},` +
		`"secondaryNarratives":[{"topic":"...","sentiment":"positive|negative|neutral","keywords":["..."],"commentCount":0,"percentage":0}]}`)
	b.WriteString("\nList at most 4 secondary narratives.")
	return b.String()
}

// proContraPrompt builds the stance-extraction prompt.
func proContraPrompt(side driving.StanceSide, sample []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze these comments and determine which are %s.\n\nComments:\n", strings.ToUpper(string(side)))
	for i, text := range sample {
		fmt.Fprintf(&b, "%d. %s\n", i+1, text)
	}
	b.WriteString("\nReturn ONLY a JSON object with this shape:\n")
	b.WriteString(`{"comments":[{"index":1,"score":5,"reason":"..."}],"summary":{"total":0,"percentage":0,"themes":["..."]}}`)
	b.WriteString("\nIndexes are 1-based into the list above; scores run from 1 (weak) to 10 (strong).")
	return b.String()
}

// manualNarratives derives a deterministic report from the lexical
// classifications when no model is reachable.
func manualNarratives(comments []domain.AnnotatedComment) *driving.NarrativeReport {
	agg := domain.Summarize(comments)

	dominant := domain.SentimentNeutral
	count := agg.SentimentCounts.Neutral
	if agg.SentimentCounts.Positive > count {
		dominant, count = domain.SentimentPositive, agg.SentimentCounts.Positive
	}
	if agg.SentimentCounts.Negative > count {
		dominant, count = domain.SentimentNegative, agg.SentimentCounts.Negative
	}

	pct := 0.0
	if agg.TotalComments > 0 {
		pct = float64(count) / float64(agg.TotalComments) * 100
	}

	return &driving.NarrativeReport{
		MainNarrative: driving.MainNarrative{
			Title: "General discussion",
			Description: fmt.Sprintf(
				"Lexical summary of %d comments: %d positive, %d negative, %d neutral; %d flagged as likely bots.",
				agg.TotalComments, agg.SentimentCounts.Positive, agg.SentimentCounts.Negative,
				agg.SentimentCounts.Neutral, agg.BotComments),
			Sentiment:  dominant,
			Keywords:   topWords(comments, 5),
			Percentage: pct,
		},
		Model: manualModelName,
	}
}

// manualProContra maps stance onto the lexical sentiment labels when no
// model is reachable: pro follows positive, contra follows negative.
func manualProContra(comments []domain.AnnotatedComment, side driving.StanceSide) *driving.ProContraReport {
	want := domain.SentimentPositive
	if side == driving.StanceContra {
		want = domain.SentimentNegative
	}

	report := &driving.ProContraReport{Side: side, Model: manualModelName}
	sampled := 0
	for _, c := range comments {
		if c.Text == "" {
			continue
		}
		sampled++
		if sampled > SampleSize {
			sampled = SampleSize
			break
		}
		if c.Sentiment != want {
			continue
		}
		report.Comments = append(report.Comments, driving.StanceComment{
			Index:  sampled,
			Score:  5,
			Reason: fmt.Sprintf("matched %s lexicon terms", want),
			Text:   c.Text,
		})
	}

	report.Summary.Total = len(report.Comments)
	if sampled > 0 {
		report.Summary.Percentage = float64(len(report.Comments)) / float64(sampled) * 100
	}
	report.Summary.Themes = topWords(comments, 3)
	return report
}

// topWords returns the n most frequent words of length > 3, ordered by
// count then alphabetically so the output is stable.
func topWords(comments []domain.AnnotatedComment, n int) []string {
	counts := make(map[string]int)
	for _, c := range comments {
		for _, w := range strings.Fields(strings.ToLower(c.Text)) {
			w = strings.Trim(w, ".,!?#@\"'()[]")
			if len(w) > 3 {
				counts[w]++
			}
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > n {
		words = words[:n]
	}
	return words
}
