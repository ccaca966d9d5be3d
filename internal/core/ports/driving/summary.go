package driving

import (
	"context"

	"github.com/custodia-labs/komenta/internal/core/domain"
)

// NarrativeReport describes the discussion themes found in a comment set.
type NarrativeReport struct {
	MainNarrative       MainNarrative        `json:"mainNarrative"`
	SecondaryNarratives []SecondaryNarrative `json:"secondaryNarratives"`

	// Model records which backend produced the report ("manual" for the
	// deterministic fallback).
	Model string `json:"model"`
}

// MainNarrative is the primary topic of a comment set.
type MainNarrative struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Sentiment   domain.Sentiment `json:"sentiment"`
	Keywords    []string         `json:"keywords"`
	Percentage  float64          `json:"percentage"`
}

// SecondaryNarrative is one of the smaller discussion themes.
type SecondaryNarrative struct {
	Topic        string           `json:"topic"`
	Sentiment    domain.Sentiment `json:"sentiment"`
	Keywords     []string         `json:"keywords"`
	CommentCount int              `json:"commentCount"`
	Percentage   float64          `json:"percentage"`
}

// StanceSide selects which stance a pro/contra analysis extracts.
type StanceSide string

const (
	StancePro    StanceSide = "pro"
	StanceContra StanceSide = "contra"
)

// StanceComment is one comment judged to carry the requested stance.
type StanceComment struct {
	// Index is the 1-based position in the analysed sample.
	Index int `json:"index"`

	// Score is the stance strength from 1 to 10.
	Score int `json:"score"`

	// Reason explains why the comment was judged pro or contra.
	Reason string `json:"reason"`

	// Text is the comment text, attached after validation.
	Text string `json:"text,omitempty"`
}

// ProContraReport is the result of a stance analysis over a comment sample.
type ProContraReport struct {
	Side     StanceSide      `json:"side"`
	Comments []StanceComment `json:"comments"`
	Summary  StanceSummary   `json:"summary"`
	Model    string          `json:"model"`
}

// StanceSummary aggregates a stance analysis.
type StanceSummary struct {
	Total      int      `json:"total"`
	Percentage float64  `json:"percentage"`
	Themes     []string `json:"themes"`
}

// SummaryService produces narrative and stance reports from annotated
// comments via a primary model, a fallback model, and a deterministic
// manual fallback.
type SummaryService interface {
	Narratives(ctx context.Context, comments []domain.AnnotatedComment) (*NarrativeReport, error)
	ProContra(ctx context.Context, comments []domain.AnnotatedComment, side StanceSide) (*ProContraReport, error)
}
