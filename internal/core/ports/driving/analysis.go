// Package driving provides interfaces for application entry points (primary/inbound ports).
package driving

import (
	"context"

	"github.com/custodia-labs/komenta/internal/core/domain"
)

// AnalysisService runs the full ingestion pipeline for one query:
// resolve videos, paginate comments, classify, and reduce.
type AnalysisService interface {
	// Analyze executes the query and returns the aggregate result.
	// Soft empty-result outcomes are reported as domain.ErrNoVideos or
	// domain.ErrNoComments, never as transport failures.
	Analyze(ctx context.Context, q domain.Query) (*domain.AggregateResult, error)
}

// HistoryService exposes saved analysis runs.
type HistoryService interface {
	// Recent returns the most recent search records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.SearchRecord, error)
}
