package driven

import (
	"context"

	"github.com/custodia-labs/komenta/internal/core/domain"
)

// HistoryStore persists completed analysis runs.
type HistoryStore interface {
	// Save stores one search record.
	Save(ctx context.Context, rec domain.SearchRecord) error

	// List returns the most recent records, newest first.
	List(ctx context.Context, limit int) ([]domain.SearchRecord, error)

	// Close releases resources.
	Close() error
}
