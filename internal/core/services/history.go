package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/komenta/internal/core/domain"
	"github.com/custodia-labs/komenta/internal/core/ports/driven"
	"github.com/custodia-labs/komenta/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// DefaultHistoryLimit is how many records Recent returns by default.
const DefaultHistoryLimit = 20

// HistoryService exposes saved analysis runs.
type HistoryService struct {
	store driven.HistoryStore
}

// NewHistoryService creates the history service.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// Recent returns the most recent search records, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.SearchRecord, error) {
	if s.store == nil {
		return nil, fmt.Errorf("history store not configured")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.List(ctx, limit)
}
