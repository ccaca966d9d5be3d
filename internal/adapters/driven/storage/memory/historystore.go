// Package memory provides in-memory implementations of driven port interfaces.
// Useful for tests and for running the server without persistence.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/komenta/internal/core/domain"
	"github.com/custodia-labs/komenta/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.SearchRecord
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		records: make(map[string]domain.SearchRecord),
	}
}

// Save stores a completed search run.
func (s *HistoryStore) Save(_ context.Context, rec domain.SearchRecord) error {
	if rec.ID == "" || rec.Query == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	return nil
}

// List returns the most recent search runs, newest first.
func (s *HistoryStore) List(_ context.Context, limit int) ([]domain.SearchRecord, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.SearchRecord, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})

	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Close releases resources.
func (s *HistoryStore) Close() error {
	return nil
}
