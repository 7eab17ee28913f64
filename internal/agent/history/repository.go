// Package history records processed commands for the history endpoint.
// Writes are best-effort: a failed write never fails the command response.
package history

import (
	"context"
	"sync"

	"ai-command-agent/internal/models"
)

// Repository persists command records.
type Repository interface {
	Save(ctx context.Context, record models.CommandRecord) error
	FindRecent(ctx context.Context, limit int) ([]models.CommandRecord, error)
	FindByStatus(ctx context.Context, status string, limit int) ([]models.CommandRecord, error)
}

// MemoryRepository keeps the most recent records in memory, bounded by
// maxSize. Oldest entries are evicted first.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []models.CommandRecord
	maxSize int
}

func NewMemoryRepository(maxSize int) *MemoryRepository {
	if maxSize < 1 {
		maxSize = 1000
	}
	return &MemoryRepository{maxSize: maxSize}
}

func (r *MemoryRepository) Save(ctx context.Context, record models.CommandRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, record)
	if len(r.records) > r.maxSize {
		r.records = r.records[len(r.records)-r.maxSize:]
	}
	return nil
}

// FindRecent returns up to limit records, newest first.
func (r *MemoryRepository) FindRecent(ctx context.Context, limit int) ([]models.CommandRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit < 1 || limit > len(r.records) {
		limit = len(r.records)
	}

	out := make([]models.CommandRecord, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}

// FindByStatus returns up to limit records with the given status, newest first.
func (r *MemoryRepository) FindByStatus(ctx context.Context, status string, limit int) ([]models.CommandRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit < 1 {
		limit = len(r.records)
	}

	out := make([]models.CommandRecord, 0)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if r.records[i].Status == status {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}
