package memory

import (
	"context"
	"sync"

	"sailclub/internal/core/domain"
	"sailclub/internal/core/ports"
)

type AuditRepository struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) RecordTaskEvent(_ context.Context, entry domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *AuditRepository) Entries() []domain.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]domain.AuditEntry, len(r.entries))
	copy(entries, r.entries)
	return entries
}
