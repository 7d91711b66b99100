package db

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"sailclub/internal/core/domain"
	"sailclub/internal/core/ports"
)

const insertAuditEntryQuery = `
INSERT INTO helper_task_audit_log (id, task_id, actor_id, kind, changes, created_at)
VALUES (?, ?, ?, ?, ?, ?);
`

type AuditRepository struct {
	db *sqlx.DB
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) RecordTaskEvent(ctx context.Context, entry domain.AuditEntry) error {
	changes := entry.Changes
	if changes == nil {
		changes = []domain.FieldChange{}
	}
	payload, err := json.Marshal(changes)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, insertAuditEntryQuery,
		entry.ID,
		entry.TaskID,
		entry.ActorID,
		string(entry.Kind),
		string(payload),
		entry.OccurredAt,
	)
	return err
}
