package events

import (
	"context"

	"sailclub/internal/core/domain"
	"sailclub/internal/core/ports"
)

// AuditHandler persists every task event to the audit log.
type AuditHandler struct {
	repository ports.AuditRepository
}

func NewAuditHandler(repository ports.AuditRepository) *AuditHandler {
	return &AuditHandler{repository: repository}
}

func (h *AuditHandler) Name() string { return "audit" }

func (h *AuditHandler) Handle(ctx context.Context, event domain.TaskEvent) error {
	return h.repository.RecordTaskEvent(ctx, event.AuditEntry())
}
