package events

import (
	"context"

	"sailclub/internal/core/domain"
	"sailclub/internal/core/ports"
)

// NotifyHandler forwards task events to the notifier. Updates that changed
// nothing are not worth a mail.
type NotifyHandler struct {
	notifier ports.Notifier
}

func NewNotifyHandler(notifier ports.Notifier) *NotifyHandler {
	return &NotifyHandler{notifier: notifier}
}

func (h *NotifyHandler) Name() string { return "notify" }

func (h *NotifyHandler) Handle(ctx context.Context, event domain.TaskEvent) error {
	if event.Kind == domain.EventTaskUpdated && len(event.Changes) == 0 {
		return nil
	}
	return h.notifier.NotifyTaskEvent(ctx, event)
}
