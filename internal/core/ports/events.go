package ports

import (
	"context"

	"sailclub/internal/core/domain"
)

// EventPublisher receives events once the mutation behind them is committed.
// Publish must not block the caller.
type EventPublisher interface {
	Publish(event domain.TaskEvent)
}

type AuditRepository interface {
	RecordTaskEvent(ctx context.Context, entry domain.AuditEntry) error
}

type Notifier interface {
	NotifyTaskEvent(ctx context.Context, event domain.TaskEvent) error
	SendUpcomingReminder(ctx context.Context, reminder domain.UpcomingReminder) error
	SendOverdueReminder(ctx context.Context, reminder domain.OverdueReminder) error
}

// JobLocker grants a named lock shared by every process using the same store.
// When acquired is false another holder owns the lock and release is nil.
type JobLocker interface {
	TryLock(ctx context.Context, name string) (release func(), acquired bool, err error)
}
