package domain

import "time"

type EventKind string

const (
	EventTaskCreated      EventKind = "created"
	EventTaskUpdated      EventKind = "updated"
	EventCaptainSignedUp  EventKind = "captain_signed_up"
	EventHelperSignedUp   EventKind = "helper_signed_up"
	EventCaptainRemoved   EventKind = "captain_removed"
	EventHelperRemoved    EventKind = "helper_removed"
	EventTaskMarkedAsDone EventKind = "marked_as_done"
	EventTaskValidated    EventKind = "validated"
)

// TaskEvent is emitted after a task mutation has been committed.
type TaskEvent struct {
	ID         string
	Kind       EventKind
	Task       HelperTask
	Previous   *HelperTask
	Actor      MemberRef
	Changes    []FieldChange
	OccurredAt time.Time
}

// Groups returns the labelled change groups of the event.
func (e TaskEvent) Groups() []ChangeGroup {
	return GroupChanges(e.Changes)
}

// RemovedHelpers lists helpers present before the event and gone after it.
func (e TaskEvent) RemovedHelpers() []MemberRef {
	if e.Previous == nil {
		return nil
	}
	var removed []MemberRef
	for _, h := range e.Previous.Helpers {
		if !e.Task.IsHelper(h.Member.ID) {
			removed = append(removed, h.Member)
		}
	}
	return removed
}

// AuditEntry is the persisted form of a TaskEvent.
type AuditEntry struct {
	ID         string
	TaskID     uint64
	ActorID    uint64
	Kind       EventKind
	Changes    []FieldChange
	OccurredAt time.Time
}

func (e TaskEvent) AuditEntry() AuditEntry {
	return AuditEntry{
		ID:         e.ID,
		TaskID:     e.Task.ID,
		ActorID:    e.Actor.ID,
		Kind:       e.Kind,
		Changes:    e.Changes,
		OccurredAt: e.OccurredAt,
	}
}
