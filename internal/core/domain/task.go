package domain

import (
	"strings"
	"time"
)

type TaskType string

const (
	TaskTypeShift    TaskType = "shift"
	TaskTypeDeadline TaskType = "deadline"
	TaskTypeUnknown  TaskType = "unknown"
)

type TaskState string

const (
	TaskStatePending   TaskState = "pending"
	TaskStateDone      TaskState = "done"
	TaskStateValidated TaskState = "validated"
)

type Category struct {
	ID               uint64
	Title            string
	ShortDescription string
	LongDescription  *string
}

// Timing holds either a shift window (StartsAt, EndsAt) or a Deadline.
type Timing struct {
	StartsAt *time.Time
	EndsAt   *time.Time
	Deadline *time.Time
}

func (t Timing) Equal(other Timing) bool {
	return equalTime(t.StartsAt, other.StartsAt) &&
		equalTime(t.EndsAt, other.EndsAt) &&
		equalTime(t.Deadline, other.Deadline)
}

// Values returns the non-null timing points in starts_at, ends_at, deadline order.
func (t Timing) Values() []time.Time {
	values := make([]time.Time, 0, 3)
	for _, v := range []*time.Time{t.StartsAt, t.EndsAt, t.Deadline} {
		if v != nil {
			values = append(values, *v)
		}
	}
	return values
}

func (t Timing) Validate() error {
	switch {
	case t.StartsAt != nil && t.EndsAt != nil && t.Deadline == nil:
		if !t.StartsAt.Before(*t.EndsAt) {
			return invalid("timing", "starts_at must be before ends_at")
		}
		if t.StartsAt.Year() != t.EndsAt.Year() {
			return invalid("timing", "a shift must start and end in the same year")
		}
		return nil
	case t.StartsAt == nil && t.EndsAt == nil && t.Deadline != nil:
		return nil
	}
	return invalid("timing", "either starts_at and ends_at or a deadline must be set")
}

type HelperSignup struct {
	Member     MemberRef
	SignedUpAt time.Time
}

type HelperTask struct {
	ID               uint64
	Category         Category
	Title            string
	ShortDescription string
	LongDescription  *string
	Contact          MemberRef
	Timing           Timing
	HelperMinCount   int
	HelperMaxCount   int
	Urgent           bool
	Published        bool

	Captain                *MemberRef
	CaptainSignedUpAt      *time.Time
	CaptainRequiredLicence *Licence
	Helpers                []HelperSignup

	MarkedAsDoneAt      *time.Time
	MarkedAsDoneBy      *MemberRef
	MarkedAsDoneComment *string

	ValidatedAt       *time.Time
	ValidatedBy       *MemberRef
	ValidationComment *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t HelperTask) Type() TaskType {
	switch {
	case t.Timing.StartsAt != nil && t.Timing.EndsAt != nil && t.Timing.Deadline == nil:
		return TaskTypeShift
	case t.Timing.StartsAt == nil && t.Timing.EndsAt == nil && t.Timing.Deadline != nil:
		return TaskTypeDeadline
	}
	return TaskTypeUnknown
}

func (t HelperTask) State() TaskState {
	switch {
	case t.ValidatedAt != nil:
		return TaskStateValidated
	case t.MarkedAsDoneAt != nil:
		return TaskStateDone
	}
	return TaskStatePending
}

// Start is starts_at for shifts and the deadline for deadline tasks.
func (t HelperTask) Start() (time.Time, bool) {
	switch t.Type() {
	case TaskTypeShift:
		return *t.Timing.StartsAt, true
	case TaskTypeDeadline:
		return *t.Timing.Deadline, true
	}
	return time.Time{}, false
}

func (t HelperTask) HasSignups() bool {
	return t.Captain != nil || len(t.Helpers) > 0
}

func (t HelperTask) IsCaptain(memberID uint64) bool {
	return t.Captain != nil && t.Captain.ID == memberID
}

func (t HelperTask) IsHelper(memberID uint64) bool {
	for _, h := range t.Helpers {
		if h.Member.ID == memberID {
			return true
		}
	}
	return false
}

func (t HelperTask) IsContact(memberID uint64) bool {
	return t.Contact.ID == memberID
}

// Clone returns a copy that shares no mutable state with t.
func (t HelperTask) Clone() HelperTask {
	clone := t
	if t.Helpers != nil {
		clone.Helpers = make([]HelperSignup, len(t.Helpers))
		copy(clone.Helpers, t.Helpers)
	}
	return clone
}

// TaskFields are the editable attributes of a task as sent by create and update.
type TaskFields struct {
	CategoryID               uint64
	Title                    string
	ShortDescription         string
	LongDescription          *string
	ContactID                uint64
	Timing                   Timing
	HelperMinCount           int
	HelperMaxCount           int
	Urgent                   bool
	Published                bool
	CaptainRequiredLicenceID *uint64
}

// Validate checks a task about to be created.
func (f TaskFields) Validate() error {
	if err := f.ValidateShape(); err != nil {
		return err
	}
	if f.HelperMinCount > f.HelperMaxCount {
		return invalid("helper_max_count", "must not be below helper_min_count")
	}
	return nil
}

// ValidateShape checks everything that does not depend on the stored task.
// Updates leave the capacity relation to CheckUpdate, which reports it as a conflict.
func (f TaskFields) ValidateShape() error {
	if strings.TrimSpace(f.Title) == "" {
		return invalid("title", "must not be blank")
	}
	if strings.TrimSpace(f.ShortDescription) == "" {
		return invalid("short_description", "must not be blank")
	}
	if f.CategoryID == 0 {
		return invalid("category_id", "is required")
	}
	if f.ContactID == 0 {
		return invalid("contact_id", "is required")
	}
	if err := f.Timing.Validate(); err != nil {
		return err
	}
	if f.HelperMinCount < 0 {
		return invalid("helper_min_count", "must not be negative")
	}
	return nil
}

// TaskReferences are the entities a TaskFields value points to, resolved by the caller.
type TaskReferences struct {
	Category Category
	Contact  MemberRef
	Licence  *Licence
}

// WithFields returns t with its editable attributes replaced. Sign-ups and
// lifecycle timestamps are carried over untouched.
func (t HelperTask) WithFields(f TaskFields, refs TaskReferences) HelperTask {
	next := t.Clone()
	next.Category = refs.Category
	next.Title = strings.TrimSpace(f.Title)
	next.ShortDescription = strings.TrimSpace(f.ShortDescription)
	next.LongDescription = f.LongDescription
	next.Contact = refs.Contact
	next.Timing = f.Timing
	next.HelperMinCount = f.HelperMinCount
	next.HelperMaxCount = f.HelperMaxCount
	next.Urgent = f.Urgent
	next.Published = f.Published
	next.CaptainRequiredLicence = refs.Licence
	return next
}

type TaskFilter struct {
	Year          *int
	PublishedOnly bool
}

func (f TaskFilter) Matches(t HelperTask) bool {
	if f.PublishedOnly && !t.Published {
		return false
	}
	if f.Year != nil {
		start, ok := t.Start()
		if !ok || start.Year() != *f.Year {
			return false
		}
	}
	return true
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
