package domain

import (
	"fmt"
	"time"
)

// ValidationRequest splits every currently signed-up helper into the ones whose
// help is confirmed and the ones to drop from the task.
type ValidationRequest struct {
	ValidateHelperIDs []uint64
	RemoveHelperIDs   []uint64
	Comment           *string
}

func MarkAsDone(t HelperTask, by MemberRef, comment *string, now time.Time) (HelperTask, error) {
	if err := checkPending(t); err != nil {
		return HelperTask{}, err
	}
	if notStarted(t, now) {
		return HelperTask{}, NewConflict(ConflictTaskDoneBeforeStart, "Cannot mark a task as done before it starts", nil)
	}

	next := t.Clone()
	setDone(&next, by, comment, now)
	return next, nil
}

func Validate(t HelperTask, by MemberRef, req ValidationRequest, now time.Time) (HelperTask, error) {
	if t.State() == TaskStateValidated {
		return HelperTask{}, NewConflict(ConflictTaskAlreadyValidated, "Task is already validated", nil)
	}
	if notStarted(t, now) {
		return HelperTask{}, NewConflict(ConflictTaskValidateBeforeStart, "Cannot validate a task before it starts", nil)
	}

	remove := make(map[uint64]struct{}, len(req.RemoveHelperIDs))
	for _, id := range req.RemoveHelperIDs {
		remove[id] = struct{}{}
	}
	requested := make(map[uint64]struct{}, len(req.ValidateHelperIDs)+len(req.RemoveHelperIDs))
	for _, id := range req.ValidateHelperIDs {
		if _, dup := remove[id]; dup {
			return HelperTask{}, invalid("helpers", fmt.Sprintf("member %d is both validated and removed", id))
		}
		requested[id] = struct{}{}
	}
	for id := range remove {
		requested[id] = struct{}{}
	}
	if !sameMembers(requested, t.Helpers) {
		return HelperTask{}, NewConflict(ConflictTaskValidationIncomplete, "Validation request is missing helpers", nil)
	}

	next := t.Clone()
	if next.MarkedAsDoneAt == nil {
		setDone(&next, by, nil, now)
	}
	validatedAt := now
	validator := by
	next.ValidatedAt = &validatedAt
	next.ValidatedBy = &validator
	next.ValidationComment = req.Comment

	kept := make([]HelperSignup, 0, len(next.Helpers))
	for _, h := range next.Helpers {
		if _, drop := remove[h.Member.ID]; !drop {
			kept = append(kept, h)
		}
	}
	next.Helpers = kept
	return next, nil
}

func SignUpAsCaptain(t HelperTask, m Member, now time.Time) (HelperTask, error) {
	if err := checkOpenForSignup(t, m.ID, now); err != nil {
		return HelperTask{}, err
	}
	if t.Captain != nil {
		return HelperTask{}, NewConflict(ConflictTaskCaptainTaken, "Task already has a captain", nil)
	}
	if l := t.CaptainRequiredLicence; l != nil && !m.HoldsActiveLicence(l.ID) {
		return HelperTask{}, NewConflict(
			ConflictTaskCaptainNeedsLicence,
			"Task captain needs licence: "+l.Code,
			map[string]any{"Licence": l.Code},
		)
	}

	next := t.Clone()
	captain := m.Ref()
	signedUpAt := now
	next.Captain = &captain
	next.CaptainSignedUpAt = &signedUpAt
	return next, nil
}

func SignUpAsHelper(t HelperTask, m Member, now time.Time) (HelperTask, error) {
	if err := checkOpenForSignup(t, m.ID, now); err != nil {
		return HelperTask{}, err
	}
	if len(t.Helpers) >= t.HelperMaxCount {
		return HelperTask{}, NewConflict(ConflictTaskHelperLimitReached, "Task helper limit reached", nil)
	}

	next := t.Clone()
	next.Helpers = append(next.Helpers, HelperSignup{Member: m.Ref(), SignedUpAt: now})
	return next, nil
}

func RemoveCaptain(t HelperTask) (HelperTask, error) {
	if err := checkPending(t); err != nil {
		return HelperTask{}, err
	}
	if t.Captain == nil {
		return HelperTask{}, NewConflict(ConflictTaskNotSignedUp, "Member is not signed up for this task", nil)
	}

	next := t.Clone()
	next.Captain = nil
	next.CaptainSignedUpAt = nil
	return next, nil
}

func RemoveHelper(t HelperTask, memberID uint64) (HelperTask, error) {
	if err := checkPending(t); err != nil {
		return HelperTask{}, err
	}
	if !t.IsHelper(memberID) {
		return HelperTask{}, NewConflict(ConflictTaskNotSignedUp, "Member is not signed up for this task", nil)
	}

	next := t.Clone()
	kept := make([]HelperSignup, 0, len(next.Helpers))
	for _, h := range next.Helpers {
		if h.Member.ID != memberID {
			kept = append(kept, h)
		}
	}
	next.Helpers = kept
	return next, nil
}

// CheckUpdate applies the rules guarding an edit of current into proposed.
// captain is the signed-up captain with licences loaded, or nil when the slot is empty.
func CheckUpdate(current, proposed HelperTask, captain *Member) error {
	timingChanged := !current.Timing.Equal(proposed.Timing)

	if current.HasSignups() && timingChanged {
		return NewConflict(ConflictTaskTimingLocked, "Cannot change timing after anyone has signed up", nil)
	}
	if current.HasSignups() && !proposed.Published {
		return NewConflict(ConflictTaskUnpublishLocked, "Cannot unpublish a task after anyone has signed up", nil)
	}
	if timingChanged && current.State() != TaskStatePending {
		return NewConflict(ConflictTaskTimingAfterDone, "Cannot change timing after the task has been marked as done", nil)
	}
	if captain != nil && licenceChanged(current.CaptainRequiredLicence, proposed.CaptainRequiredLicence) {
		if l := proposed.CaptainRequiredLicence; l != nil && !captain.HoldsActiveLicence(l.ID) {
			return NewConflict(
				ConflictTaskCaptainLacksLicence,
				"Signed-up captain does not hold licence: "+l.Code,
				map[string]any{"Licence": l.Code},
			)
		}
	}
	if proposed.HelperMaxCount < len(current.Helpers) {
		return NewConflict(
			ConflictTaskHelperMaxBelowCount,
			fmt.Sprintf("Cannot set helper maximum below the %d signed-up helpers", len(current.Helpers)),
			map[string]any{"Count": len(current.Helpers)},
		)
	}
	if proposed.HelperMinCount > proposed.HelperMaxCount {
		return NewConflict(ConflictTaskCapacityInconsistent, "Helper minimum must not exceed helper maximum", nil)
	}
	return nil
}

func checkPending(t HelperTask) error {
	switch t.State() {
	case TaskStateValidated:
		return NewConflict(ConflictTaskAlreadyValidated, "Task is already validated", nil)
	case TaskStateDone:
		return NewConflict(ConflictTaskAlreadyDone, "Task is already marked as done", nil)
	}
	return nil
}

func checkOpenForSignup(t HelperTask, memberID uint64, now time.Time) error {
	if !t.Published {
		return NewConflict(ConflictTaskNotPublished, "Task is not published", nil)
	}
	if err := checkPending(t); err != nil {
		return err
	}
	if start, ok := t.Start(); ok && start.Before(now) {
		return NewConflict(ConflictTaskExpired, "Task has already started or expired", nil)
	}
	if t.IsCaptain(memberID) || t.IsHelper(memberID) {
		return NewConflict(ConflictTaskAlreadySignedUp, "Member is already signed up for this task", nil)
	}
	return nil
}

func notStarted(t HelperTask, now time.Time) bool {
	start, ok := t.Start()
	return ok && now.Before(start)
}

func setDone(t *HelperTask, by MemberRef, comment *string, now time.Time) {
	doneAt := now
	actor := by
	t.MarkedAsDoneAt = &doneAt
	t.MarkedAsDoneBy = &actor
	t.MarkedAsDoneComment = comment
}

func sameMembers(ids map[uint64]struct{}, helpers []HelperSignup) bool {
	if len(ids) != len(helpers) {
		return false
	}
	for _, h := range helpers {
		if _, ok := ids[h.Member.ID]; !ok {
			return false
		}
	}
	return true
}

func licenceChanged(a, b *Licence) bool {
	if a == nil || b == nil {
		return a != b
	}
	return a.ID != b.ID
}
