package domain

import (
	"sort"
	"time"
)

// Reminder windows.
const (
	UpcomingReminderFarDays  = 14
	UpcomingReminderNearDays = 3
	ShiftOverdueGracePeriod  = 7 * 24 * time.Hour
)

type ReminderKind string

const (
	ReminderNone     ReminderKind = "none"
	ReminderUpcoming ReminderKind = "upcoming"
	ReminderOverdue  ReminderKind = "overdue"
)

type TaskWarning string

const (
	WarningMissingCaptain   TaskWarning = "missing_captain"
	WarningNotEnoughHelpers TaskWarning = "not_enough_helpers"
)

type UpcomingReminder struct {
	Task     HelperTask
	Warnings []TaskWarning
}

type OverdueReminder struct {
	Contact MemberRef
	Tasks   []HelperTask
}

type ReminderPlan struct {
	Upcoming []UpcomingReminder
	Overdue  []OverdueReminder
	// WithoutTiming lists candidate tasks that carry no timing value at all.
	WithoutTiming []uint64
}

// ReminderCandidateCutoff is the exclusive upper bound a storage query can use to
// prefilter candidates: nothing at or after it can be selected by IsReminderCandidate.
func ReminderCandidateCutoff(now time.Time) time.Time {
	return startOfDay(now).AddDate(0, 0, UpcomingReminderFarDays+1)
}

// IsReminderCandidate selects unvalidated tasks with a timing value that falls on
// the day 14 days ahead, on the day 3 days ahead, or no later than today.
func IsReminderCandidate(t HelperTask, now time.Time) bool {
	if t.ValidatedAt != nil || t.ValidatedBy != nil {
		return false
	}
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	far := today.AddDate(0, 0, UpcomingReminderFarDays)
	near := today.AddDate(0, 0, UpcomingReminderNearDays)

	for _, v := range t.Timing.Values() {
		if v.Before(tomorrow) || sameDay(v, far) || sameDay(v, near) {
			return true
		}
	}
	return false
}

// ClassifyReminder returns which reminder t deserves at now. ok is false when t
// has no timing value to classify against.
func ClassifyReminder(t HelperTask, now time.Time) (kind ReminderKind, ok bool) {
	values := t.Timing.Values()
	if len(values) == 0 {
		return ReminderNone, false
	}
	earliest, latest := values[0], values[0]
	for _, v := range values[1:] {
		if v.Before(earliest) {
			earliest = v
		}
		if v.After(latest) {
			latest = v
		}
	}

	switch {
	case now.Before(earliest):
		return ReminderUpcoming, true
	case latest.Before(now):
		// Shifts get a grace period so organizers can validate before being chased.
		if t.Type() == TaskTypeShift && now.Sub(latest) <= ShiftOverdueGracePeriod {
			return ReminderNone, true
		}
		return ReminderOverdue, true
	}
	return ReminderNone, true
}

func TaskWarnings(t HelperTask) []TaskWarning {
	var warnings []TaskWarning
	if t.Captain == nil {
		warnings = append(warnings, WarningMissingCaptain)
	}
	if len(t.Helpers) < t.HelperMinCount {
		warnings = append(warnings, WarningNotEnoughHelpers)
	}
	return warnings
}

// PlanReminders buckets tasks into individual upcoming reminders and overdue
// reminders grouped per contact. Publication status and year are ignored.
func PlanReminders(tasks []HelperTask, now time.Time) ReminderPlan {
	var plan ReminderPlan
	overdue := make(map[uint64]*OverdueReminder)

	for _, t := range tasks {
		if !IsReminderCandidate(t, now) {
			continue
		}
		kind, ok := ClassifyReminder(t, now)
		if !ok {
			plan.WithoutTiming = append(plan.WithoutTiming, t.ID)
			continue
		}
		switch kind {
		case ReminderUpcoming:
			plan.Upcoming = append(plan.Upcoming, UpcomingReminder{Task: t, Warnings: TaskWarnings(t)})
		case ReminderOverdue:
			group, exists := overdue[t.Contact.ID]
			if !exists {
				group = &OverdueReminder{Contact: t.Contact}
				overdue[t.Contact.ID] = group
			}
			group.Tasks = append(group.Tasks, t)
		}
	}

	for _, group := range overdue {
		sort.SliceStable(group.Tasks, func(i, j int) bool {
			return group.Tasks[i].ID < group.Tasks[j].ID
		})
		plan.Overdue = append(plan.Overdue, *group)
	}
	sort.Slice(plan.Overdue, func(i, j int) bool {
		return plan.Overdue[i].Contact.ID < plan.Overdue[j].Contact.ID
	})
	return plan
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(v, day time.Time) bool {
	v = v.In(day.Location())
	y1, m1, d1 := v.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
