package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// FieldChange is one (field path, old, new) tuple of a snapshot diff.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

type ChangeGroup string

const (
	ChangeGroupCategory    ChangeGroup = "category"
	ChangeGroupDescription ChangeGroup = "description"
	ChangeGroupContact     ChangeGroup = "contact"
	ChangeGroupTiming      ChangeGroup = "timing"
	ChangeGroupCapacity    ChangeGroup = "capacity"
	ChangeGroupFlags       ChangeGroup = "flags"
	ChangeGroupCaptain     ChangeGroup = "captain"
	ChangeGroupLicence     ChangeGroup = "licence"
	ChangeGroupHelpers     ChangeGroup = "helpers"
	ChangeGroupCompletion  ChangeGroup = "completion"
	ChangeGroupValidation  ChangeGroup = "validation"
)

// changeGroups labels every snapshot field path. A path missing from the table
// is reported under its own name.
var changeGroups = map[string]ChangeGroup{
	"category.id":                 ChangeGroupCategory,
	"title":                       ChangeGroupDescription,
	"short_description":           ChangeGroupDescription,
	"long_description":            ChangeGroupDescription,
	"contact.id":                  ChangeGroupContact,
	"timing.starts_at":            ChangeGroupTiming,
	"timing.ends_at":              ChangeGroupTiming,
	"timing.deadline":             ChangeGroupTiming,
	"helper_min_count":            ChangeGroupCapacity,
	"helper_max_count":            ChangeGroupCapacity,
	"urgent":                      ChangeGroupFlags,
	"published":                   ChangeGroupFlags,
	"captain.id":                  ChangeGroupCaptain,
	"captain.signed_up_at":        ChangeGroupCaptain,
	"captain_required_licence.id": ChangeGroupLicence,
	"helpers":                     ChangeGroupHelpers,
	"marked_as_done.at":           ChangeGroupCompletion,
	"marked_as_done.by":           ChangeGroupCompletion,
	"marked_as_done.comment":      ChangeGroupCompletion,
	"validated.at":                ChangeGroupValidation,
	"validated.by":                ChangeGroupValidation,
	"validated.comment":           ChangeGroupValidation,
}

type snapshotField struct {
	path  string
	value string
}

// snapshot flattens the comparable state of t into ordered field paths.
func snapshot(t HelperTask) []snapshotField {
	return []snapshotField{
		{"category.id", formatID(t.Category.ID)},
		{"title", t.Title},
		{"short_description", t.ShortDescription},
		{"long_description", formatString(t.LongDescription)},
		{"contact.id", formatID(t.Contact.ID)},
		{"timing.starts_at", formatTime(t.Timing.StartsAt)},
		{"timing.ends_at", formatTime(t.Timing.EndsAt)},
		{"timing.deadline", formatTime(t.Timing.Deadline)},
		{"helper_min_count", strconv.Itoa(t.HelperMinCount)},
		{"helper_max_count", strconv.Itoa(t.HelperMaxCount)},
		{"urgent", strconv.FormatBool(t.Urgent)},
		{"published", strconv.FormatBool(t.Published)},
		{"captain.id", formatRef(t.Captain)},
		{"captain.signed_up_at", formatTime(t.CaptainSignedUpAt)},
		{"captain_required_licence.id", formatLicence(t.CaptainRequiredLicence)},
		{"helpers", formatHelpers(t.Helpers)},
		{"marked_as_done.at", formatTime(t.MarkedAsDoneAt)},
		{"marked_as_done.by", formatRef(t.MarkedAsDoneBy)},
		{"marked_as_done.comment", formatString(t.MarkedAsDoneComment)},
		{"validated.at", formatTime(t.ValidatedAt)},
		{"validated.by", formatRef(t.ValidatedBy)},
		{"validated.comment", formatString(t.ValidationComment)},
	}
}

func DiffTasks(before, after HelperTask) []FieldChange {
	oldFields := snapshot(before)
	newFields := snapshot(after)

	var changes []FieldChange
	for i := range oldFields {
		if oldFields[i].value != newFields[i].value {
			changes = append(changes, FieldChange{
				Field: oldFields[i].path,
				Old:   oldFields[i].value,
				New:   newFields[i].value,
			})
		}
	}
	return changes
}

// GroupChanges collapses field changes into their labelled groups, keeping the
// order in which each group first appears.
func GroupChanges(changes []FieldChange) []ChangeGroup {
	seen := make(map[ChangeGroup]struct{}, len(changes))
	groups := make([]ChangeGroup, 0, len(changes))
	for _, c := range changes {
		group, ok := changeGroups[c.Field]
		if !ok {
			group = ChangeGroup(c.Field)
		}
		if _, dup := seen[group]; dup {
			continue
		}
		seen[group] = struct{}{}
		groups = append(groups, group)
	}
	return groups
}

func formatID(id uint64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(id, 10)
}

func formatRef(m *MemberRef) string {
	if m == nil {
		return ""
	}
	return formatID(m.ID)
}

func formatLicence(l *Licence) string {
	if l == nil {
		return ""
	}
	return formatID(l.ID)
}

func formatString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatHelpers(helpers []HelperSignup) string {
	ids := make([]uint64, 0, len(helpers))
	for _, h := range helpers {
		ids = append(ids, h.Member.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(id, 10))
	}
	return strings.Join(parts, ",")
}
