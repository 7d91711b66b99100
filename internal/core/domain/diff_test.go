package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffTasks(t *testing.T) {
	before := shift(at(2025, 6, 24, 9), at(2025, 6, 24, 12))
	after := before.Clone()
	after.Title = "Crane duty (morning)"
	after.Captain = &MemberRef{ID: 7}
	after.CaptainSignedUpAt = at(2025, 6, 10, 8)
	after.Helpers = []HelperSignup{{Member: MemberRef{ID: 9}}, {Member: MemberRef{ID: 8}}}

	changes := DiffTasks(before, after)

	require.Len(t, changes, 4)
	assert.Equal(t, FieldChange{Field: "title", Old: "Crane duty", New: "Crane duty (morning)"}, changes[0])
	assert.Equal(t, FieldChange{Field: "captain.id", Old: "", New: "7"}, changes[1])
	assert.Equal(t, "captain.signed_up_at", changes[2].Field)
	assert.Equal(t, "2025-06-10T08:00:00Z", changes[2].New)
	assert.Equal(t, FieldChange{Field: "helpers", Old: "", New: "8,9"}, changes[3])

	assert.Equal(t, []ChangeGroup{ChangeGroupDescription, ChangeGroupCaptain, ChangeGroupHelpers}, GroupChanges(changes))
}

func TestDiffTasks_NoChange(t *testing.T) {
	task := deadlineTask(at(2025, 6, 24, 9))
	assert.Empty(t, DiffTasks(task, task.Clone()))
}

func TestGroupChanges_UnknownFieldKeepsItsName(t *testing.T) {
	groups := GroupChanges([]FieldChange{{Field: "color"}, {Field: "urgent"}, {Field: "published"}})
	assert.Equal(t, []ChangeGroup{"color", ChangeGroupFlags}, groups)
}

func TestTaskEvent_RemovedHelpers(t *testing.T) {
	before := shift(at(2025, 6, 24, 9), at(2025, 6, 24, 12))
	before.Helpers = []HelperSignup{{Member: MemberRef{ID: 8}}, {Member: MemberRef{ID: 9}}}
	after := before.Clone()
	after.Helpers = after.Helpers[1:]

	event := TaskEvent{Kind: EventHelperRemoved, Task: after, Previous: &before}

	assert.Equal(t, []MemberRef{{ID: 8}}, event.RemovedHelpers())
	assert.Nil(t, TaskEvent{Task: after}.RemovedHelpers())
}
