package service

import "sailclub/internal/core/domain"

func canSeeUnpublished(actor domain.Member) bool {
	return actor.IsAdmin() || actor.IsEditor()
}

// Editors may only create tasks they are the contact of.
func canCreate(actor domain.Member, fields domain.TaskFields) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.IsEditor() && fields.ContactID == actor.ID
}

// Editors may only edit their own tasks and cannot hand them over to someone else.
func canEdit(actor domain.Member, current domain.HelperTask, fields domain.TaskFields) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.IsEditor() && current.IsContact(actor.ID) && fields.ContactID == actor.ID
}
