package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrLicenceNotFound  = errors.New("licence not found")
	ErrInvalidTask      = errors.New("invalid task")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthenticated  = errors.New("unauthenticated")
)

// Conflict codes double as translation message ids.
const (
	ConflictTaskNotPublished          = "taskNotPublished"
	ConflictTaskAlreadyDone           = "taskAlreadyDone"
	ConflictTaskAlreadyValidated      = "taskAlreadyValidated"
	ConflictTaskDoneBeforeStart       = "taskDoneBeforeStart"
	ConflictTaskValidateBeforeStart   = "taskValidateBeforeStart"
	ConflictTaskExpired               = "taskExpired"
	ConflictTaskCaptainTaken          = "taskCaptainTaken"
	ConflictTaskCaptainNeedsLicence   = "taskCaptainNeedsLicence"
	ConflictTaskHelperLimitReached    = "taskHelperLimitReached"
	ConflictTaskAlreadySignedUp       = "taskAlreadySignedUp"
	ConflictTaskNotSignedUp           = "taskNotSignedUp"
	ConflictTaskTimingLocked          = "taskTimingLocked"
	ConflictTaskUnpublishLocked       = "taskUnpublishLocked"
	ConflictTaskTimingAfterDone       = "taskTimingAfterDone"
	ConflictTaskCaptainLacksLicence   = "taskCaptainLacksLicence"
	ConflictTaskHelperMaxBelowCount   = "taskHelperMaxBelowCount"
	ConflictTaskValidationIncomplete  = "taskValidationIncomplete"
	ConflictMemberReferenceInvalid    = "memberReferenceInvalid"
	ConflictCategoryReferenceInvalid  = "categoryReferenceInvalid"
	ConflictLicenceReferenceInvalid   = "licenceReferenceInvalid"
	ConflictTaskCapacityInconsistent  = "taskCapacityInconsistent"
	ConflictTaskTimingInconsistent    = "taskTimingInconsistent"
	ConflictTaskCaptainSlotIncomplete = "taskCaptainSlotIncomplete"
)

// ConflictError reports a business rule that the requested mutation would violate.
// Code identifies the rule, Message is the English rendering and Data feeds the
// translated message template.
type ConflictError struct {
	Code    string
	Message string
	Data    map[string]any
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflict(code, message string, data map[string]any) *ConflictError {
	return &ConflictError{Code: code, Message: message, Data: data}
}

func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

// ValidationError is a malformed input rejected at the boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidTask
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
