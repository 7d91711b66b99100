package db

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"sailclub/internal/core/domain"
)

const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrNoReferencedRow = 1452
	mysqlErrCheckViolated   = 3819
)

type constraintConflict struct {
	code    string
	message string
}

// constraintConflicts maps constraint names to the conflict reported to clients.
var constraintConflicts = map[string]constraintConflict{
	"uq_helper_task_helpers_member": {domain.ConflictTaskAlreadySignedUp, "Member is already signed up for this task"},
	"fk_helper_tasks_contact":       {domain.ConflictMemberReferenceInvalid, "Referenced member does not exist"},
	"fk_helper_tasks_captain":       {domain.ConflictMemberReferenceInvalid, "Referenced member does not exist"},
	"fk_helper_task_helpers_member": {domain.ConflictMemberReferenceInvalid, "Referenced member does not exist"},
	"fk_helper_tasks_category":      {domain.ConflictCategoryReferenceInvalid, "Referenced category does not exist"},
	"fk_helper_tasks_licence":       {domain.ConflictLicenceReferenceInvalid, "Referenced licence does not exist"},
	"ck_helper_tasks_capacity":      {domain.ConflictTaskCapacityInconsistent, "Helper minimum must not exceed helper maximum"},
	"ck_helper_tasks_timing":        {domain.ConflictTaskTimingInconsistent, "A task needs either a shift window or a deadline"},
	"ck_helper_tasks_captain":       {domain.ConflictTaskCaptainSlotIncomplete, "Captain and sign-up time must be set together"},
}

// translateError turns known MySQL constraint violations into conflicts and
// returns every other error unchanged.
func translateError(err error) error {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return err
	}

	switch mysqlErr.Number {
	case mysqlErrDuplicateEntry, mysqlErrNoReferencedRow, mysqlErrCheckViolated:
	default:
		return err
	}

	for name, conflict := range constraintConflicts {
		if strings.Contains(mysqlErr.Message, name) {
			return domain.NewConflict(conflict.code, conflict.message, nil)
		}
	}
	return err
}
