package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sailclub/internal/core/domain"
)

func TestTranslateError_DuplicateHelper(t *testing.T) {
	err := translateError(&mysql.MySQLError{
		Number:  mysqlErrDuplicateEntry,
		Message: "Duplicate entry '4-12' for key 'helper_task_helpers.uq_helper_task_helpers_member'",
	})

	var conflict *domain.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, domain.ConflictTaskAlreadySignedUp, conflict.Code)
}

func TestTranslateError_MissingContact(t *testing.T) {
	wrapped := fmt.Errorf("insert task: %w", &mysql.MySQLError{
		Number: mysqlErrNoReferencedRow,
		Message: "Cannot add or update a child row: a foreign key constraint fails " +
			"(`sailclub`.`helper_tasks`, CONSTRAINT `fk_helper_tasks_contact` FOREIGN KEY (`contact_id`) REFERENCES `members` (`id`))",
	})

	var conflict *domain.ConflictError
	require.True(t, errors.As(translateError(wrapped), &conflict))
	assert.Equal(t, domain.ConflictMemberReferenceInvalid, conflict.Code)
}

func TestTranslateError_CheckConstraint(t *testing.T) {
	err := translateError(&mysql.MySQLError{
		Number:  mysqlErrCheckViolated,
		Message: "Check constraint 'ck_helper_tasks_capacity' is violated.",
	})

	assert.True(t, domain.IsConflict(err))
}

func TestTranslateError_UnknownConstraintIsReturnedUnchanged(t *testing.T) {
	original := &mysql.MySQLError{Number: mysqlErrDuplicateEntry, Message: "Duplicate entry 'x' for key 'members.uq_members_email'"}

	assert.Same(t, original, translateError(original))
}

func TestTranslateError_NonMySQLError(t *testing.T) {
	original := errors.New("connection refused")

	assert.Equal(t, original, translateError(original))
}
