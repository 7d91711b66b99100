package ports

import (
	"context"
	"time"

	"sailclub/internal/core/domain"
)

// TaskMutation computes the next state of a task from its current, locked state.
// Returning an error aborts the mutation without writing anything.
type TaskMutation func(current domain.HelperTask) (domain.HelperTask, error)

type TaskRepository interface {
	ListTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.HelperTask, error)
	GetTask(ctx context.Context, id uint64) (domain.HelperTask, error)
	CreateTask(ctx context.Context, task domain.HelperTask) (domain.HelperTask, error)
	// MutateTask serializes mutations of one task: fn runs while the task is locked
	// and its result is written in the same transaction.
	MutateTask(ctx context.Context, id uint64, fn TaskMutation) (before, after domain.HelperTask, err error)
	// ListReminderCandidates returns unvalidated tasks with a timing value before cutoff.
	ListReminderCandidates(ctx context.Context, cutoff time.Time) ([]domain.HelperTask, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id uint64) (domain.Category, error)
}

type TaskService interface {
	ListTasks(ctx context.Context, actor domain.Member, query TaskQuery) ([]domain.HelperTask, error)
	GetTask(ctx context.Context, actor domain.Member, id uint64) (domain.HelperTask, error)
	CreateTask(ctx context.Context, actor domain.Member, fields domain.TaskFields) (domain.HelperTask, error)
	UpdateTask(ctx context.Context, actor domain.Member, id uint64, fields domain.TaskFields) (domain.HelperTask, error)
	SignUpAsCaptain(ctx context.Context, actor domain.Member, id uint64) (domain.HelperTask, error)
	SignUpAsHelper(ctx context.Context, actor domain.Member, id uint64) (domain.HelperTask, error)
	RemoveCaptain(ctx context.Context, actor domain.Member, id uint64) error
	RemoveHelper(ctx context.Context, actor domain.Member, id uint64, memberID uint64) error
	MarkAsDone(ctx context.Context, actor domain.Member, id uint64, comment *string) (domain.HelperTask, error)
	ValidateTask(ctx context.Context, actor domain.Member, id uint64, req domain.ValidationRequest) (domain.HelperTask, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type TaskQuery struct {
	Year *int
}
