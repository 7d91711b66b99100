package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"sailclub/internal/core/domain"
	"sailclub/internal/core/ports"
)

const selectTasksQuery = `
SELECT
  t.id,
  t.title,
  t.short_description,
  t.long_description,
  t.contact_id,
  t.starts_at,
  t.ends_at,
  t.deadline,
  t.helper_min_count,
  t.helper_max_count,
  t.urgent,
  t.published,
  t.captain_id,
  t.captain_signed_up_at,
  t.marked_as_done_at,
  t.marked_as_done_by,
  t.marked_as_done_comment,
  t.validated_at,
  t.validated_by,
  t.validation_comment,
  t.created_at,
  t.updated_at,
  c.id AS category_id,
  c.title AS category_title,
  c.short_description AS category_short_description,
  c.long_description AS category_long_description,
  l.id AS licence_id,
  l.code AS licence_code,
  l.name AS licence_name
FROM helper_tasks t
JOIN helper_task_categories c ON c.id = t.category_id
LEFT JOIN licences l ON l.id = t.captain_required_licence_id
`

const selectHelpersQuery = `
SELECT task_id, member_id, signed_up_at
FROM helper_task_helpers
WHERE task_id IN (?)
ORDER BY signed_up_at, member_id;
`

const selectMemberRefsQuery = `
SELECT id, first_name, last_name, email, language
FROM members
WHERE id IN (?);
`

const lockTaskQuery = `SELECT id FROM helper_tasks WHERE id = ? FOR UPDATE;`

const insertTaskQuery = `
INSERT INTO helper_tasks (
  category_id, title, short_description, long_description, contact_id,
  starts_at, ends_at, deadline, helper_min_count, helper_max_count, urgent, published,
  captain_id, captain_signed_up_at, captain_required_licence_id,
  marked_as_done_at, marked_as_done_by, marked_as_done_comment,
  validated_at, validated_by, validation_comment
) VALUES (
  :category_id, :title, :short_description, :long_description, :contact_id,
  :starts_at, :ends_at, :deadline, :helper_min_count, :helper_max_count, :urgent, :published,
  :captain_id, :captain_signed_up_at, :captain_required_licence_id,
  :marked_as_done_at, :marked_as_done_by, :marked_as_done_comment,
  :validated_at, :validated_by, :validation_comment
);
`

const updateTaskQuery = `
UPDATE helper_tasks SET
  category_id = :category_id,
  title = :title,
  short_description = :short_description,
  long_description = :long_description,
  contact_id = :contact_id,
  starts_at = :starts_at,
  ends_at = :ends_at,
  deadline = :deadline,
  helper_min_count = :helper_min_count,
  helper_max_count = :helper_max_count,
  urgent = :urgent,
  published = :published,
  captain_id = :captain_id,
  captain_signed_up_at = :captain_signed_up_at,
  captain_required_licence_id = :captain_required_licence_id,
  marked_as_done_at = :marked_as_done_at,
  marked_as_done_by = :marked_as_done_by,
  marked_as_done_comment = :marked_as_done_comment,
  validated_at = :validated_at,
  validated_by = :validated_by,
  validation_comment = :validation_comment
WHERE id = :id;
`

const insertHelperQuery = `INSERT INTO helper_task_helpers (task_id, member_id, signed_up_at) VALUES (?, ?, ?);`

const deleteHelpersQuery = `DELETE FROM helper_task_helpers WHERE task_id = ? AND member_id IN (?);`

const listCategoriesQuery = `
SELECT id, title, short_description, long_description
FROM helper_task_categories
ORDER BY id;
`

const getCategoryQuery = `
SELECT id, title, short_description, long_description
FROM helper_task_categories
WHERE id = ?;
`

type TaskRepository struct {
	db *sqlx.DB
}

type taskRow struct {
	ID                       uint64         `db:"id"`
	Title                    string         `db:"title"`
	ShortDescription         string         `db:"short_description"`
	LongDescription          sql.NullString `db:"long_description"`
	ContactID                uint64         `db:"contact_id"`
	StartsAt                 sql.NullTime   `db:"starts_at"`
	EndsAt                   sql.NullTime   `db:"ends_at"`
	Deadline                 sql.NullTime   `db:"deadline"`
	HelperMinCount           int            `db:"helper_min_count"`
	HelperMaxCount           int            `db:"helper_max_count"`
	Urgent                   bool           `db:"urgent"`
	Published                bool           `db:"published"`
	CaptainID                sql.NullInt64  `db:"captain_id"`
	CaptainSignedUpAt        sql.NullTime   `db:"captain_signed_up_at"`
	MarkedAsDoneAt           sql.NullTime   `db:"marked_as_done_at"`
	MarkedAsDoneBy           sql.NullInt64  `db:"marked_as_done_by"`
	MarkedAsDoneComment      sql.NullString `db:"marked_as_done_comment"`
	ValidatedAt              sql.NullTime   `db:"validated_at"`
	ValidatedBy              sql.NullInt64  `db:"validated_by"`
	ValidationComment        sql.NullString `db:"validation_comment"`
	CreatedAt                time.Time      `db:"created_at"`
	UpdatedAt                time.Time      `db:"updated_at"`
	CategoryID               uint64         `db:"category_id"`
	CategoryTitle            string         `db:"category_title"`
	CategoryShortDescription string         `db:"category_short_description"`
	CategoryLongDescription  sql.NullString `db:"category_long_description"`
	LicenceID                sql.NullInt64  `db:"licence_id"`
	LicenceCode              sql.NullString `db:"licence_code"`
	LicenceName              sql.NullString `db:"licence_name"`
}

type helperRow struct {
	TaskID     uint64    `db:"task_id"`
	MemberID   uint64    `db:"member_id"`
	SignedUpAt time.Time `db:"signed_up_at"`
}

type memberRefRow struct {
	ID        uint64 `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Email     string `db:"email"`
	Language  string `db:"language"`
}

type categoryRow struct {
	ID               uint64         `db:"id"`
	Title            string         `db:"title"`
	ShortDescription string         `db:"short_description"`
	LongDescription  sql.NullString `db:"long_description"`
}

// taskParams is the write model of a task row.
type taskParams struct {
	ID                       uint64     `db:"id"`
	CategoryID               uint64     `db:"category_id"`
	Title                    string     `db:"title"`
	ShortDescription         string     `db:"short_description"`
	LongDescription          *string    `db:"long_description"`
	ContactID                uint64     `db:"contact_id"`
	StartsAt                 *time.Time `db:"starts_at"`
	EndsAt                   *time.Time `db:"ends_at"`
	Deadline                 *time.Time `db:"deadline"`
	HelperMinCount           int        `db:"helper_min_count"`
	HelperMaxCount           int        `db:"helper_max_count"`
	Urgent                   bool       `db:"urgent"`
	Published                bool       `db:"published"`
	CaptainID                *uint64    `db:"captain_id"`
	CaptainSignedUpAt        *time.Time `db:"captain_signed_up_at"`
	CaptainRequiredLicenceID *uint64    `db:"captain_required_licence_id"`
	MarkedAsDoneAt           *time.Time `db:"marked_as_done_at"`
	MarkedAsDoneBy           *uint64    `db:"marked_as_done_by"`
	MarkedAsDoneComment      *string    `db:"marked_as_done_comment"`
	ValidatedAt              *time.Time `db:"validated_at"`
	ValidatedBy              *uint64    `db:"validated_by"`
	ValidationComment        *string    `db:"validation_comment"`
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.HelperTask, error) {
	var conditions []string
	var args []any
	if filter.PublishedOnly {
		conditions = append(conditions, "t.published = TRUE")
	}
	if filter.Year != nil {
		conditions = append(conditions, "YEAR(COALESCE(t.starts_at, t.deadline)) = ?")
		args = append(args, *filter.Year)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	return loadTasks(ctx, r.db, where, args...)
}

func (r *TaskRepository) GetTask(ctx context.Context, id uint64) (domain.HelperTask, error) {
	return getTask(ctx, r.db, id)
}

func (r *TaskRepository) CreateTask(ctx context.Context, task domain.HelperTask) (created domain.HelperTask, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.HelperTask{}, err
	}
	defer rollbackUnlessCommitted(tx, &err)

	result, err := sqlx.NamedExecContext(ctx, tx, insertTaskQuery, toTaskParams(task))
	if err != nil {
		return domain.HelperTask{}, translateError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return domain.HelperTask{}, err
	}
	task.ID = uint64(id)

	if err := syncHelpers(ctx, tx, domain.HelperTask{ID: task.ID}, task); err != nil {
		return domain.HelperTask{}, err
	}

	created, err = getTask(ctx, tx, task.ID)
	if err != nil {
		return domain.HelperTask{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.HelperTask{}, err
	}
	return created, nil
}

func (r *TaskRepository) MutateTask(ctx context.Context, id uint64, fn ports.TaskMutation) (before, after domain.HelperTask, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.HelperTask{}, domain.HelperTask{}, err
	}
	defer rollbackUnlessCommitted(tx, &err)

	var locked uint64
	if err := tx.GetContext(ctx, &locked, lockTaskQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.HelperTask{}, domain.HelperTask{}, domain.ErrTaskNotFound
		}
		return domain.HelperTask{}, domain.HelperTask{}, err
	}

	before, err = getTask(ctx, tx, id)
	if err != nil {
		return domain.HelperTask{}, domain.HelperTask{}, err
	}

	next, err := fn(before.Clone())
	if err != nil {
		return domain.HelperTask{}, domain.HelperTask{}, err
	}
	next.ID = id

	if _, err := sqlx.NamedExecContext(ctx, tx, updateTaskQuery, toTaskParams(next)); err != nil {
		return domain.HelperTask{}, domain.HelperTask{}, translateError(err)
	}
	if err := syncHelpers(ctx, tx, before, next); err != nil {
		return domain.HelperTask{}, domain.HelperTask{}, err
	}

	after, err = getTask(ctx, tx, id)
	if err != nil {
		return domain.HelperTask{}, domain.HelperTask{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.HelperTask{}, domain.HelperTask{}, err
	}
	return before, after, nil
}

func (r *TaskRepository) ListReminderCandidates(ctx context.Context, cutoff time.Time) ([]domain.HelperTask, error) {
	return loadTasks(ctx, r.db,
		"WHERE t.validated_at IS NULL AND (t.starts_at < ? OR t.ends_at < ? OR t.deadline < ?)",
		cutoff, cutoff, cutoff,
	)
}

func (r *TaskRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryRow
	if err := r.db.SelectContext(ctx, &rows, listCategoriesQuery); err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, mapCategoryRow(row))
	}
	return categories, nil
}

func (r *TaskRepository) GetCategory(ctx context.Context, id uint64) (domain.Category, error) {
	var row categoryRow
	if err := r.db.GetContext(ctx, &row, getCategoryQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Category{}, domain.ErrCategoryNotFound
		}
		return domain.Category{}, err
	}
	return mapCategoryRow(row), nil
}

func getTask(ctx context.Context, q sqlx.ExtContext, id uint64) (domain.HelperTask, error) {
	tasks, err := loadTasks(ctx, q, "WHERE t.id = ?", id)
	if err != nil {
		return domain.HelperTask{}, err
	}
	if len(tasks) == 0 {
		return domain.HelperTask{}, domain.ErrTaskNotFound
	}
	return tasks[0], nil
}

// loadTasks selects task rows matching where and resolves their helpers and
// member references with one query each.
func loadTasks(ctx context.Context, q sqlx.ExtContext, where string, args ...any) ([]domain.HelperTask, error) {
	var rows []taskRow
	query := selectTasksQuery + where + "\nORDER BY t.id;"
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []domain.HelperTask{}, nil
	}

	taskIDs := make([]uint64, 0, len(rows))
	for _, row := range rows {
		taskIDs = append(taskIDs, row.ID)
	}
	helpers, err := loadHelpers(ctx, q, taskIDs)
	if err != nil {
		return nil, err
	}

	memberIDs := make(map[uint64]struct{})
	for _, row := range rows {
		memberIDs[row.ContactID] = struct{}{}
		for _, id := range []sql.NullInt64{row.CaptainID, row.MarkedAsDoneBy, row.ValidatedBy} {
			if id.Valid {
				memberIDs[uint64(id.Int64)] = struct{}{}
			}
		}
	}
	for _, list := range helpers {
		for _, h := range list {
			memberIDs[h.MemberID] = struct{}{}
		}
	}
	members, err := loadMemberRefs(ctx, q, memberIDs)
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.HelperTask, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, mapTaskRow(row, helpers[row.ID], members))
	}
	return tasks, nil
}

func loadHelpers(ctx context.Context, q sqlx.ExtContext, taskIDs []uint64) (map[uint64][]helperRow, error) {
	query, args, err := sqlx.In(selectHelpersQuery, taskIDs)
	if err != nil {
		return nil, err
	}

	var rows []helperRow
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return nil, err
	}

	byTask := make(map[uint64][]helperRow, len(taskIDs))
	for _, row := range rows {
		byTask[row.TaskID] = append(byTask[row.TaskID], row)
	}
	return byTask, nil
}

func loadMemberRefs(ctx context.Context, q sqlx.ExtContext, ids map[uint64]struct{}) (map[uint64]domain.MemberRef, error) {
	refs := make(map[uint64]domain.MemberRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	list := make([]uint64, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	query, args, err := sqlx.In(selectMemberRefsQuery, list)
	if err != nil {
		return nil, err
	}

	var rows []memberRefRow
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		refs[row.ID] = mapMemberRefRow(row)
	}
	return refs, nil
}

// syncHelpers writes the difference between the helper sets of before and after.
func syncHelpers(ctx context.Context, tx *sqlx.Tx, before, after domain.HelperTask) error {
	var removed []uint64
	for _, h := range before.Helpers {
		if !after.IsHelper(h.Member.ID) {
			removed = append(removed, h.Member.ID)
		}
	}
	if len(removed) > 0 {
		query, args, err := sqlx.In(deleteHelpersQuery, after.ID, removed)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return err
		}
	}

	for _, h := range after.Helpers {
		if before.IsHelper(h.Member.ID) {
			continue
		}
		if _, err := tx.ExecContext(ctx, insertHelperQuery, after.ID, h.Member.ID, h.SignedUpAt); err != nil {
			return translateError(err)
		}
	}
	return nil
}

func rollbackUnlessCommitted(tx *sqlx.Tx, err *error) {
	if *err == nil {
		return
	}
	if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
		zap.L().Warn("failed to roll back transaction", zap.Error(rbErr))
	}
}

func toTaskParams(t domain.HelperTask) taskParams {
	params := taskParams{
		ID:                  t.ID,
		CategoryID:          t.Category.ID,
		Title:               t.Title,
		ShortDescription:    t.ShortDescription,
		LongDescription:     t.LongDescription,
		ContactID:           t.Contact.ID,
		StartsAt:            t.Timing.StartsAt,
		EndsAt:              t.Timing.EndsAt,
		Deadline:            t.Timing.Deadline,
		HelperMinCount:      t.HelperMinCount,
		HelperMaxCount:      t.HelperMaxCount,
		Urgent:              t.Urgent,
		Published:           t.Published,
		CaptainSignedUpAt:   t.CaptainSignedUpAt,
		MarkedAsDoneAt:      t.MarkedAsDoneAt,
		MarkedAsDoneComment: t.MarkedAsDoneComment,
		ValidatedAt:         t.ValidatedAt,
		ValidationComment:   t.ValidationComment,
	}
	if t.Captain != nil {
		params.CaptainID = &t.Captain.ID
	}
	if t.CaptainRequiredLicence != nil {
		params.CaptainRequiredLicenceID = &t.CaptainRequiredLicence.ID
	}
	if t.MarkedAsDoneBy != nil {
		params.MarkedAsDoneBy = &t.MarkedAsDoneBy.ID
	}
	if t.ValidatedBy != nil {
		params.ValidatedBy = &t.ValidatedBy.ID
	}
	return params
}

func mapTaskRow(row taskRow, helpers []helperRow, members map[uint64]domain.MemberRef) domain.HelperTask {
	task := domain.HelperTask{
		ID: row.ID,
		Category: mapCategoryRow(categoryRow{
			ID:               row.CategoryID,
			Title:            row.CategoryTitle,
			ShortDescription: row.CategoryShortDescription,
			LongDescription:  row.CategoryLongDescription,
		}),
		Title:            row.Title,
		ShortDescription: row.ShortDescription,
		LongDescription:  nullString(row.LongDescription),
		Contact:          memberRef(members, row.ContactID),
		Timing: domain.Timing{
			StartsAt: nullTime(row.StartsAt),
			EndsAt:   nullTime(row.EndsAt),
			Deadline: nullTime(row.Deadline),
		},
		HelperMinCount:      row.HelperMinCount,
		HelperMaxCount:      row.HelperMaxCount,
		Urgent:              row.Urgent,
		Published:           row.Published,
		Captain:             nullMemberRef(members, row.CaptainID),
		CaptainSignedUpAt:   nullTime(row.CaptainSignedUpAt),
		MarkedAsDoneAt:      nullTime(row.MarkedAsDoneAt),
		MarkedAsDoneBy:      nullMemberRef(members, row.MarkedAsDoneBy),
		MarkedAsDoneComment: nullString(row.MarkedAsDoneComment),
		ValidatedAt:         nullTime(row.ValidatedAt),
		ValidatedBy:         nullMemberRef(members, row.ValidatedBy),
		ValidationComment:   nullString(row.ValidationComment),
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}

	if row.LicenceID.Valid {
		task.CaptainRequiredLicence = &domain.Licence{
			ID:   uint64(row.LicenceID.Int64),
			Code: row.LicenceCode.String,
			Name: row.LicenceName.String,
		}
	}

	task.Helpers = make([]domain.HelperSignup, 0, len(helpers))
	for _, h := range helpers {
		task.Helpers = append(task.Helpers, domain.HelperSignup{
			Member:     memberRef(members, h.MemberID),
			SignedUpAt: h.SignedUpAt,
		})
	}
	return task
}

func mapCategoryRow(row categoryRow) domain.Category {
	return domain.Category{
		ID:               row.ID,
		Title:            row.Title,
		ShortDescription: row.ShortDescription,
		LongDescription:  nullString(row.LongDescription),
	}
}

func mapMemberRefRow(row memberRefRow) domain.MemberRef {
	return domain.MemberRef{
		ID:        row.ID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Email:     row.Email,
		Language:  row.Language,
	}
}

func memberRef(members map[uint64]domain.MemberRef, id uint64) domain.MemberRef {
	if ref, ok := members[id]; ok {
		return ref
	}
	// Foreign keys make this unreachable short of a concurrent member purge.
	zap.L().Warn("task references unknown member", zap.Uint64("member_id", id))
	return domain.MemberRef{ID: id}
}

func nullMemberRef(members map[uint64]domain.MemberRef, id sql.NullInt64) *domain.MemberRef {
	if !id.Valid {
		return nil
	}
	ref := memberRef(members, uint64(id.Int64))
	return &ref
}

func nullString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

func nullTime(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}
