package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"sailclub/internal/core/domain"
	"sailclub/internal/core/ports"
)

// TaskRepository keeps tasks in process memory. Mutations of one task are
// serialized through a per-task lock, mirroring the row lock of the SQL adapter.
type TaskRepository struct {
	mu         sync.RWMutex
	tasks      map[uint64]domain.HelperTask
	categories map[uint64]domain.Category
	locks      map[uint64]*sync.Mutex
	nextID     uint64
	now        func() time.Time
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func NewTaskRepository(categories ...domain.Category) *TaskRepository {
	repo := &TaskRepository{
		tasks:      make(map[uint64]domain.HelperTask),
		categories: make(map[uint64]domain.Category),
		locks:      make(map[uint64]*sync.Mutex),
		now:        time.Now,
	}
	for _, c := range categories {
		repo.categories[c.ID] = c
	}
	return repo
}

func (r *TaskRepository) ListTasks(_ context.Context, filter domain.TaskFilter) ([]domain.HelperTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]domain.HelperTask, 0, len(r.tasks))
	for _, t := range r.tasks {
		if filter.Matches(t) {
			tasks = append(tasks, t.Clone())
		}
	}
	sortTasks(tasks)
	return tasks, nil
}

func (r *TaskRepository) GetTask(_ context.Context, id uint64) (domain.HelperTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return domain.HelperTask{}, domain.ErrTaskNotFound
	}
	return t.Clone(), nil
}

func (r *TaskRepository) CreateTask(_ context.Context, task domain.HelperTask) (domain.HelperTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	task = task.Clone()
	task.ID = r.nextID
	task.CreatedAt = r.now()
	task.UpdatedAt = task.CreatedAt
	r.tasks[task.ID] = task
	r.locks[task.ID] = &sync.Mutex{}
	return task.Clone(), nil
}

func (r *TaskRepository) MutateTask(_ context.Context, id uint64, fn ports.TaskMutation) (domain.HelperTask, domain.HelperTask, error) {
	r.mu.RLock()
	lock, ok := r.locks[id]
	r.mu.RUnlock()
	if !ok {
		return domain.HelperTask{}, domain.HelperTask{}, domain.ErrTaskNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	before := r.tasks[id].Clone()
	r.mu.RUnlock()

	after, err := fn(before.Clone())
	if err != nil {
		return domain.HelperTask{}, domain.HelperTask{}, err
	}
	after = after.Clone()
	after.ID = id
	after.CreatedAt = before.CreatedAt
	after.UpdatedAt = r.now()

	r.mu.Lock()
	r.tasks[id] = after
	r.mu.Unlock()

	return before, after.Clone(), nil
}

func (r *TaskRepository) ListReminderCandidates(_ context.Context, cutoff time.Time) ([]domain.HelperTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]domain.HelperTask, 0)
	for _, t := range r.tasks {
		if t.ValidatedAt != nil {
			continue
		}
		for _, v := range t.Timing.Values() {
			if v.Before(cutoff) {
				tasks = append(tasks, t.Clone())
				break
			}
		}
	}
	sortTasks(tasks)
	return tasks, nil
}

func (r *TaskRepository) ListCategories(_ context.Context) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func (r *TaskRepository) GetCategory(_ context.Context, id uint64) (domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return c, nil
}

func sortTasks(tasks []domain.HelperTask) {
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
}
