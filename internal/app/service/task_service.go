package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sailclub/internal/core/domain"
	"sailclub/internal/core/ports"
	"sailclub/pkg/clock"
)

const maxCaptainReloads = 3

var errCaptainChanged = errors.New("task captain changed during update")

type TaskService struct {
	taskRepository   ports.TaskRepository
	memberRepository ports.MemberRepository
	events           ports.EventPublisher
	clock            clock.Clock
}

func NewTaskService(
	taskRepository ports.TaskRepository,
	memberRepository ports.MemberRepository,
	events ports.EventPublisher,
	clk clock.Clock,
) *TaskService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &TaskService{
		taskRepository:   taskRepository,
		memberRepository: memberRepository,
		events:           events,
		clock:            clk,
	}
}

var _ ports.TaskService = (*TaskService)(nil)

func (s *TaskService) ListTasks(ctx context.Context, actor domain.Member, query ports.TaskQuery) ([]domain.HelperTask, error) {
	return s.taskRepository.ListTasks(ctx, domain.TaskFilter{
		Year:          query.Year,
		PublishedOnly: !canSeeUnpublished(actor),
	})
}

func (s *TaskService) GetTask(ctx context.Context, actor domain.Member, id uint64) (domain.HelperTask, error) {
	task, err := s.taskRepository.GetTask(ctx, id)
	if err != nil {
		return domain.HelperTask{}, err
	}
	if !task.Published && !canSeeUnpublished(actor) && !task.IsContact(actor.ID) {
		return domain.HelperTask{}, domain.ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) CreateTask(ctx context.Context, actor domain.Member, fields domain.TaskFields) (domain.HelperTask, error) {
	if !canCreate(actor, fields) {
		return domain.HelperTask{}, domain.ErrForbidden
	}
	if err := fields.Validate(); err != nil {
		return domain.HelperTask{}, err
	}

	refs, err := s.resolveReferences(ctx, fields)
	if err != nil {
		return domain.HelperTask{}, err
	}

	task, err := s.taskRepository.CreateTask(ctx, domain.HelperTask{}.WithFields(fields, refs))
	if err != nil {
		return domain.HelperTask{}, err
	}

	s.publish(domain.EventTaskCreated, nil, task, actor)
	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, actor domain.Member, id uint64, fields domain.TaskFields) (domain.HelperTask, error) {
	if !actor.IsAdmin() && !actor.IsEditor() {
		return domain.HelperTask{}, domain.ErrForbidden
	}
	if err := fields.ValidateShape(); err != nil {
		return domain.HelperTask{}, err
	}

	refs, err := s.resolveReferences(ctx, fields)
	if err != nil {
		return domain.HelperTask{}, err
	}

	for attempt := 1; ; attempt++ {
		task, err := s.updateTask(ctx, actor, id, fields, refs)
		if errors.Is(err, errCaptainChanged) && attempt < maxCaptainReloads {
			zap.L().Debug("captain changed before task lock, reloading", zap.Uint64("task_id", id), zap.Int("attempt", attempt))
			continue
		}
		return task, err
	}
}

// updateTask loads the captain before taking the task lock, so the locked
// transaction never waits for a second pooled connection. The lock then only
// confirms the captain is still the one that was loaded.
func (s *TaskService) updateTask(
	ctx context.Context,
	actor domain.Member,
	id uint64,
	fields domain.TaskFields,
	refs domain.TaskReferences,
) (domain.HelperTask, error) {
	snapshot, err := s.taskRepository.GetTask(ctx, id)
	if err != nil {
		return domain.HelperTask{}, err
	}
	captain, err := s.loadCaptain(ctx, snapshot)
	if err != nil {
		return domain.HelperTask{}, err
	}

	before, after, err := s.taskRepository.MutateTask(ctx, id, func(current domain.HelperTask) (domain.HelperTask, error) {
		if !canEdit(actor, current, fields) {
			return domain.HelperTask{}, domain.ErrForbidden
		}
		if captainID(current) != captainID(snapshot) {
			return domain.HelperTask{}, errCaptainChanged
		}

		proposed := current.WithFields(fields, refs)
		if err := domain.CheckUpdate(current, proposed, captain); err != nil {
			return domain.HelperTask{}, err
		}
		return proposed, nil
	})
	if err != nil {
		return domain.HelperTask{}, err
	}

	s.publish(domain.EventTaskUpdated, &before, after, actor)
	return after, nil
}

func (s *TaskService) SignUpAsCaptain(ctx context.Context, actor domain.Member, id uint64) (domain.HelperTask, error) {
	before, after, err := s.taskRepository.MutateTask(ctx, id, func(current domain.HelperTask) (domain.HelperTask, error) {
		return domain.SignUpAsCaptain(current, actor, s.clock.Now())
	})
	if err != nil {
		return domain.HelperTask{}, err
	}

	s.publish(domain.EventCaptainSignedUp, &before, after, actor)
	return after, nil
}

func (s *TaskService) SignUpAsHelper(ctx context.Context, actor domain.Member, id uint64) (domain.HelperTask, error) {
	before, after, err := s.taskRepository.MutateTask(ctx, id, func(current domain.HelperTask) (domain.HelperTask, error) {
		return domain.SignUpAsHelper(current, actor, s.clock.Now())
	})
	if err != nil {
		return domain.HelperTask{}, err
	}

	s.publish(domain.EventHelperSignedUp, &before, after, actor)
	return after, nil
}

func (s *TaskService) RemoveCaptain(ctx context.Context, actor domain.Member, id uint64) error {
	before, after, err := s.taskRepository.MutateTask(ctx, id, func(current domain.HelperTask) (domain.HelperTask, error) {
		if !actor.IsAdmin() && !current.IsContact(actor.ID) && !current.IsCaptain(actor.ID) {
			return domain.HelperTask{}, domain.ErrForbidden
		}
		return domain.RemoveCaptain(current)
	})
	if err != nil {
		return err
	}

	s.publish(domain.EventCaptainRemoved, &before, after, actor)
	return nil
}

func (s *TaskService) RemoveHelper(ctx context.Context, actor domain.Member, id uint64, memberID uint64) error {
	before, after, err := s.taskRepository.MutateTask(ctx, id, func(current domain.HelperTask) (domain.HelperTask, error) {
		if !actor.IsAdmin() && !current.IsContact(actor.ID) && actor.ID != memberID {
			return domain.HelperTask{}, domain.ErrForbidden
		}
		return domain.RemoveHelper(current, memberID)
	})
	if err != nil {
		return err
	}

	s.publish(domain.EventHelperRemoved, &before, after, actor)
	return nil
}

func (s *TaskService) MarkAsDone(ctx context.Context, actor domain.Member, id uint64, comment *string) (domain.HelperTask, error) {
	before, after, err := s.taskRepository.MutateTask(ctx, id, func(current domain.HelperTask) (domain.HelperTask, error) {
		if !actor.IsAdmin() && !current.IsContact(actor.ID) && !current.IsCaptain(actor.ID) {
			return domain.HelperTask{}, domain.ErrForbidden
		}
		return domain.MarkAsDone(current, actor.Ref(), comment, s.clock.Now())
	})
	if err != nil {
		return domain.HelperTask{}, err
	}

	s.publish(domain.EventTaskMarkedAsDone, &before, after, actor)
	return after, nil
}

func (s *TaskService) ValidateTask(ctx context.Context, actor domain.Member, id uint64, req domain.ValidationRequest) (domain.HelperTask, error) {
	before, after, err := s.taskRepository.MutateTask(ctx, id, func(current domain.HelperTask) (domain.HelperTask, error) {
		if !actor.IsAdmin() && !current.IsContact(actor.ID) {
			return domain.HelperTask{}, domain.ErrForbidden
		}
		return domain.Validate(current, actor.Ref(), req, s.clock.Now())
	})
	if err != nil {
		return domain.HelperTask{}, err
	}

	s.publish(domain.EventTaskValidated, &before, after, actor)
	return after, nil
}

func (s *TaskService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.taskRepository.ListCategories(ctx)
}

func (s *TaskService) resolveReferences(ctx context.Context, fields domain.TaskFields) (domain.TaskReferences, error) {
	category, err := s.taskRepository.GetCategory(ctx, fields.CategoryID)
	if err != nil {
		return domain.TaskReferences{}, err
	}

	contact, err := s.memberRepository.GetMember(ctx, fields.ContactID)
	if err != nil {
		return domain.TaskReferences{}, err
	}

	refs := domain.TaskReferences{Category: category, Contact: contact.Ref()}
	if fields.CaptainRequiredLicenceID != nil {
		licence, err := s.memberRepository.GetLicence(ctx, *fields.CaptainRequiredLicenceID)
		if err != nil {
			return domain.TaskReferences{}, err
		}
		refs.Licence = &licence
	}
	return refs, nil
}

func (s *TaskService) loadCaptain(ctx context.Context, task domain.HelperTask) (*domain.Member, error) {
	if task.Captain == nil {
		return nil, nil
	}
	captain, err := s.memberRepository.GetMember(ctx, task.Captain.ID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return nil, fmt.Errorf("captain %d of task %d: %w", task.Captain.ID, task.ID, err)
		}
		return nil, err
	}
	return &captain, nil
}

func captainID(t domain.HelperTask) uint64 {
	if t.Captain == nil {
		return 0
	}
	return t.Captain.ID
}

// publish hands the committed change to the event bus. Delivery problems are the
// bus's concern and never reach the caller.
func (s *TaskService) publish(kind domain.EventKind, before *domain.HelperTask, after domain.HelperTask, actor domain.Member) {
	if s.events == nil {
		return
	}

	event := domain.TaskEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		Task:       after,
		Previous:   before,
		Actor:      actor.Ref(),
		OccurredAt: s.clock.Now(),
	}
	if before != nil {
		event.Changes = domain.DiffTasks(*before, after)
	} else {
		event.Changes = domain.DiffTasks(domain.HelperTask{}, after)
	}

	zap.L().Debug("publishing task event",
		zap.String("event", string(kind)),
		zap.Uint64("task_id", after.ID),
		zap.Uint64("actor_id", actor.ID),
	)
	s.events.Publish(event)
}
