package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"sailclub/internal/core/domain"
	"sailclub/internal/core/ports"
	"sailclub/pkg/clock"
)

const defaultReminderSendTimeout = 30 * time.Second

// ReminderLockName is shared by every process that sends reminders.
const ReminderLockName = "sailclub.reminders"

var ErrReminderJobRunning = errors.New("reminder job already running")

type ReminderReport struct {
	Upcoming int
	Overdue  int
	Failed   int
	Skipped  int
}

type ReminderService struct {
	taskRepository ports.TaskRepository
	notifier       ports.Notifier
	locker         ports.JobLocker
	clock          clock.Clock
	sendTimeout    time.Duration
	location       *time.Location
	running        atomic.Bool
}

func NewReminderService(
	taskRepository ports.TaskRepository,
	notifier ports.Notifier,
	locker ports.JobLocker,
	clk clock.Clock,
	sendTimeout time.Duration,
	location *time.Location,
) *ReminderService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if sendTimeout <= 0 {
		sendTimeout = defaultReminderSendTimeout
	}
	if location == nil {
		location = time.Local
	}
	return &ReminderService{
		taskRepository: taskRepository,
		notifier:       notifier,
		locker:         locker,
		clock:          clk,
		sendTimeout:    sendTimeout,
		location:       location,
	}
}

// Run classifies every outstanding task and sends the resulting reminders.
// A second call while one is in progress, here or in any process sharing the
// locker, returns ErrReminderJobRunning.
// Failed sends are logged and counted; they never abort the batch.
func (s *ReminderService) Run(ctx context.Context) (ReminderReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return ReminderReport{}, ErrReminderJobRunning
	}
	defer s.running.Store(false)

	if s.locker != nil {
		release, acquired, err := s.locker.TryLock(ctx, ReminderLockName)
		if err != nil {
			return ReminderReport{}, fmt.Errorf("acquire reminder lock: %w", err)
		}
		if !acquired {
			return ReminderReport{}, ErrReminderJobRunning
		}
		defer release()
	}

	now := s.clock.Now().In(s.location)
	candidates, err := s.taskRepository.ListReminderCandidates(ctx, domain.ReminderCandidateCutoff(now))
	if err != nil {
		return ReminderReport{}, err
	}

	plan := domain.PlanReminders(candidates, now)
	report := ReminderReport{Skipped: len(plan.WithoutTiming)}
	for _, id := range plan.WithoutTiming {
		zap.L().Warn("skipping reminder for task without timing", zap.Uint64("task_id", id))
	}

	for _, reminder := range plan.Upcoming {
		err := s.send(ctx, func(sendCtx context.Context) error {
			return s.notifier.SendUpcomingReminder(sendCtx, reminder)
		})
		if err != nil {
			report.Failed++
			zap.L().Error("failed to send upcoming reminder", zap.Uint64("task_id", reminder.Task.ID), zap.Error(err))
			continue
		}
		report.Upcoming++
	}

	for _, reminder := range plan.Overdue {
		err := s.send(ctx, func(sendCtx context.Context) error {
			return s.notifier.SendOverdueReminder(sendCtx, reminder)
		})
		if err != nil {
			report.Failed++
			zap.L().Error("failed to send overdue reminder",
				zap.Uint64("member_id", reminder.Contact.ID),
				zap.Int("tasks", len(reminder.Tasks)),
				zap.Error(err),
			)
			continue
		}
		report.Overdue++
	}

	zap.L().Info("reminder job finished",
		zap.Int("upcoming", report.Upcoming),
		zap.Int("overdue", report.Overdue),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

func (s *ReminderService) send(ctx context.Context, fn func(context.Context) error) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	return fn(sendCtx)
}
