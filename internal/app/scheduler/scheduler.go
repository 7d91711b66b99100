package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ErrDisabled = errors.New("scheduler disabled: no cron expression or interval configured")

type Config struct {
	// Cron is a standard five-field cron expression. It wins over Interval.
	Cron     string
	Interval time.Duration
	Location *time.Location
	// JobTimeout bounds a single run. Zero means no bound.
	JobTimeout time.Duration
}

func (c Config) Enabled() bool {
	return c.Cron != "" || c.Interval > 0
}

// Scheduler runs one job on a cron or fixed-interval schedule. A trigger that
// fires while the previous run is still going is skipped.
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	cancel   context.CancelFunc
	ctx      context.Context
}

func New(cfg Config, name string, job func(ctx context.Context)) (*Scheduler, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	schedule, err := parseSchedule(cfg)
	if err != nil {
		return nil, err
	}

	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	logger := cronLogger{logger: zap.L().Sugar().With("job", name)}
	c := cron.New(
		cron.WithLocation(location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{cron: c, schedule: schedule, ctx: ctx, cancel: cancel}
	c.Schedule(schedule, cron.FuncJob(func() {
		runCtx := s.ctx
		if cfg.JobTimeout > 0 {
			var stop context.CancelFunc
			runCtx, stop = context.WithTimeout(s.ctx, cfg.JobTimeout)
			defer stop()
		}
		job(runCtx)
	}))
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Next reports when the job fires next after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Stop prevents new runs, cancels the running one and waits for it up to ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	s.cancel()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func parseSchedule(cfg Config) (cron.Schedule, error) {
	if cfg.Cron != "" {
		schedule, err := cron.ParseStandard(cfg.Cron)
		if err != nil {
			return nil, fmt.Errorf("parse cron expression %q: %w", cfg.Cron, err)
		}
		return schedule, nil
	}
	if cfg.Interval < time.Second {
		return nil, fmt.Errorf("interval %s is below one second", cfg.Interval)
	}
	return cron.Every(cfg.Interval), nil
}

type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
