package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"sailclub/internal/core/domain"
	"sailclub/internal/core/ports"
)

const (
	defaultQueueSize   = 256
	defaultMaxAttempts = 3
	defaultRetryDelay  = 2 * time.Second
)

// Handler consumes committed task events. A returned error triggers a retry.
type Handler interface {
	Name() string
	Handle(ctx context.Context, event domain.TaskEvent) error
}

type Config struct {
	QueueSize   int
	MaxAttempts int
	RetryDelay  time.Duration
}

// Bus is an in-process post-commit queue. Publishers never block: when the queue
// is full the event is dropped and logged.
type Bus struct {
	queue       chan domain.TaskEvent
	handlers    []Handler
	maxAttempts int
	retryDelay  time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

var _ ports.EventPublisher = (*Bus)(nil)

func NewBus(cfg Config, handlers ...Handler) *Bus {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	return &Bus{
		queue:       make(chan domain.TaskEvent, cfg.QueueSize),
		handlers:    handlers,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		done:        make(chan struct{}),
	}
}

// Start drains the queue until Close is called. ctx bounds retries: once it is
// cancelled, pending events are still handed to every handler once.
func (b *Bus) Start(ctx context.Context) {
	go func() {
		defer close(b.done)
		for event := range b.queue {
			b.dispatch(ctx, event)
		}
	}()
}

func (b *Bus) Publish(event domain.TaskEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		zap.L().Warn("event bus closed, dropping task event",
			zap.String("event_id", event.ID),
			zap.String("event", string(event.Kind)),
		)
		return
	}

	select {
	case b.queue <- event:
	default:
		zap.L().Error("event queue full, dropping task event",
			zap.String("event_id", event.ID),
			zap.String("event", string(event.Kind)),
			zap.Uint64("task_id", event.Task.ID),
		)
	}
}

// Close stops accepting events and waits for the queue to drain or ctx to expire.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.mu.Unlock()

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bus) dispatch(ctx context.Context, event domain.TaskEvent) {
	for _, h := range b.handlers {
		b.handle(ctx, h, event)
	}
}

func (b *Bus) handle(ctx context.Context, h Handler, event domain.TaskEvent) {
	for attempt := 1; attempt <= b.maxAttempts; attempt++ {
		err := h.Handle(context.WithoutCancel(ctx), event)
		if err == nil {
			return
		}

		fields := []zap.Field{
			zap.String("handler", h.Name()),
			zap.String("event_id", event.ID),
			zap.String("event", string(event.Kind)),
			zap.Uint64("task_id", event.Task.ID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		}
		if attempt == b.maxAttempts {
			zap.L().Error("task event handler gave up", fields...)
			return
		}
		zap.L().Warn("task event handler failed, retrying", fields...)

		select {
		case <-time.After(b.retryDelay * time.Duration(attempt)):
		case <-ctx.Done():
			zap.L().Warn("task event retry abandoned on shutdown", fields...)
			return
		}
	}
}
