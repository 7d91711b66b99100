package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sailclub/internal/adapter/memory"
	"sailclub/internal/core/domain"
)

type flakyHandler struct {
	mu       sync.Mutex
	failures int
	calls    int
	handled  []string
}

func (h *flakyHandler) Name() string { return "flaky" }

func (h *flakyHandler) Handle(_ context.Context, event domain.TaskEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	if h.calls <= h.failures {
		return errors.New("temporarily unavailable")
	}
	h.handled = append(h.handled, event.ID)
	return nil
}

func (h *flakyHandler) snapshot() (int, []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls, append([]string(nil), h.handled...)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.TaskEvent
}

func (n *recordingNotifier) NotifyTaskEvent(_ context.Context, event domain.TaskEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) SendUpcomingReminder(context.Context, domain.UpcomingReminder) error {
	return nil
}

func (n *recordingNotifier) SendOverdueReminder(context.Context, domain.OverdueReminder) error {
	return nil
}

func closeBus(t *testing.T, bus *Bus) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, bus.Close(ctx))
}

func TestBus_DeliversToEveryHandlerInOrder(t *testing.T) {
	audit := memory.NewAuditRepository()
	handler := &flakyHandler{}
	bus := NewBus(Config{}, NewAuditHandler(audit), handler)
	bus.Start(context.Background())

	for _, id := range []string{"e1", "e2", "e3"} {
		bus.Publish(domain.TaskEvent{ID: id, Kind: domain.EventTaskCreated, Task: domain.HelperTask{ID: 7}})
	}
	closeBus(t, bus)

	_, handled := handler.snapshot()
	assert.Equal(t, []string{"e1", "e2", "e3"}, handled)

	entries := audit.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(7), entries[0].TaskID)
	assert.Equal(t, domain.EventTaskCreated, entries[0].Kind)
}

func TestBus_RetriesFailedHandler(t *testing.T) {
	handler := &flakyHandler{failures: 2}
	bus := NewBus(Config{MaxAttempts: 3, RetryDelay: time.Millisecond}, handler)
	bus.Start(context.Background())

	bus.Publish(domain.TaskEvent{ID: "e1"})
	closeBus(t, bus)

	calls, handled := handler.snapshot()
	assert.Equal(t, 3, calls)
	assert.Equal(t, []string{"e1"}, handled)
}

func TestBus_GivesUpAfterMaxAttempts(t *testing.T) {
	handler := &flakyHandler{failures: 10}
	bus := NewBus(Config{MaxAttempts: 2, RetryDelay: time.Millisecond}, handler)
	bus.Start(context.Background())

	bus.Publish(domain.TaskEvent{ID: "e1"})
	bus.Publish(domain.TaskEvent{ID: "e2"})
	closeBus(t, bus)

	calls, handled := handler.snapshot()
	assert.Equal(t, 4, calls)
	assert.Empty(t, handled)
}

func TestBus_DropsEventsAfterClose(t *testing.T) {
	handler := &flakyHandler{}
	bus := NewBus(Config{}, handler)
	bus.Start(context.Background())
	closeBus(t, bus)

	assert.NotPanics(t, func() { bus.Publish(domain.TaskEvent{ID: "late"}) })
	closeBus(t, bus)

	calls, _ := handler.snapshot()
	assert.Zero(t, calls)
}

func TestBus_DropsEventsWhenQueueIsFull(t *testing.T) {
	handler := &flakyHandler{}
	bus := NewBus(Config{QueueSize: 1}, handler)

	bus.Publish(domain.TaskEvent{ID: "kept"})
	bus.Publish(domain.TaskEvent{ID: "dropped"})

	bus.Start(context.Background())
	closeBus(t, bus)

	_, handled := handler.snapshot()
	assert.Equal(t, []string{"kept"}, handled)
}

func TestNotifyHandler_SkipsEmptyUpdates(t *testing.T) {
	notifier := &recordingNotifier{}
	handler := NewNotifyHandler(notifier)
	ctx := context.Background()

	require.NoError(t, handler.Handle(ctx, domain.TaskEvent{ID: "noop", Kind: domain.EventTaskUpdated}))
	require.NoError(t, handler.Handle(ctx, domain.TaskEvent{
		ID:      "changed",
		Kind:    domain.EventTaskUpdated,
		Changes: []domain.FieldChange{{Field: "title", Old: "a", New: "b"}},
	}))
	require.NoError(t, handler.Handle(ctx, domain.TaskEvent{ID: "signup", Kind: domain.EventHelperSignedUp}))

	require.Len(t, notifier.events, 2)
	assert.Equal(t, "changed", notifier.events[0].ID)
	assert.Equal(t, "signup", notifier.events[1].ID)
}
