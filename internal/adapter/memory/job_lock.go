package memory

import (
	"context"
	"sync"

	"sailclub/internal/core/ports"
)

// JobLocker is a process-local ports.JobLocker.
type JobLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

var _ ports.JobLocker = (*JobLocker)(nil)

func NewJobLocker() *JobLocker {
	return &JobLocker{held: make(map[string]bool)}
}

func (l *JobLocker) TryLock(_ context.Context, name string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] {
		return nil, false, nil
	}
	l.held[name] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, name)
			l.mu.Unlock()
		})
	}, true, nil
}

func (l *JobLocker) Held(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[name]
}
