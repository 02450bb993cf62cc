package debounce

import (
	"sync"
	"time"
)

// Scheduler collapses bursts of calls into a single deferred invocation per
// key. Scheduling a key that already has a pending task cancels the previous
// task before the new one is armed, so at most one task per key can ever fire.
type Scheduler struct {
	mu      sync.Mutex
	pending map[string]*task
	stopped bool
}

type task struct {
	timer *time.Timer
}

// New creates an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{pending: make(map[string]*task)}
}

// Schedule arms fn to run after delay, replacing any pending task for key.
// fn runs on a timer goroutine; it is never invoked after Stop or after being
// replaced by a later Schedule for the same key.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
	}

	t := &task{}
	t.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		current, ok := s.pending[key]
		if !ok || current != t || s.stopped {
			// Replaced or cancelled after the timer fired but before we got the lock.
			s.mu.Unlock()
			return
		}
		delete(s.pending, key)
		s.mu.Unlock()
		fn()
	})
	s.pending[key] = t
}

// Cancel drops the pending task for key, if any.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
		delete(s.pending, key)
	}
}

// Stop cancels all pending tasks and rejects further scheduling.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for key, t := range s.pending {
		t.timer.Stop()
		delete(s.pending, key)
	}
}

// Pending returns the number of armed tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
