package debounce

import (
	"sync"
	"testing"
	"time"
)

func TestScheduleFires(t *testing.T) {
	s := New()
	done := make(chan struct{})

	s.Schedule("a", 10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduled task never fired")
	}
	if got := s.Pending(); got != 0 {
		t.Errorf("Pending() = %d after fire, want 0", got)
	}
}

func TestScheduleReplacesPendingTask(t *testing.T) {
	s := New()

	var mu sync.Mutex
	var fired []string
	record := func(name string) func() {
		return func() {
			mu.Lock()
			fired = append(fired, name)
			mu.Unlock()
		}
	}

	s.Schedule("field", 50*time.Millisecond, record("first"))
	s.Schedule("field", 20*time.Millisecond, record("second"))

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 1 || fired[0] != "second" {
		t.Errorf("fired = %v, want exactly [second]", fired)
	}
}

func TestIndependentKeysBothFire(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	wg.Add(2)
	s.Schedule("a", 10*time.Millisecond, wg.Done)
	s.Schedule("b", 10*time.Millisecond, wg.Done)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tasks for independent keys did not both fire")
	}
}

func TestCancelDropsTask(t *testing.T) {
	s := New()

	fired := make(chan struct{}, 1)
	s.Schedule("a", 20*time.Millisecond, func() { fired <- struct{}{} })
	s.Cancel("a")

	select {
	case <-fired:
		t.Fatal("cancelled task fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStopCancelsEverythingAndRejectsNewWork(t *testing.T) {
	s := New()

	fired := make(chan struct{}, 2)
	s.Schedule("a", 20*time.Millisecond, func() { fired <- struct{}{} })
	s.Schedule("b", 20*time.Millisecond, func() { fired <- struct{}{} })
	s.Stop()

	s.Schedule("c", time.Millisecond, func() { fired <- struct{}{} })

	select {
	case <-fired:
		t.Fatal("task fired after Stop")
	case <-time.After(100 * time.Millisecond):
	}
	if got := s.Pending(); got != 0 {
		t.Errorf("Pending() = %d after Stop, want 0", got)
	}
}
