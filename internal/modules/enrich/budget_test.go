package enrich

import (
	"sync"
	"testing"
)

func TestBudgetExhaustsAtMax(t *testing.T) {
	b := NewBudget(5)

	for i := 0; i < 5; i++ {
		if !b.TryConsume() {
			t.Fatalf("TryConsume() call %d = false, want true", i+1)
		}
	}
	if b.TryConsume() {
		t.Error("6th TryConsume() = true, want false")
	}
	if got := b.Used(); got != 5 {
		t.Errorf("Used() = %d, want 5", got)
	}
	if got := b.Remaining(); got != 0 {
		t.Errorf("Remaining() = %d, want 0", got)
	}
}

func TestBudgetNeverDecrements(t *testing.T) {
	b := NewBudget(2)
	b.TryConsume()
	b.TryConsume()

	// Denied attempts must not free up units.
	for i := 0; i < 10; i++ {
		if b.TryConsume() {
			t.Fatal("TryConsume() = true after exhaustion")
		}
	}
	if got := b.Used(); got != 2 {
		t.Errorf("Used() = %d, want 2", got)
	}
}

func TestBudgetConcurrentConsume(t *testing.T) {
	b := NewBudget(5)

	var wg sync.WaitGroup
	granted := make(chan bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			granted <- b.TryConsume()
		}()
	}
	wg.Wait()
	close(granted)

	var allowed int
	for ok := range granted {
		if ok {
			allowed++
		}
	}
	if allowed != 5 {
		t.Errorf("concurrent TryConsume granted %d units, want exactly 5", allowed)
	}
}

func TestBudgetRegistrySessionIsolation(t *testing.T) {
	r := NewBudgetRegistry(1)

	a := r.Get("session-a")
	if !a.TryConsume() {
		t.Fatal("fresh session budget denied first unit")
	}
	if a.TryConsume() {
		t.Error("session-a budget granted beyond max")
	}

	// A different session has its own allowance.
	if !r.Get("session-b").TryConsume() {
		t.Error("session-b budget affected by session-a consumption")
	}

	// Same id returns the same (exhausted) budget.
	if r.Get("session-a").TryConsume() {
		t.Error("re-fetched session-a budget was not the same instance")
	}
}

func TestBudgetRegistryRemove(t *testing.T) {
	r := NewBudgetRegistry(1)
	r.Get("s").TryConsume()
	r.Remove("s")

	// A new page load starts over.
	if !r.Get("s").TryConsume() {
		t.Error("budget not reset after Remove")
	}
}
