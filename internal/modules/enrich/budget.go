package enrich

import (
	"context"
	"sync"
	"time"
)

// Budget is the per-editing-session call allowance. The count is monotonic:
// nothing ever gives a unit back, a fresh session starts a fresh Budget.
type Budget struct {
	mu    sync.Mutex
	count int
	max   int
}

// NewBudget creates a budget permitting max external calls.
func NewBudget(max int) *Budget {
	return &Budget{max: max}
}

// TryConsume takes one unit if any remain. Callers must skip the external
// call entirely when it returns false.
func (b *Budget) TryConsume() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count >= b.max {
		return false
	}
	b.count++
	return true
}

// Used returns how many units have been consumed.
func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Remaining returns how many units are left.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count >= b.max {
		return 0
	}
	return b.max - b.count
}

const budgetIdleTTL = time.Hour

type budgetEntry struct {
	budget   *Budget
	lastSeen time.Time
}

// BudgetRegistry tracks budgets keyed by enrichment-session id. Entries are
// swept after an hour of inactivity.
type BudgetRegistry struct {
	mu      sync.Mutex
	max     int
	entries map[string]*budgetEntry
}

func NewBudgetRegistry(maxPerSession int) *BudgetRegistry {
	return &BudgetRegistry{
		max:     maxPerSession,
		entries: make(map[string]*budgetEntry),
	}
}

// Get returns the budget for a session id, creating one on first use.
// An empty id gets a throwaway budget so anonymous one-off calls still
// respect the per-call ceiling without sharing state.
func (r *BudgetRegistry) Get(sessionID string) *Budget {
	if sessionID == "" {
		return NewBudget(r.max)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sessionID]
	if !ok {
		e = &budgetEntry{budget: NewBudget(r.max)}
		r.entries[sessionID] = e
	}
	e.lastSeen = time.Now()
	return e.budget
}

// Remove drops a session's budget.
func (r *BudgetRegistry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sessionID)
}

// Run sweeps idle entries until ctx is cancelled.
func (r *BudgetRegistry) Run(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-budgetIdleTTL)
			r.mu.Lock()
			for id, e := range r.entries {
				if e.lastSeen.Before(cutoff) {
					delete(r.entries, id)
				}
			}
			r.mu.Unlock()
		}
	}
}
