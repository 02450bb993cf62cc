package enrich

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/debounce"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// operations is the set of enrichment calls an editor session can schedule.
// *Service implements it; tests substitute a stub.
type operations interface {
	Suggestions(ctx context.Context, b *Budget, fieldName, fieldType, text string) []string
	Skills(ctx context.Context, b *Budget, text string) []string
	Projects(ctx context.Context, b *Budget, githubURL, websiteURL string) []models.ProjectRecord
	Screenshot(ctx context.Context, b *Budget, url string) (ScreenshotResult, error)
}

// Delays holds the per-operation debounce windows. Slower, more expensive
// calls wait longer for input to stabilize.
type Delays struct {
	Suggestions time.Duration
	Skills      time.Duration
	Projects    time.Duration
	Screenshot  time.Duration
}

// DefaultDelays matches the editing UI's settle times.
var DefaultDelays = Delays{
	Suggestions: 3000 * time.Millisecond,
	Skills:      3500 * time.Millisecond,
	Projects:    3000 * time.Millisecond,
	Screenshot:  2000 * time.Millisecond,
}

// EditorSession is the server-side home of one user's editing burst: a
// debouncer, a call budget, and the latest enrichment result per field slot.
// Results are guarded by per-key sequence numbers so a slow response for a
// superseded input is dropped instead of overwriting newer state.
type EditorSession struct {
	ID string

	ops         operations
	budget      *Budget
	sched       *debounce.Scheduler
	delays      Delays
	maxFieldLen int
	logger      *zap.Logger

	mu         sync.Mutex
	seq        map[string]uint64
	githubURL  string
	websiteURL string
	results    map[string]FieldResult
	lastSeen   time.Time
}

// HandleEvent ingests one field-change event and schedules the matching
// enrichment operation. Oversized text is dropped before scheduling,
// regardless of remaining budget.
func (s *EditorSession) HandleEvent(e EventDTO) {
	s.touch()

	switch e.Kind {
	case KindSuggestions:
		if utf8.RuneCountInString(e.Text) > s.maxFieldLen || strings.TrimSpace(e.FieldName) == "" {
			return
		}
		key := "suggestions:" + e.FieldName
		myseq := s.bumpSeq(key)
		fieldName, fieldType, text := e.FieldName, e.FieldType, e.Text
		s.sched.Schedule(key, s.delays.Suggestions, func() {
			got := s.ops.Suggestions(context.Background(), s.budget, fieldName, fieldType, text)
			s.apply(key, myseq, FieldResult{Kind: KindSuggestions, Suggestions: got})
		})

	case KindSkills:
		if utf8.RuneCountInString(e.Text) > s.maxFieldLen {
			return
		}
		key := "skills"
		myseq := s.bumpSeq(key)
		text := e.Text
		s.sched.Schedule(key, s.delays.Skills, func() {
			got := s.ops.Skills(context.Background(), s.budget, text)
			s.apply(key, myseq, FieldResult{Kind: KindSkills, Skills: got})
		})

	case KindProjects:
		s.setURLs(e.GitHubURL, e.WebsiteURL)
		key := "projects"
		myseq := s.bumpSeq(key)
		s.sched.Schedule(key, s.delays.Projects, func() {
			// Read the URLs at fire time, not schedule time.
			github, website := s.currentURLs()
			got := s.ops.Projects(context.Background(), s.budget, github, website)
			s.apply(key, myseq, FieldResult{Kind: KindProjects, Projects: got})
		})

	case KindScreenshot:
		s.setURLs(e.GitHubURL, e.WebsiteURL)
		key := "screenshot"
		myseq := s.bumpSeq(key)
		s.sched.Schedule(key, s.delays.Screenshot, func() {
			_, website := s.currentURLs()
			got, err := s.ops.Screenshot(context.Background(), s.budget, website)
			if err != nil {
				s.logger.Debug("editor session: screenshot skipped", zap.String("session", s.ID), zap.Error(err))
				return
			}
			s.apply(key, myseq, FieldResult{Kind: KindScreenshot, Screenshot: &got})
		})

	default:
		s.logger.Debug("editor session: unknown event kind", zap.String("kind", e.Kind))
	}
}

// Results returns a copy of the current per-slot enrichment state.
func (s *EditorSession) Results() map[string]FieldResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	out := make(map[string]FieldResult, len(s.results))
	for k, v := range s.results {
		out[k] = v
	}
	return out
}

// Budget exposes the session's call budget.
func (s *EditorSession) Budget() *Budget { return s.budget }

// Close cancels every pending timer. Called on teardown (form submit or
// session delete); guarantees no enrichment call fires afterwards.
func (s *EditorSession) Close() {
	s.sched.Stop()
}

func (s *EditorSession) bumpSeq(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[key]++
	return s.seq[key]
}

func (s *EditorSession) apply(key string, myseq uint64, result FieldResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq[key] != myseq {
		// A newer event superseded this request while it was in flight.
		return
	}
	result.UpdatedAt = time.Now().UnixMilli()
	s.results[key] = result
}

func (s *EditorSession) setURLs(github, website string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if github != "" {
		s.githubURL = github
	}
	if website != "" {
		s.websiteURL = website
	}
}

func (s *EditorSession) currentURLs() (github, website string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.githubURL, s.websiteURL
}

func (s *EditorSession) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *EditorSession) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff)
}

const sessionIdleTTL = time.Hour

// SessionManager owns the live editor sessions.
type SessionManager struct {
	ops         operations
	budgets     *BudgetRegistry
	delays      Delays
	maxFieldLen int
	logger      *zap.Logger

	mu       sync.Mutex
	sessions map[string]*EditorSession
}

func NewSessionManager(ops operations, budgets *BudgetRegistry, delays Delays, maxFieldLen int, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		ops:         ops,
		budgets:     budgets,
		delays:      delays,
		maxFieldLen: maxFieldLen,
		logger:      logger,
		sessions:    make(map[string]*EditorSession),
	}
}

// Create starts a fresh editing session with a fresh call budget.
func (m *SessionManager) Create() *EditorSession {
	s := &EditorSession{
		ID:          uuid.New().String(),
		ops:         m.ops,
		sched:       debounce.New(),
		delays:      m.delays,
		maxFieldLen: m.maxFieldLen,
		logger:      m.logger,
		seq:         make(map[string]uint64),
		results:     make(map[string]FieldResult),
		lastSeen:    time.Now(),
	}
	s.budget = m.budgets.Get(s.ID)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns a session by id, or nil.
func (m *SessionManager) Get(id string) *EditorSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Delete tears down a session: pending timers are cancelled and the budget
// is released.
func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
		m.budgets.Remove(id)
	}
}

// Run sweeps idle sessions until ctx is cancelled.
func (m *SessionManager) Run(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-sessionIdleTTL)
			m.mu.Lock()
			var stale []string
			for id, s := range m.sessions {
				if s.idleSince(cutoff) {
					stale = append(stale, id)
				}
			}
			m.mu.Unlock()
			for _, id := range stale {
				m.Delete(id)
			}
		}
	}
}
