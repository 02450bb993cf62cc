package enrich

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/folio-space/core/internal/models"
	"go.uber.org/zap"
)

type opsCall struct {
	op         string
	field      string
	text       string
	githubURL  string
	websiteURL string
}

// recordingOps records every enrichment invocation.
type recordingOps struct {
	mu    sync.Mutex
	calls []opsCall
}

func (r *recordingOps) record(c opsCall) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

func (r *recordingOps) callsOf(op string) []opsCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []opsCall
	for _, c := range r.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func (r *recordingOps) Suggestions(ctx context.Context, b *Budget, fieldName, fieldType, text string) []string {
	r.record(opsCall{op: "suggestions", field: fieldName, text: text})
	return []string{"Add metrics"}
}

func (r *recordingOps) Skills(ctx context.Context, b *Budget, text string) []string {
	r.record(opsCall{op: "skills", text: text})
	return []string{"Go"}
}

func (r *recordingOps) Projects(ctx context.Context, b *Budget, githubURL, websiteURL string) []models.ProjectRecord {
	r.record(opsCall{op: "projects", githubURL: githubURL, websiteURL: websiteURL})
	return []models.ProjectRecord{{Title: "Blog"}}
}

func (r *recordingOps) Screenshot(ctx context.Context, b *Budget, url string) (ScreenshotResult, error) {
	r.record(opsCall{op: "screenshot", websiteURL: url})
	return ScreenshotResult{Source: ScreenshotPrimary, Reference: "https://cdn.example/s.png"}, nil
}

func newTestManager(ops operations) *SessionManager {
	delays := Delays{
		Suggestions: 20 * time.Millisecond,
		Skills:      20 * time.Millisecond,
		Projects:    20 * time.Millisecond,
		Screenshot:  20 * time.Millisecond,
	}
	return NewSessionManager(ops, NewBudgetRegistry(5), delays, 2000, zap.NewNop())
}

func waitCalls(t *testing.T, ops *recordingOps, op string, want int) []opsCall {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if calls := ops.callsOf(op); len(calls) >= want {
			return calls
		}
		time.Sleep(5 * time.Millisecond)
	}
	return ops.callsOf(op)
}

func TestSessionDebounceReplacement(t *testing.T) {
	ops := &recordingOps{}
	m := newTestManager(ops)
	s := m.Create()
	defer m.Delete(s.ID)

	s.HandleEvent(EventDTO{Kind: KindSuggestions, FieldName: "tagline", Text: "first draft of my tagline"})
	s.HandleEvent(EventDTO{Kind: KindSuggestions, FieldName: "tagline", Text: "second draft of my tagline"})

	calls := waitCalls(t, ops, "suggestions", 1)
	time.Sleep(50 * time.Millisecond) // let a spurious first fire surface

	calls = ops.callsOf("suggestions")
	if len(calls) != 1 {
		t.Fatalf("got %d suggestion calls, want exactly 1", len(calls))
	}
	if calls[0].text != "second draft of my tagline" {
		t.Errorf("fired with %q, want the second event's text", calls[0].text)
	}
}

func TestSessionOversizedTextNeverScheduled(t *testing.T) {
	ops := &recordingOps{}
	m := newTestManager(ops)
	s := m.Create()
	defer m.Delete(s.ID)

	s.HandleEvent(EventDTO{Kind: KindSkills, Text: strings.Repeat("x", 2001)})

	time.Sleep(60 * time.Millisecond)
	if calls := ops.callsOf("skills"); len(calls) != 0 {
		t.Errorf("oversized text must not schedule, got %d calls", len(calls))
	}
}

func TestSessionLengthGuardCountsRunes(t *testing.T) {
	ops := &recordingOps{}
	m := newTestManager(ops)
	s := m.Create()
	defer m.Delete(s.ID)

	// 2000 two-byte runes: over the limit in bytes, exactly at it in runes.
	s.HandleEvent(EventDTO{Kind: KindSkills, Text: strings.Repeat("ñ", 2000)})

	if calls := waitCalls(t, ops, "skills", 1); len(calls) != 1 {
		t.Fatalf("got %d skills calls, want 1 (guard must count runes, not bytes)", len(calls))
	}
}

func TestSessionURLChangesUseLatestValuesAtFireTime(t *testing.T) {
	ops := &recordingOps{}
	m := newTestManager(ops)
	s := m.Create()
	defer m.Delete(s.ID)

	// Github URL arrives first, website URL is still empty.
	s.HandleEvent(EventDTO{Kind: KindProjects, GitHubURL: "https://github.com/alice"})
	// Website URL lands before the projects timer fires.
	s.HandleEvent(EventDTO{Kind: KindProjects, GitHubURL: "https://github.com/alice", WebsiteURL: "https://alice.dev"})
	s.HandleEvent(EventDTO{Kind: KindScreenshot, WebsiteURL: "https://alice.dev"})

	projects := waitCalls(t, ops, "projects", 1)
	shots := waitCalls(t, ops, "screenshot", 1)
	time.Sleep(50 * time.Millisecond)

	projects = ops.callsOf("projects")
	shots = ops.callsOf("screenshot")
	if len(projects) != 1 {
		t.Fatalf("got %d project calls, want exactly 1", len(projects))
	}
	if len(shots) != 1 {
		t.Fatalf("got %d screenshot calls, want exactly 1", len(shots))
	}
	if projects[0].githubURL != "https://github.com/alice" || projects[0].websiteURL != "https://alice.dev" {
		t.Errorf("projects fired with (%q, %q), want both latest URLs", projects[0].githubURL, projects[0].websiteURL)
	}
	if shots[0].websiteURL != "https://alice.dev" {
		t.Errorf("screenshot fired with %q, want latest website url", shots[0].websiteURL)
	}
}

func TestSessionResultsExposeLatestOutcome(t *testing.T) {
	ops := &recordingOps{}
	m := newTestManager(ops)
	s := m.Create()
	defer m.Delete(s.ID)

	s.HandleEvent(EventDTO{Kind: KindSuggestions, FieldName: "about", Text: "long enough text here"})
	waitCalls(t, ops, "suggestions", 1)

	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := s.Results()["suggestions:about"]; ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("result never surfaced")
		}
		time.Sleep(5 * time.Millisecond)
	}

	got := s.Results()["suggestions:about"]
	if got.Kind != KindSuggestions || len(got.Suggestions) != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestSessionStaleResponseIsDropped(t *testing.T) {
	ops := &recordingOps{}
	m := newTestManager(ops)
	s := m.Create()
	defer m.Delete(s.ID)

	old := s.bumpSeq("skills")
	_ = s.bumpSeq("skills") // a newer event supersedes

	s.apply("skills", old, FieldResult{Kind: KindSkills, Skills: []string{"stale"}})
	if _, ok := s.Results()["skills"]; ok {
		t.Error("stale result must not be applied")
	}
}

func TestSessionCloseCancelsPendingTimers(t *testing.T) {
	ops := &recordingOps{}
	m := newTestManager(ops)
	s := m.Create()

	s.HandleEvent(EventDTO{Kind: KindSkills, Text: "a perfectly normal description"})
	m.Delete(s.ID)

	time.Sleep(60 * time.Millisecond)
	if calls := ops.callsOf("skills"); len(calls) != 0 {
		t.Errorf("timer fired after teardown, got %d calls", len(calls))
	}
}

func TestSessionManagerLifecycle(t *testing.T) {
	m := newTestManager(&recordingOps{})
	s := m.Create()

	if m.Get(s.ID) != s {
		t.Error("Get should return the live session")
	}
	m.Delete(s.ID)
	if m.Get(s.ID) != nil {
		t.Error("Get should return nil after Delete")
	}
	m.Delete(s.ID) // idempotent
}
