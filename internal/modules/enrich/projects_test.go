package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/folio-space/core/internal/models"
	"go.uber.org/zap"
)

func intp(n int) *int { return &n }

type stubRepoLister struct {
	repos []githubRepo
	err   error
}

func (s *stubRepoLister) ListUserRepos(ctx context.Context, username string) ([]githubRepo, error) {
	return s.repos, s.err
}

type stubCompleter struct {
	response string
	err      error
	calls    int
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	s.calls++
	return s.response, s.err
}

func TestRankProjects(t *testing.T) {
	in := []models.ProjectRecord{
		{Title: "zero-a", Stars: intp(0)},
		{Title: "ten", Stars: intp(10)},
		{Title: "scraped-a"}, // nil stars ranks as 0
		{Title: "scraped-b"},
	}

	got := rankProjects(in)
	wantOrder := []string{"ten", "zero-a", "scraped-a", "scraped-b"}
	if len(got) != len(wantOrder) {
		t.Fatalf("len = %d, want %d", len(got), len(wantOrder))
	}
	for i, title := range wantOrder {
		if got[i].Title != title {
			t.Errorf("position %d = %q, want %q (ties must keep input order)", i, got[i].Title, title)
		}
	}
}

func TestRankProjectsCapsAtFive(t *testing.T) {
	var in []models.ProjectRecord
	for i := 0; i < 8; i++ {
		in = append(in, models.ProjectRecord{Title: fmt.Sprintf("p%d", i), Stars: intp(i)})
	}

	got := rankProjects(in)
	if len(got) != maxProjects {
		t.Fatalf("len = %d, want %d", len(got), maxProjects)
	}
	if got[0].Title != "p7" {
		t.Errorf("top entry = %q, want p7", got[0].Title)
	}
}

func TestRankProjectsNilInput(t *testing.T) {
	got := rankProjects(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want non-nil empty slice", got)
	}
}

func TestDetectBothInputsAbsent(t *testing.T) {
	lister := &stubRepoLister{}
	llm := &stubCompleter{}
	d := NewProjectDetector(lister, llm, zap.NewNop())

	got := d.Detect(context.Background(), "", "  ")
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
	if llm.calls != 0 {
		t.Errorf("no external call should be made, got %d", llm.calls)
	}
}

func TestDetectFiltersNoiseRepos(t *testing.T) {
	lister := &stubRepoLister{repos: []githubRepo{
		{Name: "blog-engine", Stars: 5},
		{Name: "test-utils", Stars: 100},
		{Name: "My-Example-App", Stars: 50},
	}}
	d := NewProjectDetector(lister, &stubCompleter{}, zap.NewNop())

	got := d.Detect(context.Background(), "https://github.com/alice", "")
	if len(got) != 1 || got[0].Title != "blog engine" {
		t.Errorf("got %+v, want only blog engine", got)
	}
}

func TestDetectHostFailureDoesNotCancelScrape(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>My projects</body></html>")
	}))
	defer page.Close()

	lister := &stubRepoLister{err: errors.New("rate limited")}
	llm := &stubCompleter{response: `[{"title":"Side Project","url":"https://side.example"}]`}
	d := NewProjectDetector(lister, llm, zap.NewNop())

	got := d.Detect(context.Background(), "https://github.com/alice", page.URL)
	if len(got) != 1 || got[0].Title != "Side Project" {
		t.Errorf("got %+v, want the scraped project", got)
	}
	if got[0].Description != placeholderDesc {
		t.Errorf("scraped project without description should get placeholder, got %q", got[0].Description)
	}
}

func TestDetectScrapeParseFailureYieldsEmpty(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html></html>")
	}))
	defer page.Close()

	llm := &stubCompleter{response: "I could not find any projects on this page."}
	d := NewProjectDetector(&stubRepoLister{}, llm, zap.NewNop())

	got := d.Detect(context.Background(), "", page.URL)
	if len(got) != 0 {
		t.Errorf("got %+v, want empty on parse failure", got)
	}
}

func TestDetectMergeRanksHostedAboveScraped(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html></html>")
	}))
	defer page.Close()

	lister := &stubRepoLister{repos: []githubRepo{
		{Name: "starred", Stars: 10, Description: "starred repo"},
		{Name: "unstarred", Stars: 0, Description: "unstarred repo"},
	}}
	llm := &stubCompleter{response: `[{"title":"Portfolio Site","description":"scraped"}]`}
	d := NewProjectDetector(lister, llm, zap.NewNop())

	got := d.Detect(context.Background(), "https://github.com/alice", page.URL)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Title != "starred" {
		t.Errorf("top entry = %q, want starred", got[0].Title)
	}
	if got[2].Title != "Portfolio Site" {
		t.Errorf("last entry = %q, want the scraped project", got[2].Title)
	}
}
