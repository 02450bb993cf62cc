package enrich

import (
	"context"
	"strings"
	"testing"

	appcfg "github.com/folio-space/core/internal/config"
	"go.uber.org/zap"
)

func newStubService(llm *stubCompleter, lister *stubRepoLister) *Service {
	s := &Service{
		cfg:      &appcfg.AppConfig{},
		logger:   zap.NewNop(),
		llm:      llm,
		detector: NewProjectDetector(lister, llm, zap.NewNop()),
		shots:    NewScreenshotResolver(appcfg.ScreenshotConfig{}, zap.NewNop()),
		budgets:  NewBudgetRegistry(5),
	}
	s.sessions = NewSessionManager(s, s.budgets, DefaultDelays, 2000, zap.NewNop())
	return s
}

func exhausted(max int) *Budget {
	b := NewBudget(max)
	for i := 0; i < max; i++ {
		b.TryConsume()
	}
	return b
}

func TestSuggestionsBelowThresholdSkipsCallAndBudget(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace only", "   \n  "},
		{"nine ascii chars", "nine char"},
		{"nine multibyte runes", strings.Repeat("é", 9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &stubCompleter{response: "1. Should never be requested"}
			svc := newStubService(llm, &stubRepoLister{})
			b := NewBudget(5)

			got := svc.Suggestions(context.Background(), b, "tagline", "short-text", tt.text)
			if len(got) != 0 {
				t.Errorf("got %v, want empty", got)
			}
			if llm.calls != 0 {
				t.Errorf("completer called %d times, want 0", llm.calls)
			}
			if b.Used() != 0 {
				t.Errorf("Used() = %d, want 0 (threshold skip must not cost budget)", b.Used())
			}
		})
	}
}

func TestSuggestionsAtThresholdConsumesBudget(t *testing.T) {
	llm := &stubCompleter{response: "1. Tighten the wording"}
	svc := newStubService(llm, &stubRepoLister{})
	b := NewBudget(5)

	// Exactly ten runes, multibyte on purpose.
	got := svc.Suggestions(context.Background(), b, "tagline", "short-text", strings.Repeat("é", 10))
	if len(got) != 1 || got[0] != "Tighten the wording" {
		t.Errorf("got %v", got)
	}
	if llm.calls != 1 {
		t.Errorf("completer called %d times, want 1", llm.calls)
	}
	if b.Used() != 1 {
		t.Errorf("Used() = %d, want 1", b.Used())
	}
}

func TestSkillsBelowThresholdSkipsCallAndBudget(t *testing.T) {
	llm := &stubCompleter{response: "Go"}
	svc := newStubService(llm, &stubRepoLister{})
	b := NewBudget(5)

	got := svc.Skills(context.Background(), b, strings.Repeat("ñ", 19))
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
	if llm.calls != 0 {
		t.Errorf("completer called %d times, want 0", llm.calls)
	}
	if b.Used() != 0 {
		t.Errorf("Used() = %d, want 0", b.Used())
	}
}

func TestSkillsAtThresholdConsumesBudget(t *testing.T) {
	llm := &stubCompleter{response: "Go\nMySQL"}
	svc := newStubService(llm, &stubRepoLister{})
	b := NewBudget(5)

	got := svc.Skills(context.Background(), b, strings.Repeat("ñ", 20))
	if len(got) != 2 {
		t.Errorf("got %v, want 2 skills", got)
	}
	if b.Used() != 1 {
		t.Errorf("Used() = %d, want 1", b.Used())
	}
}

func TestSuggestionsExhaustedBudgetSilentlySkips(t *testing.T) {
	llm := &stubCompleter{response: "1. Should never be requested"}
	svc := newStubService(llm, &stubRepoLister{})
	b := exhausted(5)

	got := svc.Suggestions(context.Background(), b, "tagline", "short-text", "a perfectly valid tagline draft")
	if len(got) != 0 {
		t.Errorf("got %v, want empty on exhausted budget", got)
	}
	if llm.calls != 0 {
		t.Errorf("completer called %d times, want 0", llm.calls)
	}
	if b.Used() != 5 {
		t.Errorf("Used() = %d, want 5 (denial must not change the count)", b.Used())
	}
}

func TestSkillsExhaustedBudgetSilentlySkips(t *testing.T) {
	llm := &stubCompleter{response: "Go"}
	svc := newStubService(llm, &stubRepoLister{})
	b := exhausted(1)

	got := svc.Skills(context.Background(), b, "I build services with Go, MySQL and Redis.")
	if len(got) != 0 {
		t.Errorf("got %v, want empty on exhausted budget", got)
	}
	if llm.calls != 0 {
		t.Errorf("completer called %d times, want 0", llm.calls)
	}
}

func TestProjectsBothURLsEmptyCostsNothing(t *testing.T) {
	llm := &stubCompleter{}
	svc := newStubService(llm, &stubRepoLister{})
	b := NewBudget(5)

	got := svc.Projects(context.Background(), b, "", "  ")
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
	if llm.calls != 0 {
		t.Errorf("completer called %d times, want 0", llm.calls)
	}
	if b.Used() != 0 {
		t.Errorf("Used() = %d, want 0", b.Used())
	}
}

func TestScreenshotInvalidURLCostsNothing(t *testing.T) {
	svc := newStubService(&stubCompleter{}, &stubRepoLister{})
	b := NewBudget(5)

	result, err := svc.Screenshot(context.Background(), b, "not a url")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if result.Available() {
		t.Errorf("got %+v, want unavailable", result)
	}
	if b.Used() != 0 {
		t.Errorf("Used() = %d, want 0 (validation runs before budget)", b.Used())
	}
}
