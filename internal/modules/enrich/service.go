package enrich

import (
	"context"
	"strings"
	"unicode/utf8"

	appcfg "github.com/folio-space/core/internal/config"
	"github.com/folio-space/core/internal/models"
	"go.uber.org/zap"
)

// Service coordinates the best-effort enrichment pipeline. Every operation
// is independent and idempotent; failures resolve to empty results, never
// errors the editing UI has to handle.
type Service struct {
	cfg      *appcfg.AppConfig
	logger   *zap.Logger
	llm      completer
	detector *ProjectDetector
	shots    *ScreenshotResolver
	budgets  *BudgetRegistry
	sessions *SessionManager
}

func NewService(cfg *appcfg.AppConfig, logger *zap.Logger) *Service {
	llm := completer(newProviderCompleter(cfg.FirstEnabledAIProvider()))
	s := &Service{
		cfg:      cfg,
		logger:   logger,
		llm:      llm,
		detector: NewProjectDetector(NewGitHubClient(cfg.GitHub), llm, logger),
		shots:    NewScreenshotResolver(cfg.Screenshot, logger),
		budgets:  NewBudgetRegistry(cfg.Enrichment.MaxCallsPerSession),
	}
	s.sessions = NewSessionManager(s, s.budgets, DefaultDelays, cfg.Enrichment.MaxFieldLength, logger)
	return s
}

// Run starts the background sweepers until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	go s.budgets.Run(ctx)
	s.sessions.Run(ctx)
}

// Sessions exposes the editor-session manager.
func (s *Service) Sessions() *SessionManager { return s.sessions }

// BudgetFor returns the call budget for an enrichment-session id.
func (s *Service) BudgetFor(sessionID string) *Budget {
	return s.budgets.Get(sessionID)
}

// Suggestions asks the language model for up to three one-sentence
// improvement suggestions. Text below the minimum threshold returns an
// empty set with no external call and no budget cost.
func (s *Service) Suggestions(ctx context.Context, b *Budget, fieldName, fieldType, text string) []string {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < suggestionMinChars {
		return []string{}
	}
	if !s.consume(b, "suggestions") {
		return []string{}
	}

	systemPrompt, prompt := buildSuggestionPrompt(fieldName, fieldType, text)
	raw, err := s.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		s.logger.Warn("suggestions: completion failed", zap.String("field", fieldName), zap.Error(err))
		return []string{}
	}
	return parseNumberedList(raw, maxSuggestions)
}

// Skills extracts up to ten technology names from a description.
func (s *Service) Skills(ctx context.Context, b *Budget, text string) []string {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < skillMinChars {
		return []string{}
	}
	if !s.consume(b, "skills") {
		return []string{}
	}

	systemPrompt, prompt := buildSkillPrompt(text)
	raw, err := s.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		s.logger.Warn("skills: completion failed", zap.Error(err))
		return []string{}
	}
	return parseLineList(raw, maxSkills)
}

// Projects runs the two-strategy detector. Both URLs absent is an immediate
// empty result with no calls and no budget cost.
func (s *Service) Projects(ctx context.Context, b *Budget, githubURL, websiteURL string) []models.ProjectRecord {
	if strings.TrimSpace(githubURL) == "" && strings.TrimSpace(websiteURL) == "" {
		return []models.ProjectRecord{}
	}
	if !s.consume(b, "projects") {
		return []models.ProjectRecord{}
	}
	return s.detector.Detect(ctx, githubURL, websiteURL)
}

// Screenshot resolves a website preview. The returned error is only ever
// URL validation failure.
func (s *Service) Screenshot(ctx context.Context, b *Budget, url string) (ScreenshotResult, error) {
	if _, err := validateWebsiteURL(url); err != nil {
		return ScreenshotResult{Source: ScreenshotUnavailable}, err
	}
	if !s.consume(b, "screenshot") {
		return ScreenshotResult{Source: ScreenshotUnavailable}, nil
	}
	return s.shots.Resolve(ctx, url)
}

// consume takes one budget unit, logging the silent skip when exhausted.
func (s *Service) consume(b *Budget, op string) bool {
	if b == nil {
		return true
	}
	if !b.TryConsume() {
		s.logger.Debug("enrichment budget exhausted, skipping call", zap.String("op", op))
		return false
	}
	return true
}
