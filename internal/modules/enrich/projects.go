package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/folio-space/core/internal/models"
	"go.uber.org/zap"
)

// ProjectDetector assembles a ranked project list from two independently
// failing strategies: the repository host's listing API and a heuristic
// LLM scrape of the personal website. A failure in one never cancels the
// other; both failing yields an empty list, not an error.
type ProjectDetector struct {
	github repoLister
	llm    completer
	client *http.Client
	logger *zap.Logger
}

func NewProjectDetector(github repoLister, llm completer, logger *zap.Logger) *ProjectDetector {
	return &ProjectDetector{
		github: github,
		llm:    llm,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

// Detect runs both strategies and merges their results. Returns an empty
// list immediately when both inputs are absent.
func (d *ProjectDetector) Detect(ctx context.Context, githubURL, websiteURL string) []models.ProjectRecord {
	githubURL = strings.TrimSpace(githubURL)
	websiteURL = strings.TrimSpace(websiteURL)
	if githubURL == "" && websiteURL == "" {
		return []models.ProjectRecord{}
	}

	var (
		wg      sync.WaitGroup
		hosted  []models.ProjectRecord
		scraped []models.ProjectRecord
	)

	if githubURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hosted = d.detectFromHost(ctx, githubURL)
		}()
	}
	if websiteURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scraped = d.detectFromScrape(ctx, websiteURL)
		}()
	}
	wg.Wait()

	return rankProjects(append(hosted, scraped...))
}

func (d *ProjectDetector) detectFromHost(ctx context.Context, profileURL string) []models.ProjectRecord {
	username := parseGitHubUsername(profileURL)
	if username == "" {
		d.logger.Debug("project detection: unrecognized profile url", zap.String("url", profileURL))
		return nil
	}

	repos, err := d.github.ListUserRepos(ctx, username)
	if err != nil {
		d.logger.Warn("project detection: host listing failed", zap.String("user", username), zap.Error(err))
		return nil
	}

	out := make([]models.ProjectRecord, 0, len(repos))
	for _, repo := range repos {
		if isNoiseRepoName(repo.Name) {
			continue
		}
		out = append(out, repoToProjectRecord(repo))
	}
	return out
}

func (d *ProjectDetector) detectFromScrape(ctx context.Context, websiteURL string) []models.ProjectRecord {
	html, err := d.fetchPage(ctx, websiteURL)
	if err != nil {
		d.logger.Warn("project detection: website fetch failed", zap.String("url", websiteURL), zap.Error(err))
		return nil
	}

	systemPrompt, prompt := buildScrapePrompt(html)
	raw, err := d.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		d.logger.Warn("project detection: scrape completion failed", zap.Error(err))
		return nil
	}

	records, err := parseProjectsJSON(raw)
	if err != nil {
		d.logger.Warn("project detection: unparseable scrape response", zap.Error(err))
		return nil
	}

	out := make([]models.ProjectRecord, 0, len(records))
	for _, r := range records {
		r.Title = strings.TrimSpace(r.Title)
		if r.Title == "" {
			continue
		}
		if strings.TrimSpace(r.Description) == "" {
			r.Description = placeholderDesc
		}
		out = append(out, r)
	}
	return out
}

func (d *ProjectDetector) fetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; folio-space project detector)")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<19))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// rankProjects sorts descending by star count (absent = 0) and keeps the top
// five. The sort is stable, so same-star entries keep their input order; this
// intentionally pushes scraped projects below any starred repository.
func rankProjects(records []models.ProjectRecord) []models.ProjectRecord {
	starsOf := func(r models.ProjectRecord) int {
		if r.Stars == nil {
			return 0
		}
		return *r.Stars
	}
	sort.SliceStable(records, func(i, j int) bool {
		return starsOf(records[i]) > starsOf(records[j])
	})
	if len(records) > maxProjects {
		records = records[:maxProjects]
	}
	if records == nil {
		records = []models.ProjectRecord{}
	}
	return records
}
