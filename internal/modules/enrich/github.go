package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	appcfg "github.com/folio-space/core/internal/config"
	"github.com/folio-space/core/internal/models"
)

const (
	githubRepoListLimit = 10
	placeholderDesc     = "A personal project."
)

var githubProfilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?github\.com/([A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?)(?:[/?#].*)?$`),
	regexp.MustCompile(`^git@github\.com:([A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?)(?:/.*)?$`),
	regexp.MustCompile(`^@?([A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?)$`),
}

// parseGitHubUsername extracts a username from a profile URL, SSH remote, or
// bare handle. Returns "" when nothing matches.
func parseGitHubUsername(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	for _, pattern := range githubProfilePatterns {
		if m := pattern.FindStringSubmatch(trimmed); m != nil {
			return m[1]
		}
	}
	return ""
}

// githubRepo is the subset of the repository listing payload we consume.
type githubRepo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	HTMLURL     string   `json:"html_url"`
	Stars       int      `json:"stargazers_count"`
	Forks       int      `json:"forks_count"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
	UpdatedAt   string   `json:"updated_at"`
}

// repoLister is the repository-host listing boundary.
type repoLister interface {
	ListUserRepos(ctx context.Context, username string) ([]githubRepo, error)
}

// GitHubClient lists a user's public repositories, unauthenticated.
// The host rate-limits aggressively; failures are terminal, no retry.
type GitHubClient struct {
	cfg    appcfg.GitHubConfig
	client *http.Client
}

func NewGitHubClient(cfg appcfg.GitHubConfig) *GitHubClient {
	return &GitHubClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *GitHubClient) ListUserRepos(ctx context.Context, username string) ([]githubRepo, error) {
	url := fmt.Sprintf("%s/users/%s/repos?sort=updated&per_page=%d",
		strings.TrimRight(g.cfg.APIBase, "/"), username, githubRepoListLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", g.cfg.UserAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("github listing failed: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var repos []githubRepo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("github listing decode: %w", err)
	}
	return repos, nil
}

// isNoiseRepoName excludes repositories whose lowercased name contains
// "test" or "example". Substring match, so "latest-news" and
// "Testing-Framework" are also excluded. Known limitation, kept as-is.
func isNoiseRepoName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "test") || strings.Contains(lower, "example")
}

// wordizeRepoName turns "my-cool_project" into "my cool project".
func wordizeRepoName(name string) string {
	s := strings.ReplaceAll(name, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

func repoToProjectRecord(repo githubRepo) models.ProjectRecord {
	desc := strings.TrimSpace(repo.Description)
	if desc == "" {
		desc = placeholderDesc
	}

	var stack []string
	if repo.Language != "" {
		stack = []string{repo.Language}
	}

	stars := repo.Stars
	forks := repo.Forks
	return models.ProjectRecord{
		Title:       wordizeRepoName(repo.Name),
		Description: desc,
		URL:         repo.HTMLURL,
		TechStack:   stack,
		Stars:       &stars,
		Forks:       &forks,
		Language:    repo.Language,
		UpdatedAt:   repo.UpdatedAt,
	}
}
