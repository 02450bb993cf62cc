package enrich

import "github.com/folio-space/core/internal/models"

// Field kinds accepted by the editor-session event endpoint.
const (
	KindSuggestions = "suggestions"
	KindSkills      = "skills"
	KindProjects    = "projects"
	KindScreenshot  = "screenshot"
)

const (
	suggestionMinChars = 10
	skillMinChars      = 20
	maxSuggestions     = 3
	maxSkills          = 10
	maxProjects        = 5
	scrapeMaxChars     = 5000
)

// SuggestionsDTO is the request body for the suggestions operation.
type SuggestionsDTO struct {
	Session   string `json:"session"`
	FieldName string `json:"field_name" binding:"required"`
	FieldType string `json:"field_type"`
	Text      string `json:"text"`
}

// SkillsDTO is the request body for the skill-extraction operation.
type SkillsDTO struct {
	Session string `json:"session"`
	Text    string `json:"text"`
}

// ProjectsDTO is the request body for the project-detection operation.
type ProjectsDTO struct {
	Session    string `json:"session"`
	GitHubURL  string `json:"github_url"`
	WebsiteURL string `json:"website_url"`
}

// ScreenshotDTO is the request body for the screenshot operation.
type ScreenshotDTO struct {
	Session string `json:"session"`
	URL     string `json:"url" binding:"required"`
}

// EventDTO is one field-change event for an editor session.
type EventDTO struct {
	Kind       string `json:"kind" binding:"required"`
	FieldName  string `json:"field_name"`
	FieldType  string `json:"field_type"`
	Text       string `json:"text"`
	GitHubURL  string `json:"github_url"`
	WebsiteURL string `json:"website_url"`
}

// ScreenshotSource tags which provider produced a screenshot.
type ScreenshotSource string

const (
	ScreenshotPrimary     ScreenshotSource = "primary"
	ScreenshotSecondary   ScreenshotSource = "secondary"
	ScreenshotUnavailable ScreenshotSource = "unavailable"
)

// ScreenshotResult is the tagged outcome of the two-step fallback pipeline.
// Reference is a hosted URL for primary, a data URL for secondary, and empty
// for unavailable. Absence is a valid terminal state, never an error.
type ScreenshotResult struct {
	Source    ScreenshotSource `json:"source"`
	Reference string           `json:"reference,omitempty"`
}

// Available reports whether any provider produced an image.
func (r ScreenshotResult) Available() bool {
	return r.Source == ScreenshotPrimary || r.Source == ScreenshotSecondary
}

// FieldResult is the latest enrichment outcome for one editor-session slot.
type FieldResult struct {
	Kind        string                 `json:"kind"`
	Suggestions []string               `json:"suggestions,omitempty"`
	Skills      []string               `json:"skills,omitempty"`
	Projects    []models.ProjectRecord `json:"projects,omitempty"`
	Screenshot  *ScreenshotResult      `json:"screenshot,omitempty"`
	UpdatedAt   int64                  `json:"updated_at"`
}
