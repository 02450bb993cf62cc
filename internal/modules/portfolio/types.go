package portfolio

import "github.com/folio-space/core/internal/models"

// UpsertDTO creates or replaces the caller's portfolio. All enrichment output
// arrives here already accepted by the user; nothing is persisted without an
// explicit save.
type UpsertDTO struct {
	Title      string                 `json:"title" binding:"required,max=120"`
	Tagline    string                 `json:"tagline" binding:"max=200"`
	About      string                 `json:"about"`
	Skills     []string               `json:"skills"`
	GitHubURL  string                 `json:"github_url"`
	WebsiteURL string                 `json:"website_url"`
	Screenshot string                 `json:"screenshot"`
	Projects   []models.ProjectRecord `json:"projects"`
}

// PublishDTO toggles public visibility.
type PublishDTO struct {
	Published *bool `json:"published" binding:"required"`
}
