package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// PortfolioModel is a user's showcase page. One per user.
type PortfolioModel struct {
	Base
	UserID     string      `json:"user_id"     gorm:"uniqueIndex;not null"`
	Title      string      `json:"title"       gorm:"not null"`
	Tagline    string      `json:"tagline"`
	About      string      `json:"about"       gorm:"type:longtext"`
	Skills     StringArray `json:"skills"      gorm:"type:longtext"`
	GitHubURL  string      `json:"github_url"`
	WebsiteURL string      `json:"website_url"`
	// Screenshot is either a hosted image URL or an inline data URL.
	Screenshot string      `json:"screenshot"  gorm:"type:longtext"`
	Projects   ProjectList `json:"projects"    gorm:"type:longtext"`
	Published  bool        `json:"published"   gorm:"index"`
	Views      int         `json:"views"`
}

func (PortfolioModel) TableName() string { return "portfolios" }

// ProjectRecord is one showcased project. GitHub-sourced records carry
// numeric metadata; scraped records largely do not.
type ProjectRecord struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	TechStack   []string `json:"tech_stack,omitempty"`
	Stars       *int     `json:"stars,omitempty"`
	Forks       *int     `json:"forks,omitempty"`
	Language    string   `json:"language,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// ProjectList stores project records as a JSON column.
type ProjectList []ProjectRecord

func (p ProjectList) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]ProjectRecord(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *ProjectList) Scan(value interface{}) error {
	if p == nil {
		return fmt.Errorf("models.ProjectList: Scan on nil pointer")
	}
	if value == nil {
		*p = ProjectList{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("models.ProjectList: unsupported Scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*p = ProjectList{}
		return nil
	}

	var records []ProjectRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return fmt.Errorf("models.ProjectList: %w", err)
	}
	*p = records
	return nil
}

// CollabStatus is the lifecycle state of a collaboration request.
type CollabStatus string

const (
	CollabPending  CollabStatus = "pending"
	CollabAccepted CollabStatus = "accepted"
	CollabDeclined CollabStatus = "declined"
)

// CollabRequestModel is a collaboration request from one user to a portfolio owner.
type CollabRequestModel struct {
	Base
	PortfolioID string       `json:"portfolio_id" gorm:"index;not null"`
	FromUserID  string       `json:"from_user_id" gorm:"index;not null"`
	ToUserID    string       `json:"to_user_id"   gorm:"index;not null"`
	Message     string       `json:"message"      gorm:"type:text"`
	Status      CollabStatus `json:"status"       gorm:"index;default:pending"`
	ResolvedAt  *time.Time   `json:"resolved_at"`
}

func (CollabRequestModel) TableName() string { return "collab_requests" }
