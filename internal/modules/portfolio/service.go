package portfolio

import (
	"errors"
	"strings"

	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/markdown"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("portfolio not found")

const maxProjectsPerPortfolio = 20

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Upsert creates the caller's portfolio or replaces its editable fields.
// One portfolio per user.
func (s *Service) Upsert(userID string, dto UpsertDTO) (*models.PortfolioModel, error) {
	projects := dto.Projects
	if len(projects) > maxProjectsPerPortfolio {
		projects = projects[:maxProjectsPerPortfolio]
	}

	var existing models.PortfolioModel
	err := s.db.Where("user_id = ?", userID).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"title":       strings.TrimSpace(dto.Title),
			"tagline":     strings.TrimSpace(dto.Tagline),
			"about":       dto.About,
			"skills":      models.StringArray(dto.Skills),
			"github_url":  strings.TrimSpace(dto.GitHubURL),
			"website_url": strings.TrimSpace(dto.WebsiteURL),
			"screenshot":  dto.Screenshot,
			"projects":    models.ProjectList(projects),
		}
		if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, err
		}
		return s.byID(existing.ID)

	case errors.Is(err, gorm.ErrRecordNotFound):
		p := &models.PortfolioModel{
			UserID:     userID,
			Title:      strings.TrimSpace(dto.Title),
			Tagline:    strings.TrimSpace(dto.Tagline),
			About:      dto.About,
			Skills:     models.StringArray(dto.Skills),
			GitHubURL:  strings.TrimSpace(dto.GitHubURL),
			WebsiteURL: strings.TrimSpace(dto.WebsiteURL),
			Screenshot: dto.Screenshot,
			Projects:   models.ProjectList(projects),
		}
		if err := s.db.Create(p).Error; err != nil {
			return nil, err
		}
		s.logger.Info("portfolio created", zap.String("user_id", userID), zap.String("portfolio_id", p.ID))
		return p, nil

	default:
		return nil, err
	}
}

// Mine returns the caller's own portfolio, published or not.
func (s *Service) Mine(userID string) (*models.PortfolioModel, error) {
	var p models.PortfolioModel
	if err := s.db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Get returns a portfolio by id. Unpublished portfolios are only visible to
// their owner; viewerID may be empty for anonymous requests. Each non-owner
// view bumps the counter.
func (s *Service) Get(id, viewerID string) (*models.PortfolioModel, error) {
	p, err := s.byID(id)
	if err != nil {
		return nil, err
	}
	if !p.Published && p.UserID != viewerID {
		return nil, ErrNotFound
	}

	if p.UserID != viewerID {
		if err := s.db.Model(p).UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
			s.logger.Warn("portfolio view count update failed", zap.String("portfolio_id", id), zap.Error(err))
		} else {
			p.Views++
		}
	}
	return p, nil
}

// Browse lists published portfolios, newest first. An optional search term
// matches title, tagline and skills.
func (s *Service) Browse(q pagination.Query, search string) ([]models.PortfolioModel, response.Pagination, error) {
	query := s.db.Model(&models.PortfolioModel{}).Where("published = ?", true)

	if term := strings.TrimSpace(search); term != "" {
		like := "%" + term + "%"
		query = query.Where("title LIKE ? OR tagline LIKE ? OR about LIKE ? OR skills LIKE ?", like, like, like, like)
	}
	query = query.Order("created_at DESC")

	var portfolios []models.PortfolioModel
	meta, err := pagination.Paginate(query, q, &portfolios)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return portfolios, meta, nil
}

// SetPublished toggles public visibility of the caller's portfolio.
func (s *Service) SetPublished(userID string, published bool) (*models.PortfolioModel, error) {
	p, err := s.Mine(userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(p).Update("published", published).Error; err != nil {
		return nil, err
	}
	p.Published = published
	return p, nil
}

// RenderAbout converts the portfolio's markdown about-section to HTML.
func (s *Service) RenderAbout(id, viewerID string) (string, error) {
	p, err := s.Get(id, viewerID)
	if err != nil {
		return "", err
	}
	return markdown.Render(p.About)
}

// Delete removes the caller's portfolio and its collaboration requests.
func (s *Service) Delete(userID string) error {
	p, err := s.Mine(userID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("portfolio_id = ?", p.ID).Delete(&models.CollabRequestModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(p).Error
	})
}

func (s *Service) byID(id string) (*models.PortfolioModel, error) {
	var p models.PortfolioModel
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
