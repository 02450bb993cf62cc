package collab

import (
	"errors"
	"strings"
	"time"

	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("collab request not found")
	ErrSelfRequest     = errors.New("cannot request collaboration with yourself")
	ErrDuplicateOpen   = errors.New("a pending request for this portfolio already exists")
	ErrAlreadyResolved = errors.New("request already resolved")
)

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Request opens a collaboration request toward the owner of a published
// portfolio. At most one pending request per (portfolio, requester) pair.
func (s *Service) Request(fromUserID, portfolioID string, dto RequestDTO) (*models.CollabRequestModel, error) {
	var p models.PortfolioModel
	if err := s.db.First(&p, "id = ? AND published = ?", portfolioID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.UserID == fromUserID {
		return nil, ErrSelfRequest
	}

	var count int64
	err := s.db.Model(&models.CollabRequestModel{}).
		Where("portfolio_id = ? AND from_user_id = ? AND status = ?", p.ID, fromUserID, models.CollabPending).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateOpen
	}

	req := &models.CollabRequestModel{
		PortfolioID: p.ID,
		FromUserID:  fromUserID,
		ToUserID:    p.UserID,
		Message:     strings.TrimSpace(dto.Message),
		Status:      models.CollabPending,
	}
	if err := s.db.Create(req).Error; err != nil {
		return nil, err
	}
	s.logger.Info("collab request created",
		zap.String("request_id", req.ID),
		zap.String("portfolio_id", p.ID),
		zap.String("from", fromUserID))
	return req, nil
}

// Incoming lists requests addressed to the caller, newest first.
func (s *Service) Incoming(userID string, q pagination.Query) ([]models.CollabRequestModel, response.Pagination, error) {
	query := s.db.Model(&models.CollabRequestModel{}).
		Where("to_user_id = ?", userID).
		Order("created_at DESC")

	var requests []models.CollabRequestModel
	meta, err := pagination.Paginate(query, q, &requests)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return requests, meta, nil
}

// Sent lists requests the caller has made, newest first.
func (s *Service) Sent(userID string, q pagination.Query) ([]models.CollabRequestModel, response.Pagination, error) {
	query := s.db.Model(&models.CollabRequestModel{}).
		Where("from_user_id = ?", userID).
		Order("created_at DESC")

	var requests []models.CollabRequestModel
	meta, err := pagination.Paginate(query, q, &requests)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return requests, meta, nil
}

// Resolve accepts or declines a pending request. Only the recipient may
// resolve, and resolution is final.
func (s *Service) Resolve(userID, requestID string, status models.CollabStatus) (*models.CollabRequestModel, error) {
	var req models.CollabRequestModel
	if err := s.db.First(&req, "id = ? AND to_user_id = ?", requestID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if req.Status != models.CollabPending {
		return nil, ErrAlreadyResolved
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      status,
		"resolved_at": &now,
	}
	if err := s.db.Model(&req).Updates(updates).Error; err != nil {
		return nil, err
	}
	req.Status = status
	req.ResolvedAt = &now
	return &req, nil
}
