package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/folio-space/core/internal/models"
	sessionpkg "github.com/folio-space/core/internal/pkg/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Register creates a new account. Username and email are both unique.
func (s *Service) Register(dto RegisterDTO) (*models.UserModel, error) {
	username := strings.TrimSpace(dto.Username)
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	var count int64
	if err := s.db.Model(&models.UserModel{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}
	if err := s.db.Model(&models.UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.UserModel{
		Username: username,
		Email:    email,
		Name:     strings.TrimSpace(dto.Name),
		Password: string(hashed),
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login verifies credentials and issues a session-bound token. The identifier
// matches either the username or the email.
func (s *Service) Login(dto LoginDTO, ip, ua string) (*LoginResult, error) {
	identifier := strings.TrimSpace(dto.Identifier)

	var user models.UserModel
	err := s.db.Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(dto.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, _, err := sessionpkg.Issue(s.db, user.ID, ip, ua, sessionpkg.DefaultTTL)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	_ = s.db.Model(&user).Updates(map[string]interface{}{
		"last_login_time": &now,
		"last_login_ip":   ip,
	}).Error

	user.LastLoginTime = &now
	user.LastLoginIP = ip
	return &LoginResult{Token: token, User: toUserVO(&user)}, nil
}

// Logout revokes the current session. Revoking an unknown session is not an
// error from the caller's perspective.
func (s *Service) Logout(userID, sessionID string) {
	if err := sessionpkg.Revoke(s.db, userID, sessionID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("logout: revoke failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// Me returns the account behind an authenticated request.
func (s *Service) Me(userID string) (*UserVO, error) {
	var user models.UserModel
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	vo := toUserVO(&user)
	return &vo, nil
}

func toUserVO(u *models.UserModel) UserVO {
	return UserVO{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Name:          u.Name,
		Avatar:        u.Avatar,
		LastLoginTime: u.LastLoginTime,
		CreatedAt:     u.CreatedAt,
	}
}
