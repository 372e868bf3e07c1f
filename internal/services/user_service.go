package services

import (
	"context"

	"bazaar_backend/internal/logger"
	"bazaar_backend/internal/models"
	"bazaar_backend/internal/repositories"
	"bazaar_backend/internal/services/dto"
	"bazaar_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UserService interface {
	GetProfile(db *gorm.DB, userID string) (*dto.UserResponse, error)
	UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)

	// Admin operations
	ListUsers(db *gorm.DB, req *dto.ListUsersRequest) ([]dto.UserResponse, int64, error)
	// BanUser банит пользователя и отзывает все его сессии:
	// забаненный аккаунт не должен удерживать живые refresh-токены
	BanUser(ctx context.Context, db *gorm.DB, adminID, userID string) error
	UnbanUser(db *gorm.DB, userID string) error
}

type UserServiceImpl struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.RefreshTokenRepository
	notifier  NotificationService
}

func NewUserService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.RefreshTokenRepository,
	notifier NotificationService,
) UserService {
	return &UserServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		notifier:  notifier,
	}
}

func (s *UserServiceImpl) GetProfile(db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.findUser(db, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *UserServiceImpl) UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.findUser(db, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}

	if err := s.userRepo.Update(db, user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewUserResponse(user), nil
}

func (s *UserServiceImpl) ListUsers(db *gorm.DB, req *dto.ListUsersRequest) ([]dto.UserResponse, int64, error) {
	filter := repositories.UserFilter{
		Role:     req.Role,
		Status:   req.Status,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	users, total, err := s.userRepo.FindWithFilter(db, filter)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *dto.NewUserResponse(&users[i]))
	}
	return responses, total, nil
}

// BanUser - бан с каскадом: статус banned + отзыв всех refresh-токенов.
// Access-токены доживают свои минуты, дальше refresh уже невозможен.
func (s *UserServiceImpl) BanUser(ctx context.Context, db *gorm.DB, adminID, userID string) error {
	if adminID == userID {
		return apperrors.ErrCannotModifySelf
	}

	user, err := s.findUser(db, userID)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.UpdateStatus(tx, userID, models.UserStatusBanned); err != nil {
			return err
		}
		return s.tokenRepo.RevokeAllForUser(tx, userID)
	})
	if err != nil {
		return apperrors.InternalError(err)
	}

	logger.Warn("user banned", "user_id", userID, "admin_id", adminID)

	if s.notifier != nil {
		s.notifier.Notify(ctx, db, user.ID, repositories.NotificationTypeAccountBanned,
			"Аккаунт заблокирован", "Ваш аккаунт заблокирован администратором", nil, "")
	}
	return nil
}

func (s *UserServiceImpl) UnbanUser(db *gorm.DB, userID string) error {
	if _, err := s.findUser(db, userID); err != nil {
		return err
	}
	if err := s.userRepo.UpdateStatus(db, userID, models.UserStatusActive); err != nil {
		return apperrors.InternalError(err)
	}
	logger.Info("user unbanned", "user_id", userID)
	return nil
}

func (s *UserServiceImpl) findUser(db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}
