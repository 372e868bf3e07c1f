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

type ShopService interface {
	Create(db *gorm.DB, ownerID string, req *dto.CreateShopRequest) (*dto.ShopResponse, error)
	GetByID(db *gorm.DB, id string) (*dto.ShopResponse, error)
	GetOwnShop(db *gorm.DB, ownerID string) (*dto.ShopResponse, error)
	Update(db *gorm.DB, ownerID string, req *dto.UpdateShopRequest) (*dto.ShopResponse, error)
	List(db *gorm.DB, page, pageSize int) ([]dto.ShopResponse, int64, error)

	// Admin operations
	Approve(ctx context.Context, db *gorm.DB, shopID string) error
	Suspend(db *gorm.DB, shopID string) error
}

type ShopServiceImpl struct {
	shopRepo repositories.ShopRepository
	notifier NotificationService
}

func NewShopService(shopRepo repositories.ShopRepository, notifier NotificationService) ShopService {
	return &ShopServiceImpl{shopRepo: shopRepo, notifier: notifier}
}

// Create - создание магазина. У продавца не больше одного магазина,
// новый магазин ждет одобрения администратора.
func (s *ShopServiceImpl) Create(db *gorm.DB, ownerID string, req *dto.CreateShopRequest) (*dto.ShopResponse, error) {
	shop := &models.Shop{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		Status:      models.ShopStatusPending,
	}
	if err := s.shopRepo.Create(db, shop); err != nil {
		if apperrors.Is(err, repositories.ErrShopAlreadyExists) {
			return nil, apperrors.ErrShopAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.NewShopResponse(shop), nil
}

func (s *ShopServiceImpl) GetByID(db *gorm.DB, id string) (*dto.ShopResponse, error) {
	shop, err := s.findShop(db, id)
	if err != nil {
		return nil, err
	}
	return dto.NewShopResponse(shop), nil
}

func (s *ShopServiceImpl) GetOwnShop(db *gorm.DB, ownerID string) (*dto.ShopResponse, error) {
	shop, err := s.shopRepo.FindByOwnerID(db, ownerID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrShopNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.NewShopResponse(shop), nil
}

func (s *ShopServiceImpl) Update(db *gorm.DB, ownerID string, req *dto.UpdateShopRequest) (*dto.ShopResponse, error) {
	shop, err := s.shopRepo.FindByOwnerID(db, ownerID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrShopNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != nil {
		shop.Name = *req.Name
	}
	if req.Description != nil {
		shop.Description = *req.Description
	}
	if req.LogoURL != nil {
		shop.LogoURL = *req.LogoURL
	}

	if err := s.shopRepo.Update(db, shop); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewShopResponse(shop), nil
}

func (s *ShopServiceImpl) List(db *gorm.DB, page, pageSize int) ([]dto.ShopResponse, int64, error) {
	shops, total, err := s.shopRepo.FindAll(db, page, pageSize)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	responses := make([]dto.ShopResponse, 0, len(shops))
	for i := range shops {
		responses = append(responses, *dto.NewShopResponse(&shops[i]))
	}
	return responses, total, nil
}

func (s *ShopServiceImpl) Approve(ctx context.Context, db *gorm.DB, shopID string) error {
	shop, err := s.findShop(db, shopID)
	if err != nil {
		return err
	}
	if err := s.shopRepo.UpdateStatus(db, shopID, models.ShopStatusApproved); err != nil {
		return apperrors.InternalError(err)
	}

	logger.Info("shop approved", "shop_id", shopID)

	if s.notifier != nil {
		s.notifier.Notify(ctx, db, shop.OwnerID, repositories.NotificationTypeShopApproved,
			"Магазин одобрен", "Ваш магазин прошел модерацию и открыт для покупателей",
			map[string]interface{}{"shop_id": shopID}, "/shops/"+shopID)
	}
	return nil
}

func (s *ShopServiceImpl) Suspend(db *gorm.DB, shopID string) error {
	if _, err := s.findShop(db, shopID); err != nil {
		return err
	}
	if err := s.shopRepo.UpdateStatus(db, shopID, models.ShopStatusSuspended); err != nil {
		return apperrors.InternalError(err)
	}
	logger.Warn("shop suspended", "shop_id", shopID)
	return nil
}

func (s *ShopServiceImpl) findShop(db *gorm.DB, id string) (*models.Shop, error) {
	shop, err := s.shopRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrShopNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return shop, nil
}
