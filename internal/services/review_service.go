package services

import (
	"context"
	"time"

	"bazaar_backend/internal/logger"
	"bazaar_backend/internal/models"
	"bazaar_backend/internal/repositories"
	"bazaar_backend/internal/services/dto"
	"bazaar_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ReviewService interface {
	// Create - отзыв на товар из заказа. Один отзыв на пару (заказ, товар).
	Create(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	ListForProduct(db *gorm.DB, productID string, page, pageSize int) ([]dto.ReviewResponse, int64, error)
	Delete(db *gorm.DB, userID, reviewID string) error
}

type ReviewServiceImpl struct {
	reviewRepo  repositories.ReviewRepository
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	shopRepo    repositories.ShopRepository
	notifier    NotificationService
}

func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	shopRepo repositories.ShopRepository,
	notifier NotificationService,
) ReviewService {
	return &ReviewServiceImpl{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		shopRepo:    shopRepo,
		notifier:    notifier,
	}
}

func (s *ReviewServiceImpl) Create(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	// Отзыв оставляет только покупатель заказа, и только на товар из него
	order, err := s.orderRepo.FindByID(db, req.OrderID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrOrderNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if order.BuyerID != userID {
		return nil, apperrors.ErrInsufficientPermissions
	}

	inOrder := false
	for _, item := range order.Items {
		if item.ProductID == req.ProductID {
			inOrder = true
			break
		}
	}
	if !inOrder {
		return nil, apperrors.ErrInvalidOperation("review", "Product is not part of this order")
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: req.ProductID,
		OrderID:   req.OrderID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.reviewRepo.Create(db, review); err != nil {
		if apperrors.Is(err, repositories.ErrReviewAlreadyExists) {
			return nil, apperrors.ErrReviewAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	s.refreshShopRating(ctx, db, req.ProductID)

	return newReviewResponse(review), nil
}

func (s *ReviewServiceImpl) ListForProduct(db *gorm.DB, productID string, page, pageSize int) ([]dto.ReviewResponse, int64, error) {
	reviews, total, err := s.reviewRepo.FindByProductID(db, productID, page, pageSize)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	responses := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		responses = append(responses, *newReviewResponse(&reviews[i]))
	}
	return responses, total, nil
}

func (s *ReviewServiceImpl) Delete(db *gorm.DB, userID, reviewID string) error {
	if err := s.reviewRepo.Delete(db, userID, reviewID); err != nil {
		if apperrors.Is(err, repositories.ErrReviewNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// refreshShopRating пересчитывает агрегат рейтинга магазина после отзыва
// и уведомляет владельца. Ошибки здесь не ломают создание отзыва.
func (s *ReviewServiceImpl) refreshShopRating(ctx context.Context, db *gorm.DB, productID string) {
	product, err := s.productRepo.FindByID(db, productID)
	if err != nil {
		logger.Error("failed to load product for rating refresh", "error", err, "product_id", productID)
		return
	}

	avg, count, err := s.reviewRepo.AverageForShop(db, product.ShopID)
	if err != nil {
		logger.Error("failed to compute shop rating", "error", err, "shop_id", product.ShopID)
		return
	}
	if err := s.shopRepo.UpdateRating(db, product.ShopID, avg, count); err != nil {
		logger.Error("failed to update shop rating", "error", err, "shop_id", product.ShopID)
		return
	}

	if s.notifier != nil {
		shop, err := s.shopRepo.FindByID(db, product.ShopID)
		if err != nil {
			return
		}
		s.notifier.Notify(ctx, db, shop.OwnerID, repositories.NotificationTypeNewReview,
			"Новый отзыв", "Покупатель оставил отзыв на товар "+product.Name,
			map[string]interface{}{"product_id": productID}, "/products/"+productID)
	}
}

func newReviewResponse(r *models.Review) *dto.ReviewResponse {
	return &dto.ReviewResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}
