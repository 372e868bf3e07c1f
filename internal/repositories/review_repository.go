package repositories

import (
	"errors"
	"strings"

	"bazaar_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("review already exists for this order and product")
)

type ReviewRepository interface {
	Create(db *gorm.DB, review *models.Review) error
	FindByProductID(db *gorm.DB, productID string, page, pageSize int) ([]models.Review, int64, error)
	// AverageForShop считает среднюю оценку и количество отзывов
	// по всем товарам магазина
	AverageForShop(db *gorm.DB, shopID string) (float64, int64, error)
	Delete(db *gorm.DB, userID, reviewID string) error
}

type reviewRepository struct{}

func NewReviewRepository() ReviewRepository {
	return &reviewRepository{}
}

func (r *reviewRepository) Create(db *gorm.DB, review *models.Review) error {
	if err := db.Create(review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return ErrReviewAlreadyExists
		}
		return err
	}
	return nil
}

func (r *reviewRepository) FindByProductID(db *gorm.DB, productID string, page, pageSize int) ([]models.Review, int64, error) {
	var total int64
	if err := db.Model(&models.Review{}).Where("product_id = ?", productID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	err := db.Where("product_id = ?", productID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&reviews).Error
	return reviews, total, err
}

func (r *reviewRepository) AverageForShop(db *gorm.DB, shopID string) (float64, int64, error) {
	type result struct {
		Avg   float64
		Count int64
	}
	var res result
	err := db.Model(&models.Review{}).
		Select("COALESCE(AVG(reviews.rating), 0) as avg, COUNT(*) as count").
		Joins("JOIN products ON products.id = reviews.product_id").
		Where("products.shop_id = ?", shopID).
		Scan(&res).Error
	return res.Avg, res.Count, err
}

func (r *reviewRepository) Delete(db *gorm.DB, userID, reviewID string) error {
	result := db.Where("id = ? AND user_id = ?", reviewID, userID).Delete(&models.Review{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
