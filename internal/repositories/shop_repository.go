package repositories

import (
	"errors"
	"strings"

	"bazaar_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrShopNotFound      = errors.New("shop not found")
	ErrShopAlreadyExists = errors.New("shop already exists for this owner")
)

type ShopRepository interface {
	Create(db *gorm.DB, shop *models.Shop) error
	FindByID(db *gorm.DB, id string) (*models.Shop, error)
	FindByOwnerID(db *gorm.DB, ownerID string) (*models.Shop, error)
	Update(db *gorm.DB, shop *models.Shop) error
	UpdateStatus(db *gorm.DB, id string, status models.ShopStatus) error
	UpdateRating(db *gorm.DB, id string, rating float64, count int64) error
	FindAll(db *gorm.DB, page, pageSize int) ([]models.Shop, int64, error)
}

type shopRepository struct{}

func NewShopRepository() ShopRepository {
	return &shopRepository{}
}

func (r *shopRepository) Create(db *gorm.DB, shop *models.Shop) error {
	if err := db.Create(shop).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return ErrShopAlreadyExists
		}
		return err
	}
	return nil
}

func (r *shopRepository) FindByID(db *gorm.DB, id string) (*models.Shop, error) {
	var shop models.Shop
	if err := db.First(&shop, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepository) FindByOwnerID(db *gorm.DB, ownerID string) (*models.Shop, error) {
	var shop models.Shop
	if err := db.Where("owner_id = ?", ownerID).First(&shop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepository) Update(db *gorm.DB, shop *models.Shop) error {
	return db.Save(shop).Error
}

func (r *shopRepository) UpdateStatus(db *gorm.DB, id string, status models.ShopStatus) error {
	result := db.Model(&models.Shop{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrShopNotFound
	}
	return nil
}

func (r *shopRepository) UpdateRating(db *gorm.DB, id string, rating float64, count int64) error {
	return db.Model(&models.Shop{}).Where("id = ?", id).
		Updates(map[string]interface{}{"rating": rating, "rating_count": count}).Error
}

func (r *shopRepository) FindAll(db *gorm.DB, page, pageSize int) ([]models.Shop, int64, error) {
	var total int64
	if err := db.Model(&models.Shop{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var shops []models.Shop
	err := db.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&shops).Error
	return shops, total, err
}
