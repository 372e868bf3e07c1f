package repositories

import (
	"errors"

	"bazaar_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
)

type CartRepository interface {
	AddItem(db *gorm.DB, item *models.CartItem) error
	FindByUserID(db *gorm.DB, userID string) ([]models.CartItem, error)
	FindItem(db *gorm.DB, userID, itemID string) (*models.CartItem, error)
	UpdateQuantity(db *gorm.DB, itemID string, quantity int) error
	RemoveItem(db *gorm.DB, userID, itemID string) error
	ClearForUser(db *gorm.DB, userID string) error
}

type cartRepository struct{}

func NewCartRepository() CartRepository {
	return &cartRepository{}
}

func (r *cartRepository) AddItem(db *gorm.DB, item *models.CartItem) error {
	return db.Create(item).Error
}

// FindByUserID возвращает корзину с подгруженными товарами
// (нужно для группировки по магазинам на чекауте)
func (r *cartRepository) FindByUserID(db *gorm.DB, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := db.Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *cartRepository) FindItem(db *gorm.DB, userID, itemID string) (*models.CartItem, error) {
	var item models.CartItem
	err := db.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) UpdateQuantity(db *gorm.DB, itemID string, quantity int) error {
	result := db.Model(&models.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) RemoveItem(db *gorm.DB, userID, itemID string) error {
	return db.Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.CartItem{}).Error
}

func (r *cartRepository) ClearForUser(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
