package repositories

import (
	"errors"

	"bazaar_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

type OrderRepository interface {
	// Create сохраняет заказ вместе с позициями (одной операцией)
	Create(db *gorm.DB, order *models.Order) error
	FindByID(db *gorm.DB, id string) (*models.Order, error)
	FindByBuyerID(db *gorm.DB, buyerID string, page, pageSize int) ([]models.Order, int64, error)
	UpdateStatus(db *gorm.DB, id string, status models.OrderStatus) error
}

type orderRepository struct{}

func NewOrderRepository() OrderRepository {
	return &orderRepository{}
}

func (r *orderRepository) Create(db *gorm.DB, order *models.Order) error {
	return db.Create(order).Error
}

func (r *orderRepository) FindByID(db *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	err := db.Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByBuyerID(db *gorm.DB, buyerID string, page, pageSize int) ([]models.Order, int64, error) {
	var total int64
	if err := db.Model(&models.Order{}).Where("buyer_id = ?", buyerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := db.Preload("Items").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepository) UpdateStatus(db *gorm.DB, id string, status models.OrderStatus) error {
	result := db.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
