package database

import (
	"fmt"

	"bazaar_backend/internal/models"

	"gorm.io/gorm"
)

// Migrate выполняет автомиграцию всех моделей.
// Порядок важен: сначала таблицы без внешних ключей.
func Migrate(db *gorm.DB) error {
	// default uuid_generate_v4() в BaseModel требует расширения
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid-ossp extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Shop{},
		&models.Category{},
		&models.Variant{},
		&models.Product{},
		&models.ProductVariantOption{},
		&models.Voucher{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.Dialog{},
		&models.Message{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
