package models

import "gorm.io/datatypes"

// CartItem - позиция корзины покупателя. Выбранные опции вариантов
// хранятся как JSON: {"Цвет": "Black", "Память": "256GB"}.
type CartItem struct {
	BaseModel
	UserID          string         `gorm:"type:uuid;not null;index"`
	ProductID       string         `gorm:"type:uuid;not null;index"`
	Quantity        int            `gorm:"not null;default:1"`
	SelectedOptions datatypes.JSON `gorm:"type:jsonb"`

	// Relations
	Product *Product `gorm:"foreignKey:ProductID"`
}
