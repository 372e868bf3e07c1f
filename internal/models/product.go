package models

import "gorm.io/datatypes"

type Product struct {
	BaseModelWithDeleted
	ShopID      string  `gorm:"type:uuid;not null;index"`
	CategoryID  string  `gorm:"type:uuid;not null;index"`
	Name        string  `gorm:"not null"`
	Description string
	Price       float64 `gorm:"not null"`
	Stock       int     `gorm:"not null;default:0"`
	ImageURL    string
	IsActive    bool           `gorm:"default:true"`
	Attributes  datatypes.JSON `gorm:"type:jsonb"` // произвольные характеристики

	// Relations
	Shop           *Shop                  `gorm:"foreignKey:ShopID"`
	Category       *Category              `gorm:"foreignKey:CategoryID"`
	VariantOptions []ProductVariantOption `gorm:"foreignKey:ProductID"`
}
