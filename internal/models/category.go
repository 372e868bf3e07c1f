package models

import "gorm.io/datatypes"

// Category - узел дерева категорий. ParentID == nil для корней,
// таким образом категории образуют лес. Циклы исключены самим способом
// создания (родитель выбирается из уже существующих категорий), но
// агрегация вариантов все равно защищается от них (см. category_service).
type Category struct {
	BaseModel
	Name     string  `gorm:"not null"`
	ImageURL string
	ParentID *string `gorm:"type:uuid;index"`

	// Relations
	Parent   *Category  `gorm:"foreignKey:ParentID"`
	Children []Category `gorm:"foreignKey:ParentID"`
	Variants []Variant  `gorm:"foreignKey:CategoryID"`
}

// Variant - определение атрибута товара на уровне категории
// (например "Цвет" со списком опций). Position задает порядок
// отображения и порядок слияния при наследовании.
type Variant struct {
	BaseModel
	CategoryID string         `gorm:"type:uuid;not null;index"`
	Name       string         `gorm:"not null"`
	Options    datatypes.JSON `gorm:"type:jsonb"` // массив строк: ["Black","White"]
	IsRequired bool           `gorm:"default:false"`
	Position   int            `gorm:"not null;default:0"`
}

// ProductVariantOption - переопределение варианта для конкретного товара.
// Уникально по паре (product_id, variant_id). Переопределение полностью
// ЗАМЕНЯЕТ список опций и флаг обязательности, а не объединяет их.
type ProductVariantOption struct {
	BaseModel
	ProductID  string         `gorm:"type:uuid;not null;index;uniqueIndex:idx_product_variant"`
	VariantID  string         `gorm:"type:uuid;not null;uniqueIndex:idx_product_variant"`
	Options    datatypes.JSON `gorm:"type:jsonb"`
	IsRequired bool           `gorm:"default:false"`
}
