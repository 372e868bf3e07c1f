package repositories

import (
	"errors"

	"bazaar_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrVariantNotFound  = errors.New("variant not found")
)

type CategoryRepository interface {
	Create(db *gorm.DB, category *models.Category) error
	FindByID(db *gorm.DB, id string) (*models.Category, error)
	// FindByIDWithVariants подгружает варианты категории в порядке position
	FindByIDWithVariants(db *gorm.DB, id string) (*models.Category, error)
	FindAll(db *gorm.DB) ([]models.Category, error)
	FindChildren(db *gorm.DB, parentID string) ([]models.Category, error)
	HasChildren(db *gorm.DB, id string) (bool, error)
	Update(db *gorm.DB, category *models.Category) error
	Delete(db *gorm.DB, id string) error

	// Variant operations
	CreateVariant(db *gorm.DB, variant *models.Variant) error
	FindVariantByID(db *gorm.DB, id string) (*models.Variant, error)
	FindVariantsByCategory(db *gorm.DB, categoryID string) ([]models.Variant, error)
	UpdateVariant(db *gorm.DB, variant *models.Variant) error
	DeleteVariant(db *gorm.DB, id string) error
}

type categoryRepository struct{}

func NewCategoryRepository() CategoryRepository {
	return &categoryRepository{}
}

func (r *categoryRepository) Create(db *gorm.DB, category *models.Category) error {
	return db.Create(category).Error
}

func (r *categoryRepository) FindByID(db *gorm.DB, id string) (*models.Category, error) {
	var category models.Category
	if err := db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByIDWithVariants(db *gorm.DB, id string) (*models.Category, error) {
	var category models.Category
	err := db.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&category, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindAll(db *gorm.DB) ([]models.Category, error) {
	var categories []models.Category
	err := db.Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) FindChildren(db *gorm.DB, parentID string) ([]models.Category, error) {
	var categories []models.Category
	err := db.Where("parent_id = ?", parentID).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) HasChildren(db *gorm.DB, id string) (bool, error) {
	var count int64
	err := db.Model(&models.Category{}).Where("parent_id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *categoryRepository) Update(db *gorm.DB, category *models.Category) error {
	return db.Save(category).Error
}

func (r *categoryRepository) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) CreateVariant(db *gorm.DB, variant *models.Variant) error {
	return db.Create(variant).Error
}

func (r *categoryRepository) FindVariantByID(db *gorm.DB, id string) (*models.Variant, error) {
	var variant models.Variant
	if err := db.First(&variant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, err
	}
	return &variant, nil
}

func (r *categoryRepository) FindVariantsByCategory(db *gorm.DB, categoryID string) ([]models.Variant, error) {
	var variants []models.Variant
	err := db.Where("category_id = ?", categoryID).Order("position ASC").Find(&variants).Error
	return variants, err
}

func (r *categoryRepository) UpdateVariant(db *gorm.DB, variant *models.Variant) error {
	return db.Save(variant).Error
}

func (r *categoryRepository) DeleteVariant(db *gorm.DB, id string) error {
	return db.Delete(&models.Variant{}, "id = ?", id).Error
}
