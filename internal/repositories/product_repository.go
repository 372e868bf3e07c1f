package repositories

import (
	"errors"

	"bazaar_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductFilter - критерии поиска товаров
type ProductFilter struct {
	ShopID     string
	CategoryID string
	Search     string
	ActiveOnly bool
	Page       int
	PageSize   int
}

type ProductRepository interface {
	Create(db *gorm.DB, product *models.Product) error
	FindByID(db *gorm.DB, id string) (*models.Product, error)
	FindWithFilter(db *gorm.DB, filter ProductFilter) ([]models.Product, int64, error)
	Update(db *gorm.DB, product *models.Product) error
	Delete(db *gorm.DB, id string) error

	// Переопределения вариантов для товара
	FindVariantOverrides(db *gorm.DB, productID string) ([]models.ProductVariantOption, error)
	UpsertVariantOverride(db *gorm.DB, override *models.ProductVariantOption) error
	DeleteVariantOverride(db *gorm.DB, productID, variantID string) error
}

type productRepository struct{}

func NewProductRepository() ProductRepository {
	return &productRepository{}
}

func (r *productRepository) Create(db *gorm.DB, product *models.Product) error {
	return db.Create(product).Error
}

func (r *productRepository) FindByID(db *gorm.DB, id string) (*models.Product, error) {
	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindWithFilter(db *gorm.DB, filter ProductFilter) ([]models.Product, int64, error) {
	query := db.Model(&models.Product{})

	if filter.ShopID != "" {
		query = query.Where("shop_id = ?", filter.ShopID)
	}
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := query.Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize).
		Find(&products).Error
	return products, total, err
}

func (r *productRepository) Update(db *gorm.DB, product *models.Product) error {
	return db.Save(product).Error
}

func (r *productRepository) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) FindVariantOverrides(db *gorm.DB, productID string) ([]models.ProductVariantOption, error) {
	var overrides []models.ProductVariantOption
	err := db.Where("product_id = ?", productID).Find(&overrides).Error
	return overrides, err
}

// UpsertVariantOverride создает или обновляет переопределение.
// Пара (product_id, variant_id) уникальна, поэтому сначала update, потом insert.
func (r *productRepository) UpsertVariantOverride(db *gorm.DB, override *models.ProductVariantOption) error {
	result := db.Model(&models.ProductVariantOption{}).
		Where("product_id = ? AND variant_id = ?", override.ProductID, override.VariantID).
		Updates(map[string]interface{}{
			"options":     override.Options,
			"is_required": override.IsRequired,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return db.Create(override).Error
	}
	return nil
}

func (r *productRepository) DeleteVariantOverride(db *gorm.DB, productID, variantID string) error {
	return db.Where("product_id = ? AND variant_id = ?", productID, variantID).
		Delete(&models.ProductVariantOption{}).Error
}
