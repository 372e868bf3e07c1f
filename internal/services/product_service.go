package services

import (
	"encoding/json"

	"bazaar_backend/internal/models"
	"bazaar_backend/internal/repositories"
	"bazaar_backend/internal/services/dto"
	"bazaar_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductService interface {
	Create(db *gorm.DB, ownerID string, req *dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(db *gorm.DB, id string) (*dto.ProductResponse, error)
	List(db *gorm.DB, req *dto.ListProductsRequest) ([]dto.ProductResponse, int64, error)
	Update(db *gorm.DB, ownerID, productID string, req *dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(db *gorm.DB, ownerID, productID string) error

	// OverrideVariant полностью заменяет опции варианта для товара
	OverrideVariant(db *gorm.DB, ownerID, productID, variantID string, req *dto.OverrideVariantRequest) error
	RemoveVariantOverride(db *gorm.DB, ownerID, productID, variantID string) error
}

type ProductServiceImpl struct {
	productRepo  repositories.ProductRepository
	shopRepo     repositories.ShopRepository
	categoryRepo repositories.CategoryRepository
	categorySvc  CategoryService
}

func NewProductService(
	productRepo repositories.ProductRepository,
	shopRepo repositories.ShopRepository,
	categoryRepo repositories.CategoryRepository,
	categorySvc CategoryService,
) ProductService {
	return &ProductServiceImpl{
		productRepo:  productRepo,
		shopRepo:     shopRepo,
		categoryRepo: categoryRepo,
		categorySvc:  categorySvc,
	}
}

// Create - создание товара. Товары создаются только в одобренном магазине.
func (s *ProductServiceImpl) Create(db *gorm.DB, ownerID string, req *dto.CreateProductRequest) (*dto.ProductResponse, error) {
	shop, err := s.ownedShop(db, ownerID)
	if err != nil {
		return nil, err
	}
	if shop.Status != models.ShopStatusApproved {
		return nil, apperrors.ErrShopNotApproved
	}

	if _, err := s.categoryRepo.FindByID(db, req.CategoryID); err != nil {
		if apperrors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	product := &models.Product{
		ShopID:      shop.ID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if req.Attributes != nil {
		raw, err := json.Marshal(req.Attributes)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		product.Attributes = datatypes.JSON(raw)
	}

	if err := s.productRepo.Create(db, product); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.buildResponse(db, product)
}

// GetByID возвращает товар вместе с разрешенными вариантами
// (агрегация категории + переопределения товара)
func (s *ProductServiceImpl) GetByID(db *gorm.DB, id string) (*dto.ProductResponse, error) {
	product, err := s.findProduct(db, id)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(db, product)
}

func (s *ProductServiceImpl) List(db *gorm.DB, req *dto.ListProductsRequest) ([]dto.ProductResponse, int64, error) {
	filter := repositories.ProductFilter{
		ShopID:     req.ShopID,
		CategoryID: req.CategoryID,
		Search:     req.Search,
		ActiveOnly: true,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	products, total, err := s.productRepo.FindWithFilter(db, filter)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	// Списку варианты не нужны, только карточке товара
	responses := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, *newProductResponse(&products[i], nil))
	}
	return responses, total, nil
}

func (s *ProductServiceImpl) Update(db *gorm.DB, ownerID, productID string, req *dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.ownedProduct(db, ownerID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.Attributes != nil {
		raw, err := json.Marshal(req.Attributes)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		product.Attributes = datatypes.JSON(raw)
	}

	if err := s.productRepo.Update(db, product); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.buildResponse(db, product)
}

func (s *ProductServiceImpl) Delete(db *gorm.DB, ownerID, productID string) error {
	if _, err := s.ownedProduct(db, ownerID, productID); err != nil {
		return err
	}
	if err := s.productRepo.Delete(db, productID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *ProductServiceImpl) OverrideVariant(db *gorm.DB, ownerID, productID, variantID string, req *dto.OverrideVariantRequest) error {
	product, err := s.ownedProduct(db, ownerID, productID)
	if err != nil {
		return err
	}

	// Переопределять можно только вариант из цепочки категорий товара
	views, err := s.categorySvc.AggregatedVariants(db, product.CategoryID)
	if err != nil {
		return err
	}
	known := false
	for _, v := range views {
		if v.ID == variantID {
			known = true
			break
		}
	}
	if !known {
		return apperrors.ErrInvalidOperation("product", "Variant does not apply to this product's category")
	}

	raw, err := json.Marshal(req.Options)
	if err != nil {
		return apperrors.InternalError(err)
	}

	override := &models.ProductVariantOption{
		ProductID:  productID,
		VariantID:  variantID,
		Options:    datatypes.JSON(raw),
		IsRequired: req.IsRequired,
	}
	if err := s.productRepo.UpsertVariantOverride(db, override); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *ProductServiceImpl) RemoveVariantOverride(db *gorm.DB, ownerID, productID, variantID string) error {
	if _, err := s.ownedProduct(db, ownerID, productID); err != nil {
		return err
	}
	if err := s.productRepo.DeleteVariantOverride(db, productID, variantID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *ProductServiceImpl) findProduct(db *gorm.DB, id string) (*models.Product, error) {
	product, err := s.productRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProductNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return product, nil
}

// ownedShop находит магазин продавца
func (s *ProductServiceImpl) ownedShop(db *gorm.DB, ownerID string) (*models.Shop, error) {
	shop, err := s.shopRepo.FindByOwnerID(db, ownerID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrShopNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return shop, nil
}

// ownedProduct проверяет, что товар принадлежит магазину продавца
func (s *ProductServiceImpl) ownedProduct(db *gorm.DB, ownerID, productID string) (*models.Product, error) {
	product, err := s.findProduct(db, productID)
	if err != nil {
		return nil, err
	}
	shop, err := s.ownedShop(db, ownerID)
	if err != nil {
		return nil, err
	}
	if product.ShopID != shop.ID {
		return nil, apperrors.ErrInsufficientPermissions
	}
	return product, nil
}

func (s *ProductServiceImpl) buildResponse(db *gorm.DB, product *models.Product) (*dto.ProductResponse, error) {
	overrides, err := s.productRepo.FindVariantOverrides(db, product.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	variants, err := s.categorySvc.ResolveProductVariants(db, product, overrides)
	if err != nil {
		return nil, err
	}
	return newProductResponse(product, variants), nil
}

func newProductResponse(product *models.Product, variants []dto.VariantView) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:          product.ID,
		ShopID:      product.ShopID,
		CategoryID:  product.CategoryID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		ImageURL:    product.ImageURL,
		IsActive:    product.IsActive,
		Variants:    variants,
	}
	if len(product.Attributes) > 0 {
		_ = json.Unmarshal(product.Attributes, &resp.Attributes)
	}
	return resp
}
