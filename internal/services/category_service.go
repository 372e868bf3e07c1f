package services

import (
	"encoding/json"

	"bazaar_backend/internal/logger"
	"bazaar_backend/internal/models"
	"bazaar_backend/internal/repositories"
	"bazaar_backend/internal/services/dto"
	"bazaar_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CategoryService interface {
	Create(db *gorm.DB, req *dto.CreateCategoryRequest) (*models.Category, error)
	GetByID(db *gorm.DB, id string) (*models.Category, error)
	GetTree(db *gorm.DB) ([]dto.CategoryResponse, error)
	Update(db *gorm.DB, id string, req *dto.UpdateCategoryRequest) (*models.Category, error)
	Delete(db *gorm.DB, id string) error

	CreateVariant(db *gorm.DB, categoryID string, req *dto.CreateVariantRequest) (*models.Variant, error)
	UpdateVariant(db *gorm.DB, variantID string, req *dto.UpdateVariantRequest) (*models.Variant, error)
	DeleteVariant(db *gorm.DB, variantID string) error

	// AggregatedVariants собирает варианты категории вместе с вариантами
	// всех ее предков, от корня вниз
	AggregatedVariants(db *gorm.DB, categoryID string) ([]dto.VariantView, error)

	// ResolveProductVariants - агрегированные варианты категории товара
	// с наложенными переопределениями самого товара
	ResolveProductVariants(db *gorm.DB, product *models.Product, overrides []models.ProductVariantOption) ([]dto.VariantView, error)
}

type CategoryServiceImpl struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) CategoryService {
	return &CategoryServiceImpl{categoryRepo: categoryRepo}
}

func (s *CategoryServiceImpl) Create(db *gorm.DB, req *dto.CreateCategoryRequest) (*models.Category, error) {
	if req.ParentID != nil {
		if _, err := s.categoryRepo.FindByID(db, *req.ParentID); err != nil {
			if apperrors.Is(err, repositories.ErrCategoryNotFound) {
				return nil, apperrors.ErrNotFound(err)
			}
			return nil, apperrors.InternalError(err)
		}
	}

	category := &models.Category{
		Name:     req.Name,
		ImageURL: req.ImageURL,
		ParentID: req.ParentID,
	}
	if err := s.categoryRepo.Create(db, category); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return category, nil
}

func (s *CategoryServiceImpl) GetByID(db *gorm.DB, id string) (*models.Category, error) {
	category, err := s.categoryRepo.FindByIDWithVariants(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return category, nil
}

// GetTree строит лес категорий из плоского списка
func (s *CategoryServiceImpl) GetTree(db *gorm.DB) ([]dto.CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	byParent := make(map[string][]models.Category)
	var roots []models.Category
	for _, c := range categories {
		if c.ParentID == nil {
			roots = append(roots, c)
		} else {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
		}
	}

	var build func(c models.Category) dto.CategoryResponse
	build = func(c models.Category) dto.CategoryResponse {
		node := dto.NewCategoryResponse(&c)
		for _, child := range byParent[c.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	tree := make([]dto.CategoryResponse, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, build(root))
	}
	return tree, nil
}

func (s *CategoryServiceImpl) Update(db *gorm.DB, id string, req *dto.UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.ImageURL != nil {
		category.ImageURL = *req.ImageURL
	}

	if err := s.categoryRepo.Update(db, category); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return category, nil
}

// Delete удаляет категорию. Категория с подкатегориями не удаляется:
// сначала нужно разобрать поддерево.
func (s *CategoryServiceImpl) Delete(db *gorm.DB, id string) error {
	hasChildren, err := s.categoryRepo.HasChildren(db, id)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if hasChildren {
		return apperrors.ErrCategoryHasChildren
	}

	if err := s.categoryRepo.Delete(db, id); err != nil {
		if apperrors.Is(err, repositories.ErrCategoryNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *CategoryServiceImpl) CreateVariant(db *gorm.DB, categoryID string, req *dto.CreateVariantRequest) (*models.Variant, error) {
	if _, err := s.categoryRepo.FindByID(db, categoryID); err != nil {
		if apperrors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	options, err := json.Marshal(req.Options)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	variant := &models.Variant{
		CategoryID: categoryID,
		Name:       req.Name,
		Options:    datatypes.JSON(options),
		IsRequired: req.IsRequired,
		Position:   req.Position,
	}
	if err := s.categoryRepo.CreateVariant(db, variant); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return variant, nil
}

func (s *CategoryServiceImpl) UpdateVariant(db *gorm.DB, variantID string, req *dto.UpdateVariantRequest) (*models.Variant, error) {
	variant, err := s.categoryRepo.FindVariantByID(db, variantID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrVariantNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != nil {
		variant.Name = *req.Name
	}
	if req.Options != nil {
		options, err := json.Marshal(req.Options)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		variant.Options = datatypes.JSON(options)
	}
	if req.IsRequired != nil {
		variant.IsRequired = *req.IsRequired
	}
	if req.Position != nil {
		variant.Position = *req.Position
	}

	if err := s.categoryRepo.UpdateVariant(db, variant); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return variant, nil
}

func (s *CategoryServiceImpl) DeleteVariant(db *gorm.DB, variantID string) error {
	if _, err := s.categoryRepo.FindVariantByID(db, variantID); err != nil {
		if apperrors.Is(err, repositories.ErrVariantNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	if err := s.categoryRepo.DeleteVariant(db, variantID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// maxCategoryDepth ограничивает подъем по предкам: защита от цикла
// parent_id, который мог возникнуть при ручной правке данных
const maxCategoryDepth = 32

// AggregatedVariants - варианты категории вместе с вариантами предков.
//
// Порядок результата: сначала варианты корневого предка, затем вниз по
// цепочке до самой категории; внутри категории - по position. Одноименные
// варианты разных уровней НЕ схлопываются: клиент видит оба.
func (s *CategoryServiceImpl) AggregatedVariants(db *gorm.DB, categoryID string) ([]dto.VariantView, error) {
	// Подъем от категории к корню
	chain := make([]*models.Category, 0, 4)
	visited := make(map[string]bool)

	current, err := s.categoryRepo.FindByID(db, categoryID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	for current != nil {
		if visited[current.ID] || len(chain) >= maxCategoryDepth {
			logger.Error("category ancestry cycle detected", "category_id", current.ID)
			break
		}
		visited[current.ID] = true
		chain = append(chain, current)

		if current.ParentID == nil {
			break
		}
		parent, err := s.categoryRepo.FindByID(db, *current.ParentID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrCategoryNotFound) {
				// Осиротевшая ссылка на родителя: агрегируем то, что есть
				logger.Warn("category parent missing", "category_id", current.ID, "parent_id", *current.ParentID)
				break
			}
			return nil, apperrors.InternalError(err)
		}
		current = parent
	}

	// Обход root-first: цепочка собрана снизу вверх, читаем с конца
	var views []dto.VariantView
	for i := len(chain) - 1; i >= 0; i-- {
		variants, err := s.categoryRepo.FindVariantsByCategory(db, chain[i].ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		for _, v := range variants {
			views = append(views, newVariantView(&v))
		}
	}
	return views, nil
}

// ResolveProductVariants накладывает переопределения товара на
// агрегированные варианты его категории. Переопределение полностью
// заменяет опции и флаг обязательности варианта.
func (s *CategoryServiceImpl) ResolveProductVariants(db *gorm.DB, product *models.Product, overrides []models.ProductVariantOption) ([]dto.VariantView, error) {
	views, err := s.AggregatedVariants(db, product.CategoryID)
	if err != nil {
		return nil, err
	}

	byVariant := make(map[string]*models.ProductVariantOption, len(overrides))
	for i := range overrides {
		byVariant[overrides[i].VariantID] = &overrides[i]
	}

	for i := range views {
		if o, ok := byVariant[views[i].ID]; ok {
			views[i].Options = decodeOptions(o.Options)
			views[i].IsRequired = o.IsRequired
			views[i].Overridden = true
		}
	}
	return views, nil
}

func newVariantView(v *models.Variant) dto.VariantView {
	return dto.VariantView{
		ID:         v.ID,
		CategoryID: v.CategoryID,
		Name:       v.Name,
		Options:    decodeOptions(v.Options),
		IsRequired: v.IsRequired,
		Position:   v.Position,
	}
}

func decodeOptions(raw datatypes.JSON) []string {
	var options []string
	if len(raw) == 0 {
		return options
	}
	if err := json.Unmarshal(raw, &options); err != nil {
		logger.Error("failed to decode variant options", "error", err)
	}
	return options
}
