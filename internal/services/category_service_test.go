package services

import (
	"encoding/json"
	"sort"
	"sync"
	"testing"

	"bazaar_backend/internal/models"
	"bazaar_backend/internal/repositories"
	"bazaar_backend/internal/services/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type memCategoryRepo struct {
	mu         sync.Mutex
	categories map[string]*models.Category
	variants   map[string]*models.Variant
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{
		categories: make(map[string]*models.Category),
		variants:   make(map[string]*models.Variant),
	}
}

func (r *memCategoryRepo) Create(_ *gorm.DB, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	cp := *category
	r.categories[category.ID] = &cp
	return nil
}

func (r *memCategoryRepo) FindByID(_ *gorm.DB, id string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, repositories.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCategoryRepo) FindByIDWithVariants(db *gorm.DB, id string) (*models.Category, error) {
	category, err := r.FindByID(db, id)
	if err != nil {
		return nil, err
	}
	variants, _ := r.FindVariantsByCategory(db, id)
	category.Variants = variants
	return category, nil
}

func (r *memCategoryRepo) FindAll(_ *gorm.DB) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memCategoryRepo) FindChildren(_ *gorm.DB, parentID string) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Category
	for _, c := range r.categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memCategoryRepo) HasChildren(_ *gorm.DB, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.ParentID != nil && *c.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCategoryRepo) Update(_ *gorm.DB, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *category
	r.categories[category.ID] = &cp
	return nil
}

func (r *memCategoryRepo) Delete(_ *gorm.DB, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return repositories.ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *memCategoryRepo) CreateVariant(_ *gorm.DB, variant *models.Variant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if variant.ID == "" {
		variant.ID = uuid.NewString()
	}
	cp := *variant
	r.variants[variant.ID] = &cp
	return nil
}

func (r *memCategoryRepo) FindVariantByID(_ *gorm.DB, id string) (*models.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.variants[id]
	if !ok {
		return nil, repositories.ErrVariantNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *memCategoryRepo) FindVariantsByCategory(_ *gorm.DB, categoryID string) ([]models.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Variant
	for _, v := range r.variants {
		if v.CategoryID == categoryID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memCategoryRepo) UpdateVariant(_ *gorm.DB, variant *models.Variant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *variant
	r.variants[variant.ID] = &cp
	return nil
}

func (r *memCategoryRepo) DeleteVariant(_ *gorm.DB, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.variants, id)
	return nil
}

// --- Хелперы ---

func mustOptions(t *testing.T, options []string) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(options)
	require.NoError(t, err)
	return datatypes.JSON(raw)
}

type categoryFixture struct {
	svc  CategoryService
	repo *memCategoryRepo
}

func newCategoryFixture(t *testing.T) *categoryFixture {
	t.Helper()
	repo := newMemCategoryRepo()
	return &categoryFixture{svc: NewCategoryService(repo), repo: repo}
}

func (f *categoryFixture) seedCategory(t *testing.T, name string, parentID *string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, ParentID: parentID}
	require.NoError(t, f.repo.Create(nil, c))
	return c
}

func (f *categoryFixture) seedVariant(t *testing.T, categoryID, name string, options []string, required bool, position int) *models.Variant {
	t.Helper()
	v := &models.Variant{
		CategoryID: categoryID,
		Name:       name,
		Options:    mustOptions(t, options),
		IsRequired: required,
		Position:   position,
	}
	require.NoError(t, f.repo.CreateVariant(nil, v))
	return v
}

func variantNames(views []dto.VariantView) []string {
	names := make([]string, 0, len(views))
	for _, v := range views {
		names = append(names, v.Name)
	}
	return names
}

// --- Тесты ---

// Варианты предков идут первыми: от корня вниз к самой категории
func TestAggregatedVariants_RootFirstOrder(t *testing.T) {
	f := newCategoryFixture(t)

	electronics := f.seedCategory(t, "Электроника", nil)
	phones := f.seedCategory(t, "Телефоны", &electronics.ID)
	smartphones := f.seedCategory(t, "Смартфоны", &phones.ID)

	f.seedVariant(t, electronics.ID, "Warranty", []string{"6mo", "12mo"}, false, 0)
	f.seedVariant(t, phones.ID, "Storage", []string{"128GB", "256GB"}, true, 0)
	f.seedVariant(t, smartphones.ID, "Color", []string{"Black", "White"}, true, 0)

	views, err := f.svc.AggregatedVariants(nil, smartphones.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Warranty", "Storage", "Color"}, variantNames(views))
}

// Внутри одной категории варианты упорядочены по position
func TestAggregatedVariants_PositionOrder(t *testing.T) {
	f := newCategoryFixture(t)
	c := f.seedCategory(t, "Одежда", nil)

	f.seedVariant(t, c.ID, "Size", []string{"S", "M", "L"}, true, 2)
	f.seedVariant(t, c.ID, "Color", []string{"Black"}, false, 1)
	f.seedVariant(t, c.ID, "Material", []string{"Cotton"}, false, 3)

	views, err := f.svc.AggregatedVariants(nil, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Color", "Size", "Material"}, variantNames(views))
}

// Одноименные варианты на разных уровнях НЕ схлопываются
func TestAggregatedVariants_NoDeduplication(t *testing.T) {
	f := newCategoryFixture(t)

	parent := f.seedCategory(t, "Родитель", nil)
	child := f.seedCategory(t, "Потомок", &parent.ID)

	f.seedVariant(t, parent.ID, "Color", []string{"Black"}, false, 0)
	f.seedVariant(t, child.ID, "Color", []string{"Red", "Green"}, true, 0)

	views, err := f.svc.AggregatedVariants(nil, child.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, []string{"Color", "Color"}, variantNames(views))
	assert.Equal(t, []string{"Black"}, views[0].Options)
	assert.Equal(t, []string{"Red", "Green"}, views[1].Options)
}

// Цикл в parent_id не приводит к зависанию
func TestAggregatedVariants_CycleGuard(t *testing.T) {
	f := newCategoryFixture(t)

	a := f.seedCategory(t, "A", nil)
	b := f.seedCategory(t, "B", &a.ID)

	// Ломаем данные руками: A ссылается на B
	a.ParentID = &b.ID
	require.NoError(t, f.repo.Update(nil, a))

	f.seedVariant(t, a.ID, "VarA", []string{"x"}, false, 0)
	f.seedVariant(t, b.ID, "VarB", []string{"y"}, false, 0)

	views, err := f.svc.AggregatedVariants(nil, b.ID)
	require.NoError(t, err)
	// Оба уровня собраны ровно по одному разу
	assert.ElementsMatch(t, []string{"VarA", "VarB"}, variantNames(views))
}

// Осиротевшая ссылка на родителя: агрегируется то, что есть
func TestAggregatedVariants_OrphanedParent(t *testing.T) {
	f := newCategoryFixture(t)

	ghost := "00000000-0000-0000-0000-000000000000"
	c := f.seedCategory(t, "Сирота", &ghost)
	f.seedVariant(t, c.ID, "Size", []string{"M"}, false, 0)

	views, err := f.svc.AggregatedVariants(nil, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Size"}, variantNames(views))
}

func TestAggregatedVariants_CategoryNotFound(t *testing.T) {
	f := newCategoryFixture(t)
	_, err := f.svc.AggregatedVariants(nil, "missing")
	require.Error(t, err)
}

// Переопределение товара полностью ЗАМЕНЯЕТ опции и обязательность,
// а не объединяет их с опциями категории
func TestResolveProductVariants_OverrideReplaces(t *testing.T) {
	f := newCategoryFixture(t)

	c := f.seedCategory(t, "Телефоны", nil)
	colorVar := f.seedVariant(t, c.ID, "Color", []string{"Black", "White", "Red"}, true, 0)
	f.seedVariant(t, c.ID, "Storage", []string{"128GB"}, true, 1)

	product := &models.Product{CategoryID: c.ID}
	overrides := []models.ProductVariantOption{{
		ProductID:  "product-1",
		VariantID:  colorVar.ID,
		Options:    mustOptions(t, []string{"Black"}),
		IsRequired: false,
	}}

	views, err := f.svc.ResolveProductVariants(nil, product, overrides)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "Color", views[0].Name)
	assert.Equal(t, []string{"Black"}, views[0].Options)
	assert.False(t, views[0].IsRequired)
	assert.True(t, views[0].Overridden)

	// Непереопределенный вариант остается как в категории
	assert.Equal(t, "Storage", views[1].Name)
	assert.Equal(t, []string{"128GB"}, views[1].Options)
	assert.True(t, views[1].IsRequired)
	assert.False(t, views[1].Overridden)
}

// Переопределение на вариант чужой категории просто игнорируется
func TestResolveProductVariants_UnknownVariantIgnored(t *testing.T) {
	f := newCategoryFixture(t)

	c := f.seedCategory(t, "Телефоны", nil)
	f.seedVariant(t, c.ID, "Color", []string{"Black"}, true, 0)

	product := &models.Product{CategoryID: c.ID}
	overrides := []models.ProductVariantOption{{
		ProductID: "product-1",
		VariantID: "not-in-category",
		Options:   mustOptions(t, []string{"Huge"}),
	}}

	views, err := f.svc.ResolveProductVariants(nil, product, overrides)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.False(t, views[0].Overridden)
	assert.Equal(t, []string{"Black"}, views[0].Options)
}

func TestCategoryService_GetTree(t *testing.T) {
	f := newCategoryFixture(t)

	electronics := f.seedCategory(t, "Электроника", nil)
	f.seedCategory(t, "Телефоны", &electronics.ID)
	f.seedCategory(t, "Ноутбуки", &electronics.ID)
	f.seedCategory(t, "Одежда", nil)

	tree, err := f.svc.GetTree(nil)
	require.NoError(t, err)
	require.Len(t, tree, 2)

	for _, root := range tree {
		switch root.Name {
		case "Электроника":
			assert.Len(t, root.Children, 2)
		case "Одежда":
			assert.Empty(t, root.Children)
		default:
			t.Fatalf("unexpected root category %q", root.Name)
		}
	}
}

func TestCategoryService_DeleteWithChildren(t *testing.T) {
	f := newCategoryFixture(t)

	parent := f.seedCategory(t, "Родитель", nil)
	child := f.seedCategory(t, "Потомок", &parent.ID)

	err := f.svc.Delete(nil, parent.ID)
	require.Error(t, err)

	// Лист удаляется свободно
	require.NoError(t, f.svc.Delete(nil, child.ID))
	require.NoError(t, f.svc.Delete(nil, parent.ID))
}

func TestCategoryService_CreateVariant_MissingCategory(t *testing.T) {
	f := newCategoryFixture(t)
	_, err := f.svc.CreateVariant(nil, "missing", &dto.CreateVariantRequest{Name: "Color", Options: []string{"Black"}})
	require.Error(t, err)
}
