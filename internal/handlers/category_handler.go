package handlers

import (
	"net/http"

	"bazaar_backend/internal/services"
	"bazaar_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	*BaseHandler
	categoryService services.CategoryService
}

func NewCategoryHandler(base *BaseHandler, categoryService services.CategoryService) *CategoryHandler {
	return &CategoryHandler{BaseHandler: base, categoryService: categoryService}
}

// Create - POST /admin/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	category, err := h.categoryService.Create(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// GetTree - GET /categories
func (h *CategoryHandler) GetTree(c *gin.Context) {
	tree, err := h.categoryService.GetTree(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": tree})
}

// GetByID - GET /categories/:id
func (h *CategoryHandler) GetByID(c *gin.Context) {
	category, err := h.categoryService.GetByID(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// GetVariants - GET /categories/:id/variants
// Возвращает варианты категории вместе с унаследованными от предков
func (h *CategoryHandler) GetVariants(c *gin.Context) {
	variants, err := h.categoryService.AggregatedVariants(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"variants": variants})
}

// Update - PATCH /admin/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	var req dto.UpdateCategoryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	category, err := h.categoryService.Update(h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// Delete - DELETE /admin/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categoryService.Delete(h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// CreateVariant - POST /admin/categories/:id/variants
func (h *CategoryHandler) CreateVariant(c *gin.Context) {
	var req dto.CreateVariantRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	variant, err := h.categoryService.CreateVariant(h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, variant)
}

// UpdateVariant - PATCH /admin/variants/:id
func (h *CategoryHandler) UpdateVariant(c *gin.Context) {
	var req dto.UpdateVariantRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	variant, err := h.categoryService.UpdateVariant(h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, variant)
}

// DeleteVariant - DELETE /admin/variants/:id
func (h *CategoryHandler) DeleteVariant(c *gin.Context) {
	if err := h.categoryService.DeleteVariant(h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Variant deleted"})
}
