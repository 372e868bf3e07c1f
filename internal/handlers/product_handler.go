package handlers

import (
	"net/http"

	"bazaar_backend/internal/middleware"
	"bazaar_backend/internal/services"
	"bazaar_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	*BaseHandler
	productService services.ProductService
}

func NewProductHandler(base *BaseHandler, productService services.ProductService) *ProductHandler {
	return &ProductHandler{BaseHandler: base, productService: productService}
}

// Create - POST /products (seller)
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	product, err := h.productService.Create(h.GetDB(c), middleware.CurrentUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetByID - GET /products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	product, err := h.productService.GetByID(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// List - GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListProductsRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	products, total, err := h.productService.List(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{Items: products, Total: total, Page: req.Page, PageSize: req.PageSize})
}

// Update - PATCH /products/:id (seller)
func (h *ProductHandler) Update(c *gin.Context) {
	var req dto.UpdateProductRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	product, err := h.productService.Update(h.GetDB(c), middleware.CurrentUserID(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Delete - DELETE /products/:id (seller)
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.productService.Delete(h.GetDB(c), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// OverrideVariant - PUT /products/:id/variants/:variantId (seller)
// Полностью заменяет опции варианта для товара
func (h *ProductHandler) OverrideVariant(c *gin.Context) {
	var req dto.OverrideVariantRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	err := h.productService.OverrideVariant(h.GetDB(c), middleware.CurrentUserID(c), c.Param("id"), c.Param("variantId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Variant overridden"})
}

// RemoveVariantOverride - DELETE /products/:id/variants/:variantId (seller)
func (h *ProductHandler) RemoveVariantOverride(c *gin.Context) {
	err := h.productService.RemoveVariantOverride(h.GetDB(c), middleware.CurrentUserID(c), c.Param("id"), c.Param("variantId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Variant override removed"})
}
