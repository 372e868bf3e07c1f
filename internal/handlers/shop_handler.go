package handlers

import (
	"net/http"

	"bazaar_backend/internal/middleware"
	"bazaar_backend/internal/services"
	"bazaar_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ShopHandler struct {
	*BaseHandler
	shopService services.ShopService
}

func NewShopHandler(base *BaseHandler, shopService services.ShopService) *ShopHandler {
	return &ShopHandler{BaseHandler: base, shopService: shopService}
}

// Create - POST /shops (seller)
func (h *ShopHandler) Create(c *gin.Context) {
	var req dto.CreateShopRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	shop, err := h.shopService.Create(h.GetDB(c), middleware.CurrentUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shop)
}

// GetByID - GET /shops/:id
func (h *ShopHandler) GetByID(c *gin.Context) {
	shop, err := h.shopService.GetByID(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

// GetOwnShop - GET /shops/my (seller)
func (h *ShopHandler) GetOwnShop(c *gin.Context) {
	shop, err := h.shopService.GetOwnShop(h.GetDB(c), middleware.CurrentUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

// Update - PATCH /shops/my (seller)
func (h *ShopHandler) Update(c *gin.Context) {
	var req dto.UpdateShopRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	shop, err := h.shopService.Update(h.GetDB(c), middleware.CurrentUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

// List - GET /shops
func (h *ShopHandler) List(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	shops, total, err := h.shopService.List(h.GetDB(c), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{Items: shops, Total: total, Page: page, PageSize: pageSize})
}

// Approve - POST /admin/shops/:id/approve
func (h *ShopHandler) Approve(c *gin.Context) {
	if err := h.shopService.Approve(c.Request.Context(), h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shop approved"})
}

// Suspend - POST /admin/shops/:id/suspend
func (h *ShopHandler) Suspend(c *gin.Context) {
	if err := h.shopService.Suspend(h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shop suspended"})
}
