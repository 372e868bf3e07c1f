package handlers

import (
	"net/http"

	"bazaar_backend/internal/middleware"
	"bazaar_backend/internal/services"
	"bazaar_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	*BaseHandler
	cartService     services.CartService
	checkoutService services.CheckoutService
}

func NewCartHandler(base *BaseHandler, cartService services.CartService, checkoutService services.CheckoutService) *CartHandler {
	return &CartHandler{BaseHandler: base, cartService: cartService, checkoutService: checkoutService}
}

// AddItem - POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	cart, err := h.cartService.AddItem(h.GetDB(c), middleware.CurrentUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

// GetCart - GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.cartService.GetCart(h.GetDB(c), middleware.CurrentUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// UpdateItem - PATCH /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req dto.UpdateCartItemRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	cart, err := h.cartService.UpdateItem(h.GetDB(c), middleware.CurrentUserID(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveItem - DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	cart, err := h.cartService.RemoveItem(h.GetDB(c), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// Clear - DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.cartService.Clear(h.GetDB(c), middleware.CurrentUserID(c)); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// Checkout - POST /checkout
func (h *CartHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	order, err := h.checkoutService.Checkout(h.GetDB(c), middleware.CurrentUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrder - GET /orders/:id
func (h *CartHandler) GetOrder(c *gin.Context) {
	order, err := h.checkoutService.GetOrder(h.GetDB(c), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListOrders - GET /orders
func (h *CartHandler) ListOrders(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	orders, total, err := h.checkoutService.ListOrders(h.GetDB(c), middleware.CurrentUserID(c), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{Items: orders, Total: total, Page: page, PageSize: pageSize})
}
