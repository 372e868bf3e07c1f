package handlers

import (
	"net/http"

	"bazaar_backend/internal/middleware"
	"bazaar_backend/internal/services"
	"bazaar_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	*BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(base *BaseHandler, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{BaseHandler: base, reviewService: reviewService}
}

// Create - POST /reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	var req dto.CreateReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), h.GetDB(c), middleware.CurrentUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// ListForProduct - GET /products/:id/reviews
func (h *ReviewHandler) ListForProduct(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	reviews, total, err := h.reviewService.ListForProduct(h.GetDB(c), c.Param("id"), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{Items: reviews, Total: total, Page: page, PageSize: pageSize})
}

// Delete - DELETE /reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	if err := h.reviewService.Delete(h.GetDB(c), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
