package handlers

import (
	"net/http"

	"bazaar_backend/internal/middleware"
	"bazaar_backend/internal/repositories"
	"bazaar_backend/internal/services"
	"bazaar_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	*BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(base *BaseHandler, notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{BaseHandler: base, notificationService: notificationService}
}

// List - GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	var criteria repositories.NotificationCriteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		criteria = repositories.NotificationCriteria{}
	}
	if criteria.Page < 1 {
		criteria.Page = 1
	}
	if criteria.PageSize < 1 {
		criteria.PageSize = 20
	}

	notifications, total, err := h.notificationService.List(h.GetDB(c), middleware.CurrentUserID(c), criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{Items: notifications, Total: total, Page: criteria.Page, PageSize: criteria.PageSize})
}

// MarkAsRead - POST /notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	err := h.notificationService.MarkAsRead(h.GetDB(c), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllAsRead - POST /notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if err := h.notificationService.MarkAllAsRead(h.GetDB(c), middleware.CurrentUserID(c)); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// UnreadCount - GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notificationService.UnreadCount(h.GetDB(c), middleware.CurrentUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}
