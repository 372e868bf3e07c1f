package handlers

import (
	"net/http"

	"bazaar_backend/internal/middleware"
	"bazaar_backend/internal/services"
	"bazaar_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	*BaseHandler
	chatService services.ChatService
}

func NewChatHandler(base *BaseHandler, chatService services.ChatService) *ChatHandler {
	return &ChatHandler{BaseHandler: base, chatService: chatService}
}

// StartDialog - POST /chat/dialogs (buyer)
func (h *ChatHandler) StartDialog(c *gin.Context) {
	var req dto.StartDialogRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	dialog, err := h.chatService.StartDialog(h.GetDB(c), middleware.CurrentUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dialog)
}

// ListDialogs - GET /chat/dialogs
func (h *ChatHandler) ListDialogs(c *gin.Context) {
	role, _ := middleware.CurrentRole(c)

	dialogs, err := h.chatService.ListDialogs(h.GetDB(c), middleware.CurrentUserID(c), role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dialogs": dialogs})
}

// SendMessage - POST /chat/dialogs/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	role, _ := middleware.CurrentRole(c)
	message, err := h.chatService.SendMessage(c.Request.Context(), h.GetDB(c), c.Param("id"), middleware.CurrentUserID(c), role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// ListMessages - GET /chat/dialogs/:id/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	page, pageSize := ParsePagination(c)
	role, _ := middleware.CurrentRole(c)

	messages, total, err := h.chatService.ListMessages(h.GetDB(c), c.Param("id"), middleware.CurrentUserID(c), role, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{Items: messages, Total: total, Page: page, PageSize: pageSize})
}
