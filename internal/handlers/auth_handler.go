package handlers

import (
	"net/http"

	"bazaar_backend/internal/middleware"
	"bazaar_backend/internal/services"
	"bazaar_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService) *AuthHandler {
	return &AuthHandler{BaseHandler: base, authService: authService}
}

// requestMeta собирает сведения о клиенте для записи refresh-токена
func requestMeta(c *gin.Context) dto.RequestMeta {
	return dto.RequestMeta{
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		DeviceID:   c.GetHeader("X-Device-ID"),
		DeviceName: c.GetHeader("X-Device-Name"),
	}
}

// Register - POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.authService.Register(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login - POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(h.GetDB(c), &req, requestMeta(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh - POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Refresh(h.GetDB(c), req.RefreshToken, requestMeta(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout - POST /auth/logout (требует авторизации)
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	err := h.authService.Logout(c.Request.Context(), h.GetDB(c), middleware.AccessToken(c), req.RefreshToken)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// LogoutAll - POST /auth/logout-all
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	err := h.authService.LogoutAll(c.Request.Context(), h.GetDB(c), userID, middleware.AccessToken(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out everywhere"})
}

// Sessions - GET /auth/sessions
func (h *AuthHandler) Sessions(c *gin.Context) {
	sessions, err := h.authService.Sessions(h.GetDB(c), middleware.CurrentUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// ChangePassword - POST /auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), h.GetDB(c), middleware.CurrentUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed, please log in again"})
}
