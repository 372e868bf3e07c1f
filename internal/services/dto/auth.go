package dto

import "bazaar_backend/internal/models"

type RegisterRequest struct {
	Name     string          `json:"name" binding:"required,min=2,max=100"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required"`
	Role     models.UserRole `json:"role" binding:"required,oneof=buyer seller"`
	Phone    string          `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RequestMeta - сведения о клиенте, сохраняемые вместе с refresh-токеном.
// Заполняется в хендлере из запроса, не пользователем.
type RequestMeta struct {
	IP         string
	UserAgent  string
	DeviceID   string
	DeviceName string
}

type UserResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Role      models.UserRole   `json:"role"`
	Status    models.UserStatus `json:"status"`
	Phone     string            `json:"phone,omitempty"`
	AvatarURL string            `json:"avatar_url,omitempty"`
}

// AuthResponse - пара токенов плюс данные пользователя
type AuthResponse struct {
	User         *UserResponse `json:"user"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int           `json:"expires_in"` // срок жизни access-токена, сек
}

// SessionResponse - активная сессия пользователя (список устройств)
type SessionResponse struct {
	ID         string `json:"id"`
	DeviceID   string `json:"device_id,omitempty"`
	DeviceName string `json:"device_name,omitempty"`
	IP         string `json:"ip,omitempty"`
	CreatedAt  string `json:"created_at"`
	LastUsedAt string `json:"last_used_at,omitempty"`
	IsRevoked  bool   `json:"is_revoked"`
}

func NewUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Status:    user.Status,
		Phone:     user.Phone,
		AvatarURL: user.AvatarURL,
	}
}
