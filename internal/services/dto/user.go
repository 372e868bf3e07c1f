package dto

import "bazaar_backend/internal/models"

type UpdateProfileRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=2,max=100"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ListUsersRequest - фильтр админского списка пользователей
type ListUsersRequest struct {
	Role     models.UserRole   `form:"role" binding:"omitempty,oneof=buyer seller admin"`
	Status   models.UserStatus `form:"status" binding:"omitempty,oneof=pending active banned"`
	Search   string            `form:"search"`
	Page     int               `form:"page,default=1" binding:"min=1"`
	PageSize int               `form:"page_size,default=20" binding:"min=1,max=100"`
}

type ListResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}
