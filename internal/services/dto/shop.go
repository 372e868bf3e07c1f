package dto

import "bazaar_backend/internal/models"

type CreateShopRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url"`
}

type UpdateShopRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logo_url"`
}

type ShopResponse struct {
	ID          string            `json:"id"`
	OwnerID     string            `json:"owner_id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	LogoURL     string            `json:"logo_url,omitempty"`
	Status      models.ShopStatus `json:"status"`
	Rating      float64           `json:"rating"`
	RatingCount int64             `json:"rating_count"`
}

func NewShopResponse(s *models.Shop) *ShopResponse {
	return &ShopResponse{
		ID:          s.ID,
		OwnerID:     s.OwnerID,
		Name:        s.Name,
		Description: s.Description,
		LogoURL:     s.LogoURL,
		Status:      s.Status,
		Rating:      s.Rating,
		RatingCount: s.RatingCount,
	}
}
