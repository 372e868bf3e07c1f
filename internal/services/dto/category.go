package dto

import "bazaar_backend/internal/models"

type CreateCategoryRequest struct {
	Name     string  `json:"name" binding:"required,min=1,max=100"`
	ImageURL string  `json:"image_url"`
	ParentID *string `json:"parent_id" binding:"omitempty,uuid"`
}

type UpdateCategoryRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	ImageURL *string `json:"image_url"`
}

type CreateVariantRequest struct {
	Name       string   `json:"name" binding:"required,min=1,max=100"`
	Options    []string `json:"options" binding:"required,min=1"`
	IsRequired bool     `json:"is_required"`
	Position   int      `json:"position" binding:"min=0"`
}

type UpdateVariantRequest struct {
	Name       *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Options    []string `json:"options" binding:"omitempty,min=1"`
	IsRequired *bool    `json:"is_required"`
	Position   *int     `json:"position" binding:"omitempty,min=0"`
}

// VariantView - вариант после агрегации по цепочке предков
// (или после наложения переопределения товара)
type VariantView struct {
	ID         string   `json:"id"`
	CategoryID string   `json:"category_id,omitempty"`
	Name       string   `json:"name"`
	Options    []string `json:"options"`
	IsRequired bool     `json:"is_required"`
	Position   int      `json:"position"`
	Overridden bool     `json:"overridden,omitempty"` // true, если товар переопределил вариант
}

type CategoryResponse struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	ImageURL string             `json:"image_url,omitempty"`
	ParentID *string            `json:"parent_id,omitempty"`
	Children []CategoryResponse `json:"children,omitempty"`
}

func NewCategoryResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:       c.ID,
		Name:     c.Name,
		ImageURL: c.ImageURL,
		ParentID: c.ParentID,
	}
}
