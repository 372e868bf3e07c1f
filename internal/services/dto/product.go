package dto

type CreateProductRequest struct {
	CategoryID  string                 `json:"category_id" binding:"required,uuid"`
	Name        string                 `json:"name" binding:"required,min=1,max=200"`
	Description string                 `json:"description"`
	Price       float64                `json:"price" binding:"required,gt=0"`
	Stock       int                    `json:"stock" binding:"min=0"`
	ImageURL    string                 `json:"image_url"`
	Attributes  map[string]interface{} `json:"attributes"`
}

type UpdateProductRequest struct {
	Name        *string                `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string                `json:"description"`
	Price       *float64               `json:"price" binding:"omitempty,gt=0"`
	Stock       *int                   `json:"stock" binding:"omitempty,min=0"`
	ImageURL    *string                `json:"image_url"`
	IsActive    *bool                  `json:"is_active"`
	Attributes  map[string]interface{} `json:"attributes"`
}

type ListProductsRequest struct {
	ShopID     string `form:"shop_id" binding:"omitempty,uuid"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Search     string `form:"search"`
	Page       int    `form:"page,default=1" binding:"min=1"`
	PageSize   int    `form:"page_size,default=20" binding:"min=1,max=100"`
}

// OverrideVariantRequest полностью заменяет опции варианта для товара
type OverrideVariantRequest struct {
	Options    []string `json:"options" binding:"required,min=1"`
	IsRequired bool     `json:"is_required"`
}

type ProductResponse struct {
	ID          string                 `json:"id"`
	ShopID      string                 `json:"shop_id"`
	CategoryID  string                 `json:"category_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Price       float64                `json:"price"`
	Stock       int                    `json:"stock"`
	ImageURL    string                 `json:"image_url,omitempty"`
	IsActive    bool                   `json:"is_active"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	Variants    []VariantView          `json:"variants,omitempty"`
}
