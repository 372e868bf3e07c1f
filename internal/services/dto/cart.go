package dto

type AddCartItemRequest struct {
	ProductID       string            `json:"product_id" binding:"required,uuid"`
	Quantity        int               `json:"quantity" binding:"required,min=1"`
	SelectedOptions map[string]string `json:"selected_options"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type CartItemResponse struct {
	ID              string            `json:"id"`
	ProductID       string            `json:"product_id"`
	ProductName     string            `json:"product_name"`
	ShopID          string            `json:"shop_id"`
	UnitPrice       float64           `json:"unit_price"`
	Quantity        int               `json:"quantity"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
	LineTotal       float64           `json:"line_total"`
}

type CartResponse struct {
	Items    []CartItemResponse `json:"items"`
	Subtotal float64            `json:"subtotal"`
}
