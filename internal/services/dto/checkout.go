package dto

import "bazaar_backend/internal/models"

type CheckoutRequest struct {
	VoucherCodes    []string `json:"voucher_codes" binding:"max=20"`
	ShippingAddress string   `json:"shipping_address" binding:"required,min=5"`
	ShippingFee     float64  `json:"shipping_fee" binding:"min=0"`
}

// AppliedVoucher - результат применения одного ваучера к заказу
type AppliedVoucher struct {
	Code        string             `json:"code"`
	VoucherType models.VoucherType `json:"voucher_type"`
	CreatorType models.CreatorType `json:"creator_type"`
	ShopID      *string            `json:"shop_id,omitempty"`
	Discount    float64            `json:"discount"`
}

type OrderItemResponse struct {
	ProductID       string            `json:"product_id"`
	ShopID          string            `json:"shop_id"`
	ProductName     string            `json:"product_name"`
	UnitPrice       float64           `json:"unit_price"`
	Quantity        int               `json:"quantity"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
}

type OrderResponse struct {
	ID               string              `json:"id"`
	Status           models.OrderStatus  `json:"status"`
	Subtotal         float64             `json:"subtotal"`
	ShippingDiscount float64             `json:"shipping_discount"`
	ProductDiscount  float64             `json:"product_discount"`
	Total            float64             `json:"total"`
	AppliedVouchers  []AppliedVoucher    `json:"applied_vouchers,omitempty"`
	ShippingAddress  string              `json:"shipping_address"`
	Items            []OrderItemResponse `json:"items"`
	CreatedAt        string              `json:"created_at"`
}
