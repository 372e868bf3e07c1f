package dto

import (
	"time"

	"bazaar_backend/internal/models"
)

type CreateVoucherRequest struct {
	Code          string              `json:"code" binding:"required,min=3,max=50"`
	DiscountType  models.DiscountType `json:"discount_type" binding:"required,oneof=percent amount"`
	VoucherType   models.VoucherType  `json:"voucher_type" binding:"required,oneof=shipping product"`
	DiscountValue float64             `json:"discount_value" binding:"required,gt=0"`
	MinOrderValue float64             `json:"min_order_value" binding:"min=0"`
	StartDate     time.Time           `json:"start_date" binding:"required"`
	EndDate       time.Time           `json:"end_date" binding:"required"`
}

type UpdateVoucherRequest struct {
	DiscountValue *float64              `json:"discount_value" binding:"omitempty,gt=0"`
	MinOrderValue *float64              `json:"min_order_value" binding:"omitempty,min=0"`
	StartDate     *time.Time            `json:"start_date"`
	EndDate       *time.Time            `json:"end_date"`
	Status        *models.VoucherStatus `json:"status" binding:"omitempty,oneof=active disabled"`
}

type VoucherResponse struct {
	ID            string               `json:"id"`
	Code          string               `json:"code"`
	DiscountType  models.DiscountType  `json:"discount_type"`
	VoucherType   models.VoucherType   `json:"voucher_type"`
	CreatorType   models.CreatorType   `json:"creator_type"`
	DiscountValue float64              `json:"discount_value"`
	MinOrderValue float64              `json:"min_order_value"`
	ShopID        *string              `json:"shop_id,omitempty"`
	StartDate     time.Time            `json:"start_date"`
	EndDate       time.Time            `json:"end_date"`
	Status        models.VoucherStatus `json:"status"`
}

func NewVoucherResponse(v *models.Voucher) VoucherResponse {
	return VoucherResponse{
		ID:            v.ID,
		Code:          v.Code,
		DiscountType:  v.DiscountType,
		VoucherType:   v.VoucherType,
		CreatorType:   v.CreatorType,
		DiscountValue: v.DiscountValue,
		MinOrderValue: v.MinOrderValue,
		ShopID:        v.ShopID,
		StartDate:     v.StartDate,
		EndDate:       v.EndDate,
		Status:        v.Status,
	}
}
