package models

import "time"

// Voucher - скидочный ваучер. Инвариант: admin-ваучеры имеют ShopID == nil,
// seller-ваучеры всегда привязаны к магазину.
type Voucher struct {
	BaseModel
	Code          string        `gorm:"uniqueIndex;not null"`
	DiscountType  DiscountType  `gorm:"type:varchar(20);not null"` // percent | amount
	VoucherType   VoucherType   `gorm:"type:varchar(20);not null"` // shipping | product
	CreatorType   CreatorType   `gorm:"type:varchar(20);not null"` // admin | seller
	DiscountValue float64       `gorm:"not null"`
	MinOrderValue float64       `gorm:"not null;default:0"`
	ShopID        *string       `gorm:"type:uuid;index"`
	StartDate     time.Time     `gorm:"not null"`
	EndDate       time.Time     `gorm:"not null"`
	Status        VoucherStatus `gorm:"type:varchar(20);default:'active'"`
}
