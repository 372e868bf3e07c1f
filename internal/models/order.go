package models

import "gorm.io/datatypes"

type Order struct {
	BaseModel
	BuyerID          string      `gorm:"type:uuid;not null;index"`
	Status           OrderStatus `gorm:"type:varchar(20);default:'pending'"`
	Subtotal         float64     `gorm:"not null"`
	ShippingDiscount float64     `gorm:"not null;default:0"`
	ProductDiscount  float64     `gorm:"not null;default:0"`
	Total            float64     `gorm:"not null"`
	AppliedVouchers  datatypes.JSON `gorm:"type:jsonb"` // коды примененных ваучеров
	ShippingAddress  string

	// Relations
	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	BaseModel
	OrderID         string         `gorm:"type:uuid;not null;index"`
	ProductID       string         `gorm:"type:uuid;not null"`
	ShopID          string         `gorm:"type:uuid;not null;index"`
	ProductName     string         `gorm:"not null"` // снапшот на момент заказа
	UnitPrice       float64        `gorm:"not null"`
	Quantity        int            `gorm:"not null"`
	SelectedOptions datatypes.JSON `gorm:"type:jsonb"`
}
