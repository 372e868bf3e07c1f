package models

type UserStatus string
type UserRole string
type ShopStatus string
type OrderStatus string
type VoucherStatus string
type VoucherType string
type DiscountType string
type CreatorType string

const (
	UserStatusPending UserStatus = "pending"
	UserStatusActive  UserStatus = "active"
	UserStatusBanned  UserStatus = "banned"

	UserRoleBuyer  UserRole = "buyer"
	UserRoleSeller UserRole = "seller"
	UserRoleAdmin  UserRole = "admin"

	ShopStatusPending   ShopStatus = "pending"
	ShopStatusApproved  ShopStatus = "approved"
	ShopStatusSuspended ShopStatus = "suspended"

	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"

	VoucherStatusActive   VoucherStatus = "active"
	VoucherStatusExpired  VoucherStatus = "expired"
	VoucherStatusDisabled VoucherStatus = "disabled"

	// Тип скидки ваучера
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeAmount  DiscountType = "amount"

	// На что действует ваучер
	VoucherTypeShipping VoucherType = "shipping"
	VoucherTypeProduct  VoucherType = "product"

	// Кто выпустил ваучер: платформа или магазин
	CreatorTypeAdmin  CreatorType = "admin"
	CreatorTypeSeller CreatorType = "seller"
)
