package handlers

import (
	"bazaar_backend/internal/services"
	"bazaar_backend/internal/validator"
)

// HandlerContainer - контейнер всех HTTP-хендлеров
type HandlerContainer struct {
	Auth         *AuthHandler
	User         *UserHandler
	Shop         *ShopHandler
	Category     *CategoryHandler
	Product      *ProductHandler
	Voucher      *VoucherHandler
	Cart         *CartHandler
	Review       *ReviewHandler
	Chat         *ChatHandler
	Notification *NotificationHandler
}

func NewHandlerContainer(svc *services.ServiceContainer, v *validator.Validator) *HandlerContainer {
	base := NewBaseHandler(v)
	return &HandlerContainer{
		Auth:         NewAuthHandler(base, svc.Auth),
		User:         NewUserHandler(base, svc.User),
		Shop:         NewShopHandler(base, svc.Shop),
		Category:     NewCategoryHandler(base, svc.Category),
		Product:      NewProductHandler(base, svc.Product),
		Voucher:      NewVoucherHandler(base, svc.Voucher, svc.Shop),
		Cart:         NewCartHandler(base, svc.Cart, svc.Checkout),
		Review:       NewReviewHandler(base, svc.Review),
		Chat:         NewChatHandler(base, svc.Chat),
		Notification: NewNotificationHandler(base, svc.Notification),
	}
}
