package services

import (
	"time"

	"bazaar_backend/internal/auth"
	"bazaar_backend/internal/email"
	"bazaar_backend/internal/notifier"
	"bazaar_backend/internal/repositories"
)

// ServiceContainer - контейнер всех сервисов приложения
type ServiceContainer struct {
	Auth         AuthService
	User         UserService
	Shop         ShopService
	Category     CategoryService
	Product      ProductService
	Voucher      VoucherService
	Cart         CartService
	Checkout     CheckoutService
	Review       ReviewService
	Chat         ChatService
	Notification NotificationService
}

// Dependencies - внешние зависимости сервисного слоя.
// Часы, хешер и кодек инжектируются явно, чтобы тесты могли их подменять.
type Dependencies struct {
	Codec         *auth.TokenCodec
	Hasher        auth.PasswordHasher
	Denylist      *auth.Denylist
	EmailProvider email.Provider
	Publisher     notifier.Publisher
	Now           func() time.Time
}

func NewServiceContainer(deps Dependencies) *ServiceContainer {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	userRepo := repositories.NewUserRepository()
	tokenRepo := repositories.NewRefreshTokenRepository()
	shopRepo := repositories.NewShopRepository()
	categoryRepo := repositories.NewCategoryRepository()
	productRepo := repositories.NewProductRepository()
	voucherRepo := repositories.NewVoucherRepository()
	cartRepo := repositories.NewCartRepository()
	orderRepo := repositories.NewOrderRepository()
	reviewRepo := repositories.NewReviewRepository()
	chatRepo := repositories.NewChatRepository()
	notificationRepo := repositories.NewNotificationRepository()

	notificationSvc := NewNotificationService(notificationRepo, deps.Publisher, deps.Now)
	categorySvc := NewCategoryService(categoryRepo)
	voucherSvc := NewVoucherService(voucherRepo)

	return &ServiceContainer{
		Auth:         NewAuthService(userRepo, tokenRepo, deps.Codec, deps.Hasher, deps.Denylist, deps.EmailProvider, deps.Now),
		User:         NewUserService(userRepo, tokenRepo, notificationSvc),
		Shop:         NewShopService(shopRepo, notificationSvc),
		Category:     categorySvc,
		Product:      NewProductService(productRepo, shopRepo, categoryRepo, categorySvc),
		Voucher:      voucherSvc,
		Cart:         NewCartService(cartRepo, productRepo),
		Checkout:     NewCheckoutService(cartRepo, orderRepo, voucherSvc, notificationSvc, deps.Now),
		Review:       NewReviewService(reviewRepo, orderRepo, productRepo, shopRepo, notificationSvc),
		Chat:         NewChatService(chatRepo, shopRepo, notificationSvc, deps.Now),
		Notification: notificationSvc,
	}
}
