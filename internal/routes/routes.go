package routes

import (
	"bazaar_backend/internal/auth"
	"bazaar_backend/internal/handlers"
	"bazaar_backend/internal/middleware"
	"bazaar_backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes регистрирует все маршруты API
func SetupRoutes(
	router *gin.Engine,
	h *handlers.HandlerContainer,
	db *gorm.DB,
	codec *auth.TokenCodec,
	denylist *auth.Denylist,
) {
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.DBMiddleware(db))

	api := router.Group("/api/v1")

	// Публичные маршруты
	public := api.Group("")
	{
		public.POST("/auth/register", h.Auth.Register)
		public.POST("/auth/login", h.Auth.Login)
		public.POST("/auth/refresh", h.Auth.Refresh)

		public.GET("/categories", h.Category.GetTree)
		public.GET("/categories/:id", h.Category.GetByID)
		public.GET("/categories/:id/variants", h.Category.GetVariants)

		public.GET("/shops", h.Shop.List)
		public.GET("/products", h.Product.List)
		public.GET("/products/:id", h.Product.GetByID)
		public.GET("/products/:id/reviews", h.Review.ListForProduct)
	}

	// Маршруты с авторизацией
	authorized := api.Group("")
	authorized.Use(middleware.AuthMiddleware(codec, denylist))
	{
		authorized.POST("/auth/logout", h.Auth.Logout)
		authorized.POST("/auth/logout-all", h.Auth.LogoutAll)
		authorized.GET("/auth/sessions", h.Auth.Sessions)
		authorized.POST("/auth/change-password", h.Auth.ChangePassword)

		authorized.GET("/users/me", h.User.GetProfile)
		authorized.PATCH("/users/me", h.User.UpdateProfile)

		authorized.GET("/notifications", h.Notification.List)
		authorized.GET("/notifications/unread-count", h.Notification.UnreadCount)
		authorized.POST("/notifications/read-all", h.Notification.MarkAllAsRead)
		authorized.POST("/notifications/:id/read", h.Notification.MarkAsRead)

		authorized.GET("/chat/dialogs", h.Chat.ListDialogs)
		authorized.POST("/chat/dialogs/:id/messages", h.Chat.SendMessage)
		authorized.GET("/chat/dialogs/:id/messages", h.Chat.ListMessages)

		// Shops: GET /shops/my должен идти до /shops/:id, иначе gin
		// сматчит "my" как :id
		authorized.GET("/shops/my", middleware.RequireRoles(models.UserRoleSeller), h.Shop.GetOwnShop)
	}
	public.GET("/shops/:id", h.Shop.GetByID)

	// Покупатель
	buyer := api.Group("")
	buyer.Use(middleware.AuthMiddleware(codec, denylist))
	{
		buyer.POST("/chat/dialogs", middleware.RequirePermission("chat", "write:self"), h.Chat.StartDialog)

		cart := buyer.Group("", middleware.RequirePermission("cart", "write:self"))
		{
			cart.GET("/cart", h.Cart.GetCart)
			cart.POST("/cart/items", h.Cart.AddItem)
			cart.PATCH("/cart/items/:id", h.Cart.UpdateItem)
			cart.DELETE("/cart/items/:id", h.Cart.RemoveItem)
			cart.DELETE("/cart", h.Cart.Clear)
		}

		checkout := buyer.Group("", middleware.RequirePermission("checkout", "write:self"))
		{
			checkout.POST("/checkout", h.Cart.Checkout)
			checkout.GET("/orders", h.Cart.ListOrders)
			checkout.GET("/orders/:id", h.Cart.GetOrder)
		}

		reviews := buyer.Group("", middleware.RequirePermission("reviews", "write:self"))
		{
			reviews.POST("/reviews", h.Review.Create)
			reviews.DELETE("/reviews/:id", h.Review.Delete)
		}
	}

	// Продавец
	seller := api.Group("")
	seller.Use(middleware.AuthMiddleware(codec, denylist), middleware.RequireRoles(models.UserRoleSeller))
	{
		seller.POST("/shops", h.Shop.Create)
		seller.PATCH("/shops/my", h.Shop.Update)

		seller.POST("/products", h.Product.Create)
		seller.PATCH("/products/:id", h.Product.Update)
		seller.DELETE("/products/:id", h.Product.Delete)
		seller.PUT("/products/:id/variants/:variantId", h.Product.OverrideVariant)
		seller.DELETE("/products/:id/variants/:variantId", h.Product.RemoveVariantOverride)

		seller.POST("/vouchers", h.Voucher.CreateSellerVoucher)
		seller.GET("/vouchers", h.Voucher.ListOwnVouchers)
		seller.PATCH("/vouchers/:id", h.Voucher.Update)
		seller.DELETE("/vouchers/:id", h.Voucher.Delete)
	}

	// Администратор
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(codec, denylist), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("/users", middleware.RequirePermission("users", "read"), h.User.ListUsers)
		admin.POST("/users/:id/ban", middleware.RequirePermission("users", "ban"), h.User.BanUser)
		admin.POST("/users/:id/unban", middleware.RequirePermission("users", "ban"), h.User.UnbanUser)

		admin.POST("/shops/:id/approve", middleware.RequirePermission("shops", "approve"), h.Shop.Approve)
		admin.POST("/shops/:id/suspend", middleware.RequirePermission("shops", "suspend"), h.Shop.Suspend)

		categories := admin.Group("", middleware.RequirePermission("categories", "write"))
		{
			categories.POST("/categories", h.Category.Create)
			categories.PATCH("/categories/:id", h.Category.Update)
			categories.POST("/categories/:id/variants", h.Category.CreateVariant)
			categories.PATCH("/variants/:id", h.Category.UpdateVariant)
			categories.DELETE("/variants/:id", h.Category.DeleteVariant)
		}
		admin.DELETE("/categories/:id", middleware.RequirePermission("categories", "delete"), h.Category.Delete)

		vouchers := admin.Group("", middleware.RequirePermission("vouchers", "write"))
		{
			vouchers.POST("/vouchers", h.Voucher.CreateAdminVoucher)
			vouchers.GET("/vouchers", h.Voucher.ListAdminVouchers)
		}
	}
}
