package services

import (
	"context"
	"encoding/json"
	"time"

	"bazaar_backend/internal/logger"
	"bazaar_backend/internal/models"
	"bazaar_backend/internal/repositories"
	"bazaar_backend/internal/services/dto"
	"bazaar_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CheckoutService interface {
	// Checkout превращает корзину покупателя в заказ: считает подытоги
	// по магазинам, валидирует ваучеры, пишет заказ и чистит корзину.
	Checkout(db *gorm.DB, buyerID string, req *dto.CheckoutRequest) (*dto.OrderResponse, error)
	GetOrder(db *gorm.DB, buyerID, orderID string) (*dto.OrderResponse, error)
	ListOrders(db *gorm.DB, buyerID string, page, pageSize int) ([]dto.OrderResponse, int64, error)
}

type CheckoutServiceImpl struct {
	cartRepo   repositories.CartRepository
	orderRepo  repositories.OrderRepository
	voucherSvc VoucherService
	notifier   NotificationService
	now        func() time.Time
}

func NewCheckoutService(
	cartRepo repositories.CartRepository,
	orderRepo repositories.OrderRepository,
	voucherSvc VoucherService,
	notifier NotificationService,
	now func() time.Time,
) CheckoutService {
	if now == nil {
		now = time.Now
	}
	return &CheckoutServiceImpl{
		cartRepo:   cartRepo,
		orderRepo:  orderRepo,
		voucherSvc: voucherSvc,
		notifier:   notifier,
		now:        now,
	}
}

func (s *CheckoutServiceImpl) Checkout(db *gorm.DB, buyerID string, req *dto.CheckoutRequest) (*dto.OrderResponse, error) {
	items, err := s.cartRepo.FindByUserID(db, buyerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if len(items) == 0 {
		return nil, apperrors.ErrCartEmpty
	}

	// Подытоги: по магазинам для seller-ваучеров, общий - для admin
	shopSubtotals := make(map[string]float64)
	var grandTotal float64
	for _, item := range items {
		if item.Product == nil {
			return nil, apperrors.ErrInvalidOperation("checkout", "Cart references a missing product")
		}
		line := item.Product.Price * float64(item.Quantity)
		shopSubtotals[item.Product.ShopID] += line
		grandTotal += line
	}

	discounts, err := s.voucherSvc.ValidateCheckoutVouchers(db, req.VoucherCodes, shopSubtotals, grandTotal, req.ShippingFee, s.now())
	if err != nil {
		return nil, err
	}

	appliedJSON, err := json.Marshal(discounts.Applied)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	total := grandTotal + req.ShippingFee - discounts.ShippingDiscount - discounts.ProductDiscount
	if total < 0 {
		total = 0
	}

	order := &models.Order{
		BuyerID:          buyerID,
		Status:           models.OrderStatusPending,
		Subtotal:         grandTotal,
		ShippingDiscount: discounts.ShippingDiscount,
		ProductDiscount:  discounts.ProductDiscount,
		Total:            total,
		AppliedVouchers:  datatypes.JSON(appliedJSON),
		ShippingAddress:  req.ShippingAddress,
	}
	for _, item := range items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:       item.ProductID,
			ShopID:          item.Product.ShopID,
			ProductName:     item.Product.Name,
			UnitPrice:       item.Product.Price,
			Quantity:        item.Quantity,
			SelectedOptions: item.SelectedOptions,
		})
	}

	// Заказ и очистка корзины - одна транзакция
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(tx, order); err != nil {
			return err
		}
		return s.cartRepo.ClearForUser(tx, buyerID)
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if s.notifier != nil {
		s.notifier.Notify(context.Background(), db, buyerID, repositories.NotificationTypeOrderPlaced,
			"Заказ оформлен", "Ваш заказ принят и ожидает подтверждения",
			map[string]interface{}{"order_id": order.ID}, "/orders/"+order.ID)
	}

	logger.Info("order placed", "order_id", order.ID, "buyer_id", buyerID, "total", total)

	return newOrderResponse(order), nil
}

func (s *CheckoutServiceImpl) GetOrder(db *gorm.DB, buyerID, orderID string) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindByID(db, orderID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrOrderNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if order.BuyerID != buyerID {
		return nil, apperrors.ErrInsufficientPermissions
	}
	return newOrderResponse(order), nil
}

func (s *CheckoutServiceImpl) ListOrders(db *gorm.DB, buyerID string, page, pageSize int) ([]dto.OrderResponse, int64, error) {
	orders, total, err := s.orderRepo.FindByBuyerID(db, buyerID, page, pageSize)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	responses := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, *newOrderResponse(&orders[i]))
	}
	return responses, total, nil
}

func newOrderResponse(order *models.Order) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:               order.ID,
		Status:           order.Status,
		Subtotal:         order.Subtotal,
		ShippingDiscount: order.ShippingDiscount,
		ProductDiscount:  order.ProductDiscount,
		Total:            order.Total,
		ShippingAddress:  order.ShippingAddress,
		CreatedAt:        order.CreatedAt.Format(time.RFC3339),
	}
	if len(order.AppliedVouchers) > 0 {
		if err := json.Unmarshal(order.AppliedVouchers, &resp.AppliedVouchers); err != nil {
			logger.Error("failed to decode applied vouchers", "error", err, "order_id", order.ID)
		}
	}
	for _, item := range order.Items {
		orderItem := dto.OrderItemResponse{
			ProductID:   item.ProductID,
			ShopID:      item.ShopID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		}
		if len(item.SelectedOptions) > 0 {
			if err := json.Unmarshal(item.SelectedOptions, &orderItem.SelectedOptions); err != nil {
				logger.Error("failed to decode selected options", "error", err, "order_id", order.ID)
			}
		}
		resp.Items = append(resp.Items, orderItem)
	}
	return resp
}
